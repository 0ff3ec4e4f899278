package fridge

import (
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	corefridge "fridge-manager/internal/core/fridge"
	"fridge-manager/internal/pkg/common"
)

// ImportResponse 舊版資料匯入的回覆
type ImportResponse struct {
	Added  int                    `json:"added"`
	Merged int                    `json:"merged"`
	Fridge *common.FridgeSnapshot `json:"fridge"`
}

// HandleImportLegacy 匯入舊版匯出的冰箱資料
// 請求體直接是舊版 JSON（陣列或包裝物件），不再套一層信封
func HandleImportLegacy(manager *corefridge.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = common.GenerateUUID()
			w.Header().Set("X-Request-ID", requestID)
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			common.LogError("Failed to read import payload",
				zap.Error(err),
				zap.String("request_id", requestID))
			common.WriteErrorResponse(w, http.StatusBadRequest, "Failed to read request body")
			return
		}
		if len(body) == 0 {
			common.WriteErrorResponse(w, http.StatusBadRequest, "Empty import payload")
			return
		}

		userID := r.Header.Get("X-User-ID")
		if userID == "" {
			userID = r.URL.Query().Get("user_id")
		}
		if userID == "" {
			userID = defaultUserID
		}

		snapshot, stats, err := manager.ImportLegacy(r.Context(), userID, body)
		if err != nil {
			if common.IsValidationError(err) {
				common.LogWarn("Invalid legacy payload",
					zap.Error(err),
					zap.String("request_id", requestID))
				common.WriteErrorResponse(w, http.StatusBadRequest, err.Error())
				return
			}
			common.LogError("Legacy import failed",
				zap.Error(err),
				zap.String("request_id", requestID))
			common.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to import legacy data")
			return
		}

		common.LogInfo("舊版資料匯入完成",
			zap.String("request_id", requestID),
			zap.String("user_id", userID),
			zap.Int("added", stats.Added),
			zap.Int("merged", stats.Merged))

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(ImportResponse{
			Added:  stats.Added,
			Merged: stats.Merged,
			Fridge: snapshot,
		}); err != nil {
			common.LogError("Failed to encode response",
				zap.Error(err),
				zap.String("request_id", requestID))
		}
	}
}
