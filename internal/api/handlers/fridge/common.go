package fridge

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fridge-manager/internal/pkg/common"
)

// defaultUserID 未帶使用者識別時的共用冰箱
const defaultUserID = "default"

// requestUserID 取出請求的使用者識別
// 優先讀 X-User-ID 標頭，其次 user_id 查詢參數
func requestUserID(c *gin.Context) string {
	if id := c.GetHeader("X-User-ID"); id != "" {
		return id
	}
	if id := c.Query("user_id"); id != "" {
		return id
	}
	return defaultUserID
}

// ensureRequestID 確保回應帶有請求 ID
func ensureRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = common.GenerateUUID()
		c.Header("X-Request-ID", requestID)
	}
	return requestID
}

// respondError 依錯誤型別回覆對應的狀態碼與錯誤代碼
func respondError(c *gin.Context, requestID string, err error) {
	if custom, ok := err.(*common.CustomError); ok {
		common.LogWarn("請求處理失敗",
			zap.String("request_id", requestID),
			zap.String("code", custom.Code),
			zap.Error(err))
		c.JSON(custom.Status, common.ErrorResponse{
			Code:    custom.Code,
			Message: custom.Message,
		})
		return
	}

	if common.IsValidationError(err) {
		common.LogWarn("請求驗證失敗",
			zap.String("request_id", requestID),
			zap.Error(err))
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrCodeInvalidRequest,
			Message: err.Error(),
		})
		return
	}

	common.LogError("請求處理失敗",
		zap.String("request_id", requestID),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, common.ErrorResponse{
		Code:    common.ErrCodeInternalError,
		Message: "服務器內部錯誤",
	})
}
