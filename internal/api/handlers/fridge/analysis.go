package fridge

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fridge-manager/internal/core/analysis"
	"fridge-manager/internal/pkg/common"
)

// AnalyzeImageRequest 單張圖片分析請求
// image: base64、data URI 或 URL
type AnalyzeImageRequest struct {
	Image string `json:"image" binding:"required"`
}

// AnalyzeBatchRequest 批次圖片分析請求
type AnalyzeBatchRequest struct {
	Images []string `json:"images" binding:"required,min=1"`
}

// AnalyzeTextRequest 純文字推論請求
type AnalyzeTextRequest struct {
	Text string `json:"text" binding:"required"`
}

// HandleAnalyzeImage 處理單張圖片分析
func HandleAnalyzeImage(svc *analysis.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := ensureRequestID(c)

		var req AnalyzeImageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			common.LogWarn("請求格式無效",
				zap.Error(err),
				zap.String("request_id", requestID))
			c.JSON(http.StatusBadRequest, common.ErrorResponse{
				Code:    common.ErrCodeInvalidRequest,
				Message: "無效的請求格式",
			})
			return
		}

		userID := requestUserID(c)
		common.LogInfo("開始圖片分析",
			zap.String("request_id", requestID),
			zap.String("user_id", userID),
			zap.Int("image_length", len(req.Image)))

		report, err := svc.AnalyzeImage(c.Request.Context(), userID, req.Image)
		if err != nil {
			respondError(c, requestID, err)
			return
		}

		c.JSON(http.StatusOK, report)
	}
}

// HandleAnalyzeBatch 處理批次圖片分析
func HandleAnalyzeBatch(svc *analysis.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := ensureRequestID(c)

		var req AnalyzeBatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			common.LogWarn("請求格式無效",
				zap.Error(err),
				zap.String("request_id", requestID))
			c.JSON(http.StatusBadRequest, common.ErrorResponse{
				Code:    common.ErrCodeInvalidRequest,
				Message: "無效的請求格式",
			})
			return
		}

		userID := requestUserID(c)
		common.LogInfo("開始批次圖片分析",
			zap.String("request_id", requestID),
			zap.String("user_id", userID),
			zap.Int("image_count", len(req.Images)))

		report, err := svc.AnalyzeBatch(c.Request.Context(), userID, req.Images)
		if err != nil {
			respondError(c, requestID, err)
			return
		}

		c.JSON(http.StatusOK, report)
	}
}

// HandleAnalyzeText 處理純文字推論
func HandleAnalyzeText(svc *analysis.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := ensureRequestID(c)

		var req AnalyzeTextRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			common.LogWarn("請求格式無效",
				zap.Error(err),
				zap.String("request_id", requestID))
			c.JSON(http.StatusBadRequest, common.ErrorResponse{
				Code:    common.ErrCodeInvalidRequest,
				Message: "無效的請求格式",
			})
			return
		}

		userID := requestUserID(c)
		report, err := svc.AnalyzeText(c.Request.Context(), userID, req.Text)
		if err != nil {
			respondError(c, requestID, err)
			return
		}

		c.JSON(http.StatusOK, report)
	}
}
