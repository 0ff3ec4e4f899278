package fridge

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	corefridge "fridge-manager/internal/core/fridge"
	"fridge-manager/internal/pkg/common"
)

// AddItemRequest 手動加入食材請求，未帶 quantity 時預設為 1
type AddItemRequest struct {
	Name     string `json:"name" binding:"required"`
	Quantity *int   `json:"quantity"`
}

// UpdateQuantityRequest 調整數量請求
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// HandleGetFridge 回傳使用者目前的冰箱內容
func HandleGetFridge(manager *corefridge.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := ensureRequestID(c)
		userID := requestUserID(c)

		snapshot, err := manager.Snapshot(c.Request.Context(), userID)
		if err != nil {
			respondError(c, requestID, err)
			return
		}

		c.JSON(http.StatusOK, snapshot)
	}
}

// HandleAddItem 手動加入食材
func HandleAddItem(manager *corefridge.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := ensureRequestID(c)

		var req AddItemRequest
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
		quantity := 1
		if req.Quantity != nil {
			quantity = *req.Quantity
		}

		userID := requestUserID(c)
		snapshot, item, err := manager.AddItem(c.Request.Context(), userID, req.Name, quantity)
		if err != nil {
			respondError(c, requestID, err)
			return
		}

		common.LogInfo("手動加入食材",
			zap.String("request_id", requestID),
			zap.String("user_id", userID),
			zap.String("name", item.Name),
			zap.Int("quantity", item.Quantity))

		c.JSON(http.StatusOK, gin.H{
			"item":   item,
			"fridge": snapshot,
		})
	}
}

// HandleUpdateQuantity 調整食材數量，0 代表移除
func HandleUpdateQuantity(manager *corefridge.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := ensureRequestID(c)

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, common.ErrorResponse{
				Code:    common.ErrCodeInvalidRequest,
				Message: "無效的食材 ID",
			})
			return
		}

		var req UpdateQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
			c.JSON(http.StatusBadRequest, common.ErrorResponse{
				Code:    common.ErrCodeInvalidRequest,
				Message: "無效的請求格式",
			})
			return
		}

		userID := requestUserID(c)
		snapshot, err := manager.SetQuantity(c.Request.Context(), userID, id, *req.Quantity)
		if err != nil {
			respondError(c, requestID, err)
			return
		}

		c.JSON(http.StatusOK, snapshot)
	}
}

// HandleRemoveItem 移除食材
func HandleRemoveItem(manager *corefridge.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := ensureRequestID(c)

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, common.ErrorResponse{
				Code:    common.ErrCodeInvalidRequest,
				Message: "無效的食材 ID",
			})
			return
		}

		userID := requestUserID(c)
		snapshot, err := manager.RemoveItem(c.Request.Context(), userID, id)
		if err != nil {
			respondError(c, requestID, err)
			return
		}

		c.JSON(http.StatusOK, snapshot)
	}
}
