package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"fridge-manager/internal/infrastructure/config"
	"fridge-manager/internal/pkg/common"
)

// Client 物件偵測服務客戶端
type Client struct {
	config *config.Config
	client *resty.Client
}

// NewClient 建立物件偵測服務客戶端
func NewClient(cfg *config.Config) *Client {
	client := resty.New().
		SetBaseURL(cfg.Services.DetectionBaseURL).
		SetTimeout(cfg.Services.Timeout)

	return &Client{
		config: cfg,
		client: client,
	}
}

// Detect 對 base64 圖片執行物件偵測
// minConfidence 以下的結果由偵測服務端先行過濾
func (c *Client) Detect(ctx context.Context, imageData string, minConfidence float64) (*common.DetectionResult, error) {
	raw, err := base64.StdEncoding.DecodeString(imageData)
	if err != nil {
		return nil, common.NewError(common.ErrCodeInvalidRequest, "無效的圖片資料", http.StatusBadRequest, err)
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetFileReader("file", "image.jpg", bytes.NewReader(raw)).
		SetFormData(map[string]string{
			"confidence":   strconv.FormatFloat(minConfidence, 'f', -1, 64),
			"use_ensemble": "true",
		}).
		Post("/api/detect")

	if err != nil {
		return nil, fmt.Errorf("failed to send request to detection service: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("detection service returned error: %s", resp.String())
	}

	var result common.DetectionResult
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse detection response: %w", err)
	}

	common.LogDebug("物件偵測完成",
		zap.Int("detections", len(result.Detections)))

	return &result, nil
}
