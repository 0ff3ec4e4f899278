package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"fridge-manager/internal/infrastructure/config"
	"fridge-manager/internal/pkg/common"
)

// Client OCR 文字辨識服務客戶端
type Client struct {
	config *config.Config
	client *resty.Client
}

// NewClient 建立 OCR 服務客戶端
func NewClient(cfg *config.Config) *Client {
	client := resty.New().
		SetBaseURL(cfg.Services.OCRBaseURL).
		SetTimeout(cfg.Services.Timeout)

	return &Client{
		config: cfg,
		client: client,
	}
}

// Recognize 對 base64 圖片執行文字辨識
// 回傳的文字可能為空，代表圖片上沒有可辨識的文字
func (c *Client) Recognize(ctx context.Context, imageData string) (*common.OCRResult, error) {
	raw, err := base64.StdEncoding.DecodeString(imageData)
	if err != nil {
		return nil, common.NewError(common.ErrCodeInvalidRequest, "無效的圖片資料", http.StatusBadRequest, err)
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetFileReader("file", "image.jpg", bytes.NewReader(raw)).
		Post("/api/ocr")

	if err != nil {
		return nil, fmt.Errorf("failed to send request to OCR service: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("OCR service returned error: %s", resp.String())
	}

	var result common.OCRResult
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse OCR response: %w", err)
	}

	common.LogDebug("OCR 辨識完成",
		zap.Int("text_length", len(result.Text)),
		zap.Float64("confidence", result.Confidence))

	return &result, nil
}
