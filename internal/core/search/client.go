package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"fridge-manager/internal/infrastructure/config"
	"fridge-manager/internal/pkg/common"
)

// Client 網頁搜尋服務客戶端
// 搜尋屬於輔助性質，呼叫端（推論引擎）會吸收所有錯誤
type Client struct {
	config *config.Config
	client *resty.Client
}

// NewClient 建立網頁搜尋客戶端
func NewClient(cfg *config.Config) *Client {
	client := resty.New().
		SetBaseURL(cfg.Services.SearchBaseURL).
		SetTimeout(cfg.Services.Timeout)

	return &Client{
		config: cfg,
		client: client,
	}
}

type searchRequest struct {
	Query         string `json:"query"`
	MaxResults    int    `json:"max_results"`
	IncludeImages bool   `json:"include_images"`
	SafeSearch    string `json:"safe_search"`
}

type searchResponse struct {
	Results []common.SearchResult `json:"results"`
}

// Search 執行網頁搜尋並回傳標準化結果
func (c *Client) Search(ctx context.Context, query string) ([]common.SearchResult, error) {
	req := searchRequest{
		Query:         query,
		MaxResults:    10,
		IncludeImages: false,
		SafeSearch:    "moderate",
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post("/api/search")

	if err != nil {
		return nil, fmt.Errorf("failed to send request to search service: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("search service returned error: %s", resp.String())
	}

	var result searchResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	common.LogDebug("網頁搜尋完成",
		zap.String("query", query),
		zap.Int("results", len(result.Results)))

	return result.Results, nil
}
