package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"fridge-manager/internal/infrastructure/config"
	"fridge-manager/internal/pkg/common"
)

// 產生設定沿用前端時期調校過的值：低溫度避免模型自由發揮，
// 只要第一行輸出食品名即可
const (
	temperature = 0.05
	topP        = 0.7
	topK        = 20
)

// promptHeader 與 promptGuidelines 組成食品推論提示詞，
// 中間夾入 OCR 文字與（可選的）偵測結果脈絡
const promptHeader = `식품의 포장지를 OCR로 추출한 텍스트를 분석해서 어떤 식품인지 추론해주세요.

추출된 텍스트: `

const promptGuidelines = `

분석 지침 (중요도 순):
1. **브랜드+제품명 조합을 최우선으로 추론하세요**
   - 예시: "매일 두유99.9%", "농심 신라면", "롯데 초코파이"
   - 숫자나 퍼센트가 포함되어도 브랜드+제품명으로 답변

2. **ml 단위가 있고 음료 관련이면 해당 음료명으로 답변**
   - 예시: "우유 1000ml" → "우유", "매일두유 500ml" → "매일두유"

3. **구체적인 식재료명을 우선시**
   - 예시: "당근", "사과", "계란", "쌀" 등

4. **숫자 포함 제품명도 그대로 사용**
   - 예시: "매일두유99.9%" → "매일두유99.9%"

5. **응답 형식:**
   - 첫 번째 줄에만 추론된 식품명을 명확하게 작성
   - 가능한 한 원본 텍스트의 제품명을 보존

텍스트에 브랜드명이나 구체적인 제품명이 있다면 반드시 그것을 포함하여 답변하세요.`

// request Gemini generateContent 請求
type request struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
}

// response Gemini generateContent 回應
type response struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Client Gemini 文字推論客戶端
type Client struct {
	client *resty.Client
	config *config.GeminiConfig
}

// NewClient 創建 Gemini 客戶端
func NewClient(cfg *config.Config) *Client {
	client := resty.New().
		SetBaseURL(cfg.Gemini.BaseURL).
		SetTimeout(cfg.Gemini.Timeout)

	return &Client{
		client: client,
		config: &cfg.Gemini,
	}
}

// BuildPrompt 組合食品推論提示詞
// detectedClasses 非空時附上偵測脈絡，讓模型交叉參考影像內容
func BuildPrompt(text string, detectedClasses []string) string {
	detectionContext := ""

	classes := make([]string, 0, len(detectedClasses))
	for _, class := range detectedClasses {
		if class != "" && class != "other" {
			classes = append(classes, class)
		}
	}
	if len(classes) > 0 {
		detectionContext = fmt.Sprintf("\n\n참고: 이미지에서 다음 식품들이 탐지되었습니다: %s", strings.Join(classes, ", "))
	}

	return promptHeader + text + detectionContext + promptGuidelines
}

// ClassifyFood 以 OCR 文字推論食品名稱，回傳模型的原始回答
func (c *Client) ClassifyFood(ctx context.Context, text string, detectedClasses []string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", common.NewValidationError("分析文字不可為空")
	}

	req := request{
		Contents: []content{
			{Parts: []part{{Text: BuildPrompt(text, detectedClasses)}}},
		},
		GenerationConfig: generationConfig{
			Temperature:     temperature,
			MaxOutputTokens: c.config.MaxTokens,
			TopP:            topP,
			TopK:            topK,
		},
	}

	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("key", c.config.APIKey).
		SetBody(req).
		Post(fmt.Sprintf("/models/%s:generateContent", c.config.Model))
	common.LogAICall(text, time.Since(start), err, "")
	if err != nil {
		return "", fmt.Errorf("failed to call Gemini API: %w", err)
	}

	if resp.StatusCode() == http.StatusTooManyRequests {
		common.LogWarn("Gemini API 配額已用盡", zap.String("model", c.config.Model))
		return "", common.ErrQuotaExceeded
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("Gemini API returned status %d: %s", resp.StatusCode(), resp.String())
	}

	var result response
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return "", fmt.Errorf("failed to parse Gemini response: %w", err)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("Gemini response has no candidates")
	}

	answer := result.Candidates[0].Content.Parts[0].Text
	common.LogDebug("Gemini 推論完成",
		zap.String("model", c.config.Model),
		zap.Int("answer_length", len(answer)))
	return answer, nil
}
