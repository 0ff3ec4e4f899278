package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fridge-manager/internal/infrastructure/config"
	"fridge-manager/internal/pkg/common"
)

func newTestClient(serverURL string) *Client {
	cfg := &config.Config{}
	cfg.Gemini.BaseURL = serverURL
	cfg.Gemini.APIKey = "test-key"
	cfg.Gemini.Model = "gemini-1.5-flash"
	cfg.Gemini.MaxTokens = 150
	cfg.Gemini.Timeout = 5 * time.Second
	return NewClient(cfg)
}

func candidateResponse(text string) string {
	return `{"candidates":[{"content":{"parts":[{"text":"` + text + `"}]}}]}`
}

func TestClassifyFood(t *testing.T) {
	var gotPath, gotKey string
	var gotReq request

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(candidateResponse("매일 두유")))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	answer, err := client.ClassifyFood(context.Background(), "매일 두유99.9% 1000ml", nil)
	if err != nil {
		t.Fatalf("ClassifyFood: %v", err)
	}
	if answer != "매일 두유" {
		t.Errorf("answer = %q, want 매일 두유", answer)
	}
	if gotPath != "/models/gemini-1.5-flash:generateContent" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("key = %q", gotKey)
	}

	if len(gotReq.Contents) != 1 || len(gotReq.Contents[0].Parts) != 1 {
		t.Fatalf("request contents = %+v", gotReq.Contents)
	}
	prompt := gotReq.Contents[0].Parts[0].Text
	if !strings.Contains(prompt, "매일 두유99.9% 1000ml") {
		t.Error("prompt does not contain OCR text")
	}
	gc := gotReq.GenerationConfig
	if gc.Temperature != 0.05 || gc.MaxOutputTokens != 150 || gc.TopP != 0.7 || gc.TopK != 20 {
		t.Errorf("generationConfig = %+v", gc)
	}
}

func TestClassifyFoodDetectionContext(t *testing.T) {
	var prompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req request
		json.NewDecoder(r.Body).Decode(&req)
		prompt = req.Contents[0].Parts[0].Text
		w.Write([]byte(candidateResponse("사과")))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if _, err := client.ClassifyFood(context.Background(), "사과즙", []string{"apple", "other", "banana"}); err != nil {
		t.Fatalf("ClassifyFood: %v", err)
	}

	// other 類別要被濾掉
	if !strings.Contains(prompt, "참고: 이미지에서 다음 식품들이 탐지되었습니다: apple, banana") {
		t.Errorf("detection context missing or wrong:\n%s", prompt)
	}
}

func TestClassifyFoodQuotaExceeded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.ClassifyFood(context.Background(), "우유", nil)
	if err != common.ErrQuotaExceeded {
		t.Errorf("err = %v, want ErrQuotaExceeded", err)
	}
}

func TestClassifyFoodServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if _, err := client.ClassifyFood(context.Background(), "우유", nil); err == nil {
		t.Error("expected error for 500 response")
	}
}

func TestClassifyFoodEmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if _, err := client.ClassifyFood(context.Background(), "우유", nil); err == nil {
		t.Error("expected error for empty candidates")
	}
}

func TestClassifyFoodEmptyText(t *testing.T) {
	client := newTestClient("http://127.0.0.1:0")
	if _, err := client.ClassifyFood(context.Background(), "   ", nil); !common.IsValidationError(err) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestBuildPromptWithoutDetections(t *testing.T) {
	prompt := BuildPrompt("우유 1000ml", nil)
	if strings.Contains(prompt, "참고:") {
		t.Error("prompt should not mention detections")
	}
	if !strings.Contains(prompt, "추출된 텍스트: 우유 1000ml") {
		t.Error("prompt missing OCR text line")
	}
}
