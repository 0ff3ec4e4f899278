package inference

import (
	"context"
	"errors"
	"testing"

	"fridge-manager/internal/pkg/common"
)

type stubLLM struct {
	answer string
	err    error
	called bool
}

func (s *stubLLM) ClassifyFood(ctx context.Context, text string, detectedClasses []string) (string, error) {
	s.called = true
	return s.answer, s.err
}

func newTestEngine(llm LLMClassifier, llmEnabled bool) *Engine {
	return NewEngine(nil, nil, NewWebSearchResolver(nil, nil), llm, llmEnabled)
}

func TestResolveTextBrandBeverage(t *testing.T) {
	e := newTestEngine(nil, false)

	got := e.ResolveText(context.Background(), "매일 두유99.9% 1000ml", nil)
	if got == nil {
		t.Fatal("ResolveText = nil")
	}
	if got.Name != "매일 두유" {
		t.Errorf("Name = %q, want 매일 두유", got.Name)
	}
	if got.Confidence != 0.95 {
		t.Errorf("Confidence = %v, want 0.95", got.Confidence)
	}
	if got.Source != common.SourceBrandMatch {
		t.Errorf("Source = %q, want %q", got.Source, common.SourceBrandMatch)
	}
}

func TestResolveTextPatternFirst(t *testing.T) {
	e := newTestEngine(nil, false)

	got := e.ResolveText(context.Background(), "저지방우유 500ml", nil)
	if got == nil {
		t.Fatal("ResolveText = nil")
	}
	if got.Name != "우유" || got.Source != common.SourcePatternMatching {
		t.Errorf("got {%q %v %q}, want 우유 via pattern_matching", got.Name, got.Confidence, got.Source)
	}
	if got.Confidence != 0.98 {
		t.Errorf("Confidence = %v, want 0.98", got.Confidence)
	}
}

func TestResolveTextBeverageKeywordOnly(t *testing.T) {
	e := newTestEngine(nil, false)

	// ml 加飲料關鍵字但無品牌：最大化推論取關鍵字本身
	got := e.ResolveText(context.Background(), "콜라 350ml", nil)
	if got == nil {
		t.Fatal("ResolveText = nil")
	}
	if got.Name != "콜라" {
		t.Errorf("Name = %q, want 콜라", got.Name)
	}
	if got.Confidence != 0.85 {
		t.Errorf("Confidence = %v, want 0.85", got.Confidence)
	}
}

func TestResolveTextWebSearchAccepted(t *testing.T) {
	search := func(ctx context.Context, query string) ([]common.SearchResult, error) {
		return []common.SearchResult{{Title: "신선한 오이 판매", Snippet: "오이 특가"}}, nil
	}
	patterns := NewPatternMatcher([]PatternEntry{})
	resolver := NewWebSearchResolver(search, []string{"오이"})
	e := NewEngine(patterns, nil, resolver, nil, false)

	got := e.ResolveText(context.Background(), "오이", nil)
	if got == nil {
		t.Fatal("ResolveText = nil")
	}
	if got.Name != "오이" || got.Source != common.SourceWebSearch {
		t.Errorf("got {%q %v %q}, want 오이 via web_search", got.Name, got.Confidence, got.Source)
	}
	if got.Confidence != 0.95 {
		t.Errorf("Confidence = %v, want 0.95", got.Confidence)
	}
}

func TestResolveTextWebSearchBelowGate(t *testing.T) {
	// 詞彙只與關鍵字重疊一個字，信心約 0.78，未達 0.8 採納門檻
	search := func(ctx context.Context, query string) ([]common.SearchResult, error) {
		return []common.SearchResult{{Title: "가라라 소개", Snippet: "가라라"}}, nil
	}
	patterns := NewPatternMatcher([]PatternEntry{})
	resolver := NewWebSearchResolver(search, []string{"가라라"})
	e := NewEngine(patterns, nil, resolver, nil, false)

	got := e.ResolveText(context.Background(), "가나다", nil)
	if got == nil {
		t.Fatal("ResolveText = nil")
	}
	if got.Source == common.SourceWebSearch {
		t.Fatalf("low-confidence search result accepted: %+v", got)
	}
	if got.Source != common.SourceFallback || got.Confidence != 0.5 {
		t.Errorf("got {%q %v %q}, want fallback at 0.5", got.Name, got.Confidence, got.Source)
	}
}

func TestResolveTextEmpty(t *testing.T) {
	e := newTestEngine(nil, false)

	if got := e.ResolveText(context.Background(), "   ", nil); got != nil {
		t.Errorf("ResolveText(blank) = %+v, want nil", got)
	}
}

func TestResolveTextLLMStage(t *testing.T) {
	llm := &stubLLM{answer: "식품명: 현미녹차"}
	e := newTestEngine(llm, true)

	got := e.ResolveText(context.Background(), "알수없는제품명XYZ", nil)
	if got == nil {
		t.Fatal("ResolveText = nil")
	}
	if !llm.called {
		t.Fatal("LLM was not called")
	}
	if got.Name != "현미녹차" {
		t.Errorf("Name = %q, want 현미녹차", got.Name)
	}
	if got.Confidence != 0.85 || got.Source != common.SourceLLM {
		t.Errorf("got {%v %q}, want {0.85 llm}", got.Confidence, got.Source)
	}
}

func TestResolveTextLLMDisabled(t *testing.T) {
	llm := &stubLLM{answer: "현미녹차"}
	e := newTestEngine(llm, false)

	e.ResolveText(context.Background(), "알수없는제품명XYZ", nil)
	if llm.called {
		t.Error("LLM called despite being disabled")
	}
}

func TestResolveTextFallbackOnLLMError(t *testing.T) {
	llm := &stubLLM{err: errors.New("quota exceeded")}
	e := newTestEngine(llm, true)

	got := e.ResolveText(context.Background(), "모르는물건", nil)
	if got == nil {
		t.Fatal("ResolveText = nil")
	}
	if got.Source != common.SourceFallback {
		t.Errorf("Source = %q, want fallback", got.Source)
	}
	if got.Confidence != 0.5 {
		t.Errorf("Confidence = %v, want 0.5", got.Confidence)
	}
	if got.Name == "" {
		t.Error("fallback must produce a non-empty name")
	}
}

func TestFallbackChain(t *testing.T) {
	e := newTestEngine(nil, false)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"品牌加商品", "농심 신라면", "농심 신라면"},
		{"分類關鍵字", "CHOCOLATE BAR", "초콜릿"},
		{"第一個韓文單詞", "blah 정체불명 blah", "정체불명"},
		{"完全無線索", "???", "식품"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Fallback(tt.in); got != tt.want {
				t.Errorf("Fallback(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestInferStagesNeedLLMSignal(t *testing.T) {
	e := newTestEngine(nil, false)

	outcome := e.InferStages("정체불명의외국어")
	if outcome.Stage != StageNeedLLM {
		t.Errorf("Stage = %q, want %q", outcome.Stage, StageNeedLLM)
	}
	if outcome.Result != nil {
		t.Errorf("Result = %+v, want nil", outcome.Result)
	}
}

func TestInferStagesBeverageDefault(t *testing.T) {
	// 自訂空目錄讓品牌與規則全部落空，只剩 ml 與飲料關鍵字
	brands := NewBrandMatcher([]BrandEntry{}, nil)
	patterns := NewPatternMatcher([]PatternEntry{})
	e := NewEngine(patterns, brands, NewWebSearchResolver(nil, nil), nil, false)

	outcome := e.InferStages("음료 500ml")
	if outcome.Result == nil {
		t.Fatal("Result = nil")
	}
	if outcome.Result.Name != "음료" {
		t.Errorf("Name = %q, want 음료", outcome.Result.Name)
	}
	if outcome.Result.Confidence != 0.85 && outcome.Result.Confidence != 0.8 {
		t.Errorf("Confidence = %v", outcome.Result.Confidence)
	}
}

func TestMaximalInferenceBrandOnly(t *testing.T) {
	e := newTestEngine(nil, false)

	// 只有品牌名時以代表商品補全
	if got := e.MaximalInference("농심"); got != "농심 신라면" {
		t.Errorf("MaximalInference(농심) = %q, want 농심 신라면", got)
	}
}
