package inference

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"fridge-manager/internal/pkg/common"
)

// Stage 標記階段式推論的終止點
type Stage string

const (
	StageNoInput         Stage = "no_input"
	StageBeverageBrand   Stage = "ml_brand_product"
	StageBeverageMax     Stage = "ml_max_inference"
	StageBeverageDefault Stage = "ml_default"
	StageIngredient      Stage = "ingredient_direct"
	StageNeedLLM         Stage = "need_llm"
)

// 各推論來源的固定信心值
const (
	confidenceBrandProduct    = 0.95
	confidenceIngredientStage = 0.9
	confidenceMaxInference    = 0.85
	confidenceLLM             = 0.85
	confidenceBeverageDefault = 0.8
	confidenceFallback        = 0.5

	// 各階段的採納門檻
	patternAcceptThreshold   = 0.85
	webSearchAcceptThreshold = 0.8
	patternReuseThreshold    = 0.6
)

// StageOutcome 為階段式推論的結果，Result 為 nil 表示該輪未能定案
type StageOutcome struct {
	Result *common.ResolvedIngredient
	Stage  Stage
}

// foodCategoryEntry 一般食品分類關鍵字，fallback 鏈的倒數第二層
type foodCategoryEntry struct {
	Category string
	Keywords []string
}

var defaultFoodCategories = []foodCategoryEntry{
	{Category: "라면", Keywords: []string{"라면", "면", "RAMEN", "NOODLE"}},
	{Category: "우유", Keywords: []string{"우유", "MILK", "밀크"}},
	{Category: "초콜릿", Keywords: []string{"초콜릿", "CHOCOLATE", "쇼콜라"}},
	{Category: "과자", Keywords: []string{"과자", "SNACK", "스낵"}},
	{Category: "음료", Keywords: []string{"음료", "DRINK", "드링크", "사이다", "콜라"}},
	{Category: "빵", Keywords: []string{"빵", "BREAD", "브레드"}},
	{Category: "치킨", Keywords: []string{"치킨", "CHICKEN", "닭"}},
	{Category: "햄버거", Keywords: []string{"햄버거", "BURGER", "버거"}},
}

// Engine 食材推論引擎
// 組合規則比對、品牌偵測、網頁搜尋與語言模型，依序嘗試直到得出名稱
// 所有比對表皆於建構時注入且唯讀，Engine 本身無狀態，可並行使用
type Engine struct {
	patterns   *PatternMatcher
	brands     *BrandMatcher
	search     *WebSearchResolver
	llm        LLMClassifier
	llmEnabled bool
	categories []foodCategoryEntry
}

// NewEngine 建立推論引擎
// search 與 llm 允許為 nil，對應的階段會被跳過
func NewEngine(patterns *PatternMatcher, brands *BrandMatcher, search *WebSearchResolver, llm LLMClassifier, llmEnabled bool) *Engine {
	if patterns == nil {
		patterns = NewPatternMatcher(nil)
	}
	if brands == nil {
		brands = NewBrandMatcher(nil, nil)
	}
	if search == nil {
		search = NewWebSearchResolver(nil, nil)
	}
	return &Engine{
		patterns:   patterns,
		brands:     brands,
		search:     search,
		llm:        llm,
		llmEnabled: llmEnabled,
		categories: defaultFoodCategories,
	}
}

// MaximalInference 在沒有品牌+商品組合時盡可能從文字擠出一個名稱
// 依序嘗試：品牌代表商品、飲料關鍵字、規則表、含數字的產品名、第一個韓文單詞
func (e *Engine) MaximalInference(text string) string {
	if text == "" {
		return ""
	}

	if brand := e.brands.DetectBrandOnly(text); brand != "" {
		if product := e.brands.RepresentativeProduct(brand, text); product != "" {
			return brand + " " + product
		}
	}

	if e.brands.IsBeverageByVolume(text) {
		if keyword := e.brands.BeverageKeywordIn(text); keyword != "" {
			return keyword
		}
	}

	if match := e.patterns.Match(text); match != nil {
		return match.Ingredient
	}

	if withNumbers := MeaningfulTextWithNumbers(text); withNumbers != "" {
		return withNumbers
	}

	return FirstKoreanWord(text)
}

// InferStages 執行階段式推論
// 第一階段處理 ml 飲品，第二階段直接比對食材名稱，
// 兩者都未定案時回傳 need_llm 訊號交由上層決定是否呼叫語言模型
func (e *Engine) InferStages(text string) StageOutcome {
	if text == "" {
		return StageOutcome{Stage: StageNoInput}
	}

	if e.brands.IsBeverageByVolume(text) {
		if match := e.brands.Detect(text); match.Brand != "" && match.Product != "" {
			return StageOutcome{
				Stage: StageBeverageBrand,
				Result: &common.ResolvedIngredient{
					Name:       match.FullName,
					Confidence: confidenceBrandProduct,
					Source:     common.SourceBrandMatch,
				},
			}
		}

		if inferred := e.MaximalInference(text); inferred != "" {
			return StageOutcome{
				Stage: StageBeverageMax,
				Result: &common.ResolvedIngredient{
					Name:       inferred,
					Confidence: confidenceMaxInference,
					Source:     common.SourcePatternMatching,
				},
			}
		}

		return StageOutcome{
			Stage: StageBeverageDefault,
			Result: &common.ResolvedIngredient{
				Name:       "음료",
				Confidence: confidenceBeverageDefault,
				Source:     common.SourcePatternMatching,
			},
		}
	}

	if match := e.patterns.Match(text); match != nil {
		return StageOutcome{
			Stage: StageIngredient,
			Result: &common.ResolvedIngredient{
				Name:       match.Ingredient,
				Confidence: confidenceIngredientStage,
				Source:     common.SourcePatternMatching,
			},
		}
	}

	return StageOutcome{Stage: StageNeedLLM}
}

// SimpleInference 最後一層的簡易文字推論，保證回傳非空名稱
func (e *Engine) SimpleInference(text string) string {
	if text == "" {
		return "식품"
	}

	if match := e.patterns.Match(text); match != nil {
		return match.Ingredient
	}

	clean := NormalizeText(text)
	upper := strings.ToUpper(clean)
	for _, entry := range e.categories {
		for _, keyword := range entry.Keywords {
			if strings.Contains(clean, keyword) || strings.Contains(upper, strings.ToUpper(keyword)) {
				return entry.Category
			}
		}
	}

	if word := FirstKoreanWord(clean); word != "" {
		return word
	}

	return "식품"
}

// Fallback 推論鏈全數失敗時的保底流程，永遠回傳非空名稱
func (e *Engine) Fallback(text string) string {
	if match := e.brands.Detect(text); match.Brand != "" && match.Product != "" {
		return match.FullName
	}

	if inferred := e.MaximalInference(text); inferred != "" {
		return inferred
	}

	return e.SimpleInference(text)
}

// buildLLMContext 將品牌線索附加到文字後，提高模型推論的命中率
func (e *Engine) buildLLMContext(text string) string {
	brand := e.brands.DetectBrandOnly(text)
	if brand == "" {
		return text
	}
	return text + "\n\n참고: 텍스트에서 브랜드 '" + brand + "'가 감지되었습니다."
}

// ResolveText 完整的文字推論串接
// 規則表與網頁搜尋先行，其次階段式推論，需要時才呼叫語言模型，
// 全部失敗時走保底流程；只要輸入非空就必定回傳一個結果
func (e *Engine) ResolveText(ctx context.Context, text string, detectedClasses []string) *common.ResolvedIngredient {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	patternMatch := e.patterns.Match(text)
	if patternMatch != nil && patternMatch.Confidence >= patternAcceptThreshold {
		common.LogDebug("規則比對命中",
			zap.String("ingredient", patternMatch.Ingredient),
			zap.Float64("confidence", patternMatch.Confidence))
		return &common.ResolvedIngredient{
			Name:       patternMatch.Ingredient,
			Confidence: patternMatch.Confidence,
			Source:     common.SourcePatternMatching,
		}
	}

	keywords := ExtractKeywords(text)
	if webMatch := e.search.Resolve(ctx, keywords); webMatch != nil && webMatch.Confidence >= webSearchAcceptThreshold {
		common.LogDebug("網頁搜尋命中",
			zap.String("ingredient", webMatch.Ingredient),
			zap.Float64("confidence", webMatch.Confidence))
		return &common.ResolvedIngredient{
			Name:       webMatch.Ingredient,
			Confidence: webMatch.Confidence,
			Source:     common.SourceWebSearch,
		}
	}

	outcome := e.InferStages(text)
	if outcome.Result != nil {
		common.LogDebug("階段式推論定案",
			zap.String("stage", string(outcome.Stage)),
			zap.String("ingredient", outcome.Result.Name))
		return outcome.Result
	}

	if e.llmEnabled && e.llm != nil {
		answer, err := e.llm.ClassifyFood(ctx, e.buildLLMContext(text), detectedClasses)
		if err != nil {
			common.LogWarn("語言模型推論失敗", zap.Error(err))
		} else if name := ParseModelAnswer(answer); name != "" {
			return &common.ResolvedIngredient{
				Name:       name,
				Confidence: confidenceLLM,
				Source:     common.SourceLLM,
			}
		}
	}

	// 低信心的規則比對結果也比保底值可靠
	if patternMatch != nil && patternMatch.Confidence >= patternReuseThreshold {
		return &common.ResolvedIngredient{
			Name:       patternMatch.Ingredient,
			Confidence: patternMatch.Confidence,
			Source:     common.SourcePatternMatching,
		}
	}

	return &common.ResolvedIngredient{
		Name:       e.Fallback(text),
		Confidence: confidenceFallback,
		Source:     common.SourceFallback,
	}
}
