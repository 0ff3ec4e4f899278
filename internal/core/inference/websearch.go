package inference

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"fridge-manager/internal/pkg/common"
)

// SearchFunc 為注入的網頁搜尋函式，回傳搜尋結果或錯誤
type SearchFunc func(ctx context.Context, query string) ([]common.SearchResult, error)

// WebSearchMatch 為網頁搜尋推論的結果
type WebSearchMatch struct {
	Ingredient      string
	Confidence      float64
	MatchedKeywords []string
	Query           string
	TotalResults    int
}

// DefaultIngredientVocabulary 網頁搜尋比對用的封閉食材詞彙表
// 搜尋結果只會被解析成這份表內的名稱，不會產生表外的食材
var DefaultIngredientVocabulary = []string{
	// 蔬菜類
	"오이", "당근", "무", "배추", "상추", "양배추", "브로콜리", "시금치", "고구마", "감자",
	"양파", "마늘", "생강", "대파", "쪽파", "부추", "고추", "파프리카", "토마토", "가지",

	// 水果類
	"사과", "배", "바나나", "오렌지", "포도", "딸기", "수박", "참외", "멜론", "복숭아",
	"자두", "키위", "망고", "파인애플", "레몬", "라임", "체리", "블루베리",

	// 肉類與魚類
	"쇠고기", "돼지고기", "닭고기", "삼겹살", "닭가슴살", "갈비", "등심", "안심",
	"연어", "고등어", "참치", "명태", "조기", "갈치", "삼치", "새우", "오징어", "문어",

	// 乳製品
	"우유", "요구르트", "치즈", "버터", "크림", "아이스크림",

	// 飲料類
	"오렌지주스", "사과주스", "포도주스", "토마토주스", "두유", "아몬드밀크", "코코넛밀크",

	// 穀物與麵類
	"쌀", "현미", "보리", "밀", "라면", "우동", "파스타", "스파게티", "국수",

	// 調味料與醬料
	"간장", "고추장", "된장", "마요네즈", "케챱", "식초", "설탕", "소금", "후추",

	// 其他
	"달걀", "계란", "두부", "김치", "김", "미역", "다시마",
}

// WebSearchResolver 以外部搜尋結果驗證關鍵字並對應到已知食材
type WebSearchResolver struct {
	search     SearchFunc
	vocabulary []string
}

// NewWebSearchResolver 建立搜尋推論器
// search 為 nil 表示停用此階段；vocabulary 為 nil 時使用內建詞彙表
func NewWebSearchResolver(search SearchFunc, vocabulary []string) *WebSearchResolver {
	if vocabulary == nil {
		vocabulary = DefaultIngredientVocabulary
	}
	return &WebSearchResolver{search: search, vocabulary: vocabulary}
}

// Resolve 以前三個關鍵字組成查詢並比對搜尋結果
// 搜尋失敗或無命中時回傳 nil，錯誤一律吸收不往外拋
func (r *WebSearchResolver) Resolve(ctx context.Context, keywords []string) *WebSearchMatch {
	if r.search == nil || len(keywords) == 0 {
		return nil
	}

	terms := keywords
	if len(terms) > 3 {
		terms = terms[:3]
	}
	query := strings.Join(terms, " ") + " 식재료 음식 재료"

	results, err := r.search(ctx, query)
	if err != nil {
		common.LogWarn("網頁搜尋失敗",
			zap.String("query", query),
			zap.Error(err))
		return nil
	}
	if len(results) == 0 {
		return nil
	}

	var parts []string
	for _, result := range results {
		parts = append(parts, result.Title+" "+result.Snippet)
	}
	allText := strings.ToLower(strings.Join(parts, " "))

	var best *WebSearchMatch
	for _, ingredient := range r.vocabulary {
		if !strings.Contains(allText, ingredient) {
			continue
		}
		score := matchScore(ingredient, keywords)
		if score <= 0.3 {
			continue
		}

		confidence := 0.7 + score*0.25
		if confidence > 0.95 {
			confidence = 0.95
		}
		if best == nil || confidence > best.Confidence {
			best = &WebSearchMatch{
				Ingredient:      ingredient,
				Confidence:      confidence,
				MatchedKeywords: keywords,
				Query:           query,
				TotalResults:    len(results),
			}
		}
	}

	return best
}

// matchScore 計算食材名稱與關鍵字的字元重疊度，取所有關鍵字中的最高分
func matchScore(ingredient string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}

	ingredientRunes := []rune(ingredient)
	charSet := make(map[rune]bool, len(ingredientRunes))
	for _, r := range ingredientRunes {
		charSet[r] = true
	}

	var best float64
	for _, keyword := range keywords {
		keywordRunes := []rune(keyword)
		matchCount := 0
		for _, r := range keywordRunes {
			if charSet[r] {
				matchCount++
			}
		}

		denom := len(keywordRunes)
		if len(ingredientRunes) > denom {
			denom = len(ingredientRunes)
		}
		if denom == 0 {
			continue
		}
		score := float64(matchCount) / float64(denom)
		if score > best {
			best = score
		}
	}
	return best
}
