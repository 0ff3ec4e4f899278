package inference

import "strings"

// PatternEntry 定義一條食材比對規則
// RequiresVolume 為真時，文字必須帶有容量單位（ml）才能命中
type PatternEntry struct {
	Keywords       []string
	RequiresVolume bool
	Result         string
	Confidence     float64
}

// PatternMatch 為規則比對的結果
type PatternMatch struct {
	Ingredient      string
	Confidence      float64
	MatchedKeywords []string
	HasVolume       bool
}

// DefaultPatternTable 內建的食材比對規則，依類別排列
// 表的順序即優先順序，前面的規則先命中先贏
var DefaultPatternTable = []PatternEntry{
	// 飲料類（需有 ml）
	{Keywords: []string{"오렌지농축과즙", "오렌지과즙", "오렌지농축"}, RequiresVolume: true, Result: "오렌지주스", Confidence: 0.95},
	{Keywords: []string{"아몬드추출액", "아몬드우유", "아몬드밀크"}, RequiresVolume: true, Result: "아몬드밀크", Confidence: 0.95},
	{Keywords: []string{"원액두유", "분리대두단백", "대두농축액"}, RequiresVolume: true, Result: "두유", Confidence: 0.95},
	{Keywords: []string{"우유", "전유", "저지방우유"}, RequiresVolume: true, Result: "우유", Confidence: 0.98},
	{Keywords: []string{"사과과즙", "사과농축과즙"}, RequiresVolume: true, Result: "사과주스", Confidence: 0.95},
	{Keywords: []string{"포도과즙", "포도농축과즙"}, RequiresVolume: true, Result: "포도주스", Confidence: 0.95},
	{Keywords: []string{"토마토과즙", "토마토농축액"}, RequiresVolume: true, Result: "토마토주스", Confidence: 0.95},

	// 蔬菜類
	{Keywords: []string{"백오이", "백색오이"}, Result: "오이", Confidence: 0.90},
	{Keywords: []string{"무우", "무"}, Result: "무", Confidence: 0.95},
	{Keywords: []string{"당근", "홍당무"}, Result: "당근", Confidence: 0.95},
	{Keywords: []string{"양배추", "캐비지"}, Result: "양배추", Confidence: 0.90},
	{Keywords: []string{"상추", "청상추"}, Result: "상추", Confidence: 0.90},
	{Keywords: []string{"배추", "백배추", "절임배추"}, Result: "배추", Confidence: 0.95},

	// 水果類
	{Keywords: []string{"사과", "홍옥사과", "부사"}, Result: "사과", Confidence: 0.95},
	{Keywords: []string{"배", "신고배"}, Result: "배", Confidence: 0.95},
	{Keywords: []string{"바나나"}, Result: "바나나", Confidence: 0.98},
	{Keywords: []string{"오렌지", "네이블오렌지"}, Result: "오렌지", Confidence: 0.95},

	// 肉類與魚類
	{Keywords: []string{"삼겹살", "돼지삼겹살"}, Result: "삼겹살", Confidence: 0.95},
	{Keywords: []string{"닭가슴살", "닭고기"}, Result: "닭가슴살", Confidence: 0.95},
	{Keywords: []string{"쇠고기", "한우"}, Result: "쇠고기", Confidence: 0.95},
	{Keywords: []string{"연어", "훈제연어"}, Result: "연어", Confidence: 0.95},

	// 乳製品
	{Keywords: []string{"요구르트", "요거트", "플레인요구르트"}, Result: "요구르트", Confidence: 0.95},
	{Keywords: []string{"치즈", "슬라이스치즈", "모짜렐라"}, Result: "치즈", Confidence: 0.95},
	{Keywords: []string{"버터", "무염버터"}, Result: "버터", Confidence: 0.95},

	// 穀物與麵類
	{Keywords: []string{"쌀", "백미", "현미"}, Result: "쌀", Confidence: 0.98},
	{Keywords: []string{"라면", "즉석라면"}, Result: "라면", Confidence: 0.95},
	{Keywords: []string{"스파게티", "파스타"}, Result: "파스타", Confidence: 0.95},

	// 調味料與醬料
	{Keywords: []string{"간장", "양조간장"}, Result: "간장", Confidence: 0.95},
	{Keywords: []string{"고추장", "태양초고추장"}, Result: "고추장", Confidence: 0.95},
	{Keywords: []string{"마요네즈", "마요"}, Result: "마요네즈", Confidence: 0.95},
	{Keywords: []string{"케첩", "토마토케첩"}, Result: "케챱", Confidence: 0.95},
}

// PatternMatcher 以唯讀規則表進行食材比對
type PatternMatcher struct {
	entries []PatternEntry
}

// NewPatternMatcher 建立比對器，entries 為 nil 時使用內建規則表
func NewPatternMatcher(entries []PatternEntry) *PatternMatcher {
	if entries == nil {
		entries = DefaultPatternTable
	}
	return &PatternMatcher{entries: entries}
}

// HasVolumeUnit 判斷文字是否帶有容量單位
func HasVolumeUnit(text string) bool {
	normalized := normalizeForMatching(text)
	return strings.Contains(normalized, "ml") || strings.Contains(normalized, "밀리리터")
}

// Match 依規則表順序比對文字，回傳第一個命中的結果；無命中回傳 nil
// 純函式，相同輸入必得相同結果
func (m *PatternMatcher) Match(text string) *PatternMatch {
	if text == "" {
		return nil
	}

	normalized := normalizeForMatching(text)
	hasVolume := strings.Contains(normalized, "ml") || strings.Contains(normalized, "밀리리터")

	for _, entry := range m.entries {
		var matched []string
		for _, keyword := range entry.Keywords {
			if strings.Contains(normalized, strings.ToLower(keyword)) {
				matched = append(matched, keyword)
			}
		}
		if len(matched) == 0 {
			continue
		}
		if entry.RequiresVolume && !hasVolume {
			continue
		}

		return &PatternMatch{
			Ingredient:      entry.Result,
			Confidence:      entry.Confidence,
			MatchedKeywords: matched,
			HasVolume:       hasVolume,
		}
	}

	return nil
}
