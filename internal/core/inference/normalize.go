package inference

import (
	"regexp"
	"strings"
	"unicode"
)

// 關鍵字上限，推論各階段只取前面的候選
const maxKeywords = 10

var (
	koreanWordPattern = regexp.MustCompile(`[가-힣]{2,}`)

	// 韓文+數字的有意義片段，例如「매일두유99.9%」「매일두유1000ml」
	numberTextPatterns = []*regexp.Regexp{
		regexp.MustCompile(`[가-힣]+\d+\.?\d*%`),
		regexp.MustCompile(`[가-힣]+\d+\.?\d*[가-힣]*`),
		regexp.MustCompile(`[가-힣]+\s*\d+\.?\d*`),
	}
)

// isWordRune 判斷是否保留該字元（字母、數字、底線）
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// NormalizeText 移除雜訊字元並折疊空白，保留原文字形供顯示使用
func NormalizeText(text string) string {
	if text == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if isWordRune(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// normalizeForMatching 供比對使用：去除全部空白與雜訊字元並小寫化
// 韓文等非拉丁文字不受小寫化影響
func normalizeForMatching(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if isWordRune(r) {
			b.WriteRune(r)
		}
	}
	return strings.ToLower(b.String())
}

// ExtractKeywords 從 OCR 文字切出候選關鍵字
// 刻意採用 2~4 字的連續子字串（n-gram），不是斷詞器；同樣輸入必須
// 產生同樣的結果，依首次出現順序最多保留 10 個
func ExtractKeywords(text string) []string {
	if text == "" {
		return []string{}
	}

	clean := []rune(normalizeForMatching(text))
	keywords := make([]string, 0, maxKeywords)
	seen := make(map[string]bool)

	for size := 2; size <= 4; size++ {
		for i := 0; i+size <= len(clean); i++ {
			word := string(clean[i : i+size])
			if !seen[word] {
				seen[word] = true
				keywords = append(keywords, word)
			}
		}
	}

	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}
	return keywords
}

// KoreanWords 回傳文字中長度 2 以上的韓文單詞
func KoreanWords(text string) []string {
	return koreanWordPattern.FindAllString(text, -1)
}

// FirstKoreanWord 回傳第一個長度 2 以上的韓文單詞，找不到時回傳空字串
func FirstKoreanWord(text string) string {
	words := KoreanWords(text)
	if len(words) == 0 {
		return ""
	}
	return words[0]
}

// MeaningfulTextWithNumbers 擷取含數字的產品名稱片段（例如「매일두유99.9%」）
// 同一個模式有多個匹配時取最長者，長度不足 4 字則視為無意義
func MeaningfulTextWithNumbers(text string) string {
	for _, pattern := range numberTextPatterns {
		matches := pattern.FindAllString(text, -1)
		if len(matches) == 0 {
			continue
		}
		longest := matches[0]
		for _, m := range matches[1:] {
			if len([]rune(m)) > len([]rune(longest)) {
				longest = m
			}
		}
		if len([]rune(longest)) >= 4 {
			return longest
		}
	}
	return ""
}

// SummarizeText 將 OCR 文字濃縮為 2~3 個關鍵字，供記錄與查詢用
func SummarizeText(text string) string {
	if text == "" {
		return ""
	}

	keywords := ExtractKeywords(text)
	meaningful := make([]string, 0, 3)
	for _, kw := range keywords {
		if len([]rune(kw)) >= 2 {
			meaningful = append(meaningful, kw)
		}
		if len(meaningful) == 3 {
			break
		}
	}

	if len(meaningful) > 0 {
		return strings.Join(meaningful, " ")
	}
	runes := []rune(text)
	if len(runes) > 10 {
		runes = runes[:10]
	}
	return string(runes)
}
