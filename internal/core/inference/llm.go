package inference

import (
	"context"
	"regexp"
	"strings"
)

// LLMClassifier 為外部語言模型分類器，由 ai 套件實作
type LLMClassifier interface {
	// ClassifyFood 依 OCR 文字與已偵測的類別推論食品名稱，回傳模型原始回覆
	ClassifyFood(ctx context.Context, text string, detectedClasses []string) (string, error)
}

// 模型回覆常見的冗餘前綴，剝除後才是食品名稱
var answerPrefixes = []string{
	"추론된 식품:", "식품명:", "제품명:", "상품명:", "식재료:",
	"분석 결과:", "결과:", "답변:", "식품:",
	"추론 결과:", "판단 결과:", "**", "*",
}

// 括號內為數字或百分比時屬於產品名稱的一部分，例如「매일두유(99.9%)」
var numericParenPattern = regexp.MustCompile(`\([0-9.%]+\)`)

// ParseModelAnswer 從模型回覆中萃取食品名稱
// 只取第一行，剝除前綴與 markdown 標記；解析不出名稱時回傳空字串，
// 由呼叫端決定後續的 fallback
func ParseModelAnswer(answer string) string {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return ""
	}

	firstLine := answer
	if idx := strings.IndexByte(answer, '\n'); idx >= 0 {
		firstLine = answer[:idx]
	}
	firstLine = strings.TrimSpace(firstLine)

	for _, prefix := range answerPrefixes {
		if strings.HasPrefix(firstLine, prefix) {
			firstLine = strings.TrimSpace(firstLine[len(prefix):])
		}
	}

	firstLine = strings.ReplaceAll(firstLine, "**", "")
	firstLine = strings.ReplaceAll(firstLine, "*", "")

	// 括號內的補充說明移除，但數字型的規格資訊保留
	if strings.Contains(firstLine, "(") && strings.Contains(firstLine, ")") {
		if !numericParenPattern.MatchString(firstLine) {
			firstLine = strings.TrimSpace(strings.SplitN(firstLine, "(", 2)[0])
		}
	}

	return strings.TrimSpace(firstLine)
}
