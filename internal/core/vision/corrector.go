package vision

import (
	"strings"

	"go.uber.org/zap"

	"fridge-manager/internal/pkg/common"
)

// CorrectionRule 單條視覺補正規則
// Applies 判斷規則是否適用，Class 為改判後的類別，
// 信心值調整為 min(MaxConfidence, 原信心值+Boost)
type CorrectionRule struct {
	Name          string
	Applies       func(d common.Detection, primaryColor string) bool
	Class         string
	MaxConfidence float64
	Boost         float64
}

// 顏色判斷輔助函式，primaryColor 為偵測服務回報的韓文色名

func isAvocadoColor(color string) bool {
	if color == "" {
		return false
	}
	for _, token := range []string{"초록", "황록", "녹색", "어두운", "갈색"} {
		if strings.Contains(color, token) {
			return true
		}
	}
	return false
}

func isOrangeColor(color string) bool {
	return color != "" && strings.Contains(color, "주황")
}

func isKiwiColor(color string) bool {
	if color == "" {
		return false
	}
	return strings.Contains(color, "갈색") || strings.Contains(color, "황록")
}

// aspectWithin 長寬比在指定範圍內，未知尺寸時不成立
func aspectWithin(d common.Detection, min, max float64) bool {
	ratio := d.AspectRatio()
	return ratio > 0 && ratio >= min && ratio <= max
}

// aspectOutside 長寬比偏離典型圓形，未知尺寸時不成立
func aspectOutside(d common.Detection, low, high float64) bool {
	ratio := d.AspectRatio()
	return ratio > 0 && (ratio > high || ratio < low)
}

// DefaultCorrectionRules 內建補正規則，順序即優先順序且互斥，
// 第一條成立的規則生效後不再評估其餘規則
var DefaultCorrectionRules = []CorrectionRule{
	{
		// 酪梨常被誤判成蘋果：綠褐色系、非典型外型或低信心的 apple 都改判
		Name: "apple_to_avocado",
		Applies: func(d common.Detection, color string) bool {
			return d.Class == "apple" &&
				(isAvocadoColor(color) || aspectOutside(d, 0.6, 0.8) || d.Confidence < 0.7)
		},
		Class:         "avocado",
		MaxConfidence: 0.9,
		Boost:         0.3,
	},
	{
		Name: "apple_to_peach",
		Applies: func(d common.Detection, color string) bool {
			return d.Class == "apple" && isOrangeColor(color) &&
				aspectWithin(d, 0.7, 1.3) && d.Confidence > 0.6
		},
		Class:         "peach",
		MaxConfidence: 0.9,
		Boost:         0.2,
	},
	{
		Name: "to_kiwi",
		Applies: func(d common.Detection, color string) bool {
			return (d.Class == "potato" || d.Class == "orange") && isKiwiColor(color)
		},
		Class:         "kiwi",
		MaxConfidence: 0.85,
		Boost:         0.15,
	},
	{
		Name: "onion_to_peach",
		Applies: func(d common.Detection, color string) bool {
			return d.Class == "onion" && isOrangeColor(color)
		},
		Class:         "peach",
		MaxConfidence: 0.9,
		Boost:         0.2,
	},
	{
		// 其他類別呈橘色且外型接近圓形時一律視為桃子
		Name: "orange_round_to_peach",
		Applies: func(d common.Detection, color string) bool {
			return isOrangeColor(color) && aspectWithin(d, 0.7, 1.3) && d.Confidence > 0.6
		},
		Class:         "peach",
		MaxConfidence: 0.9,
		Boost:         0.2,
	},
}

// Corrector 依顏色與外型修正偵測服務常見的誤判
type Corrector struct {
	rules []CorrectionRule
}

// NewCorrector 建立修正器，rules 為 nil 時使用內建規則
func NewCorrector(rules []CorrectionRule) *Corrector {
	if rules == nil {
		rules = DefaultCorrectionRules
	}
	return &Corrector{rules: rules}
}

// Correct 對單筆偵測結果套用第一條成立的規則
// 改判時記錄原類別並標記 Corrected，未命中任何規則時原樣回傳
func (c *Corrector) Correct(d common.Detection, color *common.ColorAnalysis) common.Detection {
	primaryColor := ""
	if color != nil {
		primaryColor = color.PrimaryColor
	}

	for _, rule := range c.rules {
		if !rule.Applies(d, primaryColor) {
			continue
		}

		corrected := d
		corrected.OriginalClass = d.Class
		corrected.Class = rule.Class
		corrected.Corrected = true
		corrected.Confidence = d.Confidence + rule.Boost
		if corrected.Confidence > rule.MaxConfidence {
			corrected.Confidence = rule.MaxConfidence
		}

		common.LogDebug("視覺補正套用",
			zap.String("rule", rule.Name),
			zap.String("from", d.Class),
			zap.String("to", rule.Class),
			zap.Float64("confidence", corrected.Confidence))
		return corrected
	}

	return d
}

// CorrectAll 逐筆套用修正規則，回傳修正後的清單與改判筆數
func (c *Corrector) CorrectAll(detections []common.Detection, color *common.ColorAnalysis) ([]common.Detection, int) {
	out := make([]common.Detection, 0, len(detections))
	correctedCount := 0
	for _, d := range detections {
		corrected := c.Correct(d, color)
		if corrected.Corrected && !d.Corrected {
			correctedCount++
		}
		out = append(out, corrected)
	}
	return out, correctedCount
}
