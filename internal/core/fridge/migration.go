package fridge

import (
	"encoding/json"

	"go.uber.org/zap"

	"fridge-manager/internal/pkg/common"
)

// 舊版資料轉換的預設值
const (
	legacySource     = "v3_migration"
	legacyTextSource = "v3_text_migration"

	legacyConfidence     = 0.8
	legacyTextConfidence = 0.7

	legacyUnknownName = "알 수 없는 식재료"
)

// legacyItem 舊版項目的彈性欄位形式
// 不同版本用過不同的欄位名稱，依序取第一個非空值
type legacyItem struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Ingr     string `json:"ingredient"`
	Food     string `json:"food"`
	FoodName string `json:"foodName"`

	Quantity int `json:"quantity"`
	Count    int `json:"count"`
	Amount   int `json:"amount"`

	Confidence float64 `json:"confidence"`
	Certainty  float64 `json:"certainty"`

	Source string `json:"source"`
}

func (l legacyItem) resolvedName() string {
	for _, name := range []string{l.Name, l.Ingr, l.Food, l.FoodName} {
		if name != "" {
			return name
		}
	}
	return legacyUnknownName
}

func (l legacyItem) resolvedQuantity() int {
	for _, q := range []int{l.Quantity, l.Count, l.Amount} {
		if q > 0 {
			return q
		}
	}
	return defaultQuantity
}

func (l legacyItem) resolvedConfidence() float64 {
	if l.Confidence > 0 {
		return l.Confidence
	}
	if l.Certainty > 0 {
		return l.Certainty
	}
	return legacyConfidence
}

// legacyPayload 舊版匯入資料的外層形式，項目清單可能掛在不同屬性下
type legacyPayload struct {
	Ingredients []json.RawMessage `json:"ingredients"`
	Data        []json.RawMessage `json:"data"`
	Items       []json.RawMessage `json:"items"`
}

// ConvertLegacyData 將舊版匯出的 JSON 轉換為目前的庫存項目格式
// 接受純陣列或 {ingredients|data|items: [...]} 包裝；
// 陣列元素可以是物件或純字串，字串視為只有名稱的項目。
// ID 一律重新配發，避免舊資料的重複或時間戳 ID 混進庫存。
func ConvertLegacyData(raw []byte) ([]common.InventoryItem, error) {
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		var payload legacyPayload
		if err2 := json.Unmarshal(raw, &payload); err2 != nil {
			return nil, common.NewValidationError("無法解析的舊版資料格式")
		}
		switch {
		case len(payload.Ingredients) > 0:
			entries = payload.Ingredients
		case len(payload.Data) > 0:
			entries = payload.Data
		case len(payload.Items) > 0:
			entries = payload.Items
		default:
			return nil, common.NewValidationError("舊版資料中找不到食材清單")
		}
	}

	items := make([]common.InventoryItem, 0, len(entries))
	for i, entry := range entries {
		var text string
		if err := json.Unmarshal(entry, &text); err == nil {
			if text == "" {
				continue
			}
			items = append(items, common.InventoryItem{
				ID:         i + 1,
				Name:       text,
				Quantity:   defaultQuantity,
				Confidence: legacyTextConfidence,
				Source:     legacyTextSource,
			})
			continue
		}

		var item legacyItem
		if err := json.Unmarshal(entry, &item); err != nil {
			common.LogWarn("略過無法解析的舊版項目", zap.Int("index", i), zap.Error(err))
			continue
		}

		source := item.Source
		if source == "" {
			source = legacySource
		}
		items = append(items, common.InventoryItem{
			ID:         i + 1,
			Name:       item.resolvedName(),
			Quantity:   item.resolvedQuantity(),
			Confidence: item.resolvedConfidence(),
			Source:     source,
		})
	}

	return items, nil
}

// LegacyContributions 將轉換後的舊版項目改寫成可合併的貢獻
func LegacyContributions(items []common.InventoryItem) []common.Contribution {
	out := make([]common.Contribution, 0, len(items))
	for _, item := range items {
		out = append(out, common.Contribution{
			Name:       item.Name,
			Quantity:   item.Quantity,
			Confidence: item.Confidence,
			Source:     item.Source,
		})
	}
	return out
}
