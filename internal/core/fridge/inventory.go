package fridge

import (
	"strings"

	"go.uber.org/zap"

	"fridge-manager/internal/pkg/common"
)

// 合併時缺漏欄位的預設值
const (
	defaultQuantity   = 1
	defaultConfidence = 0.8
	defaultSource     = "analysis"
)

// Inventory 單一使用者的冰箱庫存
// 非並行安全，所有寫入都必須經過 Manager 的單一工作者序列化
type Inventory struct {
	items []common.InventoryItem
}

// NewInventory 以既有清單建立庫存，items 為 nil 時建立空庫存
func NewInventory(items []common.InventoryItem) *Inventory {
	copied := make([]common.InventoryItem, len(items))
	copy(copied, items)
	return &Inventory{items: copied}
}

// Items 回傳庫存清單的複本
func (inv *Inventory) Items() []common.InventoryItem {
	out := make([]common.InventoryItem, len(inv.items))
	copy(out, inv.items)
	return out
}

// NormalizeName 食材名稱的比對鍵：去除前後空白並小寫化
// 顯示名稱不受影響，庫存內保留首次加入時的原形
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// findByName 依標準化名稱找項目索引，找不到回傳 -1
func (inv *Inventory) findByName(name string) int {
	key := NormalizeName(name)
	for i := range inv.items {
		if NormalizeName(inv.items[i].Name) == key {
			return i
		}
	}
	return -1
}

// findByID 依 ID 找項目索引，找不到回傳 -1
func (inv *Inventory) findByID(id int) int {
	for i := range inv.items {
		if inv.items[i].ID == id {
			return i
		}
	}
	return -1
}

// maxID 現存項目的最大 ID，空庫存為 0
func (inv *Inventory) maxID() int {
	max := 0
	for i := range inv.items {
		if inv.items[i].ID > max {
			max = inv.items[i].ID
		}
	}
	return max
}

// Merge 將一批分析貢獻合併進庫存
// 同名（不分大小寫）項目累加數量、取最高信心值並更新來源；
// 新項目配發遞增 ID。名稱空白的貢獻記警告後跳過。
// 回傳新增與併入既有項目的筆數。
func (inv *Inventory) Merge(contributions []common.Contribution) (added, merged int) {
	nextID := inv.maxID()

	for _, c := range contributions {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			common.LogWarn("略過無名稱的食材貢獻", zap.String("source", c.Source))
			continue
		}

		if idx := inv.findByName(name); idx >= 0 {
			item := &inv.items[idx]
			quantity := c.Quantity
			if quantity <= 0 {
				quantity = defaultQuantity
			}
			item.Quantity += quantity
			if c.Confidence > item.Confidence {
				item.Confidence = c.Confidence
			}
			if c.Source != "" {
				item.Source = c.Source
			}
			merged++
			continue
		}

		nextID++
		item := common.InventoryItem{
			ID:         nextID,
			Name:       name,
			Quantity:   c.Quantity,
			Confidence: c.Confidence,
			Source:     c.Source,
		}
		if item.Quantity <= 0 {
			item.Quantity = defaultQuantity
		}
		if item.Confidence == 0 {
			item.Confidence = defaultConfidence
		}
		if item.Source == "" {
			item.Source = defaultSource
		}
		inv.items = append(inv.items, item)
		added++
	}

	return added, merged
}

// AddManual 手動加入食材，名稱與數量必須有效
// 同名項目只累加數量，新項目信心值固定為 1.0、來源為 manual
func (inv *Inventory) AddManual(name string, quantity int) (common.InventoryItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return common.InventoryItem{}, common.NewValidationError("食材名稱不可為空")
	}
	if quantity < 1 {
		return common.InventoryItem{}, common.NewValidationError("數量必須至少為 1")
	}

	if idx := inv.findByName(name); idx >= 0 {
		inv.items[idx].Quantity += quantity
		return inv.items[idx], nil
	}

	item := common.InventoryItem{
		ID:         inv.maxID() + 1,
		Name:       name,
		Quantity:   quantity,
		Confidence: 1.0,
		Source:     string(common.SourceManual),
	}
	inv.items = append(inv.items, item)
	return item, nil
}

// SetQuantity 調整指定項目的數量，0 表示移除該項目
func (inv *Inventory) SetQuantity(id, quantity int) error {
	if quantity < 0 {
		return common.NewValidationError("數量不可為負數")
	}

	idx := inv.findByID(id)
	if idx < 0 {
		return common.ErrItemNotFound
	}

	if quantity == 0 {
		inv.items = append(inv.items[:idx], inv.items[idx+1:]...)
		return nil
	}

	inv.items[idx].Quantity = quantity
	return nil
}

// Remove 移除指定項目
func (inv *Inventory) Remove(id int) error {
	idx := inv.findByID(id)
	if idx < 0 {
		return common.ErrItemNotFound
	}
	inv.items = append(inv.items[:idx], inv.items[idx+1:]...)
	return nil
}

// Snapshot 產生目前庫存的快照，totalCount 為總數量、totalTypes 為種類數
func (inv *Inventory) Snapshot(userID string) *common.FridgeSnapshot {
	items := inv.Items()
	totalCount := 0
	for _, item := range items {
		totalCount += item.Quantity
	}
	return &common.FridgeSnapshot{
		UserID:      userID,
		Ingredients: items,
		TotalCount:  totalCount,
		TotalTypes:  len(items),
	}
}
