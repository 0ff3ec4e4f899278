package fridge

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"fridge-manager/internal/infrastructure/config"
	"fridge-manager/internal/pkg/common"
)

// mutation 對單一使用者庫存的一次修改，由工作者載入快照後執行
type mutation func(inv *Inventory) (interface{}, error)

// request 隊列中的一筆庫存修改請求
type request struct {
	ctx    context.Context
	userID string
	apply  mutation
	result chan result
}

type result struct {
	value    interface{}
	snapshot *common.FridgeSnapshot
	err      error
}

// Status 合併隊列的狀態
type Status struct {
	QueueLength    int `json:"queue_length"`
	ProcessedCount int `json:"processed_count"`
	MaxQueueSize   int `json:"max_queue_size"`
}

// Manager 冰箱庫存管理器
// 所有寫入經由單一工作者序列化執行，同一使用者的合併不會交錯，
// 讀取（Snapshot）直接走儲存層不進隊列
type Manager struct {
	config    *config.Config
	store     SnapshotStore
	queue     chan *request
	done      chan struct{}
	processed int64
}

// NewManager 建立庫存管理器並啟動合併工作者
func NewManager(cfg *config.Config, store SnapshotStore) *Manager {
	m := &Manager{
		config: cfg,
		store:  store,
		queue:  make(chan *request, cfg.Fridge.QueueSize),
		done:   make(chan struct{}),
	}
	go m.worker()
	return m
}

// worker 唯一的寫入工作者：載入快照、套用修改、寫回
func (m *Manager) worker() {
	for {
		select {
		case req := <-m.queue:
			if req == nil {
				return
			}
			req.result <- m.process(req)
			atomic.AddInt64(&m.processed, 1)
		case <-m.done:
			return
		}
	}
}

func (m *Manager) process(req *request) result {
	if err := req.ctx.Err(); err != nil {
		return result{err: err}
	}

	inv, err := m.loadInventory(req.ctx, req.userID)
	if err != nil {
		return result{err: err}
	}

	value, err := req.apply(inv)
	if err != nil {
		return result{err: err}
	}

	snapshot := inv.Snapshot(req.userID)
	snapshot.SavedAt = time.Now().Format(time.RFC3339)
	if err := m.store.Save(req.ctx, snapshot); err != nil {
		return result{err: err}
	}

	return result{value: value, snapshot: snapshot}
}

func (m *Manager) loadInventory(ctx context.Context, userID string) (*Inventory, error) {
	snapshot, err := m.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return NewInventory(nil), nil
	}
	return NewInventory(snapshot.Ingredients), nil
}

// do 將修改排入隊列並等待結果
func (m *Manager) do(ctx context.Context, userID string, apply mutation) (interface{}, *common.FridgeSnapshot, error) {
	if len(m.queue) >= m.config.Fridge.QueueSize {
		return nil, nil, fmt.Errorf("merge queue is full")
	}

	req := &request{
		ctx:    ctx,
		userID: userID,
		apply:  apply,
		result: make(chan result, 1),
	}

	select {
	case m.queue <- req:
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	case <-m.done:
		return nil, nil, fmt.Errorf("fridge manager is closed")
	}

	select {
	case res := <-req.result:
		return res.value, res.snapshot, res.err
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	case <-m.done:
		// 工作者可能在關閉前已送出結果
		select {
		case res := <-req.result:
			return res.value, res.snapshot, res.err
		default:
			return nil, nil, fmt.Errorf("fridge manager is closed")
		}
	}
}

// MergeResult 合併操作的統計
type MergeResult struct {
	Added  int `json:"added"`
	Merged int `json:"merged"`
}

// MergeContributions 將一批分析貢獻合併進使用者的冰箱
func (m *Manager) MergeContributions(ctx context.Context, userID string, contributions []common.Contribution) (*common.FridgeSnapshot, *MergeResult, error) {
	value, snapshot, err := m.do(ctx, userID, func(inv *Inventory) (interface{}, error) {
		added, merged := inv.Merge(contributions)
		return &MergeResult{Added: added, Merged: merged}, nil
	})
	if err != nil {
		return nil, nil, err
	}

	stats := value.(*MergeResult)
	common.LogInfo("冰箱合併完成",
		zap.String("user_id", userID),
		zap.Int("added", stats.Added),
		zap.Int("merged", stats.Merged))
	return snapshot, stats, nil
}

// AddItem 手動加入食材
func (m *Manager) AddItem(ctx context.Context, userID, name string, quantity int) (*common.FridgeSnapshot, *common.InventoryItem, error) {
	value, snapshot, err := m.do(ctx, userID, func(inv *Inventory) (interface{}, error) {
		item, err := inv.AddManual(name, quantity)
		if err != nil {
			return nil, err
		}
		return &item, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return snapshot, value.(*common.InventoryItem), nil
}

// SetQuantity 調整食材數量，0 表示移除
func (m *Manager) SetQuantity(ctx context.Context, userID string, id, quantity int) (*common.FridgeSnapshot, error) {
	_, snapshot, err := m.do(ctx, userID, func(inv *Inventory) (interface{}, error) {
		return nil, inv.SetQuantity(id, quantity)
	})
	return snapshot, err
}

// RemoveItem 移除食材
func (m *Manager) RemoveItem(ctx context.Context, userID string, id int) (*common.FridgeSnapshot, error) {
	_, snapshot, err := m.do(ctx, userID, func(inv *Inventory) (interface{}, error) {
		return nil, inv.Remove(id)
	})
	return snapshot, err
}

// ImportLegacy 匯入舊版資料並與現有庫存合併
func (m *Manager) ImportLegacy(ctx context.Context, userID string, raw []byte) (*common.FridgeSnapshot, *MergeResult, error) {
	converted, err := ConvertLegacyData(raw)
	if err != nil {
		return nil, nil, err
	}

	value, snapshot, err := m.do(ctx, userID, func(inv *Inventory) (interface{}, error) {
		added, merged := inv.Merge(LegacyContributions(converted))
		return &MergeResult{Added: added, Merged: merged}, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return snapshot, value.(*MergeResult), nil
}

// Snapshot 讀取使用者目前的冰箱快照，查無資料時回傳空快照
func (m *Manager) Snapshot(ctx context.Context, userID string) (*common.FridgeSnapshot, error) {
	snapshot, err := m.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return &common.FridgeSnapshot{
			UserID:      userID,
			Ingredients: []common.InventoryItem{},
		}, nil
	}
	return snapshot, nil
}

// QueueStatus 回傳合併隊列狀態
func (m *Manager) QueueStatus() *Status {
	return &Status{
		QueueLength:    len(m.queue),
		ProcessedCount: int(atomic.LoadInt64(&m.processed)),
		MaxQueueSize:   m.config.Fridge.QueueSize,
	}
}

// Close 停止合併工作者
func (m *Manager) Close() {
	close(m.done)
}
