package fridge

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"

	"fridge-manager/internal/infrastructure/config"
	"fridge-manager/internal/pkg/common"
)

// SnapshotStore 冰箱快照的持久化介面
// Load 在查無資料時回傳 (nil, nil)
type SnapshotStore interface {
	Save(ctx context.Context, snapshot *common.FridgeSnapshot) error
	Load(ctx context.Context, userID string) (*common.FridgeSnapshot, error)
	Close() error
}

func snapshotKey(userID string) string {
	return fmt.Sprintf("fridge:data:%s", userID)
}

// RedisStore 以 Redis 保存冰箱快照
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 建立 Redis 快照儲存並驗證連線
func NewRedisStore(cfg *config.FridgeConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// Save 序列化快照並寫入 Redis，不設過期時間
func (s *RedisStore) Save(ctx context.Context, snapshot *common.FridgeSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := s.client.Set(ctx, snapshotKey(snapshot.UserID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Load 讀取指定使用者的快照，查無資料回傳 (nil, nil)
func (s *RedisStore) Load(ctx context.Context, userID string) (*common.FridgeSnapshot, error) {
	data, err := s.client.Get(ctx, snapshotKey(userID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var snapshot common.FridgeSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snapshot, nil
}

// Close 關閉 Redis 連線
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// MemoryStore 行程內的快照儲存，持久化停用時的預設實作
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]*common.FridgeSnapshot
}

// NewMemoryStore 建立記憶體快照儲存
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string]*common.FridgeSnapshot)}
}

// Save 保存快照的深複本，避免呼叫端後續修改影響儲存內容
func (s *MemoryStore) Save(ctx context.Context, snapshot *common.FridgeSnapshot) error {
	copied := *snapshot
	copied.Ingredients = make([]common.InventoryItem, len(snapshot.Ingredients))
	copy(copied.Ingredients, snapshot.Ingredients)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snapshot.UserID] = &copied
	return nil
}

// Load 回傳快照的深複本，查無資料回傳 (nil, nil)
func (s *MemoryStore) Load(ctx context.Context, userID string) (*common.FridgeSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot, ok := s.snapshots[userID]
	if !ok {
		return nil, nil
	}

	copied := *snapshot
	copied.Ingredients = make([]common.InventoryItem, len(snapshot.Ingredients))
	copy(copied.Ingredients, snapshot.Ingredients)
	return &copied, nil
}

// Close 無資源可釋放
func (s *MemoryStore) Close() error {
	return nil
}
