package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"fridge-manager/internal/infrastructure/config"
	"fridge-manager/internal/pkg/common"
)

// Manager 文字推論結果的行程內快取
// 同一張包裝照常被重複上傳，相同 OCR 文字不需要重打 LLM
type Manager struct {
	config *config.Config
	mu     sync.RWMutex
	store  map[string]entry
	stats  stats
	stop   chan struct{}
}

type entry struct {
	value       string
	expiresAt   time.Time
	createdAt   time.Time
	lastAccess  time.Time
	accessCount int
}

type stats struct {
	hits      int64
	misses    int64
	evictions int64
	errors    int64
}

// NewManager 創建快取管理器，快取停用時回傳 nil
func NewManager(cfg *config.Config) *Manager {
	if !cfg.Cache.Enabled {
		common.LogInfo("推論快取已停用")
		return nil
	}

	m := &Manager{
		config: cfg,
		store:  make(map[string]entry),
		stop:   make(chan struct{}),
	}

	go m.startCleanup()

	common.LogInfo("推論快取已初始化",
		zap.Int("max_size", cfg.Cache.MaxSize),
		zap.Duration("ttl", cfg.Cache.TTL),
		zap.Duration("cleanup_interval", cfg.Cache.CleanupInterval))

	return m
}

// Key 由 OCR 文字與偵測類別組成快取鍵
// 偵測類別會影響提示詞內容，必須一併納入
func Key(text string, detectedClasses []string) string {
	input := text
	if len(detectedClasses) > 0 {
		input += "|" + strings.Join(detectedClasses, ",")
	}
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf("text:%s", hex.EncodeToString(hash[:]))
}

// Get 查詢快取，未命中或已過期回傳 ErrCacheDisabled
func (m *Manager) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, exists := m.store[key]
	if !exists {
		m.stats.misses++
		common.LogCacheMiss("text", key)
		return "", common.ErrCacheDisabled
	}

	if time.Now().After(e.expiresAt) {
		delete(m.store, key)
		m.stats.evictions++
		m.stats.misses++
		common.LogDebug("快取已過期", zap.String("key", key))
		return "", common.ErrCacheDisabled
	}

	e.lastAccess = time.Now()
	e.accessCount++
	m.store[key] = e
	m.stats.hits++

	common.LogCacheHit("text", key)
	return e.value, nil
}

// Set 寫入快取，容量滿時先清過期項目再做 LRU 淘汰
func (m *Manager) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.store) >= m.config.Cache.MaxSize {
		m.removeExpired()

		if len(m.store) >= m.config.Cache.MaxSize {
			m.evictLRU()
		}
		if len(m.store) >= m.config.Cache.MaxSize {
			m.stats.errors++
			common.LogWarn("快取已滿", zap.Int("size", len(m.store)))
			return common.ErrCacheFull
		}
	}

	now := time.Now()
	m.store[key] = entry{
		value:      value,
		expiresAt:  now.Add(m.config.Cache.TTL),
		createdAt:  now,
		lastAccess: now,
	}
	return nil
}

func (m *Manager) startCleanup() {
	ticker := time.NewTicker(m.config.Cache.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			removed := m.removeExpired()
			m.mu.Unlock()
			if removed > 0 {
				common.LogDebug("已清理過期快取", zap.Int("count", removed))
			}
		case <-m.stop:
			return
		}
	}
}

// removeExpired 呼叫端必須已持有寫鎖
func (m *Manager) removeExpired() int {
	now := time.Now()
	count := 0
	for key, e := range m.store {
		if now.After(e.expiresAt) {
			delete(m.store, key)
			m.stats.evictions++
			count++
		}
	}
	return count
}

// evictLRU 淘汰訪問次數最少、最久未使用的項目，呼叫端必須已持有寫鎖
func (m *Manager) evictLRU() {
	var oldestKey string
	var oldestAccess time.Time
	var lowestCount int

	for key, e := range m.store {
		if oldestKey == "" ||
			e.accessCount < lowestCount ||
			(e.accessCount == lowestCount && e.lastAccess.Before(oldestAccess)) {
			oldestKey = key
			oldestAccess = e.lastAccess
			lowestCount = e.accessCount
		}
	}

	if oldestKey != "" {
		delete(m.store, oldestKey)
		m.stats.evictions++
		common.LogDebug("快取已淘汰", zap.String("key", oldestKey))
	}
}

// Stats 回傳快取統計
func (m *Manager) Stats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := m.stats.hits + m.stats.misses
	hitRatio := 0.0
	if total > 0 {
		hitRatio = float64(m.stats.hits) / float64(total)
	}

	return map[string]interface{}{
		"size":      len(m.store),
		"max_size":  m.config.Cache.MaxSize,
		"hits":      m.stats.hits,
		"misses":    m.stats.misses,
		"evictions": m.stats.evictions,
		"errors":    m.stats.errors,
		"hit_ratio": hitRatio,
	}
}

// Close 停止清理協程並清空快取
func (m *Manager) Close() error {
	close(m.stop)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = make(map[string]entry)

	common.LogInfo("推論快取已關閉",
		zap.Int64("hits", m.stats.hits),
		zap.Int64("misses", m.stats.misses),
		zap.Int64("evictions", m.stats.evictions))
	return nil
}
