package service

import (
	"context"

	"go.uber.org/zap"

	"fridge-manager/internal/core/ai/cache"
	"fridge-manager/internal/pkg/common"
)

// Classifier 底層的文字推論客戶端
type Classifier interface {
	ClassifyFood(ctx context.Context, text string, detectedClasses []string) (string, error)
}

// Service 帶快取的文字推論服務
// 快取未啟用時（cache 為 nil）直接透傳底層客戶端
type Service struct {
	classifier Classifier
	cache      *cache.Manager
}

// NewService 創建推論服務
func NewService(classifier Classifier, cacheManager *cache.Manager) *Service {
	return &Service{
		classifier: classifier,
		cache:      cacheManager,
	}
}

// ClassifyFood 查快取後再呼叫底層客戶端，成功結果寫回快取
func (s *Service) ClassifyFood(ctx context.Context, text string, detectedClasses []string) (string, error) {
	if s.cache == nil {
		return s.classifier.ClassifyFood(ctx, text, detectedClasses)
	}

	key := cache.Key(text, detectedClasses)
	if answer, err := s.cache.Get(ctx, key); err == nil {
		return answer, nil
	}

	answer, err := s.classifier.ClassifyFood(ctx, text, detectedClasses)
	if err != nil {
		return "", err
	}

	if err := s.cache.Set(ctx, key, answer); err != nil {
		common.LogWarn("推論結果寫入快取失敗", zap.Error(err))
	}
	return answer, nil
}

// CacheStats 回傳快取統計，快取未啟用時回傳 nil
func (s *Service) CacheStats() map[string]interface{} {
	if s.cache == nil {
		return nil
	}
	return s.cache.Stats()
}
