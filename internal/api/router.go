package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	fridgeHandler "fridge-manager/internal/api/handlers/fridge"
	"fridge-manager/internal/api/handlers/health"
	"fridge-manager/internal/api/middleware"
	"fridge-manager/internal/core/ai/cache"
	"fridge-manager/internal/core/ai/gemini"
	aiService "fridge-manager/internal/core/ai/service"
	"fridge-manager/internal/core/analysis"
	"fridge-manager/internal/core/fridge"
	"fridge-manager/internal/core/image"
	"fridge-manager/internal/core/inference"
	"fridge-manager/internal/core/ocr"
	"fridge-manager/internal/core/search"
	"fridge-manager/internal/core/vision"
	"fridge-manager/internal/infrastructure/config"
	"fridge-manager/internal/pkg/common"
)

const (
	// 分析請求可能串 OCR、偵測與 LLM 三個下游
	timeoutDuration = 120 * time.Second
	// 請求體大小限制 (10MB)，批次上傳會帶多張 base64 圖片
	maxBodySize = 10 << 20
)

// SetupRouter 組裝推論管線與所有路由
func SetupRouter(cfg *config.Config, fridgeManager *fridge.Manager, cacheManager *cache.Manager) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID", "X-User-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(maxBodySize))

	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	router.Use(middleware.Deduplication(cfg))

	// 推論管線的組裝：規則表與品牌目錄用預設值，
	// 網頁搜尋與 LLM 依配置決定是否接上
	var searchFunc inference.SearchFunc
	if cfg.Services.SearchBaseURL != "" {
		searchClient := search.NewClient(cfg)
		searchFunc = searchClient.Search
	}
	webSearch := inference.NewWebSearchResolver(searchFunc, nil)

	var llm inference.LLMClassifier
	if cfg.Gemini.Enabled && cfg.Gemini.APIKey != "" {
		llm = aiService.NewService(gemini.NewClient(cfg), cacheManager)
	}

	engine := inference.NewEngine(nil, nil, webSearch, llm, cfg.Analysis.LLMEnabled && llm != nil)

	imageService := image.NewService(cfg.Image.MaxSizeBytes)
	ocrClient := ocr.NewClient(cfg)
	detectionClient := vision.NewClient(cfg)
	corrector := vision.NewCorrector(nil)

	analysisService := analysis.NewService(cfg, imageService, ocrClient, detectionClient, engine, corrector, fridgeManager)

	common.LogInfo("Services initialized",
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.Bool("llm_enabled", cfg.Analysis.LLMEnabled && llm != nil),
		zap.Bool("web_search_enabled", searchFunc != nil),
		zap.String("model", cfg.Gemini.Model),
	)

	// 全局中間件：請求超時與服務注入
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Set("config", cfg)
		c.Set("fridge_manager", fridgeManager)
		if llm != nil {
			c.Set("ai_service", llm)
		}

		c.Next()

		if ctx.Err() == context.DeadlineExceeded {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetHeader("X-Request-ID")),
				zap.Duration("timeout", timeoutDuration),
			)
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"error": "Request timeout",
				"code":  common.ErrCodeGatewayTimeout,
			})
			c.Abort()
		}
	})

	// 健康檢查路由
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	// API 路由組
	api := router.Group("/api/v1")
	{
		analysisGroup := api.Group("/analysis")
		{
			analysisGroup.POST("/image", fridgeHandler.HandleAnalyzeImage(analysisService))
			analysisGroup.POST("/batch", fridgeHandler.HandleAnalyzeBatch(analysisService))
			analysisGroup.POST("/text", fridgeHandler.HandleAnalyzeText(analysisService))
		}

		fridgeGroup := api.Group("/fridge")
		{
			fridgeGroup.GET("", fridgeHandler.HandleGetFridge(fridgeManager))
			fridgeGroup.POST("/items", fridgeHandler.HandleAddItem(fridgeManager))
			fridgeGroup.PATCH("/items/:id", fridgeHandler.HandleUpdateQuantity(fridgeManager))
			fridgeGroup.DELETE("/items/:id", fridgeHandler.HandleRemoveItem(fridgeManager))

			fridgeGroup.POST("/import", func(c *gin.Context) {
				fridgeHandler.HandleImportLegacy(fridgeManager)(c.Writer, c.Request)
			})
		}
	}

	common.LogInfo("Router setup completed",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router, nil
}
