package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"fridge-manager/internal/api"
	"fridge-manager/internal/core/ai/cache"
	"fridge-manager/internal/core/fridge"
	"fridge-manager/internal/infrastructure/config"
	"fridge-manager/internal/pkg/common"
)

func main() {
	// 載入 .env
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found")
	}

	// 載入設定
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("gemini_model", cfg.Gemini.Model),
		zap.Bool("llm_enabled", cfg.Analysis.LLMEnabled),
		zap.Bool("fridge_persistence", cfg.Fridge.PersistenceEnabled),
	)

	// 初始化快取
	cacheManager := cache.NewManager(cfg)
	if cfg.Cache.Enabled && cacheManager == nil {
		common.LogFatal("Failed to initialize cache manager")
	}
	if cacheManager != nil {
		defer cacheManager.Close()
	}

	// 初始化冰箱快照儲存，未啟用持久化時落在行程內記憶體
	var store fridge.SnapshotStore
	if cfg.Fridge.PersistenceEnabled {
		redisStore, err := fridge.NewRedisStore(&cfg.Fridge)
		if err != nil {
			common.LogFatal("Failed to connect to Redis", zap.Error(err))
		}
		store = redisStore
	} else {
		store = fridge.NewMemoryStore()
		common.LogWarn("冰箱持久化未啟用，資料只保留在行程內")
	}
	defer store.Close()

	// 啟動冰箱合併工作者
	fridgeManager := fridge.NewManager(cfg, store)
	defer fridgeManager.Close()

	// 設置路由
	router, err := api.SetupRouter(cfg, fridgeManager, cacheManager)
	if err != nil {
		common.LogError("Failed to setup router", zap.Error(err))
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			common.LogError("Failed to start server", zap.Error(err))
			os.Exit(1)
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
		os.Exit(1)
	}

	common.LogInfo("Server exited")
}
