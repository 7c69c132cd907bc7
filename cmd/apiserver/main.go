package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"olp/compat/internal/compat"
	"olp/compat/internal/server"
	"olp/compat/internal/source"
	"olp/compat/pkg/config"
	"olp/compat/pkg/logger"
)

var configPath = flag.String("config", "", "配置文件路径（可选，缺省用内置配置）")

func main() {
	flag.Parse()

	// 1. 加载配置
	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Config validation failed: %v", err)
	}

	zlog, err := logger.NewZapLogger(cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zlog.Sync()

	// 2. 构建转换器与数据源
	conv, err := compat.NewConverter(cfg.Engine.Rates)
	if err != nil {
		log.Fatalf("Failed to build currency converter: %v", err)
	}
	tolerance, err := decimal.NewFromString(cfg.Engine.ToleranceUSD)
	if err != nil {
		log.Fatalf("Bad tolerance_usd: %v", err)
	}
	transformer := compat.NewTransformer(conv, tolerance)

	var provider source.Provider
	if cfg.Source.BaseURL == "" {
		fixtures, err := source.NewFixtureProvider()
		if err != nil {
			log.Fatalf("Failed to load fixtures: %v", err)
		}
		provider = fixtures
	} else {
		provider = source.NewHTTPProvider(cfg.Source.BaseURL, cfg.Source.Timeout, cfg.Source.RetryAttempts, cfg.Source.RetryBackoff, zlog)
	}

	// 3. 创建 HTTP Server
	handler := server.NewOrderHandler(provider, transformer, zlog)
	srv := &http.Server{
		Addr:    cfg.Server.ListenAddr,
		Handler: server.SetupRoutes(handler),
	}

	// 4. 启动服务
	go func() {
		log.Printf("Compat proxy listening on %s", cfg.Server.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// 5. 等待退出信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}
