package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"olp/compat/internal/compat"
	"olp/compat/internal/runner"
	"olp/compat/internal/source"
	"olp/compat/pkg/config"
	"olp/compat/pkg/logger"
)

var (
	configPath  = flag.String("config", "", "配置文件路径（可选，缺省用内置配置）")
	baseURL     = flag.String("base-url", "", "上游地址（缺省用内嵌用例离线执行）")
	filter      = flag.String("filter", "", "按名称子串过滤检查项")
	concurrency = flag.Int("concurrency", 4, "并发执行的检查数")
)

func main() {
	flag.Parse()

	fmt.Println("========================================")
	fmt.Println("  Regress - 兼容转换回归工具")
	fmt.Println("========================================")

	// 1. 加载配置
	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Printf("❌ Failed to load config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("❌ Config validation failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Config loaded: %s\n", cfg.App.Name)

	log, err := logger.NewZapLogger(cfg.App.LogLevel)
	if err != nil {
		fmt.Printf("❌ Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// 2. 构建转换器
	conv, err := compat.NewConverter(cfg.Engine.Rates)
	if err != nil {
		fmt.Printf("❌ Failed to build currency converter: %v\n", err)
		os.Exit(1)
	}
	tolerance, err := decimal.NewFromString(cfg.Engine.ToleranceUSD)
	if err != nil {
		fmt.Printf("❌ Bad tolerance_usd: %v\n", err)
		os.Exit(1)
	}
	transformer := compat.NewTransformer(conv, tolerance)

	// 3. 选择数据源（命令行优先于配置）
	upstream := *baseURL
	if upstream == "" {
		upstream = cfg.Source.BaseURL
	}

	var provider source.Provider
	if upstream == "" {
		fixtures, err := source.NewFixtureProvider()
		if err != nil {
			fmt.Printf("❌ Failed to load fixtures: %v\n", err)
			os.Exit(1)
		}
		provider = fixtures
		fmt.Printf("✅ Using %d embedded cases (offline)\n", len(fixtures.Cases()))
	} else {
		provider = source.NewHTTPProvider(upstream, cfg.Source.Timeout, cfg.Source.RetryAttempts, cfg.Source.RetryBackoff, log)
		fmt.Printf("✅ Using upstream %s\n", upstream)
	}

	// 4. 执行回归检查
	fmt.Println("\n========================================")
	fmt.Println("  Running Checks")
	fmt.Println("========================================")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	r := runner.New(provider, transformer, log, *concurrency)
	report := r.Run(ctx, *filter)
	report.Print(os.Stdout)

	if report.Failed > 0 {
		os.Exit(1)
	}
}
