package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config 全局配置
type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Engine EngineConfig `mapstructure:"engine"`
	Source SourceConfig `mapstructure:"source"`
	Server ServerConfig `mapstructure:"server"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name     string `mapstructure:"name"`
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
}

// EngineConfig 转换引擎配置
type EngineConfig struct {
	// Rates 汇率表（目标货币为 USD），进程启动时加载一次，之后只读
	Rates map[string]string `mapstructure:"rates"`
	// ToleranceUSD 价格对账容差（美元）
	ToleranceUSD string `mapstructure:"tolerance_usd"`
}

// SourceConfig 上游文档源配置
type SourceConfig struct {
	BaseURL       string        `mapstructure:"base_url"`       // 为空时使用内置用例
	Timeout       time.Duration `mapstructure:"timeout"`        // 单次请求超时
	RetryAttempts int           `mapstructure:"retry_attempts"` // 最大尝试次数
	RetryBackoff  time.Duration `mapstructure:"retry_backoff"`  // 重试退避基数
}

// ServerConfig 服务配置
type ServerConfig struct {
	ListenAddr     string `mapstructure:"listen_addr"`      // 兼容代理监听地址
	MockListenAddr string `mapstructure:"mock_listen_addr"` // Mock 上游监听地址
}

// Default 默认配置（无配置文件时使用）
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:     "compat",
			Env:      "dev",
			LogLevel: "info",
		},
		Engine: EngineConfig{
			Rates: map[string]string{
				"USD": "1.0",
				"EUR": "1.10",
				"JPY": "0.007",
				"GBP": "1.27",
				"CAD": "0.73",
			},
			ToleranceUSD: "0.01",
		},
		Source: SourceConfig{
			Timeout:       5 * time.Second,
			RetryAttempts: 3,
			RetryBackoff:  200 * time.Millisecond,
		},
		Server: ServerConfig{
			ListenAddr:     ":8080",
			MockListenAddr: ":8081",
		},
	}
}

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config failed: %w", err)
	}

	cfg := Default()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}

	return cfg, nil
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}
	if len(c.Engine.Rates) == 0 {
		return fmt.Errorf("engine.rates is required")
	}
	if _, ok := c.Engine.Rates["USD"]; !ok {
		return fmt.Errorf("engine.rates must include USD")
	}
	if c.Source.RetryAttempts <= 0 {
		return fmt.Errorf("source.retry_attempts must be positive")
	}
	return nil
}
