package compat

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// 内置汇率表（目标货币 USD，测试与离线模式使用固定值）
var defaultRates = map[string]string{
	"USD": "1.0",
	"EUR": "1.10",
	"JPY": "0.007",
	"GBP": "1.27",
	"CAD": "0.73",
}

// Converter 汇率换算器
// 汇率表在构造时加载一次，之后只读，并发读取无需加锁
type Converter struct {
	rates map[string]decimal.Decimal
}

// NewConverter 从配置构造换算器（汇率为十进制字符串，避免浮点误差）
func NewConverter(rates map[string]string) (*Converter, error) {
	if len(rates) == 0 {
		return nil, fmt.Errorf("empty rate table")
	}

	parsed := make(map[string]decimal.Decimal, len(rates))
	for code, raw := range rates {
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid rate for %s: %w", code, err)
		}
		parsed[code] = rate
	}

	if _, ok := parsed["USD"]; !ok {
		return nil, fmt.Errorf("rate table must include USD")
	}

	return &Converter{rates: parsed}, nil
}

// DefaultConverter 使用内置汇率表构造换算器
func DefaultConverter() *Converter {
	c, err := NewConverter(defaultRates)
	if err != nil {
		panic(err) // 内置表不合法属于编码错误
	}
	return c
}

// ToUSD 将金额折算为 USD，四舍五入保留 2 位小数
// 未知货币不报错：按 1:1 兜底并记录告警，保证旧版投递不被上游脏数据阻断
func (c *Converter) ToUSD(amount decimal.Decimal, currency string, audit *AuditTrail) decimal.Decimal {
	rate, ok := c.rates[currency]
	if !ok {
		audit.AddWarning("Unknown currency '%s', assuming 1:1 USD fallback", currency)
		rate = decimal.NewFromInt(1)
	}
	return amount.Mul(rate).Round(2)
}

// HasRate 汇率表中是否存在该货币
func (c *Converter) HasRate(currency string) bool {
	_, ok := c.rates[currency]
	return ok
}
