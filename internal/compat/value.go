package compat

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// 文档是无 schema 的 map[string]interface{}，以下取值函数对缺失、
// 类型不符的字段一律返回零值，不触发 panic

// asMap 取对象字段
func asMap(v interface{}) map[string]interface{} {
	m, _ := v.(map[string]interface{})
	return m
}

// asList 取数组字段
func asList(v interface{}) []interface{} {
	l, _ := v.([]interface{})
	return l
}

// asString 取字符串字段
func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

// asInt 取整数字段（JSON 数字解码为 float64）
func asInt(v interface{}, def int) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
	}
	return def
}

// asDecimal 取十进制金额字段
func asDecimal(v interface{}) decimal.Decimal {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n)
	case int:
		return decimal.NewFromInt(int64(n))
	case int64:
		return decimal.NewFromInt(n)
	case string:
		if d, err := decimal.NewFromString(n); err == nil {
			return d
		}
	case json.Number:
		if d, err := decimal.NewFromString(n.String()); err == nil {
			return d
		}
	}
	return decimal.Zero
}
