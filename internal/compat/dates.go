package compat

import (
	"fmt"
	"time"
)

// DateUnknown 日期解析失败时写入输出的哨兵值
const DateUnknown = "UNKNOWN"

// 可接受的时间戳格式：带时区的 ISO-8601、无时区（按 UTC 处理）、裸日期
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// NormalizeDate 将时间戳归一化为 UTC 日历日期（YYYY-MM-DD）
// 先换算到 UTC 再取日期部分，避免时区偏移导致日期错位
func NormalizeDate(value string) (string, error) {
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t.UTC().Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("parse %q: %w", value, ErrDateParse)
}
