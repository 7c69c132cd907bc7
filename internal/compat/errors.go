package compat

import "errors"

// 致命错误：结构性问题导致无法得知要转换什么，中止转换
var (
	ErrUnknownVersion = errors.New("unknown source version")
	ErrEmptyPayload   = errors.New("v3 payload has no data entries")
)

// 可恢复错误：已识别结构内的数据质量问题，降级为 warning 继续转换
var (
	ErrDateParse = errors.New("unparseable timestamp")
)
