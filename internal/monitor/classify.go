package monitor

import (
	"fmt"
	"strings"
)

// Class 响应分类
type Class string

const (
	ClassOK          Class = "OK"
	ClassDeprecated  Class = "DEPRECATED"
	ClassTransient   Class = "TRANSIENT"
	ClassClientError Class = "CLIENT_ERROR"
	ClassOutage      Class = "OUTAGE"
)

// Retryable 该分类是否值得重试
func (c Class) Retryable() bool {
	return c == ClassTransient || c == ClassOutage
}

// Classify 响应分类（状态码为主，响应体中的弃用信号可覆盖 OK）
// 410 → DEPRECATED；429/503 → TRANSIENT；其余 4xx → CLIENT_ERROR；
// 其余 5xx → OUTAGE；2xx → OK（响应体带弃用标记时为 DEPRECATED）
func Classify(statusCode int, body map[string]interface{}) Class {
	switch {
	case statusCode == 410:
		return ClassDeprecated
	case statusCode == 429 || statusCode == 503:
		return ClassTransient
	case statusCode >= 500:
		return ClassOutage
	case statusCode >= 400:
		return ClassClientError
	}

	if body != nil {
		if deprecated, ok := body["deprecated"].(bool); ok && deprecated {
			return ClassDeprecated
		}
		if warning, _ := body["warning"].(string); warning == "deprecated" {
			return ClassDeprecated
		}
	}

	return ClassOK
}

// ErrorInfo 归一化后的 v1 错误结构
type ErrorInfo struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// NormalizeError 将各代错误响应体归一化为 v1 的 {error, message}
// 兼容三种形态：{error,message}、{error_code,detail}、{errors:[{code,detail}]}
// 多条错误聚合到 message；上游给出重试提示时附加到 message 尾部；
// 无法识别的形态兜底为 HTTP_<code> + 响应体字符串
func NormalizeError(statusCode int, body map[string]interface{}) ErrorInfo {
	if body == nil {
		return ErrorInfo{
			Error:   fmt.Sprintf("HTTP_%d", statusCode),
			Message: "An error occurred",
		}
	}

	info, ok := extractError(statusCode, body)
	if !ok {
		info = ErrorInfo{
			Error:   fmt.Sprintf("HTTP_%d", statusCode),
			Message: fmt.Sprintf("%v", body),
		}
	}

	if hint := retryHint(body); hint != "" {
		info.Message = info.Message + "; " + hint
	}

	return info
}

// extractError 按已知形态提取错误码和消息
func extractError(statusCode int, body map[string]interface{}) (ErrorInfo, bool) {
	// 形态一：{error, message}
	if errVal, ok := body["error"]; ok {
		message, _ := body["message"].(string)
		if message == "" {
			message, _ = body["detail"].(string)
		}
		if message == "" {
			message = "An error occurred"
		}
		return ErrorInfo{Error: fmt.Sprintf("%v", errVal), Message: message}, true
	}

	// 形态二：{error_code, detail}
	if codeVal, ok := body["error_code"]; ok {
		message, _ := body["detail"].(string)
		if message == "" {
			message, _ = body["message"].(string)
		}
		return ErrorInfo{Error: fmt.Sprintf("%v", codeVal), Message: message}, true
	}

	// 形态三：{errors: [{code, detail|message}, ...]}，首条给出错误码，消息聚合
	if rawList, ok := body["errors"].([]interface{}); ok && len(rawList) > 0 {
		code := ""
		messages := make([]string, 0, len(rawList))
		for _, raw := range rawList {
			entry, _ := raw.(map[string]interface{})
			if entry == nil {
				continue
			}
			if code == "" {
				code, _ = entry["code"].(string)
			}
			message, _ := entry["detail"].(string)
			if message == "" {
				message, _ = entry["message"].(string)
			}
			if message != "" {
				messages = append(messages, message)
			}
		}
		if code == "" {
			code = fmt.Sprintf("HTTP_%d", statusCode)
		}
		return ErrorInfo{Error: code, Message: strings.Join(messages, "; ")}, true
	}

	return ErrorInfo{}, false
}

// retryHint 从响应体提取重试提示
func retryHint(body map[string]interface{}) string {
	if retryable, ok := body["retryable"].(bool); ok && retryable {
		return "retry suggested"
	}

	if rawList, ok := body["errors"].([]interface{}); ok {
		for _, raw := range rawList {
			entry, _ := raw.(map[string]interface{})
			meta, _ := entry["metadata"].(map[string]interface{})
			if after, ok := meta["retry_after"].(float64); ok {
				return fmt.Sprintf("retry after %ds", int(after))
			}
		}
	}

	return ""
}
