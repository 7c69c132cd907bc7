package compat

import "fmt"

// DetectVersion 识别源文档版本（纯分类，不产生副作用）
// 判定顺序：
//  1. 顶层 data 为数组 → v3（data 是否为空由编排层判定）
//  2. 顶层存在 orderId：
//     - 带 state 字段 → v2
//     - 带 status + totalPrice → v1（旧版直通）
//     - 其余扁平结构 → v2
//  3. 以上都不满足 → ErrUnknownVersion
func DetectVersion(doc map[string]interface{}) (Version, error) {
	if doc == nil {
		return "", fmt.Errorf("nil document: %w", ErrUnknownVersion)
	}

	if raw, ok := doc["data"]; ok {
		if _, isList := raw.([]interface{}); isList {
			return VersionV3, nil
		}
	}

	if _, ok := doc["orderId"]; ok {
		if _, hasState := doc["state"]; hasState {
			return VersionV2, nil
		}

		_, hasStatus := doc["status"]
		_, hasTotal := doc["totalPrice"]
		if hasStatus && hasTotal {
			return VersionV1, nil
		}

		return VersionV2, nil
	}

	return "", fmt.Errorf("document matches no known shape: %w", ErrUnknownVersion)
}
