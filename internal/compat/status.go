package compat

// MapStatus 状态映射（上下文感知）
// 源状态映射到 v1 三值枚举 {PAID, CANCELLED, SHIPPED}：
//   - PAID / CANCELLED / SHIPPED 原样透传
//   - FULFILLED 一律收敛为 SHIPPED，但依据跟踪信号在审计轨迹中
//     保留 physical / digital 上下文，供下游分析使用
//   - 未知状态兜底为 PAID 并记录告警
//
// 返回值恒为枚举成员，不存在其他取值。
func MapStatus(state string, hasTracking bool, audit *AuditTrail) string {
	switch state {
	case StatusPaid, StatusCancelled, StatusShipped:
		audit.AddDecision("status_mapping", state+"->"+state)
		return state

	case "FULFILLED":
		context := "digital"
		if hasTracking {
			context = "physical"
		}
		audit.AddDecisionDetail("status_mapping", "FULFILLED->SHIPPED", map[string]string{
			"context": context,
		})
		return StatusShipped

	default:
		audit.AddWarning("Unknown status '%s', defaulted to PAID", state)
		return StatusPaid
	}
}
