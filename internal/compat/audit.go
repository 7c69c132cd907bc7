package compat

import (
	"encoding/json"
	"fmt"
)

// Decision 单条转换决策记录
type Decision struct {
	Step   string            `json:"step"`
	Action string            `json:"action"`
	Detail map[string]string `json:"detail,omitempty"`
}

// AuditTrail 审计轨迹（单次转换独享，追加写入，顺序即转换因果顺序）
type AuditTrail struct {
	Decisions []Decision `json:"decisions"`
	Warnings  []string   `json:"warnings"`
}

// NewAuditTrail 创建审计轨迹
func NewAuditTrail() *AuditTrail {
	return &AuditTrail{
		Decisions: make([]Decision, 0, 8),
		Warnings:  make([]string, 0, 2),
	}
}

// AddDecision 追加决策记录
func (a *AuditTrail) AddDecision(step, action string) {
	a.Decisions = append(a.Decisions, Decision{Step: step, Action: action})
}

// AddDecisionDetail 追加带明细的决策记录
func (a *AuditTrail) AddDecisionDetail(step, action string, detail map[string]string) {
	a.Decisions = append(a.Decisions, Decision{Step: step, Action: action, Detail: detail})
}

// AddWarning 追加数据质量告警
func (a *AuditTrail) AddWarning(format string, args ...interface{}) {
	a.Warnings = append(a.Warnings, fmt.Sprintf(format, args...))
}

// HasWarnings 是否存在告警（调用方据此区分"带告警成功"与"完全成功"）
func (a *AuditTrail) HasWarnings() bool {
	return len(a.Warnings) > 0
}

// FindDecision 按 step 查找第一条决策记录
func (a *AuditTrail) FindDecision(step string) (Decision, bool) {
	for _, d := range a.Decisions {
		if d.Step == step {
			return d, true
		}
	}
	return Decision{}, false
}

// ToJSON 序列化审计轨迹
func (a *AuditTrail) ToJSON() ([]byte, error) {
	return json.Marshal(a)
}
