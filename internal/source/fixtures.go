package source

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed testcase/cases.json
var casesRaw []byte

// Case 预置用例, 描述一次上游请求与固定响应
type Case struct {
	ID       string       `json:"id"`
	Request  CaseRequest  `json:"request"`
	Response CaseResponse `json:"response"`
}

type CaseRequest struct {
	Method string            `json:"method"`
	Path   string            `json:"path"`
	Query  map[string]string `json:"query"`
}

type CaseResponse struct {
	StatusCode int                    `json:"statusCode"`
	Body       map[string]interface{} `json:"body"`
}

// FixtureProvider 基于内嵌用例的离线数据源, 用于回归与本地联调
type FixtureProvider struct {
	cases []Case
	byID  map[string]Case
}

func NewFixtureProvider() (*FixtureProvider, error) {
	var doc struct {
		Cases []Case `json:"cases"`
	}
	if err := json.Unmarshal(casesRaw, &doc); err != nil {
		return nil, fmt.Errorf("load embedded cases failed: %w", err)
	}

	byID := make(map[string]Case, len(doc.Cases))
	for _, c := range doc.Cases {
		byID[c.ID] = c
	}
	return &FixtureProvider{cases: doc.Cases, byID: byID}, nil
}

// Fetch 按 case 参数或请求三元组匹配用例, 未命中返回 404 响应
func (p *FixtureProvider) Fetch(ctx context.Context, method, path string, query map[string]string) (int, map[string]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}

	if id, ok := query["case"]; ok {
		if c, ok := p.byID[id]; ok {
			return c.Response.StatusCode, c.Response.Body, nil
		}
		return notFound(fmt.Sprintf("no fixture case %q", id))
	}

	for _, c := range p.cases {
		if c.Request.Method == method && c.Request.Path == path && queryMatch(c.Request.Query, query) {
			return c.Response.StatusCode, c.Response.Body, nil
		}
	}
	return notFound(fmt.Sprintf("no fixture for %s %s", method, path))
}

// ByID 按用例编号取用例
func (p *FixtureProvider) ByID(id string) (Case, bool) {
	c, ok := p.byID[id]
	return c, ok
}

// Cases 返回全部用例, 按定义顺序
func (p *FixtureProvider) Cases() []Case {
	out := make([]Case, len(p.cases))
	copy(out, p.cases)
	return out
}

func queryMatch(want, got map[string]string) bool {
	for k, v := range want {
		if got[k] != v {
			return false
		}
	}
	return true
}

func notFound(message string) (int, map[string]interface{}, error) {
	return 404, map[string]interface{}{
		"error":   "NOT_FOUND",
		"message": message,
	}, nil
}
