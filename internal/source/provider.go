package source

import "context"

// Provider 文档源接口
// 引擎只消费 (状态码, 响应体)，文档从哪里来由实现决定：
// 内置用例（FixtureProvider）或真实上游（HTTPProvider）
type Provider interface {
	Fetch(ctx context.Context, method, path string, query map[string]string) (int, map[string]interface{}, error)
}
