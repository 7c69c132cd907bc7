package compat

import (
	"context"
	"fmt"
)

// ProcessorFunc 转换步骤函数类型
type ProcessorFunc func(ctx context.Context) error

// Pipeline 顺序步骤链
// 任一步骤返回 error 则立即停止
type Pipeline struct {
	steps []ProcessorFunc
}

// NewPipeline 创建步骤链
func NewPipeline(steps []ProcessorFunc) *Pipeline {
	return &Pipeline{steps: steps}
}

// Run 按序执行步骤链
func (p *Pipeline) Run(ctx context.Context) error {
	for i, step := range p.steps {
		if err := step(ctx); err != nil {
			return fmt.Errorf("step[%d] failed: %w", i, err)
		}
	}
	return nil
}
