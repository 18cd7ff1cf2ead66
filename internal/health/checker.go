package health

import (
	"context"
	"time"
)

// Status 组件健康状态
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"  // 部分受损但仍可服务
	StatusUnhealthy Status = "unhealthy" // 无法服务
)

// severity 状态严重程度，用于聚合比较
func (s Status) severity() int {
	switch s {
	case StatusUnhealthy:
		return 2
	case StatusDegraded:
		return 1
	default:
		return 0
	}
}

// worse 返回两者中更严重的状态
func worse(a, b Status) Status {
	if b.severity() > a.severity() {
		return b
	}
	return a
}

// CheckResult 单个组件的检查结果，Details 携带组件自有的统计
type CheckResult struct {
	Status  Status         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
	Latency time.Duration  `json:"latency"`
}

// Checker 组件健康检查器；Name 作为报告中的组件键
// （事件存储 database、状态镜像 redis、入站网关 udp）
type Checker interface {
	Name() string
	Check(ctx context.Context) CheckResult
}
