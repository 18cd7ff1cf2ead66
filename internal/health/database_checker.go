package health

import (
	"context"
	"fmt"
	"time"

	"github.com/openbroadcast/tally-server/internal/storage/gormrepo"
)

// DatabaseChecker 事件存储健康检查器
type DatabaseChecker struct {
	repo *gormrepo.Repository
}

// NewDatabaseChecker 创建数据库健康检查器
func NewDatabaseChecker(repo *gormrepo.Repository) *DatabaseChecker {
	return &DatabaseChecker{repo: repo}
}

// Name 返回检查器名称
func (c *DatabaseChecker) Name() string {
	return "database"
}

// Check 执行健康检查
func (c *DatabaseChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()

	if err := c.repo.Ping(ctx); err != nil {
		return CheckResult{
			Status:  StatusUnhealthy,
			Message: fmt.Sprintf("ping failed: %v", err),
			Latency: time.Since(start),
		}
	}

	stats := c.repo.Stats()

	// 连接池利用率
	utilization := 0.0
	if stats.MaxOpenConnections > 0 {
		utilization = float64(stats.InUse) / float64(stats.MaxOpenConnections)
	}

	status := StatusHealthy
	message := "ok"
	if utilization > 0.9 {
		status = StatusDegraded
		message = "connection pool near limit"
	}
	if stats.MaxOpenConnections > 0 && stats.InUse >= stats.MaxOpenConnections {
		status = StatusUnhealthy
		message = "connection pool exhausted"
	}

	return CheckResult{
		Status:  status,
		Message: message,
		Details: map[string]any{
			"open_conns": stats.OpenConnections,
			"in_use":     stats.InUse,
			"idle":       stats.Idle,
			"max_open":   stats.MaxOpenConnections,
			"wait_count": stats.WaitCount,
		},
		Latency: time.Since(start),
	}
}
