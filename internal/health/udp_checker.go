package health

import (
	"context"
	"fmt"
	"time"

	"github.com/openbroadcast/tally-server/internal/udpserver"
)

// UDPChecker UDP 网关健康检查器
type UDPChecker struct {
	server *udpserver.Server
}

// NewUDPChecker 创建 UDP 健康检查器
func NewUDPChecker(server *udpserver.Server) *UDPChecker {
	return &UDPChecker{server: server}
}

// Name 返回检查器名称
func (c *UDPChecker) Name() string {
	return "udp"
}

// Check 执行健康检查
func (c *UDPChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()

	stats := c.server.Stats()

	// 解码失败占比过高意味着链路或发送端异常
	status := StatusHealthy
	message := "ok"
	if stats.Received > 100 {
		errRate := float64(stats.DecodeErrors) / float64(stats.Received)
		if errRate > 0.5 {
			status = StatusDegraded
			message = fmt.Sprintf("high decode error rate: %.1f%%", errRate*100)
		}
	}

	return CheckResult{
		Status:  status,
		Message: message,
		Details: map[string]any{
			"received":      stats.Received,
			"decode_errors": stats.DecodeErrors,
			"throttled":     stats.Throttled,
		},
		Latency: time.Since(start),
	}
}
