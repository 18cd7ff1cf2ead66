package ratelimit

import (
	"context"
	"sync/atomic"

	"golang.org/x/time/rate"
)

// Limiter 基于 Token Bucket 的速率限流器。
// 上行侧用 Allow 丢弃超额数据报，下行侧用 Wait 平滑发送节奏
type Limiter struct {
	limiter       *rate.Limiter
	allowedCount  atomic.Int64
	rejectedCount atomic.Int64
}

// New 创建限流器
// perSec: 每秒允许的事件数（稳定速率）
// burst: 突发容量（桶的大小）
func New(perSec, burst int) *Limiter {
	if perSec <= 0 {
		perSec = 100
	}
	if burst <= 0 {
		burst = perSec * 2
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(perSec), burst)}
}

// Allow 检查是否允许（非阻塞）
func (l *Limiter) Allow() bool {
	if l.limiter.Allow() {
		l.allowedCount.Add(1)
		return true
	}
	l.rejectedCount.Add(1)
	return false
}

// Wait 等待直到允许（阻塞，随 ctx 取消）
func (l *Limiter) Wait(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		l.rejectedCount.Add(1)
		return err
	}
	l.allowedCount.Add(1)
	return nil
}

// AllowedCount 允许的事件数（累计）
func (l *Limiter) AllowedCount() int64 {
	return l.allowedCount.Load()
}

// RejectedCount 拒绝的事件数（累计）
func (l *Limiter) RejectedCount() int64 {
	return l.rejectedCount.Load()
}
