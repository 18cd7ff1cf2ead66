package health

import (
	"context"
	"sync"
	"time"
)

// Aggregator 汇总各组件检查器，供就绪探针与 /health 报告使用。
// 检查器在启动阶段按启用的组件注册（事件存储、镜像均为可选）
type Aggregator struct {
	mu       sync.RWMutex
	checkers []Checker
}

// NewAggregator 创建聚合器
func NewAggregator(checkers ...Checker) *Aggregator {
	return &Aggregator{checkers: checkers}
}

// AddChecker 注册检查器
func (a *Aggregator) AddChecker(c Checker) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.checkers = append(a.checkers, c)
}

// CheckAll 并发执行全部检查器，按组件名汇总结果
func (a *Aggregator) CheckAll(ctx context.Context) map[string]CheckResult {
	a.mu.RLock()
	checkers := make([]Checker, len(a.checkers))
	copy(checkers, a.checkers)
	a.mu.RUnlock()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = make(map[string]CheckResult, len(checkers))
	)
	for _, c := range checkers {
		wg.Add(1)
		go func(c Checker) {
			defer wg.Done()
			r := c.Check(ctx)
			mu.Lock()
			results[c.Name()] = r
			mu.Unlock()
		}(c)
	}
	wg.Wait()
	return results
}

// Report 健康报告：整体状态取各组件中最严重者
type Report struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks"`
}

// Run 执行全部检查并生成报告
func (a *Aggregator) Run(ctx context.Context) Report {
	checks := a.CheckAll(ctx)
	overall := StatusHealthy
	for _, r := range checks {
		overall = worse(overall, r.Status)
	}
	return Report{
		Status:    overall,
		Timestamp: time.Now(),
		Checks:    checks,
	}
}

// Ready 就绪判定：Degraded 仍可接收流量，仅 Unhealthy 不就绪
func (a *Aggregator) Ready(ctx context.Context) bool {
	return a.Run(ctx).Status != StatusUnhealthy
}
