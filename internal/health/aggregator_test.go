package health

import (
	"context"
	"testing"
	"time"
)

// stubChecker 固定返回给定结果的检查器
type stubChecker struct {
	name   string
	status Status
	delay  time.Duration
}

func (s stubChecker) Name() string { return s.name }

func (s stubChecker) Check(_ context.Context) CheckResult {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return CheckResult{
		Status:  s.status,
		Message: "stub",
		Latency: s.delay,
	}
}

// TestRun_OverallStatus 测试整体状态取各组件中最严重者
func TestRun_OverallStatus(t *testing.T) {
	cases := []struct {
		name     string
		database Status
		redis    Status
		udp      Status
		want     Status
		ready    bool
	}{
		{"全部健康", StatusHealthy, StatusHealthy, StatusHealthy, StatusHealthy, true},
		{"镜像降级", StatusHealthy, StatusDegraded, StatusHealthy, StatusDegraded, true},
		{"事件存储不健康", StatusUnhealthy, StatusHealthy, StatusHealthy, StatusUnhealthy, false},
		{"降级与不健康并存", StatusHealthy, StatusDegraded, StatusUnhealthy, StatusUnhealthy, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			agg := NewAggregator(
				stubChecker{name: "database", status: tc.database},
				stubChecker{name: "redis", status: tc.redis},
				stubChecker{name: "udp", status: tc.udp},
			)

			report := agg.Run(context.Background())
			if report.Status != tc.want {
				t.Errorf("整体状态期望 %v，实际 %v", tc.want, report.Status)
			}
			if len(report.Checks) != 3 {
				t.Errorf("期望 3 个组件结果，实际 %d", len(report.Checks))
			}
			if got := agg.Ready(context.Background()); got != tc.ready {
				t.Errorf("Ready 期望 %v，实际 %v", tc.ready, got)
			}
		})
	}
}

// TestRun_EmptyAggregatorHealthy 测试无检查器时整体为健康（可选组件全部关闭）
func TestRun_EmptyAggregatorHealthy(t *testing.T) {
	agg := NewAggregator()
	report := agg.Run(context.Background())
	if report.Status != StatusHealthy {
		t.Errorf("期望 StatusHealthy，实际 %v", report.Status)
	}
	if !agg.Ready(context.Background()) {
		t.Error("无检查器时应当就绪")
	}
}

// TestCheckAll_Concurrent 测试检查器并发执行而非串行
func TestCheckAll_Concurrent(t *testing.T) {
	const delay = 50 * time.Millisecond
	agg := NewAggregator(
		stubChecker{name: "database", status: StatusHealthy, delay: delay},
		stubChecker{name: "redis", status: StatusHealthy, delay: delay},
		stubChecker{name: "udp", status: StatusHealthy, delay: delay},
	)

	start := time.Now()
	results := agg.CheckAll(context.Background())
	elapsed := time.Since(start)

	if len(results) != 3 {
		t.Fatalf("期望 3 个结果，实际 %d", len(results))
	}
	// 串行执行需要 3*delay 以上
	if elapsed > 2*delay {
		t.Errorf("检查耗时 %v，疑似串行执行", elapsed)
	}
}

// TestAddChecker 测试启动阶段按启用组件追加检查器
func TestAddChecker(t *testing.T) {
	agg := NewAggregator(stubChecker{name: "udp", status: StatusHealthy})
	agg.AddChecker(stubChecker{name: "database", status: StatusDegraded})

	report := agg.Run(context.Background())
	if len(report.Checks) != 2 {
		t.Fatalf("期望 2 个组件结果，实际 %d", len(report.Checks))
	}
	if report.Status != StatusDegraded {
		t.Errorf("期望 StatusDegraded，实际 %v", report.Status)
	}
}
