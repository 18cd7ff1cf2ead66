package udpserver

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	cfgpkg "github.com/openbroadcast/tally-server/internal/config"
	"github.com/openbroadcast/tally-server/internal/metrics"
	"github.com/openbroadcast/tally-server/internal/protocol/tsl31"
	"github.com/openbroadcast/tally-server/internal/ratelimit"
	"github.com/openbroadcast/tally-server/internal/tally"
)

// Server UDP 网关：接收 TSL 3.1 数据报并更新 tally 注册表。
// 编解码本身不做任何 I/O，所有网络逻辑都收在这里
type Server struct {
	cfg     cfgpkg.UDPConfig
	reg     *tally.Registry
	m       *metrics.AppMetrics
	log     *zap.Logger
	limiter *ratelimit.Limiter

	conn    *net.UDPConn
	wg      sync.WaitGroup
	stopped atomic.Bool

	received     atomic.Int64
	decodeErrors atomic.Int64
}

// Stats 运行统计
type Stats struct {
	Received     int64 `json:"received"`
	DecodeErrors int64 `json:"decode_errors"`
	Throttled    int64 `json:"throttled"`
}

// New 创建 UDP 网关
func New(cfg cfgpkg.UDPConfig, reg *tally.Registry, m *metrics.AppMetrics, log *zap.Logger) *Server {
	return &Server{
		cfg:     cfg,
		reg:     reg,
		m:       m,
		log:     log,
		limiter: ratelimit.New(cfg.RatePerSec, cfg.Burst),
	}
}

// Start 绑定端口并启动读循环（非阻塞，内部 goroutine）
func (s *Server) Start() error {
	addr, err := net.ResolveUDPAddr("udp", s.cfg.Addr)
	if err != nil {
		return err
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return err
	}
	s.conn = conn
	s.log.Info("udp gateway listening", zap.String("addr", conn.LocalAddr().String()))

	s.wg.Add(1)
	go s.readLoop()
	return nil
}

func (s *Server) readLoop() {
	defer s.wg.Done()

	size := s.cfg.BufferSize
	if size <= 0 {
		size = 2048
	}
	buf := make([]byte, size)
	for {
		n, remote, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			if s.stopped.Load() {
				return
			}
			s.log.Warn("udp read error", zap.Error(err))
			continue
		}
		if !s.limiter.Allow() {
			s.m.UDPThrottled.Inc()
			continue
		}
		// 报文视图只借用 buf，HandleDatagram 返回前消费完毕，
		// 下一轮循环才会复用缓冲区
		s.HandleDatagram(buf[:n], remote)
	}
}

// HandleDatagram 解码一个数据报并更新状态。
// 长度错误的帧记录后丢弃；校验位错误的帧按配置丢弃或尽力而为地采纳
func (s *Server) HandleDatagram(data []byte, remote *net.UDPAddr) {
	s.received.Add(1)
	s.m.UDPDatagrams.Inc()
	s.m.UDPBytes.Add(float64(len(data)))

	pkt, err := tsl31.Decode(data)
	if err != nil {
		var perr *tsl31.ParityError
		if errors.As(err, &perr) {
			s.m.DecodeTotal.WithLabelValues("parity_error").Inc()
			if !s.cfg.AcceptParityErrors {
				s.decodeErrors.Add(1)
				s.log.Warn("discarding frame with parity mismatch",
					zap.Uint8("address", perr.Addr),
					zap.Stringer("remote", remote),
					zap.Error(err))
				return
			}
			s.log.Warn("accepting frame despite parity mismatch",
				zap.Uint8("address", perr.Addr),
				zap.Stringer("remote", remote))
		} else {
			s.decodeErrors.Add(1)
			s.m.DecodeTotal.WithLabelValues("length_error").Inc()
			s.log.Warn("discarding malformed frame",
				zap.Int("bytes", len(data)),
				zap.Stringer("remote", remote),
				zap.Error(err))
			return
		}
	} else {
		s.m.DecodeTotal.WithLabelValues("ok").Inc()
	}

	ev := s.reg.Apply(pkt)
	if ev.Changed {
		s.m.StateChanges.Inc()
	}
	s.m.OnAirGauge.Set(float64(s.reg.OnAirCount()))
	s.m.AddressGauge.Set(float64(s.reg.Len()))

	s.log.Debug("tally update",
		zap.Uint8("address", ev.State.Address),
		zap.String("packet", pkt.String()),
		zap.Bool("changed", ev.Changed),
		zap.Stringer("remote", remote))
}

// Stats 返回运行统计
func (s *Server) Stats() Stats {
	return Stats{
		Received:     s.received.Load(),
		DecodeErrors: s.decodeErrors.Load(),
		Throttled:    s.limiter.RejectedCount(),
	}
}

// Shutdown 关闭套接字并等待读循环退出
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopped.Store(true)
	if s.conn != nil {
		_ = s.conn.Close()
	}
	ch := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(ch)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ch:
		return nil
	}
}
