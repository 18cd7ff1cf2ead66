package outbound

import (
	"context"
	"net"

	"go.uber.org/zap"

	"github.com/openbroadcast/tally-server/internal/metrics"
	"github.com/openbroadcast/tally-server/internal/protocol/tsl31"
	"github.com/openbroadcast/tally-server/internal/ratelimit"
)

// Sender 将编码后的 TSL 报文按原样通过 UDP 发往固定目的端。
// 发送节奏由限流器平滑，避免淹没串口桥等慢速接收端
type Sender struct {
	conn    *net.UDPConn
	dest    *net.UDPAddr
	limiter *ratelimit.Limiter
	metrics *metrics.AppMetrics
	log     *zap.Logger
}

// NewSender 解析目的地址并建立 UDP 套接字；m 可为 nil（如 CLI 单次发送）
func NewSender(dest string, perSec, burst int, m *metrics.AppMetrics, log *zap.Logger) (*Sender, error) {
	raddr, err := net.ResolveUDPAddr("udp", dest)
	if err != nil {
		return nil, err
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, err
	}
	return &Sender{
		conn:    conn,
		dest:    raddr,
		limiter: ratelimit.New(perSec, burst),
		metrics: m,
		log:     log,
	}, nil
}

// Send 编码并发送一帧；编码失败（字段越界）时不发送任何字节
func (s *Sender) Send(ctx context.Context, f tsl31.Fields) error {
	raw, err := tsl31.MarshalPacket(f)
	if err != nil {
		s.record("error")
		return err
	}
	return s.SendRaw(ctx, raw[:])
}

// SendRaw 发送已编码好的线路映像
func (s *Sender) SendRaw(ctx context.Context, raw []byte) error {
	if err := s.limiter.Wait(ctx); err != nil {
		s.record("error")
		return err
	}
	if _, err := s.conn.Write(raw); err != nil {
		s.record("error")
		return err
	}
	s.record("ok")
	s.log.Debug("sent tsl packet",
		zap.Int("bytes", len(raw)),
		zap.Stringer("dest", s.dest))
	return nil
}

func (s *Sender) record(result string) {
	if s.metrics != nil {
		s.metrics.SendTotal.WithLabelValues(result).Inc()
	}
}

// Dest 目的地址
func (s *Sender) Dest() string {
	return s.dest.String()
}

// Close 关闭套接字
func (s *Sender) Close() error {
	return s.conn.Close()
}
