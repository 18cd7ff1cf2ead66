package gormrepo

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/openbroadcast/tally-server/internal/tally"
)

// eventInserter 写入器依赖的最小落库接口（*Repository 实现）
type eventInserter interface {
	InsertEvent(ctx context.Context, ev tally.Event) error
}

// Writer 异步事件写入器：注册表 Sink 只入队不阻塞，
// 后台 goroutine 逐条落库，队列满时丢弃并计数
type Writer struct {
	repo    eventInserter
	log     *zap.Logger
	onError func()

	ch chan tally.Event
	wg sync.WaitGroup
}

// NewWriter 创建写入器
// onError: 单条写入失败时的回调（指标计数），可为 nil
func NewWriter(repo eventInserter, queueSize int, onError func(), log *zap.Logger) *Writer {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Writer{
		repo:    repo,
		log:     log,
		onError: onError,
		ch:      make(chan tally.Event, queueSize),
	}
}

// Sink 返回可注册到 tally.Registry 的事件入口
func (w *Writer) Sink() tally.Sink {
	return func(ev tally.Event) {
		select {
		case w.ch <- ev:
		default:
			w.log.Warn("event queue full, dropping db write",
				zap.String("event_id", ev.ID))
			if w.onError != nil {
				w.onError()
			}
		}
	}
}

// Start 启动消费 goroutine；ctx 取消后停止接收并排空队列
func (w *Writer) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case <-ctx.Done():
				w.drain()
				return
			case ev := <-w.ch:
				w.write(ev)
			}
		}
	}()
}

// Wait 等待消费 goroutine 排空队列并退出；
// 必须在 ctx 取消后、关闭底层存储前调用，否则停机时丢事件
func (w *Writer) Wait() {
	w.wg.Wait()
}

func (w *Writer) drain() {
	for {
		select {
		case ev := <-w.ch:
			w.write(ev)
		default:
			return
		}
	}
}

func (w *Writer) write(ev tally.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := w.repo.InsertEvent(ctx, ev); err != nil {
		w.log.Error("insert tally event failed",
			zap.String("event_id", ev.ID),
			zap.Error(err))
		if w.onError != nil {
			w.onError()
		}
	}
}
