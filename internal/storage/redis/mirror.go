package redis

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/openbroadcast/tally-server/internal/tally"
)

// Mirror 将 tally 状态镜像到 Redis：
// 最近状态写入 hash（按地址为字段），有变化的事件发布到频道，
// 供多画面界面等下游消费方订阅
type Mirror struct {
	client    *Client
	keyPrefix string
	channel   string
	onError   func()
	log       *zap.Logger
}

// NewMirror 创建状态镜像
// onError: 写入/发布失败时的回调（指标计数），可为 nil
func NewMirror(client *Client, keyPrefix, channel string, onError func(), log *zap.Logger) *Mirror {
	if keyPrefix == "" {
		keyPrefix = "tally"
	}
	if channel == "" {
		channel = "tally:events"
	}
	return &Mirror{
		client:    client,
		keyPrefix: keyPrefix,
		channel:   channel,
		onError:   onError,
		log:       log,
	}
}

// StatesKey 状态 hash 的键名
func (m *Mirror) StatesKey() string {
	return m.keyPrefix + ":states"
}

// Sink 返回可注册到 tally.Registry 的事件入口
func (m *Mirror) Sink() tally.Sink {
	return func(ev tally.Event) {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := m.Publish(ctx, ev); err != nil {
			m.log.Error("redis mirror failed",
				zap.String("event_id", ev.ID),
				zap.Error(err))
			if m.onError != nil {
				m.onError()
			}
		}
	}
}

// Publish 写入最近状态并发布变更事件
func (m *Mirror) Publish(ctx context.Context, ev tally.Event) error {
	payload, err := json.Marshal(ev.State)
	if err != nil {
		return err
	}

	pipe := m.client.TxPipeline()
	pipe.HSet(ctx, m.StatesKey(), strconv.Itoa(int(ev.State.Address)), payload)
	if ev.Changed {
		eventPayload, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		pipe.Publish(ctx, m.channel, eventPayload)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// Snapshot 读取 hash 中的全部镜像状态
func (m *Mirror) Snapshot(ctx context.Context) ([]tally.State, error) {
	raw, err := m.client.HGetAll(ctx, m.StatesKey()).Result()
	if err != nil {
		return nil, err
	}
	out := make([]tally.State, 0, len(raw))
	for _, v := range raw {
		var st tally.State
		if err := json.Unmarshal([]byte(v), &st); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}
