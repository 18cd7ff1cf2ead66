package tally

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openbroadcast/tally-server/internal/protocol/tsl31"
)

// State 某个地址最近一次已知的 tally 状态
type State struct {
	Address    uint8     `json:"address"`
	Tally      [4]bool   `json:"tally"`
	Brightness uint8     `json:"brightness"`
	Label      string    `json:"label"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// OnAir 任意一路 tally 置位即视为在播
func (s State) OnAir() bool {
	return s.Tally[0] || s.Tally[1] || s.Tally[2] || s.Tally[3]
}

// Event 一次状态更新事件。Changed 表示与上一次已知状态相比字段有变化
type Event struct {
	ID       string    `json:"id"`
	State    State     `json:"state"`
	Previous *State    `json:"previous,omitempty"`
	Changed  bool      `json:"changed"`
	At       time.Time `json:"at"`
}

// Sink 状态事件消费方（Redis 镜像、事件入库等）
type Sink func(Event)

// Registry 按地址维护最近状态的内存注册表。
// 读写锁保护状态表；Sink 仅允许在启动阶段注册，之后只读
type Registry struct {
	mu     sync.RWMutex
	states map[uint8]State
	sinks  []Sink
}

func NewRegistry() *Registry {
	return &Registry{states: make(map[uint8]State)}
}

// AddSink 注册事件消费方（启动阶段调用，非并发安全）
func (r *Registry) AddSink(s Sink) {
	r.sinks = append(r.sinks, s)
}

// Apply 用一帧已解码报文更新注册表并向所有 Sink 派发事件
func (r *Registry) Apply(p tsl31.Packet) Event {
	now := time.Now()
	st := State{
		Address:    p.Address(),
		Tally:      p.TallyStates(),
		Brightness: uint8(p.Brightness()),
		Label:      p.DisplayLabel(),
		UpdatedAt:  now,
	}

	r.mu.Lock()
	prev, known := r.states[st.Address]
	r.states[st.Address] = st
	r.mu.Unlock()

	ev := Event{ID: uuid.NewString(), State: st, Changed: true, At: now}
	if known {
		p := prev
		ev.Previous = &p
		ev.Changed = !sameState(prev, st)
	}

	for _, sink := range r.sinks {
		sink(ev)
	}
	return ev
}

// Get 查询某地址的最近状态
func (r *Registry) Get(addr uint8) (State, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.states[addr]
	return st, ok
}

// Snapshot 按地址升序返回全部状态
func (r *Registry) Snapshot() []State {
	r.mu.RLock()
	out := make([]State, 0, len(r.states))
	for _, st := range r.states {
		out = append(out, st)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

// Len 已知地址数
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.states)
}

// OnAirCount 当前在播地址数
func (r *Registry) OnAirCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, st := range r.states {
		if st.OnAir() {
			n++
		}
	}
	return n
}

// sameState 比较除 UpdatedAt 之外的全部字段
func sameState(a, b State) bool {
	return a.Address == b.Address && a.Tally == b.Tally &&
		a.Brightness == b.Brightness && a.Label == b.Label
}
