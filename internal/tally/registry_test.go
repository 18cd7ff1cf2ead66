package tally

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbroadcast/tally-server/internal/protocol/tsl31"
)

func decodePacket(t *testing.T, f tsl31.Fields) tsl31.Packet {
	t.Helper()
	raw, err := tsl31.MarshalPacket(f)
	require.NoError(t, err)
	// 注册表在 Apply 内即取出全部字段，测试里保留底层数组即可
	buf := make([]byte, len(raw))
	copy(buf, raw[:])
	p, err := tsl31.Decode(buf)
	require.NoError(t, err)
	return p
}

// TestRegistry_ApplyAndGet 测试首次更新与查询
func TestRegistry_ApplyAndGet(t *testing.T) {
	r := NewRegistry()
	p := decodePacket(t, tsl31.Fields{
		Address:    7,
		Tally:      [4]bool{true, false, false, false},
		Brightness: tsl31.BrightnessFull,
		Text:       []byte("CAM 7"),
	})

	ev := r.Apply(p)
	assert.True(t, ev.Changed)
	assert.Nil(t, ev.Previous)
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, uint8(7), ev.State.Address)

	st, ok := r.Get(7)
	require.True(t, ok)
	assert.Equal(t, "CAM 7", st.Label)
	assert.True(t, st.OnAir())
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, 1, r.OnAirCount())

	_, ok = r.Get(8)
	assert.False(t, ok)
}

// TestRegistry_ChangedFlag 测试重复报文不标记变化
func TestRegistry_ChangedFlag(t *testing.T) {
	r := NewRegistry()
	f := tsl31.Fields{Address: 3, Tally: [4]bool{false, true, false, false}, Text: []byte("PGM")}

	ev1 := r.Apply(decodePacket(t, f))
	assert.True(t, ev1.Changed)

	// 相同内容的报文：有事件但无变化
	ev2 := r.Apply(decodePacket(t, f))
	assert.False(t, ev2.Changed)
	require.NotNil(t, ev2.Previous)
	assert.Equal(t, ev1.State.Label, ev2.Previous.Label)

	// tally 熄灭：变化
	f.Tally = [4]bool{}
	ev3 := r.Apply(decodePacket(t, f))
	assert.True(t, ev3.Changed)
	assert.Equal(t, 0, r.OnAirCount())
}

// TestRegistry_Snapshot 测试快照按地址排序
func TestRegistry_Snapshot(t *testing.T) {
	r := NewRegistry()
	for _, addr := range []uint8{40, 2, 17} {
		r.Apply(decodePacket(t, tsl31.Fields{Address: addr}))
	}

	snap := r.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, uint8(2), snap[0].Address)
	assert.Equal(t, uint8(17), snap[1].Address)
	assert.Equal(t, uint8(40), snap[2].Address)
}

// TestRegistry_Sinks 测试事件派发
func TestRegistry_Sinks(t *testing.T) {
	r := NewRegistry()
	var got []Event
	r.AddSink(func(ev Event) { got = append(got, ev) })

	r.Apply(decodePacket(t, tsl31.Fields{Address: 1}))
	r.Apply(decodePacket(t, tsl31.Fields{Address: 1, Tally: [4]bool{true}}))

	require.Len(t, got, 2)
	assert.True(t, got[0].Changed)
	assert.True(t, got[1].Changed)
	assert.NotEqual(t, got[0].ID, got[1].ID)
}
