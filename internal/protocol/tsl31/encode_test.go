package tsl31

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncode_KnownVector(t *testing.T) {
	// address=1, 仅 tally2, brightness=1/7, 空标签
	raw, err := MarshalPacket(Fields{
		Address:    1,
		Tally:      [4]bool{false, true, false, false},
		Brightness: BrightnessOneSeventh,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 地址 0x01 有 1 个置位，校验位补齐为偶 → byte0 = 0x81
	if raw[0] != 0x81 {
		t.Fatalf("byte0: want 0x81, got %#02x", raw[0])
	}
	// tally2 → bit2 (0x04)，brightness=1 → bit5 (0x20)
	if raw[1] != 0x24 {
		t.Fatalf("byte1: want 0x24, got %#02x", raw[1])
	}
	if !bytes.Equal(raw[2:], bytes.Repeat([]byte{0x20}, TextLength)) {
		t.Fatalf("text: want 16 spaces, got %q", raw[2:])
	}

	p, err := Decode(raw[:])
	if err != nil {
		t.Fatalf("decode of own output failed: %v", err)
	}
	if p.Address() != 1 || !p.Tally(2) || p.Tally(1) || p.Tally(3) || p.Tally(4) {
		t.Fatalf("vector did not round-trip: %s", p)
	}
	if p.Brightness() != BrightnessOneSeventh || p.DisplayLabel() != "" {
		t.Fatalf("vector did not round-trip: %s", p)
	}
}

func TestEncode_RangeRejection(t *testing.T) {
	dst := make([]byte, PacketLength)

	err := EncodePacket(dst, Fields{Address: 127})
	var rerr *RangeError
	if !errors.As(err, &rerr) || rerr.Field != "address" {
		t.Fatalf("address 127: want address RangeError, got %v", err)
	}

	err = EncodePacket(dst, Fields{Address: 1, Brightness: 4})
	if !errors.As(err, &rerr) || rerr.Field != "brightness" {
		t.Fatalf("brightness 4: want brightness RangeError, got %v", err)
	}

	// 失败时不得写入任何字节
	if !bytes.Equal(dst, make([]byte, PacketLength)) {
		t.Fatalf("destination written despite range error: %v", dst)
	}
}

func TestEncode_BadDestinationLength(t *testing.T) {
	err := EncodePacket(make([]byte, 17), Fields{Address: 1})
	var lerr *LengthError
	if !errors.As(err, &lerr) {
		t.Fatalf("want LengthError for short destination, got %v", err)
	}
}

func TestEncodeDecode_RoundTripAllAddresses(t *testing.T) {
	tallyCases := [][4]bool{
		{false, false, false, false},
		{true, false, false, false},
		{false, true, true, false},
		{true, true, true, true},
	}
	for addr := uint8(0); addr <= MaxAddress; addr++ {
		for _, tally := range tallyCases {
			for br := Brightness(0); br <= MaxBrightness; br++ {
				raw, err := MarshalPacket(Fields{
					Address:    addr,
					Tally:      tally,
					Brightness: br,
					Text:       []byte("CAM 1"),
				})
				if err != nil {
					t.Fatalf("encode addr=%d: %v", addr, err)
				}
				p, err := Decode(raw[:])
				if err != nil {
					t.Fatalf("decode addr=%d: %v", addr, err)
				}
				if p.Address() != addr || p.TallyStates() != tally || p.Brightness() != br {
					t.Fatalf("round-trip mismatch at addr=%d: %s", addr, p)
				}
				if p.DisplayLabel() != "CAM 1" {
					t.Fatalf("label mismatch at addr=%d: %q", addr, p.DisplayLabel())
				}
			}
		}
	}
}

func TestEncode_TextNormalization(t *testing.T) {
	raw, err := MarshalPacket(Fields{Address: 5, Text: []byte("a very long label indeed")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p, err := Decode(raw[:])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 超长标签截断到 16 字节
	if p.DisplayLabel() != "a very long labe" {
		t.Fatalf("truncated label: %q", p.DisplayLabel())
	}
	if len(p.DisplayText()) != TextLength {
		t.Fatalf("display text length: %d", len(p.DisplayText()))
	}
}
