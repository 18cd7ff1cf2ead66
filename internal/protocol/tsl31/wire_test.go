package tsl31

import (
	"bytes"
	"math/bits"
	"testing"
)

func TestExpectedParity_Deterministic(t *testing.T) {
	for addr := uint8(0); addr <= MaxAddress; addr++ {
		a := ExpectedParity(addr)
		b := ExpectedParity(addr)
		if a != b {
			t.Fatalf("parity not deterministic for addr %d", addr)
		}
		// 偶校验定义：地址置位数 + 校验位 为偶数
		ones := bits.OnesCount8(addr)
		if a {
			ones++
		}
		if ones%2 != 0 {
			t.Fatalf("parity for addr %d leaves odd bit count", addr)
		}
	}
}

func TestExpectedParity_SingleBitFlipInverts(t *testing.T) {
	for addr := uint8(0); addr <= MaxAddress; addr++ {
		base := ExpectedParity(addr)
		for bit := 0; bit < 7; bit++ {
			flipped := addr ^ (1 << bit)
			if ExpectedParity(flipped&addressMask) == base {
				t.Fatalf("flipping bit %d of addr %d did not invert parity", bit, addr)
			}
		}
	}
}

func TestComposeAddressByte_RoundTrip(t *testing.T) {
	for addr := uint8(0); addr <= MaxAddress; addr++ {
		b := ComposeAddressByte(addr)
		gotAddr, gotParity := ExtractAddress(b)
		if gotAddr != addr {
			t.Fatalf("addr round-trip: want %d, got %d", addr, gotAddr)
		}
		if gotParity != ExpectedParity(addr) {
			t.Fatalf("composed parity bit wrong for addr %d", addr)
		}
	}
}

func TestComposeControlByte_RoundTrip(t *testing.T) {
	for mask := 0; mask < 16; mask++ {
		var tally [4]bool
		for i := 0; i < 4; i++ {
			tally[i] = mask&(1<<i) != 0
		}
		for br := Brightness(0); br <= MaxBrightness; br++ {
			b := ComposeControlByte(tally, br)
			// 保留位必须为 0
			if b&0x81 != 0 {
				t.Fatalf("reserved bits set in control byte %#02x", b)
			}
			gotTally, gotBr := ExtractControl(b)
			if gotTally != tally || gotBr != br {
				t.Fatalf("control round-trip: want %v/%v, got %v/%v", tally, br, gotTally, gotBr)
			}
		}
	}
}

func TestExtractControl_IgnoresReservedBits(t *testing.T) {
	b := ComposeControlByte([4]bool{true, false, true, false}, BrightnessOneHalf)
	tally, br := ExtractControl(b | 0x81)
	if tally != [4]bool{true, false, true, false} || br != BrightnessOneHalf {
		t.Fatalf("reserved bits leaked into fields: %v/%v", tally, br)
	}
}

func TestComposeText(t *testing.T) {
	short := ComposeText([]byte("CAM 1"))
	if !bytes.Equal(short[:5], []byte("CAM 1")) {
		t.Fatalf("label not copied: %q", short)
	}
	for i := 5; i < TextLength; i++ {
		if short[i] != textFill {
			t.Fatalf("position %d not space-padded: %#02x", i, short[i])
		}
	}

	long := ComposeText([]byte("0123456789ABCDEFXYZ"))
	if !bytes.Equal(long[:], []byte("0123456789ABCDEF")) {
		t.Fatalf("overlong label not truncated: %q", long)
	}

	empty := ComposeText(nil)
	if !bytes.Equal(empty[:], bytes.Repeat([]byte{textFill}, TextLength)) {
		t.Fatalf("empty label not all spaces: %q", empty)
	}
}

func TestBrightnessString(t *testing.T) {
	cases := map[Brightness]string{
		BrightnessOff:        "0",
		BrightnessOneSeventh: "1/7",
		BrightnessOneHalf:    "1/2",
		BrightnessFull:       "1",
	}
	for br, want := range cases {
		if br.String() != want {
			t.Fatalf("brightness %d: want %q, got %q", br, want, br.String())
		}
	}
}
