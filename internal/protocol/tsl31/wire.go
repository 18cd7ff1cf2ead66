package tsl31

import "math/bits"

// TSL UMD v3.1 帧常量
const (
	// PacketLength 帧固定长度（字节）
	PacketLength = 18
	// TextLength 显示文本固定长度（字节）
	TextLength = 16
	// MaxAddress 地址上限（7 位，0x7F 保留）
	MaxAddress = 0x7E
	// MaxBrightness 亮度上限（2 位）
	MaxBrightness = 3
)

// byte0 位域：bit0-6 地址，bit7 偶校验位
const (
	addressMask = 0x7F
	parityMask  = 0x80
)

// byte1 位域：bit1-4 为 tally1..tally4，bit5-6 为亮度（bit5 低位）
// bit0 与 bit7 为保留位，上行忽略，下行恒为 0
const (
	tallyShift      = 1
	brightnessShift = 5
	brightnessMask  = 0x03
)

// textFill 显示文本右侧补齐字节（空格）
const textFill = 0x20

// ExtractAddress 拆出 byte0 中的 7 位地址与线路上携带的校验位
func ExtractAddress(b byte) (addr uint8, parity bool) {
	return b & addressMask, b&parityMask != 0
}

// ExpectedParity 计算地址 7 位的偶校验位：
// 地址置位个数为奇数时校验位为 1，使 byte0 总置位数为偶数
func ExpectedParity(addr uint8) bool {
	return bits.OnesCount8(addr&addressMask)%2 == 1
}

// ExtractControl 拆出 byte1 中的 4 路 tally 与亮度档位
func ExtractControl(b byte) (tally [4]bool, brightness Brightness) {
	for i := 0; i < 4; i++ {
		tally[i] = b&(1<<(tallyShift+i)) != 0
	}
	brightness = Brightness((b >> brightnessShift) & brightnessMask)
	return tally, brightness
}

// ComposeAddressByte 组装 byte0：低 7 位地址 + 由地址推导的校验位
func ComposeAddressByte(addr uint8) byte {
	b := addr & addressMask
	if ExpectedParity(addr) {
		b |= parityMask
	}
	return b
}

// ComposeControlByte 组装 byte1，保留位恒为 0
func ComposeControlByte(tally [4]bool, brightness Brightness) byte {
	var b byte
	for i := 0; i < 4; i++ {
		if tally[i] {
			b |= 1 << (tallyShift + i)
		}
	}
	b |= byte(brightness&brightnessMask) << brightnessShift
	return b
}

// ComposeText 将标签拷入 16 字节定长文本，超长截断，不足右侧补空格
func ComposeText(label []byte) [TextLength]byte {
	var out [TextLength]byte
	n := copy(out[:], label)
	for i := n; i < TextLength; i++ {
		out[i] = textFill
	}
	return out
}

// Brightness 显示亮度档位（2 位）
type Brightness uint8

const (
	BrightnessOff        Brightness = 0
	BrightnessOneSeventh Brightness = 1
	BrightnessOneHalf    Brightness = 2
	BrightnessFull       Brightness = 3
)

func (b Brightness) String() string {
	switch b {
	case BrightnessOff:
		return "0"
	case BrightnessOneSeventh:
		return "1/7"
	case BrightnessOneHalf:
		return "1/2"
	case BrightnessFull:
		return "1"
	}
	return "?"
}
