package tsl31

import (
	"fmt"
	"strings"
)

// Packet 一帧 TSL 3.1 报文的零拷贝只读视图。
// 视图只借用调用方的底层切片，构造时不复制；每个访问器在调用时
// 按位重新计算字段，未访问的字段零开销。
// 底层缓冲区被复用或释放后不得继续持有视图。
type Packet struct {
	buf []byte
}

// Address 报文地址（0..126）
func (p Packet) Address() uint8 {
	addr, _ := ExtractAddress(p.buf[0])
	return addr
}

// ParityBit 线路上携带的校验位（byte0 bit7）
func (p Packet) ParityBit() bool {
	_, parity := ExtractAddress(p.buf[0])
	return parity
}

// Tally 第 n 路 tally 状态，n 取 1..4；越界返回 false
func (p Packet) Tally(n int) bool {
	if n < 1 || n > 4 {
		return false
	}
	tally, _ := ExtractControl(p.buf[1])
	return tally[n-1]
}

// TallyStates 4 路 tally 状态
func (p Packet) TallyStates() [4]bool {
	tally, _ := ExtractControl(p.buf[1])
	return tally
}

// Brightness 显示亮度档位
func (p Packet) Brightness() Brightness {
	_, brightness := ExtractControl(p.buf[1])
	return brightness
}

// DisplayText 16 字节显示文本。返回的是底层缓冲区的子切片（零拷贝），
// 调用方不得修改
func (p Packet) DisplayText() []byte {
	return p.buf[2:PacketLength]
}

// DisplayLabel 去除尾部空格与 NUL 后的显示文本
func (p Packet) DisplayLabel() string {
	return strings.TrimRight(string(p.DisplayText()), " \x00")
}

// Bytes 底层 18 字节线路映像（借用，非拷贝）
func (p Packet) Bytes() []byte {
	return p.buf
}

func (p Packet) String() string {
	t := p.TallyStates()
	return fmt.Sprintf("addr=%d, 1=%t, 2=%t, 3=%t, 4=%t, brightness=%s, display=%q",
		p.Address(), t[0], t[1], t[2], t[3], p.Brightness(), p.DisplayLabel())
}
