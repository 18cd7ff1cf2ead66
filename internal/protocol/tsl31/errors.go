package tsl31

import "fmt"

// LengthError 输入缓冲区长度不等于 18 字节
type LengthError struct {
	Got int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("bad packet length: expected %d, got %d", PacketLength, e.Got)
}

// ParityError 线路校验位与按地址计算出的校验位不符。
// Packet 字段仍指向可读视图，调用方可对受损帧做尽力而为的展示
type ParityError struct {
	Packet Packet
	Addr   uint8
	Got    bool
	Want   bool
}

func (e *ParityError) Error() string {
	return fmt.Sprintf("parity mismatch for address %d: got bit %t, want %t", e.Addr, e.Got, e.Want)
}

// RangeError 编码入参数值越界
type RangeError struct {
	Field string
	Value int
	Max   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s out of range: %d (valid 0..%d)", e.Field, e.Value, e.Max)
}
