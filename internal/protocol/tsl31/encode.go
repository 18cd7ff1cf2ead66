package tsl31

// Fields 一帧报文的全部逻辑字段。
// Text 可为任意长度：编码时超过 16 字节截断，不足右侧补空格，
// 这是协议约定的归一化而非错误
type Fields struct {
	Address    uint8
	Tally      [4]bool
	Brightness Brightness
	Text       []byte
}

// EncodePacket 将字段序列化进调用方提供的 18 字节缓冲区。
// 地址或亮度越界返回 *RangeError 且不写入任何字节（与宽容解码相反，
// 编码在程序控制之下，越界应当立刻失败而不是静默截断）。
// 校验位始终由地址推导，调用方无法写入不一致的校验位
func EncodePacket(dst []byte, f Fields) error {
	if len(dst) != PacketLength {
		return &LengthError{Got: len(dst)}
	}
	if f.Address > MaxAddress {
		return &RangeError{Field: "address", Value: int(f.Address), Max: MaxAddress}
	}
	if f.Brightness > MaxBrightness {
		return &RangeError{Field: "brightness", Value: int(f.Brightness), Max: MaxBrightness}
	}
	dst[0] = ComposeAddressByte(f.Address)
	dst[1] = ComposeControlByte(f.Tally, f.Brightness)
	text := ComposeText(f.Text)
	copy(dst[2:PacketLength], text[:])
	return nil
}

// MarshalPacket 编码为新的 18 字节线路映像
func MarshalPacket(f Fields) ([PacketLength]byte, error) {
	var out [PacketLength]byte
	if err := EncodePacket(out[:], f); err != nil {
		return out, err
	}
	return out, nil
}
