package tsl31

// Decode 将任意长度的字节切片解释为一帧 TSL 3.1 报文。
// 长度校验先于任何字段访问；成功时返回直接借用 buf 的零拷贝视图。
// 校验位不符返回 *ParityError，错误中仍携带可读视图，
// 由调用方决定丢弃还是对受损帧做尽力而为的消费
func Decode(buf []byte) (Packet, error) {
	if len(buf) != PacketLength {
		return Packet{}, &LengthError{Got: len(buf)}
	}
	p := Packet{buf: buf}
	addr, got := ExtractAddress(buf[0])
	if want := ExpectedParity(addr); got != want {
		return p, &ParityError{Packet: p, Addr: addr, Got: got, Want: want}
	}
	return p, nil
}
