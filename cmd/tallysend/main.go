package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/openbroadcast/tally-server/internal/outbound"
	"github.com/openbroadcast/tally-server/internal/protocol/tsl31"
)

// tallysend 从命令行组帧并通过 UDP 发送 TSL 3.1 报文，
// 或重放 YAML 场景文件
func main() {
	dest := flag.String("dest", "127.0.0.1:1234", "目的地址 host:port")
	address := flag.Uint("addr", 0, "显示地址（0..126）")
	tallyList := flag.String("tally", "", "置位的通道号，逗号分隔（如 1,2）")
	brightness := flag.String("brightness", "full", "亮度：off|seventh|half|full 或 0..3")
	label := flag.String("label", "", "显示标签（超过 16 字节截断）")
	scene := flag.String("scene", "", "YAML 场景文件路径（设置后忽略单帧参数）")
	rate := flag.Int("rate", 50, "每秒发送上限")
	verbose := flag.Bool("v", false, "输出调试日志")
	flag.Parse()

	logCfg := zap.NewProductionConfig()
	if *verbose {
		logCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := logCfg.Build()
	if err != nil {
		fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	sender, err := outbound.NewSender(*dest, *rate, *rate*2, nil, logger)
	if err != nil {
		fatalf("dial %s: %v", *dest, err)
	}
	defer func() { _ = sender.Close() }()

	ctx := context.Background()

	if *scene != "" {
		sc, err := outbound.LoadScene(*scene)
		if err != nil {
			fatalf("%v", err)
		}
		if err := sender.SendScene(ctx, sc); err != nil {
			fatalf("send scene: %v", err)
		}
		fmt.Printf("sent %d packets to %s\n", len(sc.Steps), sender.Dest())
		return
	}

	addr, err := parseAddress(*address)
	if err != nil {
		fatalf("%v", err)
	}
	f := tsl31.Fields{
		Address: addr,
		Tally:   parseTally(*tallyList),
		Text:    []byte(*label),
	}
	f.Brightness, err = parseBrightness(*brightness)
	if err != nil {
		fatalf("%v", err)
	}

	if err := sender.Send(ctx, f); err != nil {
		fatalf("send: %v", err)
	}
	fmt.Printf("sent tally update for address %d to %s\n", f.Address, sender.Dest())
}

// parseAddress 在压窄到 uint8 前校验范围，避免 300 之类的输入被静默截断
func parseAddress(v uint) (uint8, error) {
	if v > tsl31.MaxAddress {
		return 0, fmt.Errorf("address %d out of range (max %d)", v, tsl31.MaxAddress)
	}
	return uint8(v), nil
}

// parseTally 解析逗号分隔的通道号列表
func parseTally(s string) [4]bool {
	var tally [4]bool
	if s == "" {
		return tally
	}
	for _, part := range strings.Split(s, ",") {
		ch, err := strconv.Atoi(strings.TrimSpace(part))
		if err == nil && ch >= 1 && ch <= 4 {
			tally[ch-1] = true
		}
	}
	return tally
}

// parseBrightness 支持档位名与数字两种写法
func parseBrightness(s string) (tsl31.Brightness, error) {
	switch strings.ToLower(s) {
	case "off", "0":
		return tsl31.BrightnessOff, nil
	case "seventh", "1":
		return tsl31.BrightnessOneSeventh, nil
	case "half", "2":
		return tsl31.BrightnessOneHalf, nil
	case "full", "3":
		return tsl31.BrightnessFull, nil
	}
	return 0, fmt.Errorf("invalid brightness %q", s)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
