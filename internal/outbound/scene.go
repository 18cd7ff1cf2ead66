package outbound

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/openbroadcast/tally-server/internal/protocol/tsl31"
)

// Scene YAML 场景文件：按顺序重放的一组 tally 更新
type Scene struct {
	Name  string      `yaml:"name"`
	Steps []SceneStep `yaml:"steps"`
}

// SceneStep 一条 tally 更新。Tally 列出置位的通道号（1..4），
// 与命令行工具的 -tally 参数语义一致
type SceneStep struct {
	Address    uint8  `yaml:"address"`
	Tally      []int  `yaml:"tally"`
	Brightness uint8  `yaml:"brightness"`
	Label      string `yaml:"label"`
	// Delay 发送该步骤前的等待时长，time.ParseDuration 语法（如 "500ms"）
	Delay string `yaml:"delay"`
}

// delay 解析步骤等待时长，空串为 0
func (st SceneStep) delay() (time.Duration, error) {
	if st.Delay == "" {
		return 0, nil
	}
	return time.ParseDuration(st.Delay)
}

// Fields 转换为编码器字段
func (st SceneStep) Fields() tsl31.Fields {
	var tally [4]bool
	for _, ch := range st.Tally {
		if ch >= 1 && ch <= 4 {
			tally[ch-1] = true
		}
	}
	return tsl31.Fields{
		Address:    st.Address,
		Tally:      tally,
		Brightness: tsl31.Brightness(st.Brightness),
		Text:       []byte(st.Label),
	}
}

// LoadScene 读取并解析场景文件
func LoadScene(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	var sc Scene
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("scene %s has no steps", path)
	}
	return &sc, nil
}

// SendScene 按顺序重放场景，步骤间遵守各自的 Delay
func (s *Sender) SendScene(ctx context.Context, sc *Scene) error {
	for i, step := range sc.Steps {
		d, err := step.delay()
		if err != nil {
			return fmt.Errorf("scene step %d: %w", i, err)
		}
		if d > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(d):
			}
		}
		if err := s.Send(ctx, step.Fields()); err != nil {
			return fmt.Errorf("scene step %d: %w", i, err)
		}
	}
	return nil
}
