package models

import (
	"time"
)

// 注意：
// - 不使用 gorm.Model，显式声明每个字段，避免隐式 DeletedAt
// - tally_events 为只追加的审计表，不做软删除

// TallyEvent 映射 tally_events 表：一次 tally 状态更新的落库记录
type TallyEvent struct {
	// 主键
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// 事件全局唯一标识
	EventID string `gorm:"column:event_id;type:text;not null;uniqueIndex"`
	// 报文地址（0..126）
	Address int16 `gorm:"column:address;not null;index"`
	// 4 路 tally 状态
	Tally1 bool `gorm:"column:tally1;not null"`
	Tally2 bool `gorm:"column:tally2;not null"`
	Tally3 bool `gorm:"column:tally3;not null"`
	Tally4 bool `gorm:"column:tally4;not null"`
	// 亮度档位（0..3）
	Brightness int16 `gorm:"column:brightness;not null"`
	// 显示标签（已归一化，去尾部空格）
	Label string `gorm:"column:label;type:text;not null"`
	// 与上一次已知状态相比是否有字段变化
	Changed bool `gorm:"column:changed;not null"`
	// 事件产生时刻
	OccurredAt time.Time `gorm:"column:occurred_at;not null;index"`
	// 审计字段
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (TallyEvent) TableName() string { return "tally_events" }
