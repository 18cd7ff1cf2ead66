package gormrepo

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	cfgpkg "github.com/openbroadcast/tally-server/internal/config"
	"github.com/openbroadcast/tally-server/internal/storage/models"
	"github.com/openbroadcast/tally-server/internal/tally"
)

// Repository 基于 GORM 的 tally 事件存储
type Repository struct {
	db *gorm.DB
}

// Open 建立 PostgreSQL 连接并配置连接池，按需执行迁移
func Open(cfg cfgpkg.DatabaseConfig) (*Repository, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	r := &Repository{db: db}
	if cfg.AutoMigrate {
		if err := db.AutoMigrate(&models.TallyEvent{}); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// New 返回使用给定 *gorm.DB 的存储实例（测试注入用）
func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// InsertEvent 落库一条状态更新事件
func (r *Repository) InsertEvent(ctx context.Context, ev tally.Event) error {
	record := recordFromEvent(ev)
	return r.db.WithContext(ctx).Create(&record).Error
}

// RecentEvents 按时间倒序查询最近的事件
func (r *Repository) RecentEvents(ctx context.Context, limit int) ([]models.TallyEvent, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	var out []models.TallyEvent
	err := r.db.WithContext(ctx).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// EventsByAddress 查询单个地址的事件历史
func (r *Repository) EventsByAddress(ctx context.Context, addr uint8, limit int) ([]models.TallyEvent, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	var out []models.TallyEvent
	err := r.db.WithContext(ctx).
		Where("address = ?", int16(addr)).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// PurgeBefore 清理给定时刻之前的历史事件，返回删除行数
func (r *Repository) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("occurred_at < ?", cutoff).
		Delete(&models.TallyEvent{})
	return res.RowsAffected, res.Error
}

// Stats 底层连接池统计
func (r *Repository) Stats() sql.DBStats {
	sqlDB, err := r.db.DB()
	if err != nil {
		return sql.DBStats{}
	}
	return sqlDB.Stats()
}

// Ping 健康检查
func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close 关闭底层连接池
func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func recordFromEvent(ev tally.Event) models.TallyEvent {
	return models.TallyEvent{
		EventID:    ev.ID,
		Address:    int16(ev.State.Address),
		Tally1:     ev.State.Tally[0],
		Tally2:     ev.State.Tally[1],
		Tally3:     ev.State.Tally[2],
		Tally4:     ev.State.Tally[3],
		Brightness: int16(ev.State.Brightness),
		Label:      ev.State.Label,
		Changed:    ev.Changed,
		OccurredAt: ev.At,
	}
}
