package repository

import (
	"context"
	"fmt"

	"github.com/yuqie6/CodeForge/internal/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ActivityRepository 每日活动仓储
type ActivityRepository struct {
	db *gorm.DB
}

// NewActivityRepository 创建仓储
func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Upsert 按日期插入或更新
func (r *ActivityRepository) Upsert(ctx context.Context, activity *schema.DailyActivity) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		UpdateAll: true,
	}).Create(activity).Error
}

// GetByDate 按日期获取
func (r *ActivityRepository) GetByDate(ctx context.Context, date string) (*schema.DailyActivity, error) {
	var activity schema.DailyActivity
	err := r.db.WithContext(ctx).Where("date = ?", date).First(&activity).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("查询每日活动失败: %w", err)
	}
	return &activity, nil
}

// GetRecent 获取最近的活动记录，按日期倒序
func (r *ActivityRepository) GetRecent(ctx context.Context, limit int) ([]schema.DailyActivity, error) {
	var activities []schema.DailyActivity
	err := r.db.WithContext(ctx).
		Order("date DESC").
		Limit(limit).
		Find(&activities).Error
	if err != nil {
		return nil, fmt.Errorf("查询每日活动失败: %w", err)
	}
	return activities, nil
}

// GetAllDatesDesc 获取全部活动日期，按日期倒序（用于连续打卡计算）
func (r *ActivityRepository) GetAllDatesDesc(ctx context.Context) ([]string, error) {
	var dates []string
	err := r.db.WithContext(ctx).
		Model(&schema.DailyActivity{}).
		Order("date DESC").
		Pluck("date", &dates).Error
	if err != nil {
		return nil, fmt.Errorf("查询活动日期失败: %w", err)
	}
	return dates, nil
}
