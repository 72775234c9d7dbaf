package repository

import (
	"context"
	"fmt"

	"github.com/yuqie6/CodeForge/internal/schema"
	"gorm.io/gorm"
)

// AchievementRepository 成就仓储
type AchievementRepository struct {
	db *gorm.DB
}

// NewAchievementRepository 创建仓储
func NewAchievementRepository(db *gorm.DB) *AchievementRepository {
	return &AchievementRepository{db: db}
}

// GetLocked 获取指定判定类型的未解锁成就
func (r *AchievementRepository) GetLocked(ctx context.Context, criteriaType string) ([]schema.Achievement, error) {
	var achievements []schema.Achievement
	err := r.db.WithContext(ctx).
		Where("is_unlocked = ? AND criteria_type = ?", false, criteriaType).
		Find(&achievements).Error
	if err != nil {
		return nil, fmt.Errorf("查询未解锁成就失败: %w", err)
	}
	return achievements, nil
}

// GetAll 获取全部成就
func (r *AchievementRepository) GetAll(ctx context.Context) ([]schema.Achievement, error) {
	var achievements []schema.Achievement
	err := r.db.WithContext(ctx).
		Order("criteria_type, criteria_value").
		Find(&achievements).Error
	if err != nil {
		return nil, fmt.Errorf("查询成就失败: %w", err)
	}
	return achievements, nil
}

// Save 保存成就（解锁后持久化）
func (r *AchievementRepository) Save(ctx context.Context, achievement *schema.Achievement) error {
	if err := r.db.WithContext(ctx).Save(achievement).Error; err != nil {
		return fmt.Errorf("保存成就失败: %w", err)
	}
	return nil
}

// GetByName 根据名称获取成就
func (r *AchievementRepository) GetByName(ctx context.Context, name string) (*schema.Achievement, error) {
	var achievement schema.Achievement
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&achievement).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("查询成就失败: %w", err)
	}
	return &achievement, nil
}
