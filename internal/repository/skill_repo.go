package repository

import (
	"context"
	"fmt"

	"github.com/yuqie6/CodeForge/internal/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SkillRepository 技能仓储
type SkillRepository struct {
	db *gorm.DB
}

// NewSkillRepository 创建仓储
func NewSkillRepository(db *gorm.DB) *SkillRepository {
	return &SkillRepository{db: db}
}

// GetByName 根据名称获取技能
func (r *SkillRepository) GetByName(ctx context.Context, name string) (*schema.Skill, error) {
	var skill schema.Skill
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&skill).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("查询技能失败: %w", err)
	}
	return &skill, nil
}

// Upsert 插入或更新技能
func (r *SkillRepository) Upsert(ctx context.Context, skill *schema.Skill) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		UpdateAll: true,
	}).Create(skill).Error
}

// Save 保存技能（熟练度更新后持久化）
func (r *SkillRepository) Save(ctx context.Context, skill *schema.Skill) error {
	if err := r.db.WithContext(ctx).Save(skill).Error; err != nil {
		return fmt.Errorf("保存技能失败: %w", err)
	}
	return nil
}

// GetAll 获取所有技能
func (r *SkillRepository) GetAll(ctx context.Context) ([]schema.Skill, error) {
	var skills []schema.Skill
	err := r.db.WithContext(ctx).Order("proficiency DESC, projects_count DESC").Find(&skills).Error
	if err != nil {
		return nil, fmt.Errorf("查询技能失败: %w", err)
	}
	return skills, nil
}

// GetByCategory 根据分类获取技能
func (r *SkillRepository) GetByCategory(ctx context.Context, category schema.ProjectCategory) ([]schema.Skill, error) {
	var skills []schema.Skill
	err := r.db.WithContext(ctx).
		Where("category = ?", category).
		Order("proficiency ASC, projects_count ASC").
		Find(&skills).Error
	if err != nil {
		return nil, fmt.Errorf("查询分类技能失败: %w", err)
	}
	return skills, nil
}

// GetByNames 根据名称集合获取技能
func (r *SkillRepository) GetByNames(ctx context.Context, names []string) ([]schema.Skill, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var skills []schema.Skill
	err := r.db.WithContext(ctx).Where("name IN ?", names).Find(&skills).Error
	if err != nil {
		return nil, fmt.Errorf("查询技能失败: %w", err)
	}
	return skills, nil
}

// Count 统计技能数量
func (r *SkillRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&schema.Skill{}).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("统计技能失败: %w", err)
	}
	return count, nil
}

// AverageProficiency 全部技能的平均熟练度，无技能时为 0
func (r *SkillRepository) AverageProficiency(ctx context.Context) (float64, error) {
	var avg *float64
	err := r.db.WithContext(ctx).
		Model(&schema.Skill{}).
		Select("AVG(proficiency)").
		Scan(&avg).Error
	if err != nil {
		return 0, fmt.Errorf("统计平均熟练度失败: %w", err)
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}
