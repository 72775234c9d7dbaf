package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/yuqie6/CodeForge/internal/schema"
	"gorm.io/gorm"
)

// ProjectRepository 项目仓储
type ProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository 创建仓储
func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create 创建项目记录
func (r *ProjectRepository) Create(ctx context.Context, project *schema.Project) error {
	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		return fmt.Errorf("创建项目失败: %w", err)
	}
	return nil
}

// Save 保存项目（状态流转后持久化）
func (r *ProjectRepository) Save(ctx context.Context, project *schema.Project) error {
	if err := r.db.WithContext(ctx).Save(project).Error; err != nil {
		return fmt.Errorf("保存项目失败: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取项目
func (r *ProjectRepository) GetByID(ctx context.Context, id int64) (*schema.Project, error) {
	var project schema.Project
	err := r.db.WithContext(ctx).First(&project, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("查询项目失败: %w", err)
	}
	return &project, nil
}

// GetByTitle 根据标题获取项目（精确匹配）
func (r *ProjectRepository) GetByTitle(ctx context.Context, title string) (*schema.Project, error) {
	var project schema.Project
	err := r.db.WithContext(ctx).Where("title = ?", title).First(&project).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("查询项目失败: %w", err)
	}
	return &project, nil
}

// GetCreatedSince 获取指定时间之后创建的项目，按创建时间倒序
func (r *ProjectRepository) GetCreatedSince(ctx context.Context, cutoff time.Time) ([]schema.Project, error) {
	var projects []schema.Project
	err := r.db.WithContext(ctx).
		Where("created_at >= ?", cutoff).
		Order("created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, fmt.Errorf("查询近期项目失败: %w", err)
	}
	return projects, nil
}

// Count 统计项目总数
func (r *ProjectRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&schema.Project{}).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("统计项目失败: %w", err)
	}
	return count, nil
}

// CountByStatus 按状态统计项目数
func (r *ProjectRepository) CountByStatus(ctx context.Context, status schema.ProjectStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&schema.Project{}).
		Where("status = ?", status).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("按状态统计项目失败: %w", err)
	}
	return count, nil
}

// GetRecent 获取最近的项目
func (r *ProjectRepository) GetRecent(ctx context.Context, limit int) ([]schema.Project, error) {
	var projects []schema.Project
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&projects).Error
	if err != nil {
		return nil, fmt.Errorf("查询项目失败: %w", err)
	}
	return projects, nil
}

// LinkSkill 建立项目与技能的关联
func (r *ProjectRepository) LinkSkill(ctx context.Context, link *schema.ProjectSkill) error {
	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		return fmt.Errorf("关联技能失败: %w", err)
	}
	return nil
}

// GetSkillLinks 获取项目的技能关联
func (r *ProjectRepository) GetSkillLinks(ctx context.Context, projectID int64) ([]schema.ProjectSkill, error) {
	var links []schema.ProjectSkill
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("查询技能关联失败: %w", err)
	}
	return links, nil
}
