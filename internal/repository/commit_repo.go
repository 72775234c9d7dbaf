package repository

import (
	"context"
	"fmt"

	"github.com/yuqie6/CodeForge/internal/schema"
	"gorm.io/gorm"
)

// CommitRepository 提交记录仓储（只追加）
type CommitRepository struct {
	db *gorm.DB
}

// NewCommitRepository 创建仓储
func NewCommitRepository(db *gorm.DB) *CommitRepository {
	return &CommitRepository{db: db}
}

// Create 追加一条提交记录
func (r *CommitRepository) Create(ctx context.Context, commit *schema.CommitRecord) error {
	if err := r.db.WithContext(ctx).Create(commit).Error; err != nil {
		return fmt.Errorf("记录提交失败: %w", err)
	}
	return nil
}

// GetByProject 获取项目的全部提交，按提交时间排序
func (r *CommitRepository) GetByProject(ctx context.Context, projectID int64) ([]schema.CommitRecord, error) {
	var commits []schema.CommitRecord
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("committed_at ASC").
		Find(&commits).Error
	if err != nil {
		return nil, fmt.Errorf("查询提交记录失败: %w", err)
	}
	return commits, nil
}

// Count 统计提交总数
func (r *CommitRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&schema.CommitRecord{}).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("统计提交失败: %w", err)
	}
	return count, nil
}
