package schema

import (
	"strings"
	"time"
)

// CommitRecord 已执行提交的记录，只追加不修改
type CommitRecord struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID int64 `gorm:"not null;index" json:"project_id"`

	CommitHash    string `gorm:"size:40;uniqueIndex" json:"commit_hash"`
	CommitMessage string `gorm:"type:text;not null" json:"commit_message"`
	CommitType    string `gorm:"size:50" json:"commit_type"` // feat, fix, chore, refactor, test, other

	FilesChanged JSONArray `gorm:"type:text" json:"files_changed"`
	Additions    int       `gorm:"default:0" json:"additions"`
	Deletions    int       `gorm:"default:0" json:"deletions"`

	AuthorName  string `gorm:"size:100" json:"author_name"`
	AuthorEmail string `gorm:"size:200" json:"author_email"`

	CommittedAt time.Time  `gorm:"index" json:"committed_at"`
	PushedAt    *time.Time `json:"pushed_at"`
}

// TableName 指定表名
func (CommitRecord) TableName() string {
	return "commits"
}

// InferCommitType 从提交信息推断类型：取第一个冒号前的前缀，无冒号则为 other
func InferCommitType(message string) string {
	if idx := strings.Index(message, ":"); idx > 0 {
		return strings.TrimSpace(message[:idx])
	}
	return "other"
}
