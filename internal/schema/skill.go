package schema

import (
	"time"
)

// Skill 技能及其熟练度
// 数据量级：几十级，仅新增不删除
type Skill struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Category    ProjectCategory `gorm:"size:50;index" json:"category"`
	Proficiency float64         `gorm:"default:0" json:"proficiency"` // 0-100

	Description         string    `gorm:"type:text" json:"description"`
	RelatedTechnologies JSONArray `gorm:"type:text" json:"related_technologies"`

	// 仅由熟练度更新算法递增
	ProjectsCount int        `gorm:"default:0" json:"projects_count"`
	LastUsed      *time.Time `json:"last_used"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (Skill) TableName() string {
	return "skills"
}

// ProjectSkill 项目与技能的多对多关联
type ProjectSkill struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID int64 `gorm:"not null;index" json:"project_id"`
	SkillID   int64 `gorm:"not null;index" json:"skill_id"`

	// 本项目对该技能的贡献权重 (0,1]
	ContributionWeight float64 `gorm:"default:1.0" json:"contribution_weight"`
}

// TableName 指定表名
func (ProjectSkill) TableName() string {
	return "project_skills"
}
