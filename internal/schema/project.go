package schema

import (
	"time"
)

// ProjectCategory 项目分类，与技能聚焦方向对齐
type ProjectCategory string

const (
	CategoryAIML               ProjectCategory = "ai_ml"
	CategoryFullStack          ProjectCategory = "full_stack"
	CategorySystemDesign       ProjectCategory = "system_design"
	CategorySecurityBlockchain ProjectCategory = "security_blockchain"
)

// AllCategories 按枚举顺序返回全部分类（gap 平局时按此顺序取先者）
func AllCategories() []ProjectCategory {
	return []ProjectCategory{
		CategoryAIML,
		CategoryFullStack,
		CategorySystemDesign,
		CategorySecurityBlockchain,
	}
}

// DifficultyLevel 项目难度
type DifficultyLevel string

const (
	DifficultyBeginner     DifficultyLevel = "beginner"
	DifficultyIntermediate DifficultyLevel = "intermediate"
	DifficultyAdvanced     DifficultyLevel = "advanced"
)

// ProjectStatus 项目生命周期状态
// 状态只能向前流转：planned → in_progress → {completed, failed}
type ProjectStatus string

const (
	StatusPlanned    ProjectStatus = "planned"
	StatusInProgress ProjectStatus = "in_progress"
	StatusCompleted  ProjectStatus = "completed"
	StatusFailed     ProjectStatus = "failed"
)

// Project 生成的项目及其元数据
// 数据量级：千级/年
type Project struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string          `gorm:"size:200;not null;index" json:"title"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Category    ProjectCategory `gorm:"size:50;index" json:"category"`
	Difficulty  DifficultyLevel `gorm:"size:20" json:"difficulty"`

	// 技术栈
	Technologies    JSONArray `gorm:"type:text" json:"technologies"`
	PrimaryLanguage string    `gorm:"size:50" json:"primary_language"`

	// 远端仓库信息
	// 未发布的项目该字段为空串，不能做唯一索引；重名由时间戳后缀避免
	RepositoryName string `gorm:"size:200;index" json:"repository_name"`
	RepositoryURL  string `gorm:"size:500" json:"repository_url"`
	IsPrivate      bool   `gorm:"default:false" json:"is_private"`

	Status ProjectStatus `gorm:"size:20;default:planned;index" json:"status"`

	// 文件结构：路径 → 用途
	FileStructure JSONStringMap `gorm:"type:text" json:"file_structure"`
	LinesOfCode   int           `gorm:"default:0" json:"lines_of_code"`

	// 质量指标（合成占位值，非真实静态分析结果）
	HasReadme             bool    `gorm:"default:false" json:"has_readme"`
	HasTests              bool    `gorm:"default:false" json:"has_tests"`
	DocumentationCoverage float64 `gorm:"default:0" json:"documentation_coverage"`
	CodeQualityScore      float64 `gorm:"default:0" json:"code_quality_score"`

	CreatedAt   time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

// TableName 指定表名
func (Project) TableName() string {
	return "projects"
}
