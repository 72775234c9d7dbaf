package schema

import "time"

// 成就判定类型
const (
	CriteriaProjectCount = "project_count"
	CriteriaStreak       = "streak"
	CriteriaSkillLevel   = "skill_level"
)

// Achievement 成就，解锁单向：一旦解锁不再回退
type Achievement struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`
	Icon        string `gorm:"size:10" json:"icon"`

	CriteriaType  string `gorm:"size:50;index" json:"criteria_type"` // project_count | streak | skill_level
	CriteriaValue int    `gorm:"not null" json:"criteria_value"`

	IsUnlocked bool       `gorm:"default:false;index" json:"is_unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at"`
}

// TableName 指定表名
func (Achievement) TableName() string {
	return "achievements"
}
