package schema

import "time"

// DailyActivity 每日活动汇总，按日期唯一，每次工作流运行 upsert 一次
type DailyActivity struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Date string `gorm:"size:10;uniqueIndex;not null" json:"date"` // YYYY-MM-DD

	ProjectsCreated   int `gorm:"default:0" json:"projects_created"`
	ProjectsCompleted int `gorm:"default:0" json:"projects_completed"`
	CommitsMade       int `gorm:"default:0" json:"commits_made"`
	LinesAdded        int `gorm:"default:0" json:"lines_added"`
	LinesDeleted      int `gorm:"default:0" json:"lines_deleted"`

	SkillsPracticed  JSONArray `gorm:"type:text" json:"skills_practiced"`
	TechnologiesUsed JSONArray `gorm:"type:text" json:"technologies_used"`

	ExecutionSuccessful bool    `gorm:"default:true" json:"execution_successful"`
	ExecutionSeconds    float64 `gorm:"default:0" json:"execution_seconds"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (DailyActivity) TableName() string {
	return "daily_activities"
}
