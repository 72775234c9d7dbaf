package service

import (
	"context"
	"time"

	"github.com/yuqie6/CodeForge/internal/ai"
	"github.com/yuqie6/CodeForge/internal/schema"
)

// 仓储/外部依赖的最小接口集合（ISP）

type SkillStore interface {
	GetAll(ctx context.Context) ([]schema.Skill, error)
	GetByName(ctx context.Context, name string) (*schema.Skill, error)
	GetByNames(ctx context.Context, names []string) ([]schema.Skill, error)
	GetByCategory(ctx context.Context, category schema.ProjectCategory) ([]schema.Skill, error)
	Save(ctx context.Context, skill *schema.Skill) error
	Count(ctx context.Context) (int64, error)
	AverageProficiency(ctx context.Context) (float64, error)
}

type ProjectStore interface {
	Create(ctx context.Context, project *schema.Project) error
	Save(ctx context.Context, project *schema.Project) error
	GetByTitle(ctx context.Context, title string) (*schema.Project, error)
	GetCreatedSince(ctx context.Context, cutoff time.Time) ([]schema.Project, error)
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status schema.ProjectStatus) (int64, error)
	LinkSkill(ctx context.Context, link *schema.ProjectSkill) error
}

type CommitStore interface {
	Create(ctx context.Context, commit *schema.CommitRecord) error
}

type ActivityStore interface {
	Upsert(ctx context.Context, activity *schema.DailyActivity) error
	GetByDate(ctx context.Context, date string) (*schema.DailyActivity, error)
	GetAllDatesDesc(ctx context.Context) ([]string, error)
}

type AchievementStore interface {
	GetLocked(ctx context.Context, criteriaType string) ([]schema.Achievement, error)
	GetAll(ctx context.Context) ([]schema.Achievement, error)
	Save(ctx context.Context, achievement *schema.Achievement) error
}

// TextGenerator 生成式文本后端（DeepSeek/Ollama 统一接口的消费侧投影）
type TextGenerator interface {
	ChatWithOptions(ctx context.Context, messages []ai.Message, temperature float64, maxTokens int) (string, error)
	IsConfigured() bool
}

// RepoBackend 本地版本控制后端
type RepoBackend interface {
	InitRepo(ctx context.Context, dir string) error
	Reset(ctx context.Context, dir string) error
	Stage(ctx context.Context, dir string, files []string) error
	Commit(ctx context.Context, dir, message string) (string, error)
	Push(ctx context.Context, dir, remoteURL, branch string) error
}

// HostingBackend 远端仓库托管服务
type HostingBackend interface {
	CreateRepo(ctx context.Context, name, description string, private bool) (string, error)
}

// ConfirmFunc 发布前的确认能力；交互与非交互环境注入不同实现
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)
