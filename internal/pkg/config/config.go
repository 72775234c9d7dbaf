package config

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	GitHub     GitHubConfig     `mapstructure:"github"`
	AI         AIConfig         `mapstructure:"ai"`
	Skills     SkillsConfig     `mapstructure:"skills"`
	Scheduling SchedulingConfig `mapstructure:"scheduling"`
	Automation AutomationConfig `mapstructure:"automation"`
	Projects   ProjectsConfig   `mapstructure:"projects"`
	Storage    StorageConfig    `mapstructure:"storage"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name     string `mapstructure:"name"`
	Version  string `mapstructure:"version"`
	LogLevel string `mapstructure:"log_level"`
}

// GitHubConfig GitHub 配置
type GitHubConfig struct {
	Username          string `mapstructure:"username"`
	Token             string `mapstructure:"token"`
	Email             string `mapstructure:"email"`
	DefaultVisibility string `mapstructure:"default_visibility"` // public/private
}

// AIConfig AI 配置
type AIConfig struct {
	Provider string         `mapstructure:"provider"` // deepseek/ollama
	DeepSeek DeepSeekConfig `mapstructure:"deepseek"`
	Ollama   OllamaConfig   `mapstructure:"ollama"`
}

// DeepSeekConfig DeepSeek 配置
type DeepSeekConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// OllamaConfig Ollama 配置
type OllamaConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// SkillsConfig 技能目标配置
type SkillsConfig struct {
	// 各分类的目标权重，合计必须为 100
	FocusAreas map[string]float64 `mapstructure:"focus_areas"`
	// 进阶速率：slow/moderate/fast
	AdvancementRate string `mapstructure:"advancement_rate"`
}

// SchedulingConfig 调度配置
type SchedulingConfig struct {
	Enabled              bool   `mapstructure:"enabled"`
	Time                 string `mapstructure:"time"` // HH:MM
	Timezone             string `mapstructure:"timezone"`
	RandomizationMinutes int    `mapstructure:"time_randomization_minutes"`
	SkipWeekends         bool   `mapstructure:"skip_weekends"`
	RetryOnFailure       bool   `mapstructure:"retry_on_failure"`
	MaxRetries           int    `mapstructure:"max_retries"`
}

// AutomationConfig 自动化配置
type AutomationConfig struct {
	Mode           string `mapstructure:"mode"`            // auto/review/manual
	CommitStrategy string `mapstructure:"commit_strategy"` // single/smart/detailed
}

// ProjectsConfig 项目生成配置
type ProjectsConfig struct {
	OutputDirectory string `mapstructure:"output_directory"`
}

// StorageConfig 存储配置
type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// 设置默认值
	setDefaults(v)

	// 设置配置文件路径
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// 默认查找路径
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// 支持环境变量
	v.SetEnvPrefix("FORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Warn("配置文件未找到，使用默认配置")
		} else {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	} else {
		slog.Info("加载配置文件", "path", v.ConfigFileUsed())
	}

	// 解析配置
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// 处理环境变量占位符
	cfg.GitHub.Token = expandEnv(cfg.GitHub.Token)
	cfg.AI.DeepSeek.APIKey = expandEnv(cfg.AI.DeepSeek.APIKey)

	// 处理相对路径
	cfg.Storage.DBPath = resolvePath(cfg.Storage.DBPath)
	cfg.Projects.OutputDirectory = resolvePath(cfg.Projects.OutputDirectory)

	// 配置错误属于致命错误，在任何运行开始前中止
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验配置，加载时调用一次，下游只读固定字段
func (c *Config) Validate() error {
	total := 0.0
	for _, w := range c.Skills.FocusAreas {
		if w < 0 {
			return fmt.Errorf("技能权重不能为负")
		}
		total += w
	}
	// 小数权重相加有浮点误差，按容差比较
	if math.Abs(total-100) > 0.01 {
		return fmt.Errorf("技能权重合计必须为 100，当前为 %.1f", total)
	}

	switch c.Skills.AdvancementRate {
	case "slow", "moderate", "fast":
	default:
		return fmt.Errorf("进阶速率 %q 无效，可选 slow/moderate/fast", c.Skills.AdvancementRate)
	}

	switch c.Automation.Mode {
	case "auto", "review", "manual":
	default:
		return fmt.Errorf("自动化模式 %q 无效，可选 auto/review/manual", c.Automation.Mode)
	}

	switch c.Automation.CommitStrategy {
	case "single", "smart", "detailed":
	default:
		return fmt.Errorf("提交策略 %q 无效，可选 single/smart/detailed", c.Automation.CommitStrategy)
	}

	if c.Scheduling.Time != "" {
		var hour, minute int
		if _, err := fmt.Sscanf(c.Scheduling.Time, "%d:%d", &hour, &minute); err != nil {
			return fmt.Errorf("调度时间 %q 无效: %w", c.Scheduling.Time, err)
		}
	}

	return nil
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.name", "forge-agent")
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("app.log_level", "info")

	// GitHub
	v.SetDefault("github.default_visibility", "public")

	// AI
	v.SetDefault("ai.provider", "deepseek")
	v.SetDefault("ai.deepseek.base_url", "https://api.deepseek.com")
	v.SetDefault("ai.deepseek.model", "deepseek-chat")
	v.SetDefault("ai.ollama.base_url", "http://localhost:11434")
	v.SetDefault("ai.ollama.model", "llama3.2")

	// Skills
	v.SetDefault("skills.focus_areas", map[string]float64{
		"ai_ml":               40,
		"full_stack":          30,
		"system_design":       20,
		"security_blockchain": 10,
	})
	v.SetDefault("skills.advancement_rate", "moderate")

	// Scheduling
	v.SetDefault("scheduling.enabled", true)
	v.SetDefault("scheduling.time", "09:00")
	v.SetDefault("scheduling.timezone", "Local")
	v.SetDefault("scheduling.time_randomization_minutes", 120)
	v.SetDefault("scheduling.skip_weekends", false)
	v.SetDefault("scheduling.retry_on_failure", true)
	v.SetDefault("scheduling.max_retries", 3)

	// Automation
	v.SetDefault("automation.mode", "auto")
	v.SetDefault("automation.commit_strategy", "smart")

	// Projects
	v.SetDefault("projects.output_directory", "./data/projects")

	// Storage
	v.SetDefault("storage.db_path", "./data/forge.db")
}

// expandEnv 展开环境变量占位符 ${VAR}
func expandEnv(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		envVar := s[2 : len(s)-1]
		return os.Getenv(envVar)
	}
	return s
}

// resolvePath 解析相对路径为绝对路径
func resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	// 获取可执行文件目录
	exe, err := os.Executable()
	if err != nil {
		return path
	}

	exeDir := filepath.Dir(exe)
	return filepath.Join(exeDir, path)
}

// SetupLogger 根据配置设置日志级别
func SetupLogger(level string) {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
