package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

func DefaultConfigPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("获取可执行文件路径失败: %w", err)
	}
	exeDir := filepath.Dir(exe)
	return filepath.Join(exeDir, "config", "config.yaml"), nil
}

func WriteFile(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("cfg 不能为空")
	}
	if path == "" {
		return fmt.Errorf("path 不能为空")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}

	payload := map[string]any{
		"app": map[string]any{
			"name":      cfg.App.Name,
			"version":   cfg.App.Version,
			"log_level": cfg.App.LogLevel,
		},
		"github": map[string]any{
			"username":           cfg.GitHub.Username,
			"token":              cfg.GitHub.Token,
			"email":              cfg.GitHub.Email,
			"default_visibility": cfg.GitHub.DefaultVisibility,
		},
		"ai": map[string]any{
			"provider": cfg.AI.Provider,
			"deepseek": map[string]any{
				"api_key":  cfg.AI.DeepSeek.APIKey,
				"base_url": cfg.AI.DeepSeek.BaseURL,
				"model":    cfg.AI.DeepSeek.Model,
			},
			"ollama": map[string]any{
				"base_url": cfg.AI.Ollama.BaseURL,
				"model":    cfg.AI.Ollama.Model,
			},
		},
		"skills": map[string]any{
			"focus_areas":      cfg.Skills.FocusAreas,
			"advancement_rate": cfg.Skills.AdvancementRate,
		},
		"scheduling": map[string]any{
			"enabled":                    cfg.Scheduling.Enabled,
			"time":                       cfg.Scheduling.Time,
			"timezone":                   cfg.Scheduling.Timezone,
			"time_randomization_minutes": cfg.Scheduling.RandomizationMinutes,
			"skip_weekends":              cfg.Scheduling.SkipWeekends,
			"retry_on_failure":           cfg.Scheduling.RetryOnFailure,
			"max_retries":                cfg.Scheduling.MaxRetries,
		},
		"automation": map[string]any{
			"mode":            cfg.Automation.Mode,
			"commit_strategy": cfg.Automation.CommitStrategy,
		},
		"projects": map[string]any{
			"output_directory": cfg.Projects.OutputDirectory,
		},
		"storage": map[string]any{
			"db_path": cfg.Storage.DBPath,
		},
	}

	b, err := yaml.Marshal(payload)
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}
	return nil
}

// Default 带默认值的配置，init 命令写盘前使用
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:     "forge-agent",
			Version:  "0.1.0",
			LogLevel: "info",
		},
		GitHub: GitHubConfig{
			Token:             "${GITHUB_TOKEN}",
			DefaultVisibility: "public",
		},
		AI: AIConfig{
			Provider: "deepseek",
			DeepSeek: DeepSeekConfig{
				APIKey:  "${DEEPSEEK_API_KEY}",
				BaseURL: "https://api.deepseek.com",
				Model:   "deepseek-chat",
			},
			Ollama: OllamaConfig{
				BaseURL: "http://localhost:11434",
				Model:   "llama3.2",
			},
		},
		Skills: SkillsConfig{
			FocusAreas: map[string]float64{
				"ai_ml":               40,
				"full_stack":          30,
				"system_design":       20,
				"security_blockchain": 10,
			},
			AdvancementRate: "moderate",
		},
		Scheduling: SchedulingConfig{
			Enabled:              true,
			Time:                 "09:00",
			Timezone:             "Local",
			RandomizationMinutes: 120,
			SkipWeekends:         false,
			RetryOnFailure:       true,
			MaxRetries:           3,
		},
		Automation: AutomationConfig{
			Mode:           "auto",
			CommitStrategy: "smart",
		},
		Projects: ProjectsConfig{
			OutputDirectory: "./data/projects",
		},
		Storage: StorageConfig{
			DBPath: "./data/forge.db",
		},
	}
}
