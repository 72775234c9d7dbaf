package config

import (
	"testing"
)

func validConfig() *Config {
	cfg := Default()
	return cfg
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	t.Run("权重合计必须为 100", func(t *testing.T) {
		cfg := validConfig()
		cfg.Skills.FocusAreas["ai_ml"] = 50
		if err := cfg.Validate(); err == nil {
			t.Fatal("expected error for weights not summing to 100")
		}
	})

	t.Run("小数权重容忍浮点误差", func(t *testing.T) {
		cfg := validConfig()
		// 33.3+33.3+33.4 的浮点和并非精确 100
		cfg.Skills.FocusAreas = map[string]float64{
			"ai_ml":         33.3,
			"full_stack":    33.3,
			"system_design": 33.4,
		}
		if err := cfg.Validate(); err != nil {
			t.Fatalf("fractional weights summing to 100 rejected: %v", err)
		}
	})

	t.Run("权重不能为负", func(t *testing.T) {
		cfg := validConfig()
		cfg.Skills.FocusAreas["ai_ml"] = -10
		cfg.Skills.FocusAreas["full_stack"] = 80
		if err := cfg.Validate(); err == nil {
			t.Fatal("expected error for negative weight")
		}
	})

	t.Run("进阶速率枚举", func(t *testing.T) {
		cfg := validConfig()
		cfg.Skills.AdvancementRate = "ludicrous"
		if err := cfg.Validate(); err == nil {
			t.Fatal("expected error for invalid advancement rate")
		}
	})

	t.Run("自动化模式枚举", func(t *testing.T) {
		cfg := validConfig()
		cfg.Automation.Mode = "yolo"
		if err := cfg.Validate(); err == nil {
			t.Fatal("expected error for invalid mode")
		}
	})

	t.Run("提交策略枚举", func(t *testing.T) {
		cfg := validConfig()
		cfg.Automation.CommitStrategy = "massive"
		if err := cfg.Validate(); err == nil {
			t.Fatal("expected error for invalid commit strategy")
		}
	})

	t.Run("调度时间格式", func(t *testing.T) {
		cfg := validConfig()
		cfg.Scheduling.Time = "nine o'clock"
		if err := cfg.Validate(); err == nil {
			t.Fatal("expected error for invalid schedule time")
		}
	})
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("FORGE_TEST_TOKEN", "secret")

	if got := expandEnv("${FORGE_TEST_TOKEN}"); got != "secret" {
		t.Errorf("expandEnv = %q, want %q", got, "secret")
	}
	if got := expandEnv("plain-value"); got != "plain-value" {
		t.Errorf("expandEnv = %q, want unchanged", got)
	}
	if got := expandEnv("${UNSET_VAR_XYZ}"); got != "" {
		t.Errorf("expandEnv = %q, want empty", got)
	}
}
