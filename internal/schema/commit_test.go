package schema

import "testing"

func TestInferCommitType(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"feat: add pipeline", "feat"},
		{"chore: initial project structure", "chore"},
		{"refactor: extract loader", "refactor"},
		{"test: cover edge cases", "test"},
		{"no prefix here", "other"},
		{": leading colon", "other"},
	}
	for _, tt := range tests {
		if got := InferCommitType(tt.message); got != tt.want {
			t.Errorf("InferCommitType(%q) = %q, want %q", tt.message, got, tt.want)
		}
	}
}
