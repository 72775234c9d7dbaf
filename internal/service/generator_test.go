package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/yuqie6/CodeForge/internal/schema"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"PyTorch Classifier", "pytorch-classifier"},
		{"Simple Block Chain in Go!", "simple-block-chain-in-go"},
		{"API (v2)", "api-v2"},
		{"under_score-kept", "under_score-kept"},
	}
	for _, tt := range tests {
		if got := SanitizeName(tt.in); got != tt.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFallbackStructure(t *testing.T) {
	py := fallbackStructure(&Brief{PrimaryLanguage: "python"})
	for _, path := range []string{"README.md", ".gitignore", "requirements.txt", "src/main.py", "tests/test_main.py"} {
		if _, ok := py[path]; !ok {
			t.Errorf("python structure missing %s", path)
		}
	}

	js := fallbackStructure(&Brief{PrimaryLanguage: "typescript"})
	if _, ok := js["package.json"]; !ok {
		t.Error("js structure missing package.json")
	}
	if _, ok := js["requirements.txt"]; ok {
		t.Error("js structure should not include requirements.txt")
	}
}

func TestGenerateProjectWithoutAI(t *testing.T) {
	outputDir := t.TempDir()
	g := NewGenerator(nil, outputDir)

	brief := &Brief{
		Title:           "PyTorch Classifier",
		Description:     "A classifier",
		PrimaryLanguage: "python",
		Technologies:    []string{"torch", "fastapi"},
		AppType:         "script",
	}
	project := &schema.Project{Title: brief.Title}

	dir, files, err := g.GenerateProject(context.Background(), brief, project)
	if err != nil {
		t.Fatalf("GenerateProject: %v", err)
	}
	if dir != filepath.Join(outputDir, "pytorch-classifier") {
		t.Errorf("dir = %s", dir)
	}
	if len(files) == 0 {
		t.Fatal("no files generated")
	}

	// 生成的文件真实落盘
	for _, f := range files {
		if _, err := os.Stat(filepath.Join(dir, f)); err != nil {
			t.Errorf("file %s not written: %v", f, err)
		}
	}

	if !project.HasReadme {
		t.Error("has_readme not set")
	}
	if !project.HasTests {
		t.Error("has_tests not set")
	}
	if project.LinesOfCode == 0 {
		t.Error("lines_of_code = 0")
	}
	if len(project.FileStructure) != len(files) {
		t.Errorf("file_structure = %d entries, files = %d", len(project.FileStructure), len(files))
	}
}

func TestGenerateCommitMessagesFallback(t *testing.T) {
	g := NewGenerator(nil, t.TempDir())

	messages := g.GenerateCommitMessages(context.Background(), &Brief{Title: "x"})
	if len(messages) != 5 {
		t.Fatalf("messages = %d, want 5", len(messages))
	}
	if messages[0] != "chore: initial project structure" {
		t.Errorf("messages[0] = %q", messages[0])
	}
}

func TestIsFileEntry(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"src/main.py", true},
		{"Dockerfile", true},
		{"LICENSE", true},
		{"src", false},
		{"tests", false},
		{".gitignore", true},
	}
	for _, tt := range tests {
		if got := isFileEntry(tt.path); got != tt.want {
			t.Errorf("isFileEntry(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
