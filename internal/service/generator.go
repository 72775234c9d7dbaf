package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yuqie6/CodeForge/internal/ai"
	"github.com/yuqie6/CodeForge/internal/schema"
)

// Generator 项目产物生成器
// 文件结构与代码内容优先走 AI，失败时用确定性模板兜底，保证总能产出完整项目
type Generator struct {
	client    TextGenerator
	outputDir string
}

// NewGenerator 创建生成器
func NewGenerator(client TextGenerator, outputDir string) *Generator {
	return &Generator{client: client, outputDir: outputDir}
}

// GenerateProject 生成完整项目目录，返回目录路径与生成的相对文件路径列表
// 同时回填 project 的文件结构、代码行数与质量标记
func (g *Generator) GenerateProject(ctx context.Context, brief *Brief, project *schema.Project) (string, []string, error) {
	projectDir := filepath.Join(g.outputDir, SanitizeName(brief.Title))
	if err := os.MkdirAll(projectDir, 0755); err != nil {
		return "", nil, fmt.Errorf("创建项目目录失败: %w", err)
	}

	structure := g.determineStructure(ctx, brief)

	// 路径排序，保证生成顺序稳定
	paths := make([]string, 0, len(structure))
	for p := range structure {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	generated := make(map[string]string, len(structure))
	var files []string
	totalLines := 0
	for _, relPath := range paths {
		if !isFileEntry(relPath) {
			// 目录条目只建目录
			if err := os.MkdirAll(filepath.Join(projectDir, relPath), 0755); err != nil {
				return "", nil, fmt.Errorf("创建目录失败: %w", err)
			}
			continue
		}

		content := g.generateFileContent(ctx, relPath, structure[relPath], brief)

		fullPath := filepath.Join(projectDir, relPath)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			return "", nil, fmt.Errorf("创建目录失败: %w", err)
		}
		if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
			return "", nil, fmt.Errorf("写入文件 %s 失败: %w", relPath, err)
		}

		generated[relPath] = structure[relPath]
		files = append(files, relPath)
		if isCodeFile(relPath) {
			totalLines += len(strings.Split(content, "\n"))
		}
	}

	project.FileStructure = schema.JSONStringMap(generated)
	project.LinesOfCode = totalLines
	project.HasReadme = false
	project.HasTests = false
	if _, ok := generated["README.md"]; ok {
		project.HasReadme = true
	}
	for p := range generated {
		if strings.Contains(strings.ToLower(p), "test") {
			project.HasTests = true
			break
		}
	}

	slog.Info("项目产物生成完成", "dir", projectDir, "files", len(files), "lines", totalLines)
	return projectDir, files, nil
}

// SanitizeName 把项目标题转成合法目录/仓库名：小写、去特殊字符、空格转连字符
func SanitizeName(name string) string {
	var b strings.Builder
	for _, c := range strings.ToLower(name) {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-', c == '_':
			b.WriteRune(c)
		case c == ' ':
			b.WriteRune('-')
		}
	}
	return b.String()
}

// isFileEntry 判断结构条目是否是文件（无扩展名的特殊文件除外）
func isFileEntry(path string) bool {
	base := filepath.Base(path)
	switch base {
	case "Dockerfile", "LICENSE", "Makefile", "CNAME":
		return true
	}
	return strings.Contains(base, ".")
}

// isCodeFile 统计行数时只计入代码文件
func isCodeFile(path string) bool {
	switch filepath.Ext(path) {
	case ".py", ".js", ".ts", ".java", ".cpp", ".go":
		return true
	}
	return false
}

// determineStructure 决定文件结构：AI 两轮（生成 + 审校）→ 模板兜底
func (g *Generator) determineStructure(ctx context.Context, brief *Brief) map[string]string {
	if g.client == nil || !g.client.IsConfigured() {
		return fallbackStructure(brief)
	}

	prompt := fmt.Sprintf(`Design a complete file structure for a %s project.
Title: %s
Description: %s
Technologies: %s
Type: %s

List all necessary file paths and their purpose.
Include configuration files, source code, tests, and documentation.
Standardize on: README.md, .gitignore, Dockerfile, docker-compose.yml.
DO NOT include directories as separate entries (e.g., do not include "src", "tests" as keys).
Only include actual FILES.

IMPORTANT: Return VALID JSON ONLY. No markdown formatting, no explanations, no text before or after.
Example:
{
    "README.md": "Documentation",
    "src/main.py": "Entry point"
}`, brief.PrimaryLanguage, brief.Title, brief.Description, strings.Join(brief.Technologies, ", "), brief.AppType)

	response, err := ai.ChatWithRetry(ctx, g.client, []ai.Message{
		{Role: "system", Content: "You are a senior software architect. Output JSON only."},
		{Role: "user", Content: prompt},
	}, 0.3, 1000, 3)
	if err != nil {
		slog.Warn("AI 生成文件结构失败，使用模板", "error", err)
		return fallbackStructure(brief)
	}

	structure, ok := parseStructure(response)
	if !ok {
		slog.Warn("解析 AI 文件结构失败，使用模板")
		return fallbackStructure(brief)
	}

	// 第二轮：让 AI 审校补全关键文件，失败则沿用第一轮结果
	raw, _ := json.MarshalIndent(structure, "", "  ")
	validationPrompt := fmt.Sprintf(`Review the following file structure for a %s project:
%s

Project: %s
Tech: %s

Ensure critical files are present:
- requirements.txt / package.json
- .gitignore
- Dockerfile & docker-compose.yml
- README.md
- Source code entry point

Return the CORRECTED and COMPLETE JSON structure.
IMPORTANT: Return VALID JSON ONLY. No markdown formatting, no explanations.`,
		brief.PrimaryLanguage, string(raw), brief.Title, strings.Join(brief.Technologies, ", "))

	validated, err := ai.ChatWithRetry(ctx, g.client, []ai.Message{
		{Role: "system", Content: "You are a QA Lead. Output JSON only."},
		{Role: "user", Content: validationPrompt},
	}, 0.2, 1000, 3)
	if err != nil {
		return structure
	}
	if refined, ok := parseStructure(validated); ok {
		return refined
	}
	return structure
}

// parseStructure 从 AI 响应中解析 path → purpose 映射
func parseStructure(response string) (map[string]string, bool) {
	cleaned := ai.CleanJSONResponse(response)
	var structure map[string]string
	if err := json.Unmarshal([]byte(cleaned), &structure); err != nil {
		return nil, false
	}
	if len(structure) == 0 {
		return nil, false
	}
	return structure, true
}

// fallbackStructure 按主语言给出固定文件结构
func fallbackStructure(brief *Brief) map[string]string {
	structure := map[string]string{
		"README.md":          "Project documentation",
		".gitignore":         "Git ignore rules",
		"Dockerfile":         "Container definition",
		"docker-compose.yml": "Container orchestration",
	}

	switch strings.ToLower(brief.PrimaryLanguage) {
	case "python", "py":
		structure["requirements.txt"] = "Python dependencies"
		structure["src/__init__.py"] = "Package initialization"
		structure["src/main.py"] = "Main application entry point"
		structure["tests/__init__.py"] = "Test package initialization"
		structure["tests/test_main.py"] = "Unit tests"
	case "javascript", "typescript", "js", "ts":
		structure["package.json"] = "NPM package configuration"
		structure["src/index.js"] = "Main application entry point"
		structure["tests/index.test.js"] = "Unit tests"
		structure[".eslintrc.json"] = "ESLint configuration"
	default:
		structure["src/main.py"] = "Main application"
		structure["tests/test_main.py"] = "Unit tests"
	}
	return structure
}

// generateFileContent 按文件类型分派生成
func (g *Generator) generateFileContent(ctx context.Context, relPath, purpose string, brief *Brief) string {
	switch {
	case relPath == "README.md":
		return g.generateReadme(ctx, brief)
	case relPath == ".gitignore":
		return gitignoreFor(brief.PrimaryLanguage)
	case relPath == "requirements.txt":
		return requirementsFor(brief.Technologies)
	case relPath == "package.json":
		return packageJSONFor(brief)
	case relPath == "Dockerfile":
		return dockerfileFor(brief)
	case relPath == "docker-compose.yml":
		return dockerComposeFor(brief)
	case strings.Contains(relPath, "__init__.py"):
		return "\"\"\"Package initialization.\"\"\"\n"
	default:
		return g.generateCode(ctx, relPath, purpose, brief)
	}
}

// generateReadme README：AI 优先，模板兜底
func (g *Generator) generateReadme(ctx context.Context, brief *Brief) string {
	if g.client != nil && g.client.IsConfigured() {
		var objectives strings.Builder
		for _, obj := range brief.LearningObjectives {
			objectives.WriteString("- " + obj + "\n")
		}

		prompt := fmt.Sprintf(`Generate a professional README.md for this project:

**Title**: %s
**Description**: %s
**Technologies**: %s
**Learning Objectives**:
%s
The README should include:
1. Project title and description
2. Features/capabilities
3. Technologies used
4. Installation instructions
5. Usage examples
6. Project structure overview
7. Learning objectives
8. License (MIT)

Make it professional and portfolio-ready. Use markdown formatting.`,
			brief.Title, brief.Description, strings.Join(brief.Technologies, ", "), objectives.String())

		content, err := ai.ChatWithRetry(ctx, g.client, []ai.Message{
			{Role: "system", Content: "You are a technical writer creating professional project documentation."},
			{Role: "user", Content: prompt},
		}, 0.7, 1500, 3)
		if err == nil && strings.TrimSpace(content) != "" {
			return content
		}
		slog.Warn("AI 生成 README 失败，使用模板", "error", err)
	}
	return readmeFallback(brief)
}

// readmeFallback 模板 README
func readmeFallback(brief *Brief) string {
	var techs, objectives strings.Builder
	for _, t := range brief.Technologies {
		techs.WriteString("- " + t + "\n")
	}
	for _, obj := range brief.LearningObjectives {
		objectives.WriteString("- " + obj + "\n")
	}

	installCmd := "npm install"
	runCmd := "npm start"
	if strings.Contains(strings.ToLower(brief.PrimaryLanguage), "python") {
		installCmd = "pip install -r requirements.txt"
		runCmd = "python src/main.py"
	}
	name := SanitizeName(brief.Title)

	return fmt.Sprintf("# %s\n\n%s\n\n## Technologies Used\n\n%s\n## Installation\n\n```bash\n# Clone the repository\ngit clone <repository-url>\ncd %s\n\n# Install dependencies\n%s\n```\n\n## Usage\n\n```bash\n# Run the application\n%s\n```\n\n## Learning Objectives\n\n%s\n## License\n\nMIT License\n",
		brief.Title, brief.Description, techs.String(), name, installCmd, runCmd, objectives.String())
}

// gitignoreFor 按语言生成 .gitignore
func gitignoreFor(language string) string {
	common := `# IDE
.vscode/
.idea/
*.swp
*.swo
*~
.DS_Store

# Environment
.env
.env.local
`
	lower := strings.ToLower(language)
	if strings.Contains(lower, "python") {
		return common + `
# Python
__pycache__/
*.py[cod]
*$py.class
*.so
.Python
venv/
env/
*.egg-info/
.pytest_cache/
.coverage
dist/
build/
`
	}
	if lower == "javascript" || lower == "typescript" {
		return common + `
# Node
node_modules/
npm-debug.log
yarn-error.log
.npm
dist/
build/
*.tsbuildinfo
`
	}
	return common
}

// requirementsTechMap 技术名 → pip 依赖
var requirementsTechMap = map[string]string{
	"fastapi":      "fastapi>=0.104.0\nuvicorn[standard]>=0.24.0",
	"django":       "django>=4.2.0",
	"flask":        "flask>=3.0.0",
	"pytorch":      "torch>=2.1.0",
	"tensorflow":   "tensorflow>=2.15.0",
	"scikit-learn": "scikit-learn>=1.3.0",
	"pandas":       "pandas>=2.1.0",
	"numpy":        "numpy>=1.24.0",
	"opencv":       "opencv-python>=4.8.0",
	"transformers": "transformers>=4.35.0",
	"sqlalchemy":   "sqlalchemy>=2.0.0",
}

// requirementsFor 按技术栈生成 requirements.txt
func requirementsFor(technologies []string) string {
	var requirements []string
	for _, tech := range technologies {
		if dep, ok := requirementsTechMap[strings.ToLower(tech)]; ok {
			requirements = append(requirements, dep)
		}
	}
	if len(requirements) == 0 {
		requirements = append(requirements, "# Add your dependencies here")
	}
	return strings.Join(requirements, "\n") + "\n"
}

// packageJSONFor Node 项目的 package.json
func packageJSONFor(brief *Brief) string {
	pkg := map[string]any{
		"name":        SanitizeName(brief.Title),
		"version":     "1.0.0",
		"description": brief.Description,
		"main":        "src/index.js",
		"scripts": map[string]string{
			"start": "node src/index.js",
			"test":  "jest",
		},
		"keywords":     brief.Technologies,
		"author":       "",
		"license":      "MIT",
		"dependencies": map[string]string{},
		"devDependencies": map[string]string{
			"jest": "^29.7.0",
		},
	}
	out, err := json.MarshalIndent(pkg, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(out)
}

// dockerfileFor 按语言生成 Dockerfile
func dockerfileFor(brief *Brief) string {
	if strings.Contains(strings.ToLower(brief.PrimaryLanguage), "python") {
		return `# Use an official Python runtime as a parent image
FROM python:3.11-slim

# Set the working directory in the container
WORKDIR /app

# Copy the requirements file into the container
COPY requirements.txt .

# Install any needed packages specified in requirements.txt
RUN pip install --no-cache-dir -r requirements.txt

# Copy the current directory contents into the container at /app
COPY . .

# Set environment variables
ENV APP_ENV=production
ENV PYTHONUNBUFFERED=1

# Run the application
CMD ["python", "src/main.py"]
`
	}
	return `# Use an official Node.js runtime as a parent image
FROM node:18-alpine

# Set the working directory
WORKDIR /app

# Copy package headers
COPY package*.json ./

# Install dependencies
RUN npm install --production

# Copy source
COPY . .

# Expose port
EXPOSE 8000

# Start app
CMD ["npm", "start"]
`
}

// dockerComposeFor 生成 docker-compose.yml
func dockerComposeFor(brief *Brief) string {
	name := SanitizeName(brief.Title)
	return fmt.Sprintf(`version: '3.8'

services:
  %s:
    build: .
    container_name: %s
    ports:
      - "8000:8000"
    volumes:
      - .:/app
    environment:
      - APP_ENV=development
    restart: unless-stopped
`, name, name)
}

// generateCode 代码文件：AI 优先，语言/类型模板兜底
func (g *Generator) generateCode(ctx context.Context, relPath, purpose string, brief *Brief) string {
	if g.client != nil && g.client.IsConfigured() {
		prompt := fmt.Sprintf(`Generate professional, well-documented code for this file:

**Project**: %s
**File**: %s
**Purpose**: %s
**Language**: %s
**Description**: %s

Requirements:
- Clean, production-ready code with proper structure
- Comprehensive docstrings/comments explaining the code
- Type hints (if language supports)
- Error handling where appropriate
- Follow %s best practices

Generate ONLY the code, no explanations outside of code comments.`,
			brief.Title, relPath, purpose, brief.PrimaryLanguage, brief.Description, brief.PrimaryLanguage)

		content, err := ai.ChatWithRetry(ctx, g.client, []ai.Message{
			{Role: "system", Content: "You are an expert software engineer writing production-quality code."},
			{Role: "user", Content: prompt},
		}, 0.6, 1500, 3)
		if err == nil && strings.TrimSpace(content) != "" {
			return stripCodeFence(content)
		}
		slog.Warn("AI 生成代码失败，使用模板", "file", relPath, "error", err)
	}
	return codeFallback(relPath, purpose, brief)
}

// stripCodeFence 去掉 markdown 代码块包装
func stripCodeFence(content string) string {
	if !strings.Contains(content, "```") {
		return content
	}
	start := strings.Index(content, "```")
	content = content[start:]
	lines := strings.Split(content, "\n")
	if len(lines) > 0 && strings.HasPrefix(lines[0], "```") {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

// codeFallback 无 AI 时的代码模板
func codeFallback(relPath, purpose string, brief *Brief) string {
	if strings.Contains(strings.ToLower(brief.PrimaryLanguage), "python") {
		if strings.Contains(strings.ToLower(relPath), "test") {
			return pythonTestTemplate(brief)
		}
		return pythonSourceTemplate(brief)
	}
	return fmt.Sprintf("// %s\n// %s\n", purpose, relPath)
}

// pythonTestTemplate 测试文件模板
func pythonTestTemplate(brief *Brief) string {
	return fmt.Sprintf(`"""
Unit tests for %s
"""

import pytest
try:
    from src.main import *
except ImportError:
    pass

def test_initialization():
    """Test that the application initializes correctly."""
    assert True

def test_core_functionality():
    """Placeholder for core logic tests."""
    pass
`, brief.Title)
}

// pythonSourceTemplate 按应用类型生成源码模板
func pythonSourceTemplate(brief *Brief) string {
	header := fmt.Sprintf(`"""
%s
%s
"""

import os
import sys
import logging
from datetime import datetime

logging.basicConfig(
    level=logging.INFO,
    format='%%(asctime)s - %%(name)s - %%(levelname)s - %%(message)s'
)
logger = logging.getLogger(__name__)

`, brief.Title, brief.Description)

	switch brief.AppType {
	case "web":
		return header + fmt.Sprintf(`
def create_app():
    """Initialize and configure the web application."""
    logger.info("Initializing web application...")
    app = {
        "name": "%s",
        "routes": [],
        "config": {}
    }
    return app

def main():
    """Main entry point for web server."""
    app = create_app()
    logger.info(f"Starting {app['name']} server on port 8000...")
    print("Server running at http://localhost:8000")

    env = os.getenv("APP_ENV", "development")
    logger.info(f"Environment: {env}")

if __name__ == "__main__":
    main()
`, brief.Title)
	case "api":
		return header + fmt.Sprintf(`
from typing import Dict, Any

class APIService:
    """Core API service implementation."""

    def __init__(self):
        self.endpoints = {}
        logger.info("API Service initialized")

    def register_endpoint(self, path: str, method: str, handler: Any):
        """Register a new API endpoint."""
        self.endpoints[f"{method} {path}"] = handler
        logger.info(f"Registered endpoint: {method} {path}")

    def handle_request(self, path: str, method: str) -> Dict:
        """Handle incoming API request."""
        key = f"{method} {path}"
        if key in self.endpoints:
            return {"status": 200, "data": "Success"}
        return {"status": 404, "error": "Not Found"}

def main():
    """Start the API service."""
    service = APIService()

    service.register_endpoint("/health", "GET", lambda: "OK")
    service.register_endpoint("/api/v1/data", "GET", lambda: [])

    logger.info("API Gateway running...")
    print("%s API Active")

if __name__ == "__main__":
    main()
`, brief.Title)
	case "system":
		return header + fmt.Sprintf(`
import time
from dataclasses import dataclass

@dataclass
class SystemConfig:
    max_connections: int = 100
    timeout: float = 30.0

class SystemCore:
    """Core logic for %s."""

    def __init__(self, config: SystemConfig):
        self.config = config
        self.active = False
        self.metrics = {}

    def start(self):
        """Start system operations."""
        self.active = True
        logger.info("System core started")
        self._run_loop()

    def _run_loop(self):
        """Internal operation loop."""
        logger.info("Executing core logic...")
        time.sleep(0.1)
        self.metrics['uptime'] = time.time()

def main():
    """System entry point."""
    config = SystemConfig()
    system = SystemCore(config)

    print("Starting %s...")
    try:
        system.start()
    except Exception as e:
        logger.error(f"System failure: {e}")

if __name__ == "__main__":
    main()
`, brief.Title, brief.Title)
	default: // script/tool
		return header + fmt.Sprintf(`
import argparse

def parse_arguments():
    """Parse command line arguments."""
    parser = argparse.ArgumentParser(description="%s")
    parser.add_argument('--input', '-i', help='Input file path')
    parser.add_argument('--verbose', '-v', action='store_true', help='Enable verbose output')
    return parser.parse_args()

def process_data(input_path: str):
    """Core processing logic."""
    if not input_path:
        logger.warning("No input provided, using default mode")
        return

    logger.info(f"Processing data from: {input_path}")
    result = {
        "processed_at": datetime.now(),
        "status": "complete"
    }
    return result

def main():
    """Script entry point."""
    args = parse_arguments()

    if args.verbose:
        logger.setLevel(logging.DEBUG)

    print("Running %s...")
    logger.info("Application started")

    process_data(args.input)

    print("Execution complete")

if __name__ == "__main__":
    main()
`, brief.Description, brief.Title)
	}
}

// GenerateCommitMessages 生成候选提交信息：AI 优先，固定列表兜底
func (g *Generator) GenerateCommitMessages(ctx context.Context, brief *Brief) []string {
	fallback := []string{
		"chore: initial project structure",
		"feat: implement core functionality",
		"refactor: optimize implementation",
		"test: add unit tests",
		"docs: update README",
	}

	if g.client == nil || !g.client.IsConfigured() {
		return fallback
	}

	prompt := fmt.Sprintf(`Generate 4-6 realistic git commit messages for building this project from scratch:

**Project**: %s
**Description**: %s
**Technologies**: %s

Use conventional commit prefixes (feat/chore/refactor/fix/test/docs).
Return VALID JSON ONLY, an object with a "messages" array:
{"messages": ["chore: ...", "feat: ...", "test: ..."]}`,
		brief.Title, brief.Description, strings.Join(brief.Technologies, ", "))

	response, err := ai.ChatWithRetry(ctx, g.client, []ai.Message{
		{Role: "system", Content: "You are a software engineer writing realistic commit history. Output JSON only."},
		{Role: "user", Content: prompt},
	}, 0.7, 400, 3)
	if err != nil {
		slog.Warn("AI 生成提交信息失败，使用固定列表", "error", err)
		return fallback
	}

	var parsed struct {
		Messages []string `json:"messages"`
	}
	if err := json.Unmarshal([]byte(ai.CleanJSONResponse(response)), &parsed); err != nil || len(parsed.Messages) == 0 {
		return fallback
	}
	return parsed.Messages
}
