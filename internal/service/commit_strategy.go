package service

import (
	"strings"
)

// CommitMode 提交分组模式
type CommitMode string

const (
	CommitModeSingle   CommitMode = "single"
	CommitModeSmart    CommitMode = "smart"
	CommitModeDetailed CommitMode = "detailed"
)

// CommitGroup 一组一起提交的文件及其提交信息
type CommitGroup struct {
	Files   []string
	Message string
}

// 分桶名
const (
	bucketConfigDocs = "config_docs"
	bucketSource     = "source"
	bucketTests      = "tests"
)

// configDocsKeywords 配置/文档桶的路径关键词
var configDocsKeywords = []string{"readme", "requirements", "license", "config", ".gitignore", "changelog"}

// classifyFile 按优先级将路径归入唯一的桶：tests > config/docs > source
func classifyFile(path string) string {
	lower := strings.ToLower(path)
	if strings.Contains(lower, "test") {
		return bucketTests
	}
	for _, kw := range configDocsKeywords {
		if strings.Contains(lower, kw) {
			return bucketConfigDocs
		}
	}
	return bucketSource
}

// groupMessageFallbacks 各桶的固定兜底提交信息
var groupMessageFallbacks = map[string]string{
	bucketConfigDocs:      "chore: initial project structure",
	bucketSource:          "feat: implement core functionality",
	bucketSource + "-2nd": "refactor: optimize implementation",
	bucketTests:           "test: add unit tests",
}

// groupMessageKeywords 各桶在候选信息中优先匹配的关键词
var groupMessageKeywords = map[string][]string{
	bucketConfigDocs:      {"chore", "init"},
	bucketSource:          {"feat"},
	bucketSource + "-2nd": {"refactor", "fix"},
	bucketTests:           {"test"},
}

// pickMessage 从候选信息中选第一条包含桶关键词的，否则用固定兜底
func pickMessage(bucket string, candidates []string) string {
	for _, kw := range groupMessageKeywords[bucket] {
		for _, msg := range candidates {
			if strings.Contains(strings.ToLower(msg), kw) {
				return msg
			}
		}
	}
	return groupMessageFallbacks[bucket]
}

// BuildCommitGroups 将文件集合划分为有序提交组
// single：全部文件一组
// smart（默认）：每个非空桶一组，顺序 [config/docs, source, tests]
// detailed：source 桶在中点拆成两组，其余同 smart
func BuildCommitGroups(files []string, candidates []string, mode CommitMode) []CommitGroup {
	if len(files) == 0 {
		return nil
	}

	if mode == CommitModeSingle {
		return []CommitGroup{{
			Files:   append([]string(nil), files...),
			Message: pickMessage(bucketSource, candidates),
		}}
	}

	var configDocs, source, tests []string
	for _, f := range files {
		switch classifyFile(f) {
		case bucketTests:
			tests = append(tests, f)
		case bucketConfigDocs:
			configDocs = append(configDocs, f)
		default:
			source = append(source, f)
		}
	}

	var groups []CommitGroup
	if len(configDocs) > 0 {
		groups = append(groups, CommitGroup{
			Files:   configDocs,
			Message: pickMessage(bucketConfigDocs, candidates),
		})
	}

	if mode == CommitModeDetailed && len(source) > 1 {
		// 奇数个文件时前半组多拿一个
		mid := (len(source) + 1) / 2
		groups = append(groups,
			CommitGroup{Files: source[:mid], Message: pickMessage(bucketSource, candidates)},
			CommitGroup{Files: source[mid:], Message: pickMessage(bucketSource+"-2nd", candidates)},
		)
	} else if len(source) > 0 {
		groups = append(groups, CommitGroup{
			Files:   source,
			Message: pickMessage(bucketSource, candidates),
		})
	}

	if len(tests) > 0 {
		groups = append(groups, CommitGroup{
			Files:   tests,
			Message: pickMessage(bucketTests, candidates),
		})
	}

	return groups
}
