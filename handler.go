package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/ZephyrDeng/ig-follower-analyzer-mcp/analyzer"
	"github.com/ZephyrDeng/ig-follower-analyzer-mcp/archive"
	"github.com/ZephyrDeng/ig-follower-analyzer-mcp/config"
	"github.com/ZephyrDeng/ig-follower-analyzer-mcp/instructions"
)

// reportArgs 读取 output_format 与 limit 两个通用参数，缺省时使用配置中的默认值。
func (a *app) reportArgs(args map[string]interface{}) (format string, limit int, err error) {
	format, ok := args["output_format"].(string)
	if !ok || format == "" {
		format = a.cfg.Analysis.DefaultFormat
	}
	if !config.IsValidFormat(format) {
		return "", 0, fmt.Errorf("unsupported output format: %s", format)
	}
	limitFloat, ok := args["limit"].(float64)
	if !ok {
		limitFloat = float64(a.cfg.Analysis.DefaultLimit)
	}
	return format, clampLimit(limitFloat), nil
}

// clampLimit 把 JSON 数字转换为列表上限：NaN 与负数视为不限 (0)，过大的值截到 MaxInt32。
func clampLimit(f float64) int {
	switch {
	case math.IsNaN(f) || f <= 0:
		return 0
	case f >= math.MaxInt32:
		return math.MaxInt32
	default:
		return int(f)
	}
}

// handleAnalyzeFollowers 处理分析 Instagram 数据归档的请求。
// 这是 MCP 工具 "analyze_followers" 的处理器函数。
func (a *app) handleAnalyzeFollowers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments

	// --- 1. 获取并验证参数 ---
	archiveURIStr, ok := args["archive_uri"].(string)
	if !ok || archiveURIStr == "" {
		return nil, fmt.Errorf("missing or invalid required argument: archive_uri (string)")
	}
	format, limit, err := a.reportArgs(args)
	if err != nil {
		return nil, err
	}

	a.logger.Info("Handling analyze_followers",
		zap.String("uri", archiveURIStr),
		zap.String("format", format),
		zap.Int("limit", limit))

	// --- 2. 获取归档文件（本地或下载）---
	filePath, cleanup, err := getArchiveAsFile(ctx, a.logger, archiveURIStr, a.cfg.Server.MaxUploadBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to get archive file: %w", err)
	}
	defer cleanup()

	if info, statErr := os.Stat(filePath); statErr == nil {
		a.logger.Debug("Archive file resolved",
			zap.String("path", filePath),
			zap.String("size", analyzer.FormatBytes(info.Size())))
	}

	// --- 3. 提取并分析 ---
	result, err := a.analyzeFile(ctx, filePath)
	if err != nil {
		return a.analysisError(err, format)
	}

	// --- 4. 渲染结果 ---
	text, err := analyzer.RenderAnalysis(result, limit, format)
	if err != nil {
		return nil, err
	}
	return textResult(text), nil
}

// handleCompareFollowLists 直接比较两个用户名列表，不需要归档。
func (a *app) handleCompareFollowLists(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments

	followersStr, ok := args["followers"].(string)
	if !ok {
		return nil, fmt.Errorf("missing or invalid required argument: followers (string)")
	}
	followingStr, ok := args["following"].(string)
	if !ok {
		return nil, fmt.Errorf("missing or invalid required argument: following (string)")
	}
	format, limit, err := a.reportArgs(args)
	if err != nil {
		return nil, err
	}

	followers := splitUsernames(followersStr)
	following := splitUsernames(followingStr)
	a.logger.Info("Handling compare_follow_lists",
		zap.Int("followers", len(followers)),
		zap.Int("following", len(following)),
		zap.String("format", format))

	text, err := analyzer.AnalyzeRelationships(followers, following, limit, format)
	if err != nil {
		return nil, err
	}
	return textResult(text), nil
}

// instructionsResult 是 get_instructions 的 JSON 输出。
type instructionsResult struct {
	AlreadyShown bool                `json:"alreadyShown"`
	Steps        []instructions.Step `json:"steps"`
}

// handleGetInstructions 返回导出步骤，并记录说明已展示过。
func (a *app) handleGetInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	show, err := a.guide.ShouldShow()
	if err != nil {
		return nil, err
	}

	result := instructionsResult{AlreadyShown: !show, Steps: a.guide.Steps()}

	if show {
		if err := a.guide.MarkShown(); err != nil {
			// 标记失败不影响返回说明
			a.logger.Warn("Failed to persist instructions flag", zap.Error(err))
		}
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal instructions: %w", err)
	}
	return textResult(string(jsonBytes)), nil
}

// handleResetInstructions 清除已展示标记。
func (a *app) handleResetInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := a.guide.Reset(); err != nil {
		return nil, err
	}
	a.logger.Info("Instructions flag reset")
	return textResult("Instructions will be shown again on the next get_instructions call."), nil
}

// analysisError 将归档错误转换为面向用户的工具错误，其他错误原样返回。
func (a *app) analysisError(err error, format string) (*mcp.CallToolResult, error) {
	kind := archive.KindOf(err)
	if kind == 0 && !errors.Is(err, errSuperseded) {
		return nil, err
	}
	msg := err.Error()
	if format == "json" {
		errorResult := analyzer.ErrorResult{Error: msg}
		if kind != 0 {
			errorResult.Kind = kind.String()
		}
		jsonBytes, _ := json.Marshal(errorResult)
		msg = string(jsonBytes)
	}
	result := textResult(msg)
	result.IsError = true
	return result, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: text,
			},
		},
	}
}

// splitUsernames 按逗号、换行或空白拆分用户名，并去掉开头的 '@'。顺序与重复项保留。
func splitUsernames(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\n' || r == '\r' || r == '\t'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimPrefix(f, "@")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
