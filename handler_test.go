package main

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ZephyrDeng/ig-follower-analyzer-mcp/analyzer"
	"github.com/ZephyrDeng/ig-follower-analyzer-mcp/config"
	"github.com/ZephyrDeng/ig-follower-analyzer-mcp/store"
)

const (
	testFollowersPath = "connections/followers_and_following/followers_1.json"
	testFollowingPath = "connections/followers_and_following/following.json"
	testFollowersJSON = `[
  {"string_list_data": [{"href": "https://www.instagram.com/a", "value": "a", "timestamp": 1}]},
  {"string_list_data": [{"href": "https://www.instagram.com/b", "value": "b", "timestamp": 2}]},
  {"string_list_data": [{"href": "https://www.instagram.com/c", "value": "c", "timestamp": 3}]}
]`
	testFollowingJSON = `{"relationships_following": [
  {"string_list_data": [{"href": "https://www.instagram.com/b", "value": "b", "timestamp": 4}]},
  {"string_list_data": [{"href": "https://www.instagram.com/c", "value": "c", "timestamp": 5}]},
  {"string_list_data": [{"href": "https://www.instagram.com/d", "value": "d", "timestamp": 6}]}
]}`
)

func newTestApp(t *testing.T) *app {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Store.Path = ""
	a := newAppWithStore(cfg, zap.NewNop(), store.NewMemStore())
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func zipBytes(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func writeArchive(t *testing.T, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "instagram-export.zip")
	require.NoError(t, os.WriteFile(path, zipBytes(t, entries), 0644))
	return path
}

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]interface{}) (*mcp.CallToolResult, error) {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return handler(context.Background(), req)
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", res.Content[0])
	return tc.Text
}

func TestHandleAnalyzeFollowers(t *testing.T) {
	a := newTestApp(t)
	path := writeArchive(t, map[string]string{
		testFollowersPath: testFollowersJSON,
		testFollowingPath: testFollowingJSON,
	})

	t.Run("JSONFormat", func(t *testing.T) {
		res, err := callTool(t, a.handleAnalyzeFollowers, map[string]interface{}{
			"archive_uri":   path,
			"output_format": "json",
			"limit":         float64(10),
		})
		require.NoError(t, err)
		assert.False(t, res.IsError)

		var parsed analyzer.RelationshipAnalysisResult
		require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &parsed))
		assert.Equal(t, 2, parsed.MutualCount)
		assert.Equal(t, "d", parsed.NotFollowingBack.Users[0].Username)
		assert.Equal(t, "a", parsed.NotFollowedBack.Users[0].Username)
	})

	t.Run("FileURIAndDefaultFormat", func(t *testing.T) {
		res, err := callTool(t, a.handleAnalyzeFollowers, map[string]interface{}{
			"archive_uri": "file://" + path,
		})
		require.NoError(t, err)
		assert.Contains(t, resultText(t, res), "Follower Relationship Analysis")
	})

	t.Run("MissingArgument", func(t *testing.T) {
		_, err := callTool(t, a.handleAnalyzeFollowers, map[string]interface{}{})
		assert.Error(t, err)
	})

	t.Run("InvalidFormat", func(t *testing.T) {
		_, err := callTool(t, a.handleAnalyzeFollowers, map[string]interface{}{
			"archive_uri":   path,
			"output_format": "svg",
		})
		assert.Error(t, err)
	})

	t.Run("UnsupportedScheme", func(t *testing.T) {
		_, err := callTool(t, a.handleAnalyzeFollowers, map[string]interface{}{
			"archive_uri": "ftp://example.com/export.zip",
		})
		assert.Error(t, err)
	})
}

func TestHandleAnalyzeFollowersArchiveErrors(t *testing.T) {
	a := newTestApp(t)

	t.Run("MissingFollowing", func(t *testing.T) {
		path := writeArchive(t, map[string]string{testFollowersPath: testFollowersJSON})

		res, err := callTool(t, a.handleAnalyzeFollowers, map[string]interface{}{
			"archive_uri":   path,
			"output_format": "json",
		})
		require.NoError(t, err, "archive errors are reported as tool errors")
		assert.True(t, res.IsError)

		var parsed analyzer.ErrorResult
		require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &parsed))
		assert.Equal(t, "MissingFile", parsed.Kind)
		assert.Contains(t, parsed.Error, "following.json")
	})

	t.Run("FollowersRootIsObject", func(t *testing.T) {
		path := writeArchive(t, map[string]string{
			testFollowersPath: `{"followers": []}`,
			testFollowingPath: testFollowingJSON,
		})

		res, err := callTool(t, a.handleAnalyzeFollowers, map[string]interface{}{"archive_uri": path})
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), "invalid data format in followers file")
	})

	t.Run("NotAZip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "followers.json")
		require.NoError(t, os.WriteFile(path, []byte(testFollowersJSON), 0644))

		res, err := callTool(t, a.handleAnalyzeFollowers, map[string]interface{}{"archive_uri": path})
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), "ZIP")
	})

	t.Run("FileDoesNotExist", func(t *testing.T) {
		_, err := callTool(t, a.handleAnalyzeFollowers, map[string]interface{}{
			"archive_uri": filepath.Join(t.TempDir(), "missing.zip"),
		})
		assert.Error(t, err)
	})
}

func TestHandleCompareFollowLists(t *testing.T) {
	a := newTestApp(t)

	res, err := callTool(t, a.handleCompareFollowLists, map[string]interface{}{
		"followers":     "@a, b\nc",
		"following":     "b,c,d",
		"output_format": "json",
	})
	require.NoError(t, err)

	var parsed analyzer.RelationshipAnalysisResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &parsed))
	assert.Equal(t, 3, parsed.FollowersCount)
	assert.Equal(t, 2, parsed.MutualCount)
	assert.Equal(t, 1, parsed.NotFollowingBack.Count)
	assert.Equal(t, 1, parsed.NotFollowedBack.Count)

	_, err = callTool(t, a.handleCompareFollowLists, map[string]interface{}{"followers": "a"})
	assert.Error(t, err)
}

func TestHandleInstructions(t *testing.T) {
	a := newTestApp(t)

	first, err := callTool(t, a.handleGetInstructions, nil)
	require.NoError(t, err)
	var parsed instructionsResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, first)), &parsed))
	assert.False(t, parsed.AlreadyShown)
	assert.NotEmpty(t, parsed.Steps)

	second, err := callTool(t, a.handleGetInstructions, nil)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(resultText(t, second)), &parsed))
	assert.True(t, parsed.AlreadyShown)

	_, err = callTool(t, a.handleResetInstructions, nil)
	require.NoError(t, err)
	show, err := a.guide.ShouldShow()
	require.NoError(t, err)
	assert.True(t, show)
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{10, 10},
		{2.9, 2},
		{0, 0},
		{-3, 0},
		{math.NaN(), 0},
		{math.Inf(-1), 0},
		{math.Inf(1), math.MaxInt32},
		{1e300, math.MaxInt32},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, clampLimit(tt.in), "clampLimit(%v)", tt.in)
	}
}

func TestReportArgsLimit(t *testing.T) {
	a := newTestApp(t)

	_, limit, err := a.reportArgs(map[string]interface{}{"limit": math.NaN()})
	require.NoError(t, err)
	assert.Equal(t, 0, limit)

	_, limit, err = a.reportArgs(map[string]interface{}{"limit": 1e18})
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt32, limit)

	_, limit, err = a.reportArgs(map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, a.cfg.Analysis.DefaultLimit, limit)
}

func TestSplitUsernames(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c", "a"}, splitUsernames(" @a,b;\n c\t@a ,, "))
	assert.Empty(t, splitUsernames(""))
}

func TestNewMCPServerRegistersTools(t *testing.T) {
	a := newTestApp(t)
	assert.NotNil(t, newMCPServer(a))
}
