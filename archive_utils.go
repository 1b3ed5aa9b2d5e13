package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// getArchiveAsFile 获取归档文件。
// - 如果输入不包含 "://", 则视为本地文件路径（相对或绝对）。
// - 如果是 file:// URI，直接使用其路径。
// - 如果是 http:// 或 https:// URI，下载到临时文件并返回其路径。
// 返回最终的文件路径、一个用于清理临时文件的函数（如果创建了临时文件）以及错误。
// maxBytes > 0 时限制下载大小。
func getArchiveAsFile(ctx context.Context, logger *zap.Logger, uriStr string, maxBytes int64) (filePath string, cleanup func(), err error) {
	cleanup = func() {} // 默认清理函数为空操作

	if !strings.Contains(uriStr, "://") {
		absPath, err := filepath.Abs(uriStr)
		if err != nil {
			return "", nil, fmt.Errorf("failed to get absolute path for '%s': %w", uriStr, err)
		}
		logger.Debug("Using local archive path", zap.String("input", uriStr), zap.String("path", absPath))
		return absPath, cleanup, nil
	}

	parsedURI, err := url.Parse(uriStr)
	if err != nil {
		return "", nil, fmt.Errorf("invalid archive URI '%s': %w", uriStr, err)
	}

	switch parsedURI.Scheme {
	case "file":
		filePath = parsedURI.Path
		if filePath == "" {
			return "", nil, fmt.Errorf("invalid file path derived from URI '%s'", uriStr)
		}
		logger.Debug("Using local archive file", zap.String("path", filePath))
		return filePath, cleanup, nil

	case "http", "https":
		logger.Info("Downloading archive", zap.String("url", uriStr))
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, uriStr, nil)
		if err != nil {
			return "", nil, fmt.Errorf("failed to build request for '%s': %w", uriStr, err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return "", nil, fmt.Errorf("failed to download archive from '%s': %w", uriStr, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return "", nil, fmt.Errorf("failed to download archive from '%s': received status code %d", uriStr, resp.StatusCode)
		}

		tempFile, err := os.CreateTemp("", "ig-archive-*.zip")
		if err != nil {
			return "", nil, fmt.Errorf("failed to create temporary file for download: %w", err)
		}
		filePath = tempFile.Name()

		cleanup = func() {
			logger.Debug("Cleaning up temporary file", zap.String("path", filePath))
			if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
				logger.Warn("Failed to remove temporary file", zap.String("path", filePath), zap.Error(err))
			}
		}

		var body io.Reader = resp.Body
		if maxBytes > 0 {
			body = io.LimitReader(resp.Body, maxBytes+1)
		}
		n, err := io.Copy(tempFile, body)
		closeErr := tempFile.Close()

		if err != nil {
			cleanup()
			return "", nil, fmt.Errorf("failed to write downloaded content to temporary file '%s': %w", filePath, err)
		}
		if maxBytes > 0 && n > maxBytes {
			cleanup()
			return "", nil, fmt.Errorf("archive at '%s' is larger than %d bytes", uriStr, maxBytes)
		}
		if closeErr != nil {
			logger.Warn("Failed to close temporary file handle", zap.String("path", filePath), zap.Error(closeErr))
		}

		logger.Info("Downloaded archive", zap.String("path", filePath), zap.Int64("bytes", n))
		return filePath, cleanup, nil

	default:
		return "", nil, fmt.Errorf("unsupported URI scheme '%s', only 'file://', 'http://', 'https://', or a plain local path are supported", parsedURI.Scheme)
	}
}
