package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ZephyrDeng/ig-follower-analyzer-mcp/analyzer"
	"github.com/ZephyrDeng/ig-follower-analyzer-mcp/archive"
	"github.com/ZephyrDeng/ig-follower-analyzer-mcp/config"
)

// newRouter 构建 HTTP 上传接口。
func (a *app) newRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), a.requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	api.POST("/analyze", a.handleUpload)
	api.GET("/instructions", a.handleInstructionsHTTP)
	api.DELETE("/instructions", a.handleResetInstructionsHTTP)
	return r
}

// handleUpload 处理 multipart 上传：字段 archive，查询参数 format 与 limit。
func (a *app) handleUpload(c *gin.Context) {
	format := c.DefaultQuery("format", "json")
	if !config.IsValidFormat(format) {
		c.JSON(http.StatusBadRequest, analyzer.ErrorResult{Error: fmt.Sprintf("unsupported output format: %s", format)})
		return
	}
	limit := a.cfg.Analysis.DefaultLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, analyzer.ErrorResult{Error: fmt.Sprintf("invalid limit: %s", v)})
			return
		}
		limit = n
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, a.cfg.Server.MaxUploadBytes)
	fh, err := c.FormFile("archive")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusRequestEntityTooLarge, analyzer.ErrorResult{Error: "archive is too large"})
			return
		}
		c.JSON(http.StatusBadRequest, analyzer.ErrorResult{Error: "please select your Instagram data ZIP file"})
		return
	}
	if err := archive.ValidateFileType(fh.Filename, fh.Header.Get("Content-Type")); err != nil {
		a.writeAnalysisError(c, err)
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, analyzer.ErrorResult{Error: "failed to read upload"})
		return
	}
	defer f.Close()

	client := a.clientKey(c)
	a.logger.Info("Received archive upload",
		zap.String("name", fh.Filename),
		zap.String("size", analyzer.FormatBytes(fh.Size)),
		zap.String("client", client))

	// multipart.File 实现了 io.ReaderAt，直接交给解压，不再整体读入内存
	result, err := a.analyzeReader(c.Request.Context(), client, f, fh.Size)
	if err != nil {
		a.writeAnalysisError(c, err)
		return
	}

	if format == "json" {
		c.JSON(http.StatusOK, analyzer.BuildResult(result, limit))
		return
	}
	text, err := analyzer.RenderAnalysis(result, limit, format)
	if err != nil {
		c.JSON(http.StatusInternalServerError, analyzer.ErrorResult{Error: err.Error()})
		return
	}
	contentType := "text/plain; charset=utf-8"
	if format == "markdown" {
		contentType = "text/markdown; charset=utf-8"
	}
	c.Data(http.StatusOK, contentType, []byte(text))
}

const (
	clientHeader = "X-Session-ID"
	clientCookie = "iga_session"
)

// clientKey 标识上传者：优先使用 X-Session-ID 头，其次是会话 cookie；
// 都没有时生成新的会话 ID 并写入 cookie。只有同一客户端的上传会互相取代。
func (a *app) clientKey(c *gin.Context) string {
	if id := c.GetHeader(clientHeader); id != "" {
		return "http:" + id
	}
	if id, err := c.Cookie(clientCookie); err == nil && id != "" {
		return "http:" + id
	}
	id := uuid.NewString()
	c.SetCookie(clientCookie, id, 0, "/", "", false, true)
	return "http:" + id
}

func (a *app) handleInstructionsHTTP(c *gin.Context) {
	show, err := a.guide.ShouldShow()
	if err != nil {
		c.JSON(http.StatusInternalServerError, analyzer.ErrorResult{Error: err.Error()})
		return
	}
	if show {
		if err := a.guide.MarkShown(); err != nil {
			a.logger.Warn("Failed to persist instructions flag", zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, instructionsResult{AlreadyShown: !show, Steps: a.guide.Steps()})
}

func (a *app) handleResetInstructionsHTTP(c *gin.Context) {
	if err := a.guide.Reset(); err != nil {
		c.JSON(http.StatusInternalServerError, analyzer.ErrorResult{Error: err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// writeAnalysisError 将错误类别映射为 HTTP 状态码。
func (a *app) writeAnalysisError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	kind := archive.KindOf(err)
	switch kind {
	case archive.InvalidFileType:
		status = http.StatusUnsupportedMediaType
	case archive.MissingFile, archive.ParseError, archive.FormatError:
		status = http.StatusUnprocessableEntity
	default:
		if errors.Is(err, errSuperseded) {
			status = http.StatusConflict
		}
	}
	body := analyzer.ErrorResult{Error: err.Error()}
	if kind != 0 {
		body.Kind = kind.String()
	}
	if status == http.StatusInternalServerError {
		a.logger.Error("Upload analysis failed", zap.Error(err))
		body.Error = "an error occurred processing the ZIP file"
	}
	c.JSON(status, body)
}

func (a *app) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		a.logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

// serveHTTP 启动上传服务，ctx 取消时优雅关闭。
func (a *app) serveHTTP(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.Server.HTTPAddr,
		Handler:           a.newRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Starting HTTP upload server", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.logger.Info("Shutting down HTTP upload server")
		return srv.Shutdown(shutdownCtx)
	}
}
