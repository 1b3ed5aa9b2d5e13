package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/ZephyrDeng/ig-follower-analyzer-mcp/analyzer"
	"github.com/ZephyrDeng/ig-follower-analyzer-mcp/archive"
	"github.com/ZephyrDeng/ig-follower-analyzer-mcp/config"
	"github.com/ZephyrDeng/ig-follower-analyzer-mcp/instructions"
	"github.com/ZephyrDeng/ig-follower-analyzer-mcp/session"
	"github.com/ZephyrDeng/ig-follower-analyzer-mcp/store"
)

// errSuperseded 表示分析在完成前被同一客户端新的上传取代。
var errSuperseded = errors.New("analysis was replaced by a newer upload")

// localClient 是 MCP 与 CLI 共用的客户端 key：本机只有一个用户。
const localClient = "local"

// app 汇集 MCP、HTTP 与 CLI 共用的组件。
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	extractor *archive.Extractor
	tracker   *session.Tracker
	flags     store.FlagStore
	guide     *instructions.Guide
}

func newApp(cfg *config.Config, logger *zap.Logger) (*app, error) {
	var flags store.FlagStore
	if cfg.Store.Path == "" {
		flags = store.NewMemStore()
	} else {
		bs, err := store.NewBadgerStore(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open flag store at '%s': %w", cfg.Store.Path, err)
		}
		flags = bs
	}
	return newAppWithStore(cfg, logger, flags), nil
}

func newAppWithStore(cfg *config.Config, logger *zap.Logger, flags store.FlagStore) *app {
	return &app{
		cfg:    cfg,
		logger: logger,
		extractor: &archive.Extractor{
			MaxEntryBytes: cfg.Archive.MaxEntryBytes,
			Logger:        logger.Named("archive"),
		},
		tracker: session.NewTracker(logger.Named("session")),
		flags:   flags,
		guide:   instructions.NewGuide(flags),
	}
}

// analyzeFile 从本地归档文件提取列表并计算关系。
func (a *app) analyzeFile(ctx context.Context, path string) (*analyzer.Analysis, error) {
	return a.run(ctx, localClient, func(runCtx context.Context) (*archive.FollowLists, error) {
		return a.extractor.ExtractFile(runCtx, path)
	})
}

// analyzeReader 直接从 r 读取归档（例如上传的 multipart 文件），不整体载入内存。
// client 相同的分析会互相取代。
func (a *app) analyzeReader(ctx context.Context, client string, r io.ReaderAt, size int64) (*analyzer.Analysis, error) {
	return a.run(ctx, client, func(runCtx context.Context) (*archive.FollowLists, error) {
		return a.extractor.ExtractContext(runCtx, r, size)
	})
}

func (a *app) run(ctx context.Context, client string, extract func(context.Context) (*archive.FollowLists, error)) (*analyzer.Analysis, error) {
	id, runCtx := a.tracker.Begin(ctx, client)
	defer a.tracker.Finish(client, id)
	log := a.logger.With(zap.String("run", id.String()), zap.String("client", client))

	lists, err := extract(runCtx)
	if err != nil {
		if runCtx.Err() != nil && ctx.Err() == nil {
			log.Info("Analysis superseded")
			return nil, errSuperseded
		}
		log.Info("Archive extraction failed", zap.Error(err), zap.Stringer("kind", archive.KindOf(err)))
		return nil, err
	}
	// 提取完成后仍可能被新的上传取代
	if runCtx.Err() != nil && ctx.Err() == nil {
		log.Info("Analysis superseded")
		return nil, errSuperseded
	}

	result := analyzer.Analyze(lists.Followers, lists.Following)
	log.Info("Analysis complete",
		zap.Int("followers", len(result.Followers)),
		zap.Int("following", len(result.Following)),
		zap.Int("mutuals", len(result.Mutuals)))
	return result, nil
}

func (a *app) Close() error {
	a.tracker.CancelAll()
	return a.flags.Close()
}
