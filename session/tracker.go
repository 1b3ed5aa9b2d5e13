// Package session 保证每个客户端同一时间最多只有一个分析在进行。
// 同一客户端开始新的分析时会取消它上一个未完成的分析，
// 新上传的归档因此会丢弃过期的结果；不同客户端之间互不影响。
package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type run struct {
	id     uuid.UUID
	cancel context.CancelFunc
}

// Tracker 按客户端 key 记录进行中的分析，可并发使用。
type Tracker struct {
	mu      sync.Mutex
	current map[string]*run
	logger  *zap.Logger
}

func NewTracker(logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{current: make(map[string]*run), logger: logger}
}

// Begin 为 key 登记一个新的分析，返回其 ID 与 context。
// 当同一 key 开始新的分析或调用 CancelAll 时，该 context 会被取消。
// 调用方必须用返回的 ID 调用 Finish。
func (t *Tracker) Begin(ctx context.Context, key string) (uuid.UUID, context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	r := &run{id: uuid.New(), cancel: cancel}

	t.mu.Lock()
	prev := t.current[key]
	t.current[key] = r
	t.mu.Unlock()

	if prev != nil {
		t.logger.Info("Discarding in-flight analysis",
			zap.String("client", key),
			zap.String("previous", prev.id.String()),
			zap.String("next", r.id.String()))
		prev.cancel()
	}
	return r.id, runCtx
}

// Finish 释放分析占用的资源；只有 id 仍是 key 当前的分析时才清空该槽位。
func (t *Tracker) Finish(key string, id uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if r := t.current[key]; r != nil && r.id == id {
		r.cancel()
		delete(t.current, key)
	}
}

// Current 返回 key 当前进行中的分析 ID。
func (t *Tracker) Current(key string) (uuid.UUID, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if r := t.current[key]; r != nil {
		return r.id, true
	}
	return uuid.Nil, false
}

// InFlight 返回所有客户端进行中的分析数量。
func (t *Tracker) InFlight() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.current)
}

// CancelAll 取消所有进行中的分析，用于退出时。
func (t *Tracker) CancelAll() {
	t.mu.Lock()
	runs := t.current
	t.current = make(map[string]*run)
	t.mu.Unlock()
	for _, r := range runs {
		r.cancel()
	}
}
