package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

// setupSignalHandler 设置信号处理：收到 SIGINT/SIGTERM 时取消进行中的分析，
// 并取消返回的 context 以便各服务退出。调用方负责调用返回的 stop。
func setupSignalHandler(parent context.Context, a *app) (ctx context.Context, stop func()) {
	ctx, cancel := context.WithCancel(parent)
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigs:
			a.logger.Info("Received signal, cancelling in-flight analysis", zap.Stringer("signal", sig))
			a.tracker.CancelAll()
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigs)
		cancel()
	}
}
