package worker

import (
	"context"
	"errors"
	"time"

	"github.com/optrack-next/internal/config"
	"github.com/optrack-next/internal/logger"
	"github.com/optrack-next/internal/queue"

	"github.com/hibiken/asynq"
)

const defaultReconcileInterval = 10 * time.Minute

// Service 异步队列服务
type Service struct {
	name              string
	server            *asynq.Server
	mux               *asynq.ServeMux
	consumer          *Consumer
	reconcileInterval time.Duration
}

// NewService 创建异步队列服务
func NewService(cfg *config.Config, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Queue.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(&cfg.Queue)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	interval := defaultReconcileInterval
	if cfg.Workflow.ReconcileIntervalMinutes > 0 {
		interval = time.Duration(cfg.Workflow.ReconcileIntervalMinutes) * time.Minute
	}
	return &Service{
		name:              "worker",
		server:            server,
		mux:               mux,
		consumer:          consumer,
		reconcileInterval: interval,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.OrderService != nil {
		go s.runStatusReconcileLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runStatusReconcileLoop 周期性全量对账，兜底丢失的单订单对账任务。
func (s *Service) runStatusReconcileLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.OrderService == nil {
		return
	}
	runOnce := func() {
		scanned, err := s.consumer.OrderService.ReconcileAllOrderStatuses()
		if err != nil {
			logger.Warnw("worker_status_reconcile_sweep_failed", "error", err)
			return
		}
		logger.Debugw("worker_status_reconcile_sweep_done", "scanned", scanned)
	}
	runOnce()

	ticker := time.NewTicker(s.reconcileInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
