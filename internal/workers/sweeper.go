package workers

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/wfunc/duel-game/internal/service"
	"go.uber.org/zap"
)

// Sweeper 周期性结算超时对局
// 到期仍未判定的对局被作废，质押原路返还。
type Sweeper struct {
	scheduler gocron.Scheduler
	matches   service.MatchService
	interval  time.Duration
	log       *zap.Logger
}

// NewSweeper 创建超时清扫器
func NewSweeper(matches service.MatchService, interval time.Duration, log *zap.Logger) (*Sweeper, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	if interval <= 0 {
		interval = 30 * time.Second
	}

	return &Sweeper{
		scheduler: scheduler,
		matches:   matches,
		interval:  interval,
		log:       log,
	}, nil
}

// Start 启动周期任务
func (s *Sweeper) Start() error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(s.sweep),
	)
	if err != nil {
		return err
	}

	s.scheduler.Start()
	s.log.Info("Sweeper started", zap.Duration("interval", s.interval))
	return nil
}

// Stop 停止并等待进行中的任务结束
func (s *Sweeper) Stop() error {
	return s.scheduler.Shutdown()
}

// sweep 执行一轮清扫
func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := s.matches.SweepExpired(ctx)
	if err != nil {
		s.log.Error("Sweep failed", zap.Error(err))
		return
	}
	if count > 0 {
		s.log.Info("Expired matches voided", zap.Int("count", count))
	}
}
