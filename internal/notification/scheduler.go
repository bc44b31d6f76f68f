package notification

import (
	"context"
	"time"

	"OCLAdmin/internal/config"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NotificationScheduler periodically delivers due notifications.
type NotificationScheduler struct {
	service  *NotificationService
	interval time.Duration
	log      *zap.Logger
}

func NewNotificationScheduler(service *NotificationService, cfg *config.Config, log *zap.Logger) *NotificationScheduler {
	interval := cfg.NotifyInterval
	if interval <= 0 {
		interval = time.Minute
	}
	return &NotificationScheduler{service: service, interval: interval, log: log}
}

// StartScheduler ties the delivery loop to the application lifecycle.
func (s *NotificationScheduler) StartScheduler(lc fx.Lifecycle) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			s.log.Info("starting notification scheduler", zap.Duration("interval", s.interval))
			go func() {
				defer close(done)
				s.Run(ctx)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			s.log.Info("stopping notification scheduler")
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}

// Run ticks until ctx is cancelled.
func (s *NotificationScheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.tick(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *NotificationScheduler) tick(ctx context.Context) {
	sent, err := s.service.SendDue(ctx)
	if err != nil && ctx.Err() == nil {
		s.log.Error("sending due notifications", zap.Error(err))
		return
	}
	if sent > 0 {
		s.log.Info("notifications sent", zap.Int("count", sent))
	}
}
