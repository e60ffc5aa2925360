package service

import (
	"context"
	"time"

	"github.com/adhocore/gronx"

	"github.com/studybuddyhq/studybuddy/pkg/logger"
)

// CleanupScheduler runs CleanupOldMemories on a cron cadence.
type CleanupScheduler struct {
	service *Service
	expr    string
	maxAge  time.Duration
	stop    chan struct{}
	done    chan struct{}
}

// NewCleanupScheduler validates the cron expression and prepares a
// scheduler. Start must be called to begin running.
func NewCleanupScheduler(service *Service, cronExpr string, maxAge time.Duration) (*CleanupScheduler, error) {
	gron := gronx.New()
	if !gron.IsValid(cronExpr) {
		return nil, &InvalidCronError{Expr: cronExpr}
	}
	return &CleanupScheduler{
		service: service,
		expr:    cronExpr,
		maxAge:  maxAge,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}, nil
}

type InvalidCronError struct {
	Expr string
}

func (e *InvalidCronError) Error() string {
	return "invalid cleanup cron expression: " + e.Expr
}

// Start launches the scheduler goroutine. The tick granularity is one
// minute, matching cron resolution.
func (s *CleanupScheduler) Start(ctx context.Context) {
	go s.run(ctx)
}

func (s *CleanupScheduler) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	logger.InfoCF("cleanup", "Cleanup scheduler started",
		map[string]interface{}{
			"cron":    s.expr,
			"max_age": s.maxAge.String(),
		})

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-ticker.C:
			gron := gronx.New()
			due, err := gron.IsDue(s.expr, time.Now())
			if err != nil || !due {
				continue
			}
			if _, err := s.service.CleanupOldMemories(ctx, s.maxAge); err != nil {
				logger.ErrorCF("cleanup", "Scheduled cleanup failed",
					map[string]interface{}{
						"error": err.Error(),
					})
			}
		}
	}
}

// Stop halts the scheduler and waits for the goroutine to exit.
func (s *CleanupScheduler) Stop() {
	close(s.stop)
	<-s.done
}
