package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/utilaudit/utilaudit/internal/detector"
	"github.com/utilaudit/utilaudit/internal/pkg/logger"
	"github.com/utilaudit/utilaudit/internal/services"
)

// DigestWorker flushes queued alert digests on a cron schedule. The schedule
// fires every hour; the flush only happens when digest mode is enabled and
// the current hour matches the configured digest hour.
type DigestWorker struct {
	alerts   *services.AlertService
	engine   *detector.Engine
	schedule string
	cron     *cron.Cron
	logger   *logger.Logger
}

// NewDigestWorker creates a new digest worker
func NewDigestWorker(alerts *services.AlertService, engine *detector.Engine, schedule string, log *logger.Logger) *DigestWorker {
	return &DigestWorker{
		alerts:   alerts,
		engine:   engine,
		schedule: schedule,
		logger:   log,
	}
}

// Start schedules the digest job and begins the cron loop. It blocks until
// the context is cancelled.
func (w *DigestWorker) Start(ctx context.Context) error {
	w.cron = cron.New()

	_, err := w.cron.AddFunc(w.schedule, func() {
		w.tick(ctx)
	})
	if err != nil {
		return err
	}

	w.logger.WithFields(map[string]interface{}{
		"schedule": w.schedule,
	}).Info("Starting digest worker")

	w.cron.Start()
	<-ctx.Done()

	stopCtx := w.cron.Stop()
	<-stopCtx.Done()
	w.logger.Info("Digest worker stopped")
	return nil
}

func (w *DigestWorker) tick(ctx context.Context) {
	settings := w.engine.Settings()
	if !settings.DigestEnabled {
		return
	}
	if currentHour() != settings.DigestHour {
		return
	}

	if err := w.alerts.FlushDigest(ctx); err != nil {
		w.logger.ErrorWithErr(err, "Failed to flush alert digest")
	}
}

func currentHour() int {
	return time.Now().Hour()
}
