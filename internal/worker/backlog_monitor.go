package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/GodofWar9000/tele-triage/internal/queue"
)

// BacklogMonitor periodically checks how long the oldest case has been
// waiting for a reviewer. It never touches the queues; it only reports.
//
// A warning is logged on every check while the oldest case is older than
// warnAfter, so an unstaffed review desk keeps showing up in the logs.
type BacklogMonitor struct {
	q         *queue.Coordinator
	interval  time.Duration
	warnAfter time.Duration
	logger    *zap.Logger
	onCheck   func(oldest time.Duration)
	now       func() time.Time
}

func NewBacklogMonitor(
	q *queue.Coordinator,
	interval, warnAfter time.Duration,
	logger *zap.Logger,
	onCheck func(oldest time.Duration),
) *BacklogMonitor {
	if onCheck == nil {
		onCheck = func(time.Duration) {}
	}
	return &BacklogMonitor{
		q:         q,
		interval:  interval,
		warnAfter: warnAfter,
		logger:    logger,
		onCheck:   onCheck,
		now:       time.Now,
	}
}

// Run ticks every interval and reports the intake backlog.
// Stops cleanly when ctx is cancelled.
func (bm *BacklogMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(bm.interval)
	defer ticker.Stop()

	bm.logger.Info("backlog monitor started",
		zap.Duration("interval", bm.interval),
		zap.Duration("warn_after", bm.warnAfter),
	)

	for {
		select {
		case <-ctx.Done():
			bm.logger.Info("backlog monitor stopping")
			return
		case <-ticker.C:
			bm.Check()
		}
	}
}

// Check runs a single backlog check and returns the oldest wait.
func (bm *BacklogMonitor) Check() time.Duration {
	admitted, ok := bm.q.OldestWaiting()
	if !ok {
		bm.onCheck(0)
		return 0
	}

	oldest := max(bm.now().Sub(admitted), 0)
	bm.onCheck(oldest)

	if bm.warnAfter > 0 && oldest >= bm.warnAfter {
		depth, _ := bm.q.Depths()
		bm.logger.Warn("cases waiting for review longer than threshold",
			zap.Duration("oldest_wait", oldest),
			zap.Int("waiting", depth),
		)
	}
	return oldest
}
