package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/GodofWar9000/tele-triage/internal/config"
	"github.com/GodofWar9000/tele-triage/internal/notifier"
	"github.com/GodofWar9000/tele-triage/internal/queue"
	"github.com/GodofWar9000/tele-triage/internal/ratelimiter"
	"github.com/GodofWar9000/tele-triage/internal/repository"
)

// MetricHooks carries the metric callback functions injected by main.
// Using a struct keeps the pool constructor signature clean. Nil hooks are no-ops.
type MetricHooks struct {
	OnDelivered func(code string, latency time.Duration)
	OnAbandoned func(reason string, latency time.Duration)
	OnRetry     func(stage string)
}

// Pool manages the lifecycle of a fixed number of identical workers that all
// drain the same dispatch queue.
type Pool struct {
	workers []*Worker
	busy    atomic.Int32
	wg      sync.WaitGroup
}

// NewPool creates cfg.Workers workers sharing q, the matcher, the notifier
// and the outbound rate limiter.
func NewPool(
	cfg *config.Config,
	q *queue.Coordinator,
	m Matcher,
	n notifier.Notifier,
	limiter *ratelimiter.Limiter,
	outcomes repository.OutcomeRepository,
	logger *zap.Logger,
	hooks MetricHooks,
) *Pool {
	if hooks.OnDelivered == nil {
		hooks.OnDelivered = func(string, time.Duration) {}
	}
	if hooks.OnAbandoned == nil {
		hooks.OnAbandoned = func(string, time.Duration) {}
	}
	if hooks.OnRetry == nil {
		hooks.OnRetry = func(string) {}
	}

	p := &Pool{workers: make([]*Worker, cfg.Workers)}
	for i := range p.workers {
		p.workers[i] = &Worker{
			id:          i,
			q:           q,
			matcher:     m,
			notifier:    n,
			limiter:     limiter,
			outcomes:    outcomes,
			retryDelay:  cfg.RetryDelay,
			maxAttempts: cfg.RetryMaxAttempts,
			busy:        &p.busy,
			logger:      logger.With(zap.Int("worker_id", i)),
			onDelivered: hooks.OnDelivered,
			onAbandoned: hooks.OnAbandoned,
			onRetry:     hooks.OnRetry,
		}
	}
	return p
}

// Start launches all workers as goroutines.
// The provided ctx is forwarded to every worker; cancelling it
// triggers a graceful shutdown of the entire pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *Worker) {
			defer p.wg.Done()
			w.Run(ctx)
		}(w)
	}
}

// Wait blocks until every worker has returned after ctx is cancelled.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Size is the number of workers in the pool.
func (p *Pool) Size() int { return len(p.workers) }

// Busy is the number of workers currently holding a case.
func (p *Pool) Busy() int { return int(p.busy.Load()) }
