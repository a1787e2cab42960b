package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/GodofWar9000/tele-triage/internal/domain"
	"github.com/GodofWar9000/tele-triage/internal/matcher"
	"github.com/GodofWar9000/tele-triage/internal/notifier"
	"github.com/GodofWar9000/tele-triage/internal/queue"
	"github.com/GodofWar9000/tele-triage/internal/ratelimiter"
	"github.com/GodofWar9000/tele-triage/internal/repository"
)

// Pipeline stages, used as the retry metric label.
const (
	StageCompose = "compose"
	StageMatch   = "match"
	StageNotify  = "notify"
)

// Matcher is the facility lookup the worker needs. *matcher.Matcher satisfies it.
type Matcher interface {
	Match(ctx context.Context, zip, code string) ([]domain.Facility, error)
	RadiusKm() float64
}

// Worker is a single goroutine that pulls dispatched cases off the
// coordinator and runs the follow-up pipeline (facility match + notify) for
// each one until it is delivered or abandoned.
//
// A case is never put back on the queue: transient failures are retried in
// place after a fixed delay, so the worker keeps ownership until it is done.
type Worker struct {
	id          int
	q           *queue.Coordinator
	matcher     Matcher
	notifier    notifier.Notifier
	limiter     *ratelimiter.Limiter
	outcomes    repository.OutcomeRepository
	retryDelay  time.Duration
	maxAttempts int // 0 = unlimited
	busy        *atomic.Int32
	logger      *zap.Logger

	// Hooks for metrics, injected by the pool so the worker stays metrics-agnostic.
	onDelivered func(code string, latency time.Duration)
	onAbandoned func(reason string, latency time.Duration)
	onRetry     func(stage string)
}

// Run blocks until ctx is cancelled (or the coordinator is closed and
// drained), processing one case per iteration.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("worker started")
	for {
		r, ok := w.q.Dequeue(ctx)
		if !ok {
			w.logger.Info("worker stopping")
			return
		}
		w.busy.Add(1)
		w.process(ctx, r)
		w.busy.Add(-1)
	}
}

func (w *Worker) process(ctx context.Context, r *domain.Record) {
	start := time.Now()
	code, _ := r.Attributes[domain.AttrTriageCode].(string)
	log := w.logger.With(zap.String("case_id", r.CaseID), zap.String("code", code))

	// Release the identity on every exit so the sender can open a new case.
	defer w.q.Done(r.ID)

	attempt := 0
	defer func() {
		if p := recover(); p != nil {
			log.Error("case pipeline panicked; abandoning case", zap.Any("panic", p))
			w.abandon(ctx, r, code, domain.ReasonPanic, attempt, start)
		}
	}()

	for {
		attempt++
		stage, err := w.attempt(ctx, r, code)

		switch {
		case err == nil:
			elapsed := time.Since(start)
			w.onDelivered(code, elapsed)
			w.record(ctx, r, code, domain.OutcomeDelivered, "", attempt)
			log.Info("case delivered", zap.Int("attempts", attempt), zap.Duration("latency", elapsed))
			return

		case ctx.Err() != nil:
			// Shutdown mid-case. Queue state is not persisted, so the case is lost.
			log.Warn("worker stopped before case was delivered", zap.Int("attempts", attempt))
			return

		case errors.Is(err, domain.ErrMissingAttribute):
			// Unrecoverable for this case. The user is not told; the metric and
			// journal entry are the only trace.
			log.Warn("abandoning case: required attribute missing, user will not be notified",
				zap.String("stage", stage), zap.Error(err))
			w.abandon(ctx, r, code, domain.ReasonMissingData, attempt, start)
			return

		case domain.IsTransient(err):
			if w.maxAttempts > 0 && attempt >= w.maxAttempts {
				log.Error("abandoning case: retry limit reached",
					zap.String("stage", stage), zap.Int("attempts", attempt), zap.Error(err))
				w.abandon(ctx, r, code, domain.ReasonRetriesExhausted, attempt, start)
				return
			}
			log.Warn("transient failure, retrying",
				zap.String("stage", stage),
				zap.Int("attempt", attempt),
				zap.Duration("delay", w.retryDelay),
				zap.Error(err),
			)
			w.onRetry(stage)
			if !w.sleep(ctx) {
				log.Warn("worker stopped before case was delivered", zap.Int("attempts", attempt))
				return
			}

		default:
			log.Error("abandoning case: permanent failure",
				zap.String("stage", stage), zap.Error(err))
			w.abandon(ctx, r, code, domain.ReasonPermanent, attempt, start)
			return
		}
	}
}

// attempt runs the pipeline once and reports the stage that failed.
func (w *Worker) attempt(ctx context.Context, r *domain.Record, code string) (string, error) {
	message, err := r.StringAttr(domain.AttrInstructions)
	if err != nil {
		return StageCompose, err
	}
	needsFacility, err := r.BoolAttr(domain.AttrGetHospital)
	if err != nil {
		return StageCompose, err
	}

	if needsFacility {
		zip, err := r.StringAttr(domain.AttrZipCode)
		if err != nil {
			return StageMatch, err
		}
		if code == "" {
			return StageMatch, &domain.MissingAttributeError{Key: domain.AttrTriageCode}
		}
		facilities, err := w.matcher.Match(ctx, zip, code)
		if err != nil {
			return StageMatch, fmt.Errorf("match facilities: %w", err)
		}
		message = matcher.ComposeResolution(message, facilities, w.matcher.RadiusKm())
	}

	target, err := r.StringAttr(domain.AttrPhoneNumber)
	if err != nil {
		return StageNotify, err
	}
	if err := w.limiter.Wait(ctx); err != nil {
		return StageNotify, err
	}
	if err := w.notifier.Send(ctx, target, message); err != nil {
		return StageNotify, fmt.Errorf("send resolution: %w", err)
	}
	return "", nil
}

// sleep waits retryDelay. It returns false if ctx was cancelled first.
func (w *Worker) sleep(ctx context.Context) bool {
	timer := time.NewTimer(w.retryDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (w *Worker) abandon(ctx context.Context, r *domain.Record, code, reason string, attempts int, start time.Time) {
	w.onAbandoned(reason, time.Since(start))
	w.record(ctx, r, code, domain.OutcomeAbandoned, reason, attempts)
}

func (w *Worker) record(ctx context.Context, r *domain.Record, code string, outcome domain.Outcome, reason string, attempts int) {
	err := w.outcomes.Record(context.WithoutCancel(ctx), domain.CaseOutcome{
		CaseID:     r.CaseID,
		Identity:   r.ID,
		Code:       code,
		Outcome:    outcome,
		Reason:     reason,
		Attempts:   attempts,
		FinishedAt: time.Now().UTC(),
	})
	if err != nil {
		w.logger.Error("failed to journal case outcome",
			zap.String("case_id", r.CaseID), zap.String("outcome", string(outcome)), zap.Error(err))
	}
}
