package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/GodofWar9000/tele-triage/internal/domain"
	"github.com/GodofWar9000/tele-triage/internal/intake"
	"github.com/GodofWar9000/tele-triage/internal/queue"
	"github.com/GodofWar9000/tele-triage/internal/repository"
)

const (
	restartKeyword = "RESTART"

	defaultOutcomeLimit = 50
	maxOutcomeLimit     = 500
)

// Hooks carries the metric callbacks injected by main. Nil hooks are no-ops.
type Hooks struct {
	OnDispatched func(code string)
	OnRequeued   func()
}

// TriageService sits between the SMS intake, the reviewers and the dispatch
// queue. It is the only producer for both queues.
//
// Each reviewer holds at most one case at a time. The hold survives a page
// refresh: asking for the next case while holding one returns the same case.
type TriageService struct {
	intake   *intake.Service
	q        *queue.Coordinator
	outcomes repository.OutcomeRepository
	logger   *zap.Logger
	hooks    Hooks

	mu      sync.Mutex
	holds   map[string]*domain.Record // reviewer -> case
	entropy *ulid.MonotonicEntropy
}

func NewTriageService(
	in *intake.Service,
	q *queue.Coordinator,
	outcomes repository.OutcomeRepository,
	logger *zap.Logger,
	hooks Hooks,
) *TriageService {
	if hooks.OnDispatched == nil {
		hooks.OnDispatched = func(string) {}
	}
	if hooks.OnRequeued == nil {
		hooks.OnRequeued = func() {}
	}
	return &TriageService{
		intake:   in,
		q:        q,
		outcomes: outcomes,
		logger:   logger,
		hooks:    hooks,
		holds:    make(map[string]*domain.Record),
		entropy:  ulid.Monotonic(rand.Reader, 0),
	}
}

// HandleInbound processes one inbound SMS and returns the reply text.
// A completed questionnaire is admitted to the intake queue with a fresh
// case ID.
func (s *TriageService) HandleInbound(ctx context.Context, from, body string) (string, error) {
	if from == "" {
		return "", domain.ErrInvalidIdentity
	}
	body = strings.TrimSpace(body)

	// One case per sender at a time. From admission until a worker finishes
	// the case, every message (RESTART included) gets the holding reply.
	if s.q.InFlight(from) {
		return s.intake.HoldingReply(), nil
	}

	if strings.EqualFold(body, restartKeyword) {
		s.intake.Delete(from)
		s.logger.Debug("intake restarted", zap.String("identity", from))
	}

	step, err := s.intake.Advance(ctx, from, body)
	if err != nil {
		return "", fmt.Errorf("advance intake: %w", err)
	}
	if !step.Complete {
		return step.Reply, nil
	}

	r := step.Record
	r.CaseID = s.newCaseID()
	r.AdmittedAt = time.Now().UTC()
	if err := s.q.Admit(r); err != nil {
		s.intake.Delete(from)
		return "", fmt.Errorf("admit case: %w", err)
	}
	s.logger.Info("case admitted for review", zap.String("case_id", r.CaseID))
	return step.Reply, nil
}

// NextCase returns the case held by reviewer, or takes the oldest waiting
// case and holds it. The returned record is a copy.
func (s *TriageService) NextCase(_ context.Context, reviewer string) (*domain.Record, error) {
	if reviewer == "" {
		return nil, domain.ErrMissingReviewer
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.holds[reviewer]; ok {
		return r.Snapshot(), nil
	}
	r, ok := s.q.NextForReview()
	if !ok {
		return nil, domain.ErrNoCases
	}
	s.holds[reviewer] = r
	s.logger.Info("case assigned",
		zap.String("case_id", r.CaseID),
		zap.String("reviewer", reviewer),
	)
	return r.Snapshot(), nil
}

// Verdict applies reviewer's disposition to the held case and releases the
// hold. A known code attaches the follow-up attributes and dispatches the
// case; any other code puts it back at the front of the review queue.
// dispatched reports which of the two happened.
func (s *TriageService) Verdict(ctx context.Context, reviewer, identity, code string) (dispatched bool, err error) {
	d, ok := domain.LookupDisposition(code)
	if !ok {
		if err := s.Requeue(ctx, reviewer, identity); err != nil {
			return false, err
		}
		return false, nil
	}

	r, err := s.release(reviewer, identity)
	if err != nil {
		return false, err
	}

	r.Set(domain.AttrPhoneNumber, r.ID)
	r.Set(domain.AttrTriageCode, d.Code)
	r.Set(domain.AttrInstructions, d.Instructions)
	r.Set(domain.AttrGetHospital, d.NeedsFacility)

	if err := s.q.Dispatch(r); err != nil {
		s.restoreHold(reviewer, r)
		return false, fmt.Errorf("dispatch case: %w", err)
	}
	s.intake.Delete(identity)
	s.hooks.OnDispatched(d.Code)
	s.logger.Info("case dispatched",
		zap.String("case_id", r.CaseID),
		zap.String("reviewer", reviewer),
		zap.String("code", d.Code),
	)
	return true, nil
}

// Requeue releases reviewer's hold and pushes the case to the front of the
// review queue. The next NextCase call from any reviewer, including this
// one, gets it back.
func (s *TriageService) Requeue(_ context.Context, reviewer, identity string) error {
	r, err := s.release(reviewer, identity)
	if err != nil {
		return err
	}
	if err := s.q.RequeueFront(r); err != nil {
		s.restoreHold(reviewer, r)
		return fmt.Errorf("requeue case: %w", err)
	}
	s.hooks.OnRequeued()
	s.logger.Info("case requeued",
		zap.String("case_id", r.CaseID),
		zap.String("reviewer", reviewer),
	)
	return nil
}

// Outcomes lists recently finished cases, newest first.
func (s *TriageService) Outcomes(ctx context.Context, limit int) ([]domain.CaseOutcome, error) {
	if limit <= 0 {
		limit = defaultOutcomeLimit
	}
	limit = min(limit, maxOutcomeLimit)
	out, err := s.outcomes.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}
	return out, nil
}

// Held is the number of cases currently held by reviewers.
func (s *TriageService) Held() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.holds)
}

func (s *TriageService) release(reviewer, identity string) (*domain.Record, error) {
	if reviewer == "" {
		return nil, domain.ErrMissingReviewer
	}
	if identity == "" {
		return nil, domain.ErrInvalidIdentity
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.holds[reviewer]
	if !ok || r.ID != identity {
		return nil, domain.ErrCaseNotHeld
	}
	delete(s.holds, reviewer)
	return r, nil
}

func (s *TriageService) restoreHold(reviewer string, r *domain.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holds[reviewer] = r
}

func (s *TriageService) newCaseID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}
