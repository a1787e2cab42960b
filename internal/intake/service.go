package intake

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/GodofWar9000/tele-triage/internal/domain"
)

// Step is the outcome of feeding one inbound message to the conversation.
// Record is set only when Complete is true.
type Step struct {
	Reply    string
	Complete bool
	Record   *domain.Record
}

type conversation struct {
	record *domain.Record
	next   int
	done   bool
}

// Service runs one questionnaire per identity. State lives in memory only.
type Service struct {
	schema *Schema
	logger *zap.Logger

	mu    sync.Mutex
	convs map[string]*conversation
}

func NewService(schema *Schema, logger *zap.Logger) *Service {
	return &Service{
		schema: schema,
		logger: logger,
		convs:  make(map[string]*conversation),
	}
}

// Advance feeds input to identity's conversation and returns the reply to
// send back. The first message from an identity only starts the
// conversation; its text is not treated as an answer.
//
// Once every question is answered the finished record is returned with
// Complete set, and the identity is held in a waiting state until Delete is
// called. Input while waiting gets the holding reply.
func (s *Service) Advance(_ context.Context, identity, input string) (Step, error) {
	if identity == "" {
		return Step{}, domain.ErrInvalidIdentity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.convs[identity]
	if !ok {
		c = &conversation{record: domain.NewRecord(identity)}
		s.convs[identity] = c
		s.logger.Debug("intake started", zap.String("identity", identity))
		return Step{Reply: joinReply(s.schema.Greeting, s.schema.Questions[0].Prompt)}, nil
	}
	if c.done {
		return Step{Reply: s.HoldingReply()}, nil
	}

	q := s.schema.Questions[c.next]
	value, valid := parseAnswer(q.Kind, input)
	if !valid {
		return Step{Reply: joinReply(q.Retry, q.Prompt)}, nil
	}
	c.record.Set(q.Key, value)
	c.next++

	if c.next < len(s.schema.Questions) {
		return Step{Reply: s.schema.Questions[c.next].Prompt}, nil
	}

	c.done = true
	return Step{
		Reply:    s.schema.Completion,
		Complete: true,
		Record:   c.record.Snapshot(),
	}, nil
}

// Waiting reports whether identity has finished intake and is awaiting a
// disposition.
func (s *Service) Waiting(identity string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.convs[identity]
	return ok && c.done
}

// Delete drops all state for identity. The next message starts over.
func (s *Service) Delete(identity string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.convs, identity)
}

// Active is the number of conversations in memory, finished ones included.
func (s *Service) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.convs)
}

// HoldingReply is sent to a sender whose case is still being handled.
func (s *Service) HoldingReply() string {
	if s.schema.Holding != "" {
		return s.schema.Holding
	}
	return s.schema.Completion
}

func joinReply(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}
