package queue

import (
	"context"
	"sync"
	"time"

	"github.com/GodofWar9000/tele-triage/internal/domain"
)

// Coordinator owns both case queues and is the only way to reach them.
//
//	intake:   records that finished the SMS questionnaire and wait for a
//	          reviewer. FIFO, except RequeueFront which jumps the line.
//	dispatch: records with a disposition that wait for a worker to run the
//	          facility match and send the resolution. Strict FIFO.
//
// Both queues are unbounded: producers are never rejected for capacity and a
// slow worker pool only grows the dispatch depth.
//
// Workers block in Dequeue on a condition variable paired with the dispatch
// mutex; Dispatch signals one waiter per record.
//
// An identity is in flight from Admit until the worker that dequeued it
// calls Done, including while a reviewer holds it and while a worker retries
// it. Admit rejects an identity that is already in flight.
type Coordinator struct {
	flightMu sync.Mutex
	inFlight map[string]struct{}

	intakeMu      sync.Mutex
	intake        deque[*domain.Record]
	intakeMembers map[string]struct{}

	mu              sync.Mutex
	cond            *sync.Cond
	dispatch        deque[*domain.Record]
	dispatchMembers map[string]struct{}
	closed          bool
}

func New() *Coordinator {
	c := &Coordinator{
		inFlight:        make(map[string]struct{}),
		intakeMembers:   make(map[string]struct{}),
		dispatchMembers: make(map[string]struct{}),
	}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Admit appends a completed intake record to the tail of the intake queue
// and marks its identity in flight. It fails with ErrDuplicateIdentity while
// an earlier record for the same identity has not been finished with Done.
func (c *Coordinator) Admit(r *domain.Record) error {
	if r == nil || r.ID == "" {
		return domain.ErrInvalidIdentity
	}
	c.flightMu.Lock()
	if _, dup := c.inFlight[r.ID]; dup {
		c.flightMu.Unlock()
		return domain.ErrDuplicateIdentity
	}
	c.inFlight[r.ID] = struct{}{}
	c.flightMu.Unlock()

	if err := c.pushIntake(r, false); err != nil {
		c.Done(r.ID)
		return err
	}
	return nil
}

// RequeueFront puts a record the reviewer declined to dispose back at the
// head of the intake queue so it is reviewed before any other pending case.
// The record stays in flight.
func (c *Coordinator) RequeueFront(r *domain.Record) error {
	if err := c.pushIntake(r, true); err != nil {
		return err
	}
	c.markInFlight(r.ID)
	return nil
}

func (c *Coordinator) pushIntake(r *domain.Record, front bool) error {
	if r == nil || r.ID == "" {
		return domain.ErrInvalidIdentity
	}
	c.intakeMu.Lock()
	defer c.intakeMu.Unlock()

	if _, dup := c.intakeMembers[r.ID]; dup {
		return domain.ErrDuplicateIdentity
	}
	c.intakeMembers[r.ID] = struct{}{}
	if front {
		c.intake.PushFront(r)
	} else {
		c.intake.PushBack(r)
	}
	return nil
}

// NextForReview pops the head of the intake queue without blocking.
// Ownership of the record passes to the caller.
func (c *Coordinator) NextForReview() (*domain.Record, bool) {
	c.intakeMu.Lock()
	defer c.intakeMu.Unlock()

	r, ok := c.intake.PopFront()
	if !ok {
		return nil, false
	}
	delete(c.intakeMembers, r.ID)
	return r, true
}

// OldestWaiting returns the admission time of the case at the head of the
// intake queue. ok is false when no case is waiting.
func (c *Coordinator) OldestWaiting() (admitted time.Time, ok bool) {
	c.intakeMu.Lock()
	defer c.intakeMu.Unlock()

	r, ok := c.intake.Front()
	if !ok {
		return time.Time{}, false
	}
	return r.AdmittedAt, true
}

// Dispatch appends a disposed record to the dispatch queue and wakes one idle
// worker. It only holds the lock for the append itself.
func (c *Coordinator) Dispatch(r *domain.Record) error {
	if r == nil || r.ID == "" {
		return domain.ErrInvalidIdentity
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return domain.ErrQueueClosed
	}
	if _, dup := c.dispatchMembers[r.ID]; dup {
		return domain.ErrDuplicateIdentity
	}
	c.dispatchMembers[r.ID] = struct{}{}
	c.markInFlight(r.ID)
	c.dispatch.PushBack(r)
	c.cond.Signal()
	return nil
}

// Dequeue blocks until a dispatched record is available and returns it.
// With a context that is never cancelled it waits indefinitely.
//
// Returns (nil, false) once ctx is cancelled, or once the coordinator is
// closed and the dispatch queue has been drained.
func (c *Coordinator) Dequeue(ctx context.Context) (*domain.Record, bool) {
	// sync.Cond has no context support; wake every waiter on cancellation so
	// each one re-checks ctx under the lock.
	stop := context.AfterFunc(ctx, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.cond.Broadcast()
	})
	defer stop()

	c.mu.Lock()
	defer c.mu.Unlock()

	for {
		if ctx.Err() != nil {
			return nil, false
		}
		if r, ok := c.dispatch.PopFront(); ok {
			delete(c.dispatchMembers, r.ID)
			return r, true
		}
		if c.closed {
			return nil, false
		}
		// Wakeups can be spurious or lost to another worker; loop and re-check.
		c.cond.Wait()
	}
}

// Close rejects further Dispatch calls and releases idle workers once the
// dispatch queue is empty. Safe to call more than once.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.cond.Broadcast()
}

// Done releases identity once its record is finished: delivered, abandoned
// or dropped at shutdown. A new case for the identity may then be admitted.
func (c *Coordinator) Done(identity string) {
	c.flightMu.Lock()
	defer c.flightMu.Unlock()
	delete(c.inFlight, identity)
}

// InFlight reports whether identity has a record anywhere between Admit and
// Done: queued for review, held by a reviewer, queued for dispatch or being
// processed by a worker.
func (c *Coordinator) InFlight(identity string) bool {
	c.flightMu.Lock()
	defer c.flightMu.Unlock()
	_, ok := c.inFlight[identity]
	return ok
}

func (c *Coordinator) markInFlight(identity string) {
	c.flightMu.Lock()
	defer c.flightMu.Unlock()
	c.inFlight[identity] = struct{}{}
}

// Depths returns the number of records currently waiting in each queue.
// Used by the metrics collector and the JSON snapshot endpoint.
func (c *Coordinator) Depths() (intake, dispatch int) {
	c.intakeMu.Lock()
	intake = c.intake.Len()
	c.intakeMu.Unlock()

	c.mu.Lock()
	dispatch = c.dispatch.Len()
	c.mu.Unlock()
	return intake, dispatch
}
