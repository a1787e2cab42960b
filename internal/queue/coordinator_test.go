package queue_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/GodofWar9000/tele-triage/internal/domain"
	"github.com/GodofWar9000/tele-triage/internal/queue"
)

func rec(id string) *domain.Record {
	return domain.NewRecord(id)
}

func TestCoordinator_DispatchIsFIFO(t *testing.T) {
	c := queue.New()
	ctx := context.Background()

	for i := 0; i < 200; i++ {
		if err := c.Dispatch(rec(fmt.Sprintf("id-%d", i))); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < 200; i++ {
		got, ok := c.Dequeue(ctx)
		if !ok {
			t.Fatal("expected item, got nothing")
		}
		if want := fmt.Sprintf("id-%d", i); got.ID != want {
			t.Fatalf("expected %s, got %s", want, got.ID)
		}
	}
}

// TestCoordinator_RequeuePrecedence verifies that a requeued record is
// reviewed before everything already waiting.
func TestCoordinator_RequeuePrecedence(t *testing.T) {
	c := queue.New()

	_ = c.Admit(rec("A"))
	_ = c.Admit(rec("B"))

	a, _ := c.NextForReview()
	if a.ID != "A" {
		t.Fatalf("expected A first, got %s", a.ID)
	}
	if err := c.RequeueFront(a); err != nil {
		t.Fatal(err)
	}

	first, _ := c.NextForReview()
	second, _ := c.NextForReview()
	if first.ID != "A" || second.ID != "B" {
		t.Fatalf("expected A then B, got %s then %s", first.ID, second.ID)
	}
	if _, ok := c.NextForReview(); ok {
		t.Fatal("expected empty intake queue")
	}
}

func TestCoordinator_RequeueFrontBeatsOlderEntries(t *testing.T) {
	c := queue.New()
	_ = c.Admit(rec("A"))
	_ = c.Admit(rec("B"))
	_ = c.RequeueFront(rec("C"))

	var order []string
	for {
		r, ok := c.NextForReview()
		if !ok {
			break
		}
		order = append(order, r.ID)
	}
	if fmt.Sprint(order) != "[C A B]" {
		t.Fatalf("unexpected order %v", order)
	}
}

func TestCoordinator_RejectsDuplicateIdentity(t *testing.T) {
	c := queue.New()

	if err := c.Dispatch(rec("dup")); err != nil {
		t.Fatal(err)
	}
	if err := c.Dispatch(rec("dup")); !errors.Is(err, domain.ErrDuplicateIdentity) {
		t.Fatalf("expected ErrDuplicateIdentity, got %v", err)
	}

	// Once dequeued, the identity may be dispatched again.
	_, _ = c.Dequeue(context.Background())
	if err := c.Dispatch(rec("dup")); err != nil {
		t.Fatalf("expected re-dispatch after dequeue to succeed, got %v", err)
	}

	if err := c.Admit(rec("fresh")); err != nil {
		t.Fatal(err)
	}
	if err := c.Admit(rec("fresh")); !errors.Is(err, domain.ErrDuplicateIdentity) {
		t.Fatalf("expected ErrDuplicateIdentity, got %v", err)
	}
}

// TestCoordinator_InFlightUntilDone walks one identity through review,
// dispatch and a worker, checking a second case is refused at every step.
func TestCoordinator_InFlightUntilDone(t *testing.T) {
	c := queue.New()
	const id = "+15550900"

	if err := c.Admit(rec(id)); err != nil {
		t.Fatal(err)
	}
	refused := func(step string) {
		t.Helper()
		if !c.InFlight(id) {
			t.Fatalf("%s: expected %s in flight", step, id)
		}
		if err := c.Admit(rec(id)); !errors.Is(err, domain.ErrDuplicateIdentity) {
			t.Fatalf("%s: expected ErrDuplicateIdentity, got %v", step, err)
		}
	}
	refused("queued for review")

	r, _ := c.NextForReview()
	refused("held by reviewer")

	if err := c.RequeueFront(r); err != nil {
		t.Fatalf("requeue of an in-flight record must succeed: %v", err)
	}
	refused("requeued")

	r, _ = c.NextForReview()
	if err := c.Dispatch(r); err != nil {
		t.Fatal(err)
	}
	refused("queued for dispatch")

	if _, ok := c.Dequeue(context.Background()); !ok {
		t.Fatal("expected record")
	}
	refused("held by worker")

	c.Done(id)
	if c.InFlight(id) {
		t.Fatal("Done must release the identity")
	}
	if err := c.Admit(rec(id)); err != nil {
		t.Fatalf("expected a new case after Done, got %v", err)
	}
	if c.InFlight("nobody") {
		t.Fatal("unknown identity reported in flight")
	}
}

func TestCoordinator_RejectsEmptyIdentity(t *testing.T) {
	c := queue.New()
	if err := c.Dispatch(rec("")); !errors.Is(err, domain.ErrInvalidIdentity) {
		t.Fatalf("expected ErrInvalidIdentity, got %v", err)
	}
	if err := c.Admit(nil); !errors.Is(err, domain.ErrInvalidIdentity) {
		t.Fatalf("expected ErrInvalidIdentity, got %v", err)
	}
}

// TestCoordinator_DequeueBlocksUntilDispatch verifies an idle worker sleeps
// until a producer signals.
func TestCoordinator_DequeueBlocksUntilDispatch(t *testing.T) {
	c := queue.New()

	got := make(chan *domain.Record, 1)
	go func() {
		r, _ := c.Dequeue(context.Background())
		got <- r
	}()

	select {
	case r := <-got:
		t.Fatalf("Dequeue returned %v before anything was dispatched", r)
	case <-time.After(50 * time.Millisecond):
	}

	_ = c.Dispatch(rec("late"))

	select {
	case r := <-got:
		if r.ID != "late" {
			t.Fatalf("expected late, got %s", r.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("Dequeue was not woken by Dispatch")
	}
}

// TestCoordinator_ContextCancellation verifies Dequeue returns (_, false)
// when the context is cancelled while blocking.
func TestCoordinator_ContextCancellation(t *testing.T) {
	c := queue.New()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan bool, 1)
	go func() {
		_, ok := c.Dequeue(ctx)
		done <- ok
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case ok := <-done:
		if ok {
			t.Fatal("expected ok=false after context cancellation")
		}
	case <-time.After(time.Second):
		t.Fatal("Dequeue did not return after context cancellation")
	}
}

func TestCoordinator_CloseDrainsThenReleases(t *testing.T) {
	c := queue.New()
	ctx := context.Background()

	_ = c.Dispatch(rec("last"))
	c.Close()
	c.Close()

	if err := c.Dispatch(rec("rejected")); !errors.Is(err, domain.ErrQueueClosed) {
		t.Fatalf("expected ErrQueueClosed, got %v", err)
	}
	if r, ok := c.Dequeue(ctx); !ok || r.ID != "last" {
		t.Fatalf("expected queued record to drain after Close, got %v %v", r, ok)
	}
	if _, ok := c.Dequeue(ctx); ok {
		t.Fatal("expected ok=false on a closed, empty queue")
	}
}

// TestCoordinator_ConcurrentConsumption verifies that with N consumers and
// M >= N records every record is dequeued exactly once.
func TestCoordinator_ConcurrentConsumption(t *testing.T) {
	c := queue.New()

	const workers = 8
	const total = 2000

	for i := 0; i < total; i++ {
		_ = c.Dispatch(rec(fmt.Sprintf("id-%d", i)))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var mu sync.Mutex
	seen := make(map[string]int, total)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				mu.Lock()
				n := len(seen)
				mu.Unlock()
				if n == total {
					return
				}
				r, ok := c.Dequeue(ctx)
				if !ok {
					return
				}
				mu.Lock()
				seen[r.ID]++
				done := len(seen) == total
				mu.Unlock()
				if done {
					c.Close()
				}
			}
		}()
	}
	wg.Wait()

	if len(seen) != total {
		t.Fatalf("expected %d distinct records, got %d", total, len(seen))
	}
	for id, n := range seen {
		if n != 1 {
			t.Fatalf("record %s dequeued %d times", id, n)
		}
	}
}

// TestCoordinator_ConcurrentProducers verifies there are no races when
// producers and consumers run at the same time.
func TestCoordinator_ConcurrentProducers(t *testing.T) {
	c := queue.New()

	const producers = 5
	const perProducer = 100
	const total = producers * perProducer

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	received := make(chan string, total)
	var consumers sync.WaitGroup
	for i := 0; i < 3; i++ {
		consumers.Add(1)
		go func() {
			defer consumers.Done()
			for {
				r, ok := c.Dequeue(ctx)
				if !ok {
					return
				}
				received <- r.ID
			}
		}()
	}

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				_ = c.Dispatch(rec(fmt.Sprintf("p%d-%d", p, j)))
			}
		}(p)
	}
	wg.Wait()

	for i := 0; i < total; i++ {
		select {
		case <-received:
		case <-ctx.Done():
			t.Fatalf("timeout: only received %d/%d items", i, total)
		}
	}
	cancel()
	consumers.Wait()
}

func TestCoordinator_Depths(t *testing.T) {
	c := queue.New()

	_ = c.Admit(rec("i1"))
	_ = c.Admit(rec("i2"))
	_ = c.Dispatch(rec("d1"))

	intake, dispatch := c.Depths()
	if intake != 2 || dispatch != 1 {
		t.Fatalf("unexpected depths: intake=%d dispatch=%d", intake, dispatch)
	}
}

func TestCoordinator_OldestWaiting(t *testing.T) {
	c := queue.New()
	if _, ok := c.OldestWaiting(); ok {
		t.Fatal("expected no waiting case")
	}

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	a, b := rec("a"), rec("b")
	a.AdmittedAt, b.AdmittedAt = base, base.Add(time.Minute)
	_ = c.Admit(a)
	_ = c.Admit(b)

	got, ok := c.OldestWaiting()
	if !ok || !got.Equal(base) {
		t.Fatalf("expected %v, got %v (ok=%v)", base, got, ok)
	}
	if intake, _ := c.Depths(); intake != 2 {
		t.Fatal("OldestWaiting must not remove the case")
	}
}
