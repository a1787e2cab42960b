package queue

import "testing"

func TestDeque_WrapAroundAndGrowth(t *testing.T) {
	var d deque[int]

	// Interleave pushes and pops so head wraps before the buffer grows.
	for i := 0; i < initialDequeCapacity-1; i++ {
		d.PushBack(i)
	}
	for i := 0; i < initialDequeCapacity/2; i++ {
		if v, _ := d.PopFront(); v != i {
			t.Fatalf("expected %d, got %d", i, v)
		}
	}
	next := initialDequeCapacity - 1
	for i := 0; i < 3*initialDequeCapacity; i++ {
		d.PushBack(next + i)
	}
	d.PushFront(-1)

	if v, _ := d.PopFront(); v != -1 {
		t.Fatalf("expected front-pushed -1, got %d", v)
	}
	want := initialDequeCapacity / 2
	for d.Len() > 0 {
		v, _ := d.PopFront()
		if v != want {
			t.Fatalf("expected %d, got %d", want, v)
		}
		want++
	}
	if _, ok := d.PopFront(); ok {
		t.Fatal("expected empty deque")
	}
}
