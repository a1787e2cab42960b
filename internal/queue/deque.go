package queue

const initialDequeCapacity = 64

// deque is an unbounded double-ended queue backed by a circular buffer that
// doubles when full. It is not safe for concurrent use; Coordinator guards it.
type deque[T any] struct {
	buf  []T
	head int // index of the first element
	size int
}

func (d *deque[T]) Len() int { return d.size }

func (d *deque[T]) PushBack(v T) {
	d.grow()
	d.buf[(d.head+d.size)%len(d.buf)] = v
	d.size++
}

func (d *deque[T]) PushFront(v T) {
	d.grow()
	d.head = (d.head - 1 + len(d.buf)) % len(d.buf)
	d.buf[d.head] = v
	d.size++
}

// Front returns the oldest element without removing it.
func (d *deque[T]) Front() (v T, ok bool) {
	if d.size == 0 {
		return v, false
	}
	return d.buf[d.head], true
}

// PopFront removes and returns the oldest element. ok is false when empty.
func (d *deque[T]) PopFront() (v T, ok bool) {
	if d.size == 0 {
		return v, false
	}
	var zero T
	v = d.buf[d.head]
	d.buf[d.head] = zero // drop the reference so the record can be collected
	d.head = (d.head + 1) % len(d.buf)
	d.size--
	return v, true
}

func (d *deque[T]) grow() {
	if d.size < len(d.buf) {
		return
	}
	n := 2 * len(d.buf)
	if n == 0 {
		n = initialDequeCapacity
	}
	buf := make([]T, n)
	for i := 0; i < d.size; i++ {
		buf[i] = d.buf[(d.head+i)%len(d.buf)]
	}
	d.buf = buf
	d.head = 0
}
