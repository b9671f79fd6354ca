package queue

import (
	"fmt"
	"sync"
	"sync/atomic"

	list "github.com/bahlo/generic-list-go"
	"github.com/hedzr/go-ringbuf/v2/mpmc"
)

// MaxCapacity sets an upper limit on the bounded queue size to guard against accidental misconfiguration.
const MaxCapacity uint32 = 1024 * 1024

// Queue is a first-in-first-out queue handing values from a producer goroutine
// to a consumer goroutine.
//
// Push never blocks. An unbounded queue (New) grows without limit, so a producer
// with no consumer accumulates values until the queue is discarded. A bounded
// queue (NewBounded) discards the oldest value when full.
//
// Consumers wait on Ready() and then call TryPop until it reports empty:
//
//	for {
//	    select {
//	    case <-q.Ready():
//	    case <-ctx.Done():
//	        return
//	    }
//	    for v, ok := q.TryPop(); ok; v, ok = q.TryPop() {
//	        handle(v)
//	    }
//	}
//
// All methods are safe for concurrent use.
type Queue[T any] struct {
	mu      sync.Mutex
	items   *list.List[T]                    // unbounded storage
	ring     mpmc.RichOverlappedRingBuffer[T] // bounded storage
	bounded  bool
	capacity int
	pending int
	ready   chan struct{}
	metrics Metrics // lock-free metrics tracking
}

// New creates an unbounded queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{
		items: list.New[T](),
		ready: make(chan struct{}, 1),
	}
}

// NewBounded creates a queue holding at most capacity values, discarding the oldest when full.
func NewBounded[T any](capacity uint32) (*Queue[T], error) {
	if capacity == 0 {
		return nil, fmt.Errorf("queue capacity must be > 0")
	}
	if capacity > MaxCapacity {
		return nil, fmt.Errorf("queue capacity %d exceeds maximum %d", capacity, MaxCapacity)
	}
	return &Queue[T]{
		// The ring rounds its size up to a power of two and keeps one slot free,
		// so capacity+1 always leaves room for capacity values.
		ring:     mpmc.NewOverlappedRingBuffer[T](capacity + 1),
		bounded:  true,
		capacity: int(capacity),
		ready:    make(chan struct{}, 1),
	}, nil
}

// Push appends v and wakes a waiting consumer. It returns the number of values
// discarded to make room, which is always 0 for an unbounded queue.
func (q *Queue[T]) Push(v T) int {
	q.mu.Lock()
	dropped := 0
	if q.bounded {
		// Evict the oldest value ourselves; the ring never reaches its overwrite point
		if q.pending >= q.capacity {
			if _, err := q.ring.Dequeue(); err == nil {
				q.pending--
				dropped++
			}
		}
		overwrites, err := q.ring.EnqueueM(v)
		if err != nil {
			q.mu.Unlock()
			q.metrics.addError()
			if dropped > 0 {
				q.metrics.addDropped(dropped)
			}
			return dropped
		}
		dropped += int(overwrites)
		q.pending += 1 - int(overwrites)
	} else {
		q.items.PushBack(v)
		q.pending++
	}
	q.mu.Unlock()

	q.metrics.addPushed(1)
	if dropped > 0 {
		q.metrics.addDropped(dropped)
	}

	select {
	case q.ready <- struct{}{}:
	default:
	}
	return dropped
}

// TryPop removes and returns the oldest value without blocking.
// Returns (zero, false) if the queue is empty.
func (q *Queue[T]) TryPop() (T, bool) {
	var zero T

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.bounded {
		if q.ring.IsEmpty() {
			return zero, false
		}
		v, err := q.ring.Dequeue()
		if err != nil {
			q.metrics.addError()
			return zero, false
		}
		q.pending--
		q.metrics.addPopped(1)
		return v, true
	}

	front := q.items.Front()
	if front == nil {
		return zero, false
	}
	q.pending--
	q.metrics.addPopped(1)
	return q.items.Remove(front), true
}

// Ready returns a channel that receives after values have been pushed.
// One signal may stand for several values; drain with TryPop.
func (q *Queue[T]) Ready() <-chan struct{} {
	return q.ready
}

// Len returns the number of queued values.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending
}

// Bounded reports whether the queue discards values when full.
func (q *Queue[T]) Bounded() bool {
	return q.bounded
}

// GetMetrics returns a snapshot of current metrics values.
// All reads are atomic and thread-safe.
func (q *Queue[T]) GetMetrics() Metrics {
	return Metrics{
		Pushed:  atomic.LoadInt64(&q.metrics.Pushed),
		Popped:  atomic.LoadInt64(&q.metrics.Popped),
		Dropped: atomic.LoadInt64(&q.metrics.Dropped),
		Errors:  atomic.LoadInt64(&q.metrics.Errors),
	}
}

// Metrics provides lock-free metrics tracking for Queue.
//
// All fields use atomic operations for thread-safe access
type Metrics struct {
	Pushed  int64
	Popped  int64
	Dropped int64
	Errors  int64
}

func (m *Metrics) addPushed(n int) {
	atomic.AddInt64(&m.Pushed, int64(n))
}

func (m *Metrics) addPopped(n int) {
	atomic.AddInt64(&m.Popped, int64(n))
}

func (m *Metrics) addDropped(n int) {
	atomic.AddInt64(&m.Dropped, int64(n))
}

func (m *Metrics) addError() {
	atomic.AddInt64(&m.Errors, 1)
}
