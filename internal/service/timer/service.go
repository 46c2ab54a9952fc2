package timer

import (
	"container/heap"
	"math"
)

// Expiry identifies one scheduled timer.
type Expiry struct {
	// Key is the sensor id the timer belongs to.
	Key string
	// Timestamp is the event-time deadline in Unix milliseconds.
	Timestamp int64
}

// Service schedules expiry timers against an advancing event-time watermark.
// It is not safe for concurrent use; each partition owns its own instance.
type Service struct {
	// watermark is the current event-time lower bound for the partition.
	watermark int64
	// queue orders pending timers by timestamp.
	queue expiryQueue
	// pending deduplicates registrations per (key, timestamp) pair.
	pending map[Expiry]struct{}
}

// NewService creates a timer service with the watermark at its floor, so no
// timer can be due before the first event arrives.
func NewService() *Service {
	return &Service{
		watermark: math.MinInt64,
		pending:   make(map[Expiry]struct{}),
	}
}

// RegisterTimer schedules an expiry for the key at the given event-time
// timestamp. Registering the same (key, timestamp) pair again is a no-op, so
// repeated readings inside one watermark cycle never queue duplicate firings.
func (s *Service) RegisterTimer(key string, timestamp int64) {
	entry := Expiry{
		Key:       key,
		Timestamp: timestamp,
	}

	if _, exists := s.pending[entry]; exists {
		return
	}

	s.pending[entry] = struct{}{}
	heap.Push(&s.queue, entry)
}

// CurrentWatermark returns the event-time lower bound last observed by the
// partition. It never decreases.
func (s *Service) CurrentWatermark() int64 {
	return s.watermark
}

// AdvanceWatermark raises the watermark to the given timestamp. Regressions
// are ignored to keep the watermark monotonic.
func (s *Service) AdvanceWatermark(timestamp int64) {
	if timestamp > s.watermark {
		s.watermark = timestamp
	}
}

// PopDue drains and returns every timer whose timestamp is at or below the
// current watermark, in timestamp order. Callers invoke it after the
// watermark advances and after the triggering reading has been processed, so
// a timer for T only fires once all readings with event time <= T are in.
func (s *Service) PopDue() []Expiry {
	var due []Expiry

	for s.queue.Len() > 0 && s.queue[0].Timestamp <= s.watermark {
		//nolint:forcetypeassert // The queue only ever holds Expiry values.
		entry := heap.Pop(&s.queue).(Expiry)
		delete(s.pending, entry)

		due = append(due, entry)
	}

	return due
}

// Len returns the number of pending timers, including superseded ones that
// have not fired yet.
func (s *Service) Len() int {
	return s.queue.Len()
}

// expiryQueue is a min-heap of timers ordered by timestamp, with the key as a
// tie-breaker so firing order is deterministic.
type expiryQueue []Expiry

func (q expiryQueue) Len() int { return len(q) }

func (q expiryQueue) Less(i, j int) bool {
	if q[i].Timestamp != q[j].Timestamp {
		return q[i].Timestamp < q[j].Timestamp
	}

	return q[i].Key < q[j].Key
}

func (q expiryQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *expiryQueue) Push(x any) {
	//nolint:forcetypeassert // heap.Push is only called with Expiry values.
	*q = append(*q, x.(Expiry))
}

func (q *expiryQueue) Pop() any {
	old := *q
	n := len(old)
	entry := old[n-1]
	*q = old[:n-1]

	return entry
}
