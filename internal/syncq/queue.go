package syncq

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Record is one pending usage-sync unit: the accumulated counters for an
// identity, stamped with the time they were observed. The persisted row is
// replaced wholesale on apply — last write wins; UpdatedAt exists so the
// syncer can discard stale writes if it chooses to.
type Record struct {
	Identity   string
	Summaries  int
	InputBytes int64
	ObservedAt time.Time
}

// Syncer applies a [Record] to durable storage. Implementations must be safe
// for concurrent use; Apply is retried, so it must be idempotent under
// last-write-wins semantics.
type Syncer interface {
	Apply(ctx context.Context, rec Record) error
}

// Config controls queue buffering and redelivery behavior.
type Config struct {
	BufferSize  int
	MaxAttempts int
	Backoff     time.Duration
	DropIfFull  bool
}

// Queue asynchronously forwards usage records to a [Syncer] with bounded
// retry. Delivery is at-least-once up to MaxAttempts; records that exhaust
// their attempts (or are dropped under backpressure) are counted rather than
// silently discarded.
type Queue struct {
	cfg       Config
	syncer    Syncer
	ch        chan Record
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	retries   atomic.Uint64
	failed    atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

// NewQueue starts the delivery worker and returns the queue. A nil syncer
// disables the queue entirely (NewQueue returns nil and every method on the
// nil receiver is a no-op).
func NewQueue(cfg Config, syncer Syncer) *Queue {
	if syncer == nil {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 100 * time.Millisecond
	}

	q := &Queue{
		cfg:    cfg,
		syncer: syncer,
		ch:     make(chan Record, cfg.BufferSize),
		done:   make(chan struct{}),
	}

	q.wg.Add(1)
	go q.run()

	return q
}

func (q *Queue) run() {
	defer q.wg.Done()

	for {
		select {
		case rec := <-q.ch:
			q.deliver(rec)
		case <-q.done:
			for {
				select {
				case rec := <-q.ch:
					q.deliver(rec)
				default:
					return
				}
			}
		}
	}
}

func (q *Queue) deliver(rec Record) {
	backoff := q.cfg.Backoff
	for attempt := 1; ; attempt++ {
		if err := q.syncer.Apply(context.Background(), rec); err == nil {
			return
		}

		if attempt >= q.cfg.MaxAttempts {
			q.failed.Add(1)
			return
		}
		q.retries.Add(1)

		select {
		case <-time.After(backoff):
		case <-q.done:
			// Draining: one last immediate attempt each, no more waiting.
			if err := q.syncer.Apply(context.Background(), rec); err != nil {
				q.failed.Add(1)
			}
			return
		}
		backoff *= 2
	}
}

// Enqueue submits a record for background delivery. With DropIfFull the call
// never blocks and a full buffer increments the drop counter; otherwise it
// blocks until there is room, ctx is done, or the queue is closed.
func (q *Queue) Enqueue(ctx context.Context, rec Record) {
	if q == nil || q.closed.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if q.cfg.DropIfFull {
		select {
		case q.ch <- rec:
		case <-q.done:
		default:
			q.dropped.Add(1)
		}
		return
	}

	select {
	case q.ch <- rec:
	case <-ctx.Done():
	case <-q.done:
	}
}

// Close drains buffered records and stops the worker.
func (q *Queue) Close() {
	if q == nil {
		return
	}
	q.closeOnce.Do(func() {
		q.closed.Store(true)
		close(q.done)
		q.wg.Wait()
	})
}

// Dropped returns how many records were discarded under backpressure.
func (q *Queue) Dropped() uint64 {
	if q == nil {
		return 0
	}
	return q.dropped.Load()
}

// Retries returns how many redelivery attempts were made.
func (q *Queue) Retries() uint64 {
	if q == nil {
		return 0
	}
	return q.retries.Load()
}

// Failed returns how many records exhausted their delivery attempts.
func (q *Queue) Failed() uint64 {
	if q == nil {
		return 0
	}
	return q.failed.Load()
}
