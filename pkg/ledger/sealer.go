package ledger

import (
	"context"
	"sync"
	"sync/atomic"
)

// SealResult is delivered once per submitted batch
type SealResult struct {
	Block *Block
	Err   error
}

type sealRequest struct {
	records []Record
	res     chan SealResult
}

// Sealer decouples submission of a batch from mining it. A single worker
// drains the queue in submission order so seals never race for the same tip.
type Sealer struct {
	ledger *Ledger
	queue  chan *sealRequest

	mu      sync.Mutex
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	pending int64
}

func NewSealer(l *Ledger, queueSize int) *Sealer {
	if queueSize <= 0 {
		queueSize = 1
	}

	return &Sealer{
		ledger: l,
		queue:  make(chan *sealRequest, queueSize),
	}
}

func (s *Sealer) Ledger() *Ledger {
	return s.ledger
}

// Start runs the worker until ctx is done or Stop is called
func (s *Sealer) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped || s.cancel != nil {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.run(ctx)
}

func (s *Sealer) run(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case req := <-s.queue:
			b, err := s.ledger.Seal(ctx, req.records)
			atomic.AddInt64(&s.pending, -1)
			req.res <- SealResult{Block: b, Err: err}
		}
	}
}

// Submit queues records for sealing without waiting on the search
func (s *Sealer) Submit(records []Record) (<-chan SealResult, error) {
	req := &sealRequest{
		records: cloneRecords(records),
		res:     make(chan SealResult, 1),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil, ErrSealerStopped
	}

	select {
	case s.queue <- req:
		atomic.AddInt64(&s.pending, 1)
		return req.res, nil
	default:
		return nil, ErrQueueFull
	}
}

// Pending is the number of batches submitted but not yet sealed
func (s *Sealer) Pending() int {
	return int(atomic.LoadInt64(&s.pending))
}

// Stop cancels any in-flight search and fails all queued batches
func (s *Sealer) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()

	for {
		select {
		case req := <-s.queue:
			atomic.AddInt64(&s.pending, -1)
			req.res <- SealResult{Err: ErrSealerStopped}
		default:
			return
		}
	}
}
