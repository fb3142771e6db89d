package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mavgraph/pkg/observability"
)

// Job computes one pipeline result.
type Job func(ctx context.Context) (*Result, error)

// Update is a result delivered by a Scheduler.
type Update struct {
	Generation uint64
	Result     *Result
	Err        error
}

// Scheduler debounces build requests and delivers only the newest result.
//
// Every Submit takes the next generation number. A job starts once no
// newer submission arrived within the debounce window; starting it
// cancels the context of any older job still running. When a job
// finishes, its result is handed to the apply callback only if its
// generation is still the latest, otherwise it is discarded. Apply calls
// are serialized.
type Scheduler struct {
	debounce time.Duration
	apply    func(Update)
	logger   *log.Logger

	gen    atomic.Uint64
	closed atomic.Bool

	mu     sync.Mutex
	timer  *time.Timer
	cancel context.CancelFunc

	applyMu sync.Mutex
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler delivering to apply.
func NewScheduler(debounce time.Duration, apply func(Update), logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.Default()
	}
	return &Scheduler{debounce: debounce, apply: apply, logger: logger}
}

// Submit schedules job and returns its generation. Pending older jobs that
// have not started yet are dropped. Submissions after Close return 0.
func (s *Scheduler) Submit(ctx context.Context, job Job) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() {
		return 0
	}

	gen := s.gen.Add(1)
	if s.timer != nil && s.timer.Stop() {
		s.wg.Done()
	}
	if s.cancel != nil {
		s.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	s.timer = time.AfterFunc(s.debounce, func() {
		defer s.wg.Done()
		s.run(runCtx, gen, job)
	})
	return gen
}

// Latest returns the newest generation handed out.
func (s *Scheduler) Latest() uint64 { return s.gen.Load() }

func (s *Scheduler) run(ctx context.Context, gen uint64, job Job) {
	if s.stale(ctx, gen) {
		return
	}
	res, err := job(ctx)

	s.applyMu.Lock()
	defer s.applyMu.Unlock()
	if s.closed.Load() || s.stale(ctx, gen) {
		return
	}
	s.apply(Update{Generation: gen, Result: res, Err: err})
}

func (s *Scheduler) stale(ctx context.Context, gen uint64) bool {
	if gen == s.gen.Load() {
		return false
	}
	s.logger.Debug("discarding stale build", "generation", gen, "latest", s.gen.Load())
	observability.Pipeline().OnStale(ctx, gen)
	return true
}

// Wait blocks until every started job has finished.
func (s *Scheduler) Wait() { s.wg.Wait() }

// Close drops the pending job, cancels the running one and waits for it.
// Nothing is applied after Close.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed.Store(true)
	if s.timer != nil && s.timer.Stop() {
		s.wg.Done()
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	s.wg.Wait()
}
