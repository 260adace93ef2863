package download

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"vinyl/internal/logging"
)

// claimRetryDelay paces a task that acquired a permit but lost the priority
// check. The pause bounds CPU while the token points at a download that is
// already running and can only be cleared by the consumer.
const claimRetryDelay = 10 * time.Millisecond

// Request names one remote track to fetch and where to write it.
type Request struct {
	SourceID string
	Dest     string
}

// Result is the terminal outcome of one download task. Err is nil when the
// file at Path is ready to play.
type Result struct {
	SourceID string
	Path     string
	Err      error
}

// Completed reports whether the download produced a playable file.
func (r Result) Completed() bool {
	return r.Err == nil
}

// Scheduler runs bounded, priority-aware download tasks. The registry of
// in-flight ids and the priority token share one mutex; neither is ever held
// across a permit wait or a subprocess run.
type Scheduler struct {
	runner  Runner
	permits *semaphore.Weighted
	results chan Result
	logger  *slog.Logger
	wg      sync.WaitGroup

	mu       sync.Mutex
	inflight map[string]struct{}
	latest   string
}

// NewScheduler builds a scheduler allowing maxConcurrent simultaneous
// subprocesses. A maxConcurrent below one is treated as one.
func NewScheduler(maxConcurrent int, runner Runner, logger *slog.Logger) *Scheduler {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Scheduler{
		runner:   runner,
		permits:  semaphore.NewWeighted(int64(maxConcurrent)),
		results:  make(chan Result, maxConcurrent),
		logger:   logging.NewComponentLogger(logger, "scheduler"),
		inflight: make(map[string]struct{}),
	}
}

// Enqueue requests a download. The newest request always takes the priority
// token, even when the id is already in flight; a duplicate id spawns no
// second task and Enqueue returns false. The context bounds the whole task,
// including its permit wait and subprocess, and should outlive the request
// (pass the session context, not a per-keystroke one).
func (s *Scheduler) Enqueue(ctx context.Context, req Request) bool {
	id := strings.TrimSpace(req.SourceID)
	if id == "" {
		return false
	}

	s.mu.Lock()
	s.latest = id
	if _, exists := s.inflight[id]; exists {
		s.mu.Unlock()
		s.logger.Debug("download already in flight", logging.String(logging.FieldSourceID, id))
		return false
	}
	s.inflight[id] = struct{}{}
	s.mu.Unlock()

	requestID := uuid.NewString()
	s.logger.Info("download queued",
		logging.String(logging.FieldSourceID, id),
		logging.String(logging.FieldRequestID, requestID),
		logging.String(logging.FieldPath, req.Dest))

	s.wg.Add(1)
	go s.run(ctx, req, requestID)
	return true
}

// InFlight reports whether the id has a task whose result has not been
// consumed yet.
func (s *Scheduler) InFlight(sourceID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.inflight[sourceID]
	return exists
}

// Queued returns the number of unconsumed downloads.
func (s *Scheduler) Queued() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inflight)
}

// Collect blocks for the next result and performs the consumption
// bookkeeping: the id leaves the registry and, when it still owns the
// priority token, releases it. Collect is the only way results leave the
// scheduler.
func (s *Scheduler) Collect(ctx context.Context) (Result, error) {
	select {
	case result := <-s.results:
		s.mu.Lock()
		delete(s.inflight, result.SourceID)
		if s.latest == result.SourceID {
			s.latest = ""
		}
		s.mu.Unlock()
		return result, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Wait blocks until every spawned task has returned. Callers cancel the
// context passed to Enqueue first.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context, req Request, requestID string) {
	defer s.wg.Done()

	log := s.logger.With(
		logging.String(logging.FieldSourceID, req.SourceID),
		logging.String(logging.FieldRequestID, requestID))

	for {
		if err := s.permits.Acquire(ctx, 1); err != nil {
			log.Debug("permit wait aborted", logging.Error(err))
			return
		}
		if s.tryClaim(req.SourceID) {
			break
		}
		// Someone newer holds the token. Give the permit back so their
		// task can take it, then try again.
		s.permits.Release(1)
		select {
		case <-ctx.Done():
			return
		case <-time.After(claimRetryDelay):
		}
	}

	started := time.Now()
	log.Debug("download started")
	err := s.runner.Fetch(ctx, req.SourceID, req.Dest)

	// Free the permit before delivering so result consumption never gates
	// the next download's start.
	s.permits.Release(1)

	if err != nil {
		log.Warn("download failed",
			logging.Error(err),
			logging.Duration("elapsed", time.Since(started)))
	} else {
		log.Info("download completed",
			logging.String(logging.FieldPath, req.Dest),
			logging.Duration("elapsed", time.Since(started)))
	}

	result := Result{SourceID: req.SourceID, Err: err}
	if err == nil {
		result.Path = req.Dest
	}
	select {
	case s.results <- result:
	case <-ctx.Done():
	}
}

// tryClaim grants the permit holder the right to start. An empty token means
// no contention; a matching token is cleared and granted; anything else
// belongs to a newer request.
func (s *Scheduler) tryClaim(sourceID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.latest {
	case "":
		return true
	case sourceID:
		s.latest = ""
		return true
	default:
		return false
	}
}
