// Package scheduler tracks entitlement queries between dispatch and the
// server's answer.
//
// A query is handed to a Dispatcher (the Kafka producer in production) and
// stays pending until a matching result arrives through Resolve, its timeout
// fires, or the scheduler closes. At most one query per subscription is
// pending; a second Schedule joins the first.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"imsse/internal/entitlement/metrics"
	"imsse/internal/entitlement/models"
	"imsse/pkg/domain"
	"imsse/pkg/platform/circuit"
	"imsse/pkg/platform/sentinel"
	"imsse/pkg/platform/task"
	"imsse/pkg/requestcontext"
)

const (
	defaultTimeout    = 2 * time.Minute
	defaultMaxRetries = 3

	resultResolved       = "resolved"
	resultFailed         = "failed"
	resultExpired        = "expired"
	resultDispatchFailed = "dispatch_failed"
	resultClosed         = "closed"
)

// ErrQueryFailed wraps an error reported by the entitlement server.
var ErrQueryFailed = errors.New("entitlement query failed")

// Dispatcher sends a query request towards the entitlement server.
type Dispatcher interface {
	Dispatch(ctx context.Context, req models.QueryRequest) error
}

type pendingQuery struct {
	req   models.QueryRequest
	task  *task.Task[models.QueryResult]
	timer *time.Timer
}

// Scheduler implements ports.QueryScheduler.
type Scheduler struct {
	dispatcher Dispatcher
	timeout    time.Duration
	maxRetries uint64
	newBackOff func() backoff.BackOff
	breaker    *circuit.Breaker
	logger     *slog.Logger
	metrics    *metrics.Metrics

	mu      sync.Mutex
	pending map[domain.SubID]*pendingQuery
	closed  bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithTimeout bounds how long a query may stay pending.
func WithTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithMaxRetries sets how many times a failed dispatch is retried.
func WithMaxRetries(n uint64) Option {
	return func(s *Scheduler) {
		s.maxRetries = n
	}
}

// WithBackOff replaces the retry policy between dispatch attempts.
func WithBackOff(fn func() backoff.BackOff) Option {
	return func(s *Scheduler) {
		if fn != nil {
			s.newBackOff = fn
		}
	}
}

// WithBreaker shares a circuit breaker with other callers of the broker.
func WithBreaker(b *circuit.Breaker) Option {
	return func(s *Scheduler) {
		if b != nil {
			s.breaker = b
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scheduler) {
		s.metrics = m
	}
}

// New creates a Scheduler. Close must be called to stop in-flight dispatches.
func New(dispatcher Dispatcher, opts ...Option) (*Scheduler, error) {
	if dispatcher == nil {
		return nil, errors.New("dispatcher is required")
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		dispatcher: dispatcher,
		timeout:    defaultTimeout,
		maxRetries: defaultMaxRetries,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 200 * time.Millisecond
			b.MaxInterval = 5 * time.Second
			return b
		},
		breaker: circuit.New("entitlement-dispatch"),
		logger:  slog.Default(),
		pending: make(map[domain.SubID]*pendingQuery),
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Schedule starts a query for sub, or joins the one already pending.
func (s *Scheduler) Schedule(ctx context.Context, sub domain.SubID) *task.Task[models.QueryResult] {
	if !sub.IsValid() {
		return task.Failed[models.QueryResult](fmt.Errorf("schedule query for sub %d: %w", sub, sentinel.ErrInvalidState))
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return task.Failed[models.QueryResult](sentinel.ErrClosed)
	}
	if p, ok := s.pending[sub]; ok {
		s.mu.Unlock()
		return p.task
	}
	p := &pendingQuery{
		req: models.QueryRequest{
			ID:          uuid.New(),
			SubID:       sub,
			RequestedAt: requestcontext.Now(ctx).UTC(),
		},
		task: task.New[models.QueryResult](),
	}
	id := p.req.ID
	p.timer = time.AfterFunc(s.timeout, func() { s.expire(sub, id) })
	s.pending[sub] = p
	s.metrics.SetPendingQueries(len(s.pending))
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		if err := s.dispatch(p.req); err != nil {
			s.logger.Warn("entitlement query dispatch failed",
				"sub_id", sub,
				"query_id", id,
				"error", err,
			)
			s.complete(sub, id, resultDispatchFailed, func(t *task.Task[models.QueryResult]) {
				t.Reject(fmt.Errorf("dispatch query: %w", errors.Join(sentinel.ErrUnavailable, err)))
			})
		}
	}()
	return p.task
}

// dispatch retries transient failures. Once the breaker is open each schedule
// gets a single trial call.
func (s *Scheduler) dispatch(req models.QueryRequest) error {
	ctx := requestcontext.WithRequestID(s.ctx, req.ID.String())
	op := func() error {
		err := s.dispatcher.Dispatch(ctx, req)
		if err == nil {
			if _, change := s.breaker.RecordSuccess(); change.Closed {
				s.logger.Info("entitlement dispatch recovered", "breaker", s.breaker.Name())
			}
			return nil
		}
		open, change := s.breaker.RecordFailure()
		if change.Opened {
			s.logger.Warn("entitlement dispatch breaker opened", "breaker", s.breaker.Name())
		}
		if open || ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(s.newBackOff(), s.maxRetries), ctx)
	return backoff.Retry(op, policy)
}

// Resolve completes the pending query the result answers. Results for unknown
// or superseded queries return sentinel.ErrNotFound.
func (s *Scheduler) Resolve(result models.QueryResult) error {
	label := resultResolved
	if result.Error != "" {
		label = resultFailed
	}
	found := s.complete(result.SubID, result.RequestID, label, func(t *task.Task[models.QueryResult]) {
		if result.Error != "" {
			t.Reject(fmt.Errorf("%w: %s", ErrQueryFailed, result.Error))
			return
		}
		t.Resolve(result)
	})
	if !found {
		return fmt.Errorf("query %s for sub %d: %w", result.RequestID, result.SubID, sentinel.ErrNotFound)
	}
	return nil
}

// PendingRequests lists pending queries ordered by subscription.
func (s *Scheduler) PendingRequests() []models.QueryRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.QueryRequest, 0, len(s.pending))
	for _, p := range s.pending {
		out = append(out, p.req)
	}
	slices.SortFunc(out, func(a, b models.QueryRequest) int { return int(a.SubID) - int(b.SubID) })
	return out
}

// Close fails every pending query with sentinel.ErrClosed and waits for
// in-flight dispatches to stop.
func (s *Scheduler) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	pending := s.pending
	s.pending = make(map[domain.SubID]*pendingQuery)
	s.metrics.SetPendingQueries(0)
	s.mu.Unlock()

	s.cancel()
	for _, p := range pending {
		p.timer.Stop()
		p.task.Reject(sentinel.ErrClosed)
		s.metrics.IncrementQueryCompletion(resultClosed)
	}
	s.wg.Wait()
	return nil
}

func (s *Scheduler) expire(sub domain.SubID, id uuid.UUID) {
	s.complete(sub, id, resultExpired, func(t *task.Task[models.QueryResult]) {
		t.Reject(fmt.Errorf("query %s for sub %d: %w", id, sub, sentinel.ErrExpired))
	})
}

// complete removes the pending query (sub, id) and settles its task outside
// the lock. It reports false when no such query is pending.
func (s *Scheduler) complete(sub domain.SubID, id uuid.UUID, label string, settle func(*task.Task[models.QueryResult])) bool {
	s.mu.Lock()
	p, ok := s.pending[sub]
	if !ok || p.req.ID != id {
		s.mu.Unlock()
		return false
	}
	delete(s.pending, sub)
	s.metrics.SetPendingQueries(len(s.pending))
	s.mu.Unlock()

	p.timer.Stop()
	settle(p.task)
	s.metrics.IncrementQueryCompletion(label)
	return true
}
