// Package router turns trigger notifications into entitlement evaluations and
// carries out their outcomes.
//
// Each event is evaluated exactly once: duplicates that arrive while an
// evaluation with the same key is in flight share its outcome. Work on one
// subscription is serialized by its registry handle, taken after the slot
// lock when the event names a slot. Query completions re-enter through
// CompleteQuery under the same handle.
package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"imsse/internal/entitlement/evaluator"
	"imsse/internal/entitlement/metrics"
	"imsse/internal/entitlement/models"
	"imsse/internal/entitlement/ports"
	"imsse/internal/entitlement/wfc"
	"imsse/pkg/domain"
	"imsse/pkg/platform/sentinel"
	"imsse/pkg/platform/task"
	"imsse/pkg/requestcontext"
)

const (
	tracerName = "imsse/internal/entitlement/router"

	eventQueryCompleted = "query_completed"
	defaultBatchLimit   = 4
)

// Deps are the collaborators a Router requires.
type Deps struct {
	Store         ports.Store
	Scheduler     ports.QueryScheduler
	SimStates     ports.SimStateSource
	CarrierConfig ports.CarrierConfigSource
	BootCounter   ports.BootCounter
	WfcSetting    ports.WfcSetting
	Actor         ports.ActorSource
}

func (d Deps) validate() error {
	switch {
	case d.Store == nil:
		return errors.New("store is required")
	case d.Scheduler == nil:
		return errors.New("query scheduler is required")
	case d.SimStates == nil:
		return errors.New("sim state source is required")
	case d.CarrierConfig == nil:
		return errors.New("carrier config source is required")
	case d.BootCounter == nil:
		return errors.New("boot counter is required")
	case d.WfcSetting == nil:
		return errors.New("wfc setting is required")
	case d.Actor == nil:
		return errors.New("actor source is required")
	}
	return nil
}

// Router is the composition root of the entitlement engine.
type Router struct {
	deps      Deps
	evaluator *evaluator.Evaluator
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	clock     func() time.Time

	flight   singleflight.Group
	registry *registry
	slots    slotLocks

	// Background query waits and WFC turn-offs. waiting holds the query task
	// each subscription already has a completion goroutine for.
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	closed  bool
	waiting map[domain.SubID]*task.Task[models.QueryResult]
}

// Option configures a Router.
type Option func(*Router)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Router) {
		r.metrics = m
	}
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(r *Router) {
		if t != nil {
			r.tracer = t
		}
	}
}

// WithClock sets the time source for query completions, which happen outside
// any trigger context.
func WithClock(clock func() time.Time) Option {
	return func(r *Router) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// New wires a Router. Close releases its background goroutines.
func New(deps Deps, eval *evaluator.Evaluator, opts ...Option) (*Router, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if eval == nil {
		return nil, errors.New("evaluator is required")
	}
	ctx, cancel := context.WithCancel(context.Background())
	r := &Router{
		deps:      deps,
		evaluator: eval,
		logger:    slog.Default(),
		tracer:    otel.Tracer(tracerName),
		clock:     time.Now,
		ctx:       ctx,
		cancel:    cancel,
		waiting:   make(map[domain.SubID]*task.Task[models.QueryResult]),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.registry = newRegistry(func(sub domain.SubID) (*wfc.Applier, error) {
		return wfc.New(sub, deps.WfcSetting, deps.CarrierConfig,
			wfc.WithLogger(r.logger),
			wfc.WithMetrics(r.metrics),
		)
	})
	return r, nil
}

// Handle evaluates ev and acts on the outcome. Failures never reach the
// caller; they surface as a NoAction outcome with a reason.
func (r *Router) Handle(ctx context.Context, ev models.TriggerEvent) models.Outcome {
	v, _, shared := r.flight.Do(ev.Key(), func() (any, error) {
		return r.handle(ctx, ev), nil
	})
	if shared {
		r.metrics.IncrementDeduped()
	}
	return v.(models.Outcome)
}

// HandleBatch evaluates events concurrently, at most limit at a time, and
// returns outcomes in input order.
func (r *Router) HandleBatch(ctx context.Context, events []models.TriggerEvent, limit int) []models.Outcome {
	if limit <= 0 {
		limit = defaultBatchLimit
	}
	out := make([]models.Outcome, len(events))
	var g errgroup.Group
	g.SetLimit(limit)
	for i, ev := range events {
		g.Go(func() error {
			out[i] = r.Handle(ctx, ev)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (r *Router) handle(ctx context.Context, ev models.TriggerEvent) models.Outcome {
	start := time.Now()
	ctx, span := r.tracer.Start(ctx, "entitlement.evaluate", trace.WithAttributes(
		attribute.String("event.kind", string(ev.Kind)),
		attribute.Int("slot_id", int(ev.SlotID)),
	))
	defer span.End()

	sub, outcome := r.evaluate(ctx, ev)

	span.SetAttributes(
		attribute.Int("sub_id", int(sub)),
		attribute.String("outcome.kind", string(outcome.Kind)),
		attribute.String("outcome.reason", string(outcome.Reason)),
	)
	if outcome.Reason == models.ReasonStoreUnavailable {
		span.SetStatus(codes.Error, "store unavailable")
	}
	r.metrics.IncrementOutcome(string(ev.Kind), string(outcome.Kind), string(outcome.Reason))
	r.metrics.ObserveEvaluateLatency(string(ev.Kind), time.Since(start))
	r.logOutcome(ctx, ev, sub, outcome)
	return outcome
}

// evaluate returns the subscription the event resolved to along with the
// outcome. BootCompleted resolves through the slot binding.
func (r *Router) evaluate(ctx context.Context, ev models.TriggerEvent) (domain.SubID, models.Outcome) {
	in := evaluator.Input{
		Event: ev,
		Slot:  models.EmptySlot(ev.SlotID),
		Now:   requestcontext.Now(ctx),
	}

	if ev.SlotID.IsValid() {
		lock := r.slots.get(ev.SlotID)
		lock.Lock()
		defer lock.Unlock()

		slot, err := r.deps.Store.Slot(ctx, ev.SlotID)
		if err != nil {
			return ev.SubID, r.storeUnavailable(ctx, ev, "read slot", err)
		}
		in.Slot = slot
		if ev.Kind == models.EventBootCompleted {
			in.Event.SubID = slot.SubID
		}
	}

	sub := in.Event.SubID
	if !sub.IsValid() {
		return sub, r.evaluator.Evaluate(in).Outcome
	}

	h, err := r.registry.acquire(sub)
	if err != nil {
		r.logger.ErrorContext(ctx, "subscription handle unavailable", "sub_id", sub, "error", err)
		return sub, models.NoAction(models.ReasonInvalidSubscription)
	}
	defer r.registry.release(h)
	h.mu.Lock()
	defer h.mu.Unlock()

	rec, err := r.deps.Store.Get(ctx, sub)
	if err != nil {
		return sub, r.storeUnavailable(ctx, in.Event, "read record", err)
	}
	in.Record = rec
	in.SimState = r.deps.SimStates.SimState(ctx, sub)
	in.SystemUser = r.deps.Actor.IsSystemUser(ctx)
	in.CheckRequired = r.deps.CarrierConfig.EntitlementCheckRequired(sub)
	in.ConfiguredVersion = r.deps.CarrierConfig.EntitlementVersion(sub)
	if ev.Kind == models.EventBootCompleted {
		in.BootCount = r.deps.BootCounter.BootCount(ctx)
	}

	verdict := r.evaluator.Evaluate(in)
	if verdict.HasEffects() {
		if err := r.commitEffects(ctx, in.Event, verdict); err != nil {
			return sub, r.storeUnavailable(ctx, in.Event, "apply effects", err)
		}
	}

	switch verdict.Outcome.Kind {
	case models.OutcomeScheduleQuery:
		r.schedule(ctx, sub)
	case models.OutcomeApplyWfc:
		r.applyWfc(ctx, h, verdict.Outcome)
	}
	return sub, verdict.Outcome
}

// commitEffects writes the verdict's effects in one store transaction. The
// writes run to completion even when the trigger's context is cancelled.
func (r *Router) commitEffects(ctx context.Context, ev models.TriggerEvent, v evaluator.Verdict) error {
	ctx = context.WithoutCancel(ctx)
	err := r.deps.Store.RunInTx(ctx, func(txCtx context.Context) error {
		return r.applyEffects(txCtx, ev, v)
	})
	if err != nil {
		return err
	}
	if v.PreviousSubID.IsValid() && v.PreviousSubID != ev.SubID {
		r.registry.evict(v.PreviousSubID)
		r.logger.InfoContext(ctx, "previous subscription cleared",
			"sub_id", v.PreviousSubID,
			"slot_id", ev.SlotID,
		)
	}
	return nil
}

// applyEffects persists what the verdict implies before its outcome runs. The
// previous occupant's record is cleared without its handle lock, since a
// second subscription lock could invert the order taken by another slot.
func (r *Router) applyEffects(ctx context.Context, ev models.TriggerEvent, v evaluator.Verdict) error {
	if v.PreviousSubID.IsValid() && v.PreviousSubID != ev.SubID {
		if err := r.deps.Store.Reset(ctx, v.PreviousSubID); err != nil {
			return fmt.Errorf("reset previous subscription %d: %w", v.PreviousSubID, err)
		}
	}
	if v.ResetRecord {
		if err := r.deps.Store.Reset(ctx, ev.SubID); err != nil {
			return fmt.Errorf("reset record: %w", err)
		}
	}
	if v.BindSlot {
		if err := r.deps.Store.BindSubscription(ctx, ev.SlotID, ev.SubID); err != nil {
			return fmt.Errorf("bind slot: %w", err)
		}
	}
	if v.RecordBootCount {
		if err := r.deps.Store.RecordBootCount(ctx, ev.SlotID, v.BootCount); err != nil {
			return fmt.Errorf("record boot count: %w", err)
		}
	}
	return nil
}

// schedule hands the query to the scheduler and completes it in the
// background once the server answers. The scheduler coalesces queries per
// subscription, so a task that already has a waiter gets no second one.
func (r *Router) schedule(ctx context.Context, sub domain.SubID) {
	requestID := requestcontext.RequestID(ctx)
	tk := r.deps.Scheduler.Schedule(ctx, sub)
	if !r.await(sub, tk) {
		return
	}
	r.track(func(bg context.Context) {
		defer r.forget(sub, tk)
		select {
		case <-tk.Done():
		case <-bg.Done():
			return
		}
		result, err, _ := tk.Result()
		cctx := requestcontext.WithTime(requestcontext.WithRequestID(bg, requestID), r.clock())
		if err != nil {
			level := slog.LevelWarn
			if errors.Is(err, sentinel.ErrClosed) {
				level = slog.LevelDebug
			}
			r.logger.Log(cctx, level, "entitlement query did not complete", "sub_id", sub, "error", err)
			return
		}
		r.CompleteQuery(cctx, result)
	})
}

// CompleteQuery stores a server response and evaluates what it means for the
// WFC setting.
func (r *Router) CompleteQuery(ctx context.Context, result models.QueryResult) models.Outcome {
	start := time.Now()
	ctx, span := r.tracer.Start(ctx, "entitlement.complete_query", trace.WithAttributes(
		attribute.Int("sub_id", int(result.SubID)),
		attribute.Int("entitlement_version", int(result.Version)),
	))
	defer span.End()

	outcome := r.completeQuery(ctx, result)

	span.SetAttributes(
		attribute.String("outcome.kind", string(outcome.Kind)),
		attribute.String("outcome.reason", string(outcome.Reason)),
	)
	r.metrics.IncrementOutcome(eventQueryCompleted, string(outcome.Kind), string(outcome.Reason))
	r.metrics.ObserveEvaluateLatency(eventQueryCompleted, time.Since(start))
	return outcome
}

func (r *Router) completeQuery(ctx context.Context, result models.QueryResult) models.Outcome {
	sub := result.SubID
	if !sub.IsValid() {
		return models.NoAction(models.ReasonInvalidSubscription)
	}
	h, err := r.registry.acquire(sub)
	if err != nil {
		r.logger.ErrorContext(ctx, "subscription handle unavailable", "sub_id", sub, "error", err)
		return models.NoAction(models.ReasonInvalidSubscription)
	}
	defer r.registry.release(h)
	h.mu.Lock()
	defer h.mu.Unlock()

	rec, err := r.deps.Store.Update(ctx, sub, result.Version, result.RawXML)
	if err != nil {
		r.logger.WarnContext(ctx, "entitlement response not stored", "sub_id", sub, "error", err)
		return models.NoAction(models.ReasonStoreUnavailable)
	}
	r.logger.InfoContext(ctx, "entitlement response stored",
		"sub_id", sub,
		"entitlement_version", rec.Version,
		"valid_until", rec.ValidUntil,
	)

	// An unreadable setting is treated as on: turning off a revoked
	// service is harmless, leaving it on is not.
	userOn, err := r.deps.WfcSetting.EnabledByUser(ctx, sub)
	if err != nil {
		r.logger.WarnContext(ctx, "wfc setting unreadable", "sub_id", sub, "error", err)
		userOn = true
	}

	outcome := r.evaluator.EvaluateResponse(evaluator.ResponseInput{
		SubID:            sub,
		Record:           rec,
		WfcEnabledByUser: userOn,
	})
	if outcome.Kind == models.OutcomeApplyWfc {
		r.applyWfc(ctx, h, outcome)
	}
	return outcome
}

func (r *Router) applyWfc(ctx context.Context, h *handle, outcome models.Outcome) {
	if outcome.ResetToCarrierDefault && !outcome.Enabled {
		tk := h.applier.TurnOff(ctx)
		r.awaitTurnOff(ctx, h.sub, tk)
		return
	}
	if err := h.applier.Apply(ctx, outcome.Enabled, outcome.Forced); err != nil {
		r.logger.WarnContext(ctx, "wfc setting not applied",
			"sub_id", h.sub,
			"enabled", outcome.Enabled,
			"error", err,
		)
	}
}

func (r *Router) awaitTurnOff(ctx context.Context, sub domain.SubID, tk *task.Task[struct{}]) {
	r.track(func(bg context.Context) {
		if _, err := tk.Wait(bg); err != nil && bg.Err() == nil {
			r.logger.WarnContext(ctx, "wfc turn-off failed", "sub_id", sub, "error", err)
		}
	})
}

// ResetRecord clears the stored record of sub under its handle.
func (r *Router) ResetRecord(ctx context.Context, sub domain.SubID) error {
	if !sub.IsValid() {
		return fmt.Errorf("reset sub %d: %w", sub, sentinel.ErrInvalidState)
	}
	h, err := r.registry.acquire(sub)
	if err != nil {
		return err
	}
	defer r.registry.release(h)
	h.mu.Lock()
	defer h.mu.Unlock()
	return r.deps.Store.Reset(ctx, sub)
}

// Handles reports how many subscription handles are live.
func (r *Router) Handles() int {
	return r.registry.len()
}

// Close stops waiting on outstanding queries and turn-offs.
func (r *Router) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	r.cancel()
	r.wg.Wait()
	return nil
}

// Wait blocks until background work started so far has finished. Tests use it
// to observe query completions.
func (r *Router) Wait() {
	r.wg.Wait()
}

// await marks tk as awaited for sub and reports false if it already was.
func (r *Router) await(sub domain.SubID, tk *task.Task[models.QueryResult]) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.waiting[sub] == tk {
		return false
	}
	r.waiting[sub] = tk
	return true
}

func (r *Router) forget(sub domain.SubID, tk *task.Task[models.QueryResult]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.waiting[sub] == tk {
		delete(r.waiting, sub)
	}
}

func (r *Router) track(fn func(bg context.Context)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		fn(r.ctx)
	}()
}

func (r *Router) storeUnavailable(ctx context.Context, ev models.TriggerEvent, op string, err error) models.Outcome {
	r.logger.WarnContext(ctx, "entitlement store unavailable",
		"event", ev.Kind,
		"sub_id", ev.SubID,
		"slot_id", ev.SlotID,
		"op", op,
		"error", err,
	)
	return models.NoAction(models.ReasonStoreUnavailable)
}

func (r *Router) logOutcome(ctx context.Context, ev models.TriggerEvent, sub domain.SubID, outcome models.Outcome) {
	level := slog.LevelInfo
	switch outcome.Reason {
	case models.ReasonInvalidSubscription, models.ReasonUnbound, models.ReasonNotSystemUser,
		models.ReasonSimNotLoaded, models.ReasonCheckNotRequired:
		level = slog.LevelDebug
	}
	r.logger.Log(ctx, level, "entitlement evaluated",
		"event", ev.Kind,
		"sub_id", sub,
		"slot_id", ev.SlotID,
		"outcome", outcome.Kind,
		"reason", outcome.Reason,
	)
}
