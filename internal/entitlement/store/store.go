// Package store persists entitlement records and per-slot state.
//
// Four backends share one contract: memory for tests and ephemeral runs,
// SQLite for a single device, Postgres and Redis for fleets that share state
// across processes. All derive validity the same way in buildRecord.
package store

import (
	"context"
	"time"

	"imsse/internal/entitlement/metrics"
	"imsse/internal/entitlement/models"
	"imsse/internal/entitlement/ports"
	"imsse/internal/entitlement/provisioning"
	"imsse/pkg/domain"
	dErrors "imsse/pkg/domain-errors"
	"imsse/pkg/platform/sentinel"
)

// buildRecord assembles the record an update writes. Times are truncated to
// milliseconds so every backend round-trips the same value.
func buildRecord(sub domain.SubID, version domain.EntitlementVersion, rawXML string, now time.Time) (models.Record, error) {
	if !sub.IsValid() {
		return models.Record{}, dErrors.New(dErrors.CodeInvalidInput, "invalid subscription id")
	}
	if rawXML != "" && version <= 0 {
		return models.Record{}, dErrors.Wrap(sentinel.ErrInvalidState, dErrors.CodeInvariantViolation,
			"entitlement payload requires a positive version")
	}
	now = now.UTC().Truncate(time.Millisecond)
	rec := models.Record{
		SubID:     sub,
		Version:   version,
		RawXML:    rawXML,
		UpdatedAt: now,
	}
	if rawXML != "" {
		rec.ValidUntil = provisioning.ValidUntil(rawXML, now)
	}
	return rec, nil
}

// Instrumented records latency and failures of every call on a Store.
type Instrumented struct {
	next    ports.Store
	backend string
	metrics *metrics.Metrics
}

// Instrument wraps s; a nil m returns s unchanged.
func Instrument(s ports.Store, backend string, m *metrics.Metrics) ports.Store {
	if m == nil {
		return s
	}
	return &Instrumented{next: s, backend: backend, metrics: m}
}

func (i *Instrumented) Get(ctx context.Context, sub domain.SubID) (models.Record, error) {
	start := time.Now()
	rec, err := i.next.Get(ctx, sub)
	i.metrics.ObserveStore(i.backend, "get", time.Since(start), err)
	return rec, err
}

func (i *Instrumented) Update(ctx context.Context, sub domain.SubID, version domain.EntitlementVersion, rawXML string) (models.Record, error) {
	start := time.Now()
	rec, err := i.next.Update(ctx, sub, version, rawXML)
	i.metrics.ObserveStore(i.backend, "update", time.Since(start), err)
	return rec, err
}

func (i *Instrumented) Reset(ctx context.Context, sub domain.SubID) error {
	start := time.Now()
	err := i.next.Reset(ctx, sub)
	i.metrics.ObserveStore(i.backend, "reset", time.Since(start), err)
	return err
}

func (i *Instrumented) Slot(ctx context.Context, slot domain.SlotID) (models.SlotState, error) {
	start := time.Now()
	st, err := i.next.Slot(ctx, slot)
	i.metrics.ObserveStore(i.backend, "slot", time.Since(start), err)
	return st, err
}

func (i *Instrumented) BindSubscription(ctx context.Context, slot domain.SlotID, sub domain.SubID) error {
	start := time.Now()
	err := i.next.BindSubscription(ctx, slot, sub)
	i.metrics.ObserveStore(i.backend, "bind_subscription", time.Since(start), err)
	return err
}

func (i *Instrumented) RecordBootCount(ctx context.Context, slot domain.SlotID, count int) error {
	start := time.Now()
	err := i.next.RecordBootCount(ctx, slot, count)
	i.metrics.ObserveStore(i.backend, "record_boot_count", time.Since(start), err)
	return err
}

func (i *Instrumented) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	start := time.Now()
	err := i.next.RunInTx(ctx, fn)
	i.metrics.ObserveStore(i.backend, "run_in_tx", time.Since(start), err)
	return err
}
