// Package wfc writes the Wi-Fi Calling setting of one subscription on behalf of
// entitlement outcomes.
package wfc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"imsse/internal/entitlement/metrics"
	"imsse/internal/entitlement/ports"
	"imsse/pkg/domain"
	"imsse/pkg/platform/task"
)

const (
	opReadEnabled    = "read_enabled"
	opSetEnabled     = "set_enabled"
	opSetMode        = "set_mode"
	opSetRoamingMode = "set_roaming_mode"
)

// Applier is bound to a single subscription. The router keeps one per
// registry handle and calls it while holding the subscription lock.
type Applier struct {
	sub     domain.SubID
	setting ports.WfcSetting
	carrier ports.CarrierConfigSource
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures an Applier.
type Option func(*Applier)

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Applier) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithMetrics counts failed setting writes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Applier) {
		a.metrics = m
	}
}

// New creates an Applier for sub.
func New(sub domain.SubID, setting ports.WfcSetting, carrier ports.CarrierConfigSource, opts ...Option) (*Applier, error) {
	if !sub.IsValid() {
		return nil, fmt.Errorf("wfc applier requires a valid subscription, got %d", sub)
	}
	if setting == nil {
		return nil, errors.New("wfc setting is required")
	}
	if carrier == nil {
		return nil, errors.New("carrier config source is required")
	}
	a := &Applier{
		sub:     sub,
		setting: setting,
		carrier: carrier,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// SubID reports the subscription the applier writes for.
func (a *Applier) SubID() domain.SubID {
	return a.sub
}

// Apply writes enabled. A forced write always happens and its failure is
// returned. A conditional write only happens when the user's current value
// differs, and its failures are logged and dropped.
func (a *Applier) Apply(ctx context.Context, enabled, forced bool) error {
	if forced {
		if err := a.setting.SetEnabled(ctx, a.sub, enabled); err != nil {
			a.fail(ctx, opSetEnabled, err)
			return fmt.Errorf("set wfc enabled=%t for sub %d: %w", enabled, a.sub, err)
		}
		return nil
	}

	current, err := a.setting.EnabledByUser(ctx, a.sub)
	if err != nil {
		a.fail(ctx, opReadEnabled, err)
		return nil
	}
	if current == enabled {
		return nil
	}
	if err := a.setting.SetEnabled(ctx, a.sub, enabled); err != nil {
		a.fail(ctx, opSetEnabled, err)
	}
	return nil
}

// DisableAndReset turns WFC off and restores the carrier default modes. The
// mode reset is attempted even when disabling fails, and every failure is
// returned joined. It is skipped when no carrier config is loaded for the
// subscription.
func (a *Applier) DisableAndReset(ctx context.Context) error {
	var errs []error
	if err := a.Apply(ctx, false, true); err != nil {
		errs = append(errs, err)
	}

	modes, ok := a.carrier.DefaultWfcModes(a.sub)
	if !ok {
		a.logger.InfoContext(ctx, "carrier config unavailable, wfc mode left unchanged",
			"sub_id", a.sub,
		)
		return errors.Join(errs...)
	}

	if err := a.setting.SetMode(ctx, a.sub, modes.Mode); err != nil {
		a.fail(ctx, opSetMode, err)
		errs = append(errs, fmt.Errorf("set wfc mode: %w", err))
	}
	if err := a.setting.SetRoamingMode(ctx, a.sub, modes.RoamingMode); err != nil {
		a.fail(ctx, opSetRoamingMode, err)
		errs = append(errs, fmt.Errorf("set wfc roaming mode: %w", err))
	}
	return errors.Join(errs...)
}

// TurnOff runs DisableAndReset in the background. The returned task always
// completes, including when the write fails or panics.
func (a *Applier) TurnOff(ctx context.Context) *task.Task[struct{}] {
	return task.Go(context.WithoutCancel(ctx), func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.DisableAndReset(ctx)
	})
}

func (a *Applier) fail(ctx context.Context, op string, err error) {
	a.metrics.IncrementApplierFailure(op)
	a.logger.WarnContext(ctx, "wfc setting write failed",
		"sub_id", a.sub,
		"op", op,
		"error", err,
	)
}
