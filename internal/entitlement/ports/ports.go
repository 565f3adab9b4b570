// Package ports declares the collaborators the entitlement engine depends on.
// Adapters for each live next to the engine (store, scheduler, device,
// carrierconfig); tests substitute the gomock doubles in ports/mocks.
package ports

import (
	"context"

	"imsse/internal/entitlement/models"
	"imsse/pkg/domain"
	"imsse/pkg/platform/task"
)

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

// RecordStore persists per-subscription entitlement records. Each call is
// atomic on its own; callers compose them under a per-subscription lock and
// group them with Transactor.RunInTx.
type RecordStore interface {
	// Get never reports not-found: an unknown subscription yields an empty record.
	Get(ctx context.Context, sub domain.SubID) (models.Record, error)
	// Update replaces version, payload and derived validity in one step.
	Update(ctx context.Context, sub domain.SubID, version domain.EntitlementVersion, rawXML string) (models.Record, error)
	Reset(ctx context.Context, sub domain.SubID) error
}

// SlotStore persists the per-slot binding and boot counter.
type SlotStore interface {
	Slot(ctx context.Context, slot domain.SlotID) (models.SlotState, error)
	BindSubscription(ctx context.Context, slot domain.SlotID, sub domain.SubID) error
	RecordBootCount(ctx context.Context, slot domain.SlotID, count int) error
}

// Transactor groups store writes. Writes made with the context passed to fn
// commit together when fn returns nil and are discarded otherwise.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Store is the full persisted entitlement store.
type Store interface {
	RecordStore
	SlotStore
	Transactor
}

// QueryScheduler performs the network round trip "once the network is ready".
// The returned task settles when the server answered or the attempt failed.
type QueryScheduler interface {
	Schedule(ctx context.Context, sub domain.SubID) *task.Task[models.QueryResult]
}

// SimStateSource reports the SIM application state for a subscription.
type SimStateSource interface {
	SimState(ctx context.Context, sub domain.SubID) models.SimState
}

// CarrierConfigSource answers carrier configuration lookups.
type CarrierConfigSource interface {
	EntitlementVersion(sub domain.SubID) domain.EntitlementVersion
	// DefaultWfcModes reports false when no carrier config is loaded for sub.
	DefaultWfcModes(sub domain.SubID) (models.WfcModes, bool)
	EntitlementCheckRequired(sub domain.SubID) bool
}

// BootCounter reports the device boot count, or models.NoBootCount if unknown.
type BootCounter interface {
	BootCount(ctx context.Context) int
}

// WfcSetting is the platform's per-subscription Wi-Fi Calling setting.
type WfcSetting interface {
	SetEnabled(ctx context.Context, sub domain.SubID, enabled bool) error
	SetMode(ctx context.Context, sub domain.SubID, mode models.WfcMode) error
	SetRoamingMode(ctx context.Context, sub domain.SubID, mode models.WfcMode) error
	EnabledByUser(ctx context.Context, sub domain.SubID) (bool, error)
}

// ActorSource reports whether the running actor is the primary system user.
type ActorSource interface {
	IsSystemUser(ctx context.Context) bool
}
