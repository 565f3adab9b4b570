package models

import (
	"time"

	"github.com/google/uuid"

	"imsse/pkg/domain"
)

// NoBootCount marks a boot counter that was never observed.
const NoBootCount = -1

// Record is the cached entitlement state of one subscription.
// Invariant: a record with a payload has Version > 0 when written through a store.
type Record struct {
	SubID      domain.SubID
	Version    domain.EntitlementVersion
	RawXML     string
	ValidUntil time.Time
	UpdatedAt  time.Time
}

// EmptyRecord is what a store returns for a subscription it has never seen.
func EmptyRecord(sub domain.SubID) Record {
	return Record{SubID: sub}
}

// HasPayload reports whether a server response is stored.
func (r Record) HasPayload() bool {
	return r.RawXML != ""
}

// Expired reports whether the record can no longer be trusted at now. A record
// without payload is always expired; the payload itself stays readable.
func (r Record) Expired(now time.Time) bool {
	return !r.HasPayload() || !now.Before(r.ValidUntil)
}

// SlotState is the per-slot row: the subscription last seen in the slot and
// the boot counter last observed for it.
type SlotState struct {
	SlotID        domain.SlotID
	SubID         domain.SubID
	LastBootCount int
}

// EmptySlot is the state of a slot with nothing recorded.
func EmptySlot(slot domain.SlotID) SlotState {
	return SlotState{SlotID: slot, SubID: domain.InvalidSubID, LastBootCount: NoBootCount}
}

// Bound reports whether a subscription was ever recorded for the slot.
func (s SlotState) Bound() bool {
	return s.SubID != domain.InvalidSubID
}

// SimState is the SIM application state reported by the modem.
type SimState string

// SIM application states.
const (
	SimStateUnknown       SimState = "unknown"
	SimStateAbsent        SimState = "absent"
	SimStatePinRequired   SimState = "pin_required"
	SimStatePukRequired   SimState = "puk_required"
	SimStateNetworkLocked SimState = "network_locked"
	SimStateNotReady      SimState = "not_ready"
	SimStateLoaded        SimState = "loaded"
)

// IsValid reports whether s is a known state.
func (s SimState) IsValid() bool {
	switch s {
	case SimStateUnknown, SimStateAbsent, SimStatePinRequired, SimStatePukRequired,
		SimStateNetworkLocked, SimStateNotReady, SimStateLoaded:
		return true
	}
	return false
}

// WfcMode is the Wi-Fi Calling preference mode.
type WfcMode int

// WFC modes.
const (
	WfcModeWifiOnly          WfcMode = 0
	WfcModeCellularPreferred WfcMode = 1
	WfcModeWifiPreferred     WfcMode = 2
)

// IsValid reports whether m is a known mode.
func (m WfcMode) IsValid() bool {
	return m >= WfcModeWifiOnly && m <= WfcModeWifiPreferred
}

// WfcModes pairs the home and roaming WFC modes.
type WfcModes struct {
	Mode        WfcMode
	RoamingMode WfcMode
}

// WfcSettings is the user-facing WFC state of one subscription.
type WfcSettings struct {
	Enabled     bool
	Mode        WfcMode
	RoamingMode WfcMode
}

// QueryRequest asks the query dispatcher to perform one entitlement round trip.
type QueryRequest struct {
	ID          uuid.UUID    `json:"id"`
	SubID       domain.SubID `json:"sub_id"`
	RequestedAt time.Time    `json:"requested_at"`
}

// QueryResult is the server response for a QueryRequest.
type QueryResult struct {
	RequestID uuid.UUID                 `json:"request_id"`
	SubID     domain.SubID              `json:"sub_id"`
	Version   domain.EntitlementVersion `json:"entitlement_version"`
	RawXML    string                    `json:"raw_xml"`
	// Error is set by the dispatcher when the round trip failed.
	Error string `json:"error,omitempty"`
}
