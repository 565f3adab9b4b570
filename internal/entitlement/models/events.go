package models

import (
	"fmt"

	"imsse/pkg/domain"
)

// EventKind tags a TriggerEvent.
type EventKind string

// Trigger event kinds.
const (
	EventSimLoaded                 EventKind = "sim_loaded"
	EventBootCompleted             EventKind = "boot_completed"
	EventCarrierConfigChanged      EventKind = "carrier_config_changed"
	EventEntitlementVersionChanged EventKind = "entitlement_version_changed"
)

// TriggerEvent is one external notification translated for the evaluator.
// Only the fields meaningful for Kind are set; BootCompleted carries no
// subscription until the router resolves it from the slot binding.
type TriggerEvent struct {
	Kind       EventKind
	SubID      domain.SubID
	SlotID     domain.SlotID
	OldVersion domain.EntitlementVersion
	NewVersion domain.EntitlementVersion
}

// SimLoaded reports that the SIM in slot finished loading as sub.
func SimLoaded(sub domain.SubID, slot domain.SlotID) TriggerEvent {
	return TriggerEvent{Kind: EventSimLoaded, SubID: sub, SlotID: slot}
}

// BootCompleted reports that the device finished booting; slot names the
// binding to resolve the subscription from.
func BootCompleted(slot domain.SlotID) TriggerEvent {
	return TriggerEvent{Kind: EventBootCompleted, SubID: domain.InvalidSubID, SlotID: slot}
}

// CarrierConfigChanged reports a carrier config reload for sub in slot.
func CarrierConfigChanged(sub domain.SubID, slot domain.SlotID) TriggerEvent {
	return TriggerEvent{Kind: EventCarrierConfigChanged, SubID: sub, SlotID: slot}
}

// EntitlementVersionChanged reports that the configured version for sub moved.
func EntitlementVersionChanged(sub domain.SubID, oldVersion, newVersion domain.EntitlementVersion) TriggerEvent {
	return TriggerEvent{
		Kind:       EventEntitlementVersionChanged,
		SubID:      sub,
		SlotID:     domain.InvalidSlotID,
		OldVersion: oldVersion,
		NewVersion: newVersion,
	}
}

// Key identifies duplicates: notifications with equal keys share one evaluation.
func (e TriggerEvent) Key() string {
	if e.Kind == EventEntitlementVersionChanged {
		return fmt.Sprintf("%s/%d/%d/%d", e.Kind, e.SubID, e.OldVersion, e.NewVersion)
	}
	return fmt.Sprintf("%s/%d/%d", e.Kind, e.SubID, e.SlotID)
}

// OutcomeKind tags an Outcome.
type OutcomeKind string

// Outcome kinds.
const (
	OutcomeNoAction      OutcomeKind = "no_action"
	OutcomeScheduleQuery OutcomeKind = "schedule_query"
	OutcomeApplyWfc      OutcomeKind = "apply_wfc"
)

// Reason explains an outcome for logs and metrics.
type Reason string

// Outcome reasons.
const (
	ReasonInvalidSubscription Reason = "invalid_subscription"
	ReasonNotSystemUser       Reason = "not_system_user"
	ReasonSimNotLoaded        Reason = "sim_not_loaded"
	ReasonCheckNotRequired    Reason = "check_not_required"
	ReasonUnsupportedVersion  Reason = "unsupported_version"
	ReasonSimChanged          Reason = "sim_changed"
	ReasonSameSubscription    Reason = "same_subscription"
	ReasonNoReboot            Reason = "no_reboot"
	ReasonNoRecord            Reason = "no_record"
	ReasonExpired             Reason = "expired"
	ReasonVersionUpgrade      Reason = "version_upgrade"
	ReasonServerDisabled      Reason = "server_disabled"
	ReasonValid               Reason = "valid"
	ReasonEntitlementRevoked  Reason = "entitlement_revoked"
	ReasonEntitlementGranted  Reason = "entitlement_granted"
	ReasonWfcAlreadyOff       Reason = "wfc_already_off"
	ReasonUnbound             Reason = "slot_unbound"
	ReasonStoreUnavailable    Reason = "store_unavailable"
)

// Outcome is the evaluator's verdict on what the device should do.
type Outcome struct {
	Kind   OutcomeKind
	SubID  domain.SubID
	Reason Reason

	// ApplyWfc only.
	Enabled               bool
	Forced                bool
	ResetToCarrierDefault bool
}

// NoAction is a terminal outcome with nothing to do.
func NoAction(reason Reason) Outcome {
	return Outcome{Kind: OutcomeNoAction, SubID: domain.InvalidSubID, Reason: reason}
}

// ScheduleQuery asks for a network re-check of sub.
func ScheduleQuery(sub domain.SubID, reason Reason) Outcome {
	return Outcome{Kind: OutcomeScheduleQuery, SubID: sub, Reason: reason}
}

// ApplyWfc asks the applier to change the WFC setting of sub.
func ApplyWfc(sub domain.SubID, enabled, forced bool, reason Reason) Outcome {
	return Outcome{Kind: OutcomeApplyWfc, SubID: sub, Enabled: enabled, Forced: forced, Reason: reason}
}

// WithCarrierDefaultReset marks an ApplyWfc outcome as also restoring the
// carrier default modes.
func (o Outcome) WithCarrierDefaultReset() Outcome {
	o.ResetToCarrierDefault = true
	return o
}
