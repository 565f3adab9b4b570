// Package evaluator decides, from a stored entitlement record, a trigger event
// and freshly observed device signals, whether the device must re-check its
// entitlement with the carrier.
//
// Evaluation is pure: it performs no I/O and reads the clock only through
// Input.Now. The router gathers the inputs under the subscription lock and
// carries out the returned Verdict.
package evaluator

import (
	"time"

	"imsse/internal/entitlement/models"
	"imsse/internal/entitlement/provisioning"
	"imsse/pkg/domain"
)

// Input is everything one evaluation may consult.
type Input struct {
	// Event carries the resolved subscription; for BootCompleted the router
	// fills SubID from the slot binding.
	Event             models.TriggerEvent
	Record            models.Record
	Slot              models.SlotState
	SimState          models.SimState
	SystemUser        bool
	CheckRequired     bool
	ConfiguredVersion domain.EntitlementVersion
	BootCount         int
	Now               time.Time
}

// Verdict is an Outcome plus the state changes that must accompany it.
type Verdict struct {
	Outcome models.Outcome

	// ResetRecord clears the event subscription's record before scheduling.
	ResetRecord bool
	// BindSlot records the event subscription as the slot's occupant.
	BindSlot bool
	// PreviousSubID, when valid, is the subscription that left the slot; its
	// record is cleared as well.
	PreviousSubID domain.SubID

	// RecordBootCount stores BootCount as the slot's last-seen boot.
	RecordBootCount bool
	BootCount       int
}

// HasEffects reports whether the verdict changes persisted state.
func (v Verdict) HasEffects() bool {
	return v.ResetRecord || v.BindSlot || v.RecordBootCount || v.PreviousSubID.IsValid()
}

func noAction(reason models.Reason) Verdict {
	return Verdict{Outcome: models.NoAction(reason), PreviousSubID: domain.InvalidSubID}
}

func schedule(sub domain.SubID, reason models.Reason) Verdict {
	return Verdict{Outcome: models.ScheduleQuery(sub, reason), PreviousSubID: domain.InvalidSubID}
}

// Evaluator holds the configuration evaluation depends on.
type Evaluator struct {
	versions domain.VersionSet
	upgrade  domain.EntitlementVersion
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithUpgradeVersion sets the version a stored record must be produced under
// once the configured version reaches it. Non-positive values are ignored.
func WithUpgradeVersion(v domain.EntitlementVersion) Option {
	return func(e *Evaluator) {
		if v > 0 {
			e.upgrade = v
		}
	}
}

// New builds an evaluator recognizing versions. An empty set falls back to
// the default recognized versions.
func New(versions domain.VersionSet, opts ...Option) *Evaluator {
	if len(versions) == 0 {
		versions = domain.DefaultVersionSet()
	}
	e := &Evaluator{versions: versions, upgrade: domain.DefaultUpgradeVersion}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate applies the decision rules in precedence order (fail-fast):
//  1. Identity and authorization gates
//  2. Recognized entitlement version
//  3. Event-specific rules (SIM change, reboot, version change)
//  4. Validity of the stored record
func (e *Evaluator) Evaluate(in Input) Verdict {
	ev := in.Event

	// Rule 1: gates that make any re-check pointless or unauthorized
	if ev.Kind == models.EventBootCompleted && !in.Slot.Bound() {
		return noAction(models.ReasonUnbound)
	}
	if !ev.SubID.IsValid() {
		return noAction(models.ReasonInvalidSubscription)
	}
	if (ev.Kind == models.EventSimLoaded || ev.Kind == models.EventCarrierConfigChanged) && !ev.SlotID.IsValid() {
		return noAction(models.ReasonUnbound)
	}
	if !in.SystemUser {
		return noAction(models.ReasonNotSystemUser)
	}
	if in.SimState != models.SimStateLoaded {
		return noAction(models.ReasonSimNotLoaded)
	}
	if !in.CheckRequired {
		return noAction(models.ReasonCheckNotRequired)
	}

	// Rule 2: unknown versions never schedule and never touch state
	configured := in.ConfiguredVersion
	if ev.Kind == models.EventEntitlementVersionChanged {
		configured = ev.NewVersion
	}
	if !e.versions.Contains(configured) {
		return noAction(models.ReasonUnsupportedVersion)
	}

	// Rule 3: event-specific
	switch ev.Kind {
	case models.EventSimLoaded, models.EventCarrierConfigChanged:
		if !in.Slot.Bound() || in.Slot.SubID != ev.SubID {
			v := schedule(ev.SubID, models.ReasonSimChanged)
			v.ResetRecord = true
			v.BindSlot = true
			if in.Slot.SubID.IsValid() {
				v.PreviousSubID = in.Slot.SubID
			}
			return v
		}
		if ev.Kind == models.EventCarrierConfigChanged {
			return noAction(models.ReasonSameSubscription)
		}
		return e.checkValidity(in.Record, configured, in.Now, ev.SubID)

	case models.EventBootCompleted:
		if in.BootCount == in.Slot.LastBootCount {
			return noAction(models.ReasonNoReboot)
		}
		v := e.checkValidity(in.Record, configured, in.Now, ev.SubID)
		v.RecordBootCount = true
		v.BootCount = in.BootCount
		return v

	case models.EventEntitlementVersionChanged:
		return e.checkValidity(in.Record, configured, in.Now, ev.SubID)
	}

	return noAction(models.ReasonInvalidSubscription)
}

// checkValidity is rule 4: schedule when the record is missing, stale, or was
// produced below the upgrade version the configured version has reached. A
// downgrade never invalidates.
func (e *Evaluator) checkValidity(rec models.Record, configured domain.EntitlementVersion, now time.Time, sub domain.SubID) Verdict {
	if !rec.HasPayload() {
		return schedule(sub, models.ReasonNoRecord)
	}
	if configured.CrossesUpgrade(rec.Version, e.upgrade) {
		return schedule(sub, models.ReasonVersionUpgrade)
	}
	if vers, ok := provisioning.ParseVers(rec.RawXML); ok && vers.ServerDisabled() {
		return noAction(models.ReasonServerDisabled)
	}
	if rec.Expired(now) {
		return schedule(sub, models.ReasonExpired)
	}
	return noAction(models.ReasonValid)
}

// ResponseInput is what evaluating a freshly stored server response consults.
type ResponseInput struct {
	SubID            domain.SubID
	Record           models.Record
	WfcEnabledByUser bool
}

// EvaluateResponse decides what a completed query means for the WFC setting.
// A revoked VoWiFi entitlement while the user has WFC on turns it off and
// restores carrier default modes; enabling is left to the activation flow.
func (e *Evaluator) EvaluateResponse(in ResponseInput) models.Outcome {
	if !in.SubID.IsValid() {
		return models.NoAction(models.ReasonInvalidSubscription)
	}
	doc, err := provisioning.Parse(in.Record.RawXML)
	if err != nil {
		return models.NoAction(models.ReasonNoRecord)
	}
	app, ok := doc.Application(provisioning.AppIDVoWiFi)
	if !ok || app.EntitlementStatus == provisioning.StatusUnknown {
		return models.NoAction(models.ReasonNoRecord)
	}
	if app.EntitlementStatus == provisioning.StatusEnabled {
		return models.NoAction(models.ReasonEntitlementGranted)
	}
	if !in.WfcEnabledByUser {
		return models.NoAction(models.ReasonWfcAlreadyOff)
	}
	return models.ApplyWfc(in.SubID, false, true, models.ReasonEntitlementRevoked).WithCarrierDefaultReset()
}
