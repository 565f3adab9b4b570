package handler

import (
	"strings"

	"github.com/google/uuid"

	"imsse/internal/entitlement/models"
	"imsse/pkg/domain"
	dErrors "imsse/pkg/domain-errors"
)

const maxBatchEvents = 64

// EventRequest is one trigger notification.
type EventRequest struct {
	Kind       string `json:"kind"`
	SubID      *int   `json:"sub_id,omitempty"`
	SlotID     *int   `json:"slot_id,omitempty"`
	OldVersion *int   `json:"old_version,omitempty"`
	NewVersion *int   `json:"new_version,omitempty"`

	event models.TriggerEvent
}

// Validate checks that the fields the kind needs are present. Out-of-range
// subscription ids pass; the engine turns them into NoAction.
func (r *EventRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	kind := models.EventKind(strings.TrimSpace(strings.ToLower(r.Kind)))
	switch kind {
	case models.EventSimLoaded, models.EventCarrierConfigChanged:
		if r.SubID == nil || r.SlotID == nil {
			return dErrors.New(dErrors.CodeValidation, "sub_id and slot_id are required")
		}
		if *r.SlotID < 0 {
			return dErrors.New(dErrors.CodeValidation, "slot_id must not be negative")
		}
		if kind == models.EventSimLoaded {
			r.event = models.SimLoaded(domain.SubID(*r.SubID), domain.SlotID(*r.SlotID))
		} else {
			r.event = models.CarrierConfigChanged(domain.SubID(*r.SubID), domain.SlotID(*r.SlotID))
		}
	case models.EventBootCompleted:
		if r.SlotID == nil {
			return dErrors.New(dErrors.CodeValidation, "slot_id is required")
		}
		if *r.SlotID < 0 {
			return dErrors.New(dErrors.CodeValidation, "slot_id must not be negative")
		}
		r.event = models.BootCompleted(domain.SlotID(*r.SlotID))
	case models.EventEntitlementVersionChanged:
		if r.SubID == nil || r.OldVersion == nil || r.NewVersion == nil {
			return dErrors.New(dErrors.CodeValidation, "sub_id, old_version and new_version are required")
		}
		r.event = models.EntitlementVersionChanged(domain.SubID(*r.SubID),
			domain.EntitlementVersion(*r.OldVersion), domain.EntitlementVersion(*r.NewVersion))
	case "":
		return dErrors.New(dErrors.CodeValidation, "kind is required")
	default:
		return dErrors.New(dErrors.CodeValidation, "unknown event kind: "+r.Kind)
	}
	return nil
}

// Event returns the parsed event. Only valid after Validate.
func (r *EventRequest) Event() models.TriggerEvent {
	return r.event
}

// BatchRequest carries several notifications, e.g. BootCompleted for every
// slot.
type BatchRequest struct {
	Events []EventRequest `json:"events"`
}

func (r *BatchRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Events) == 0 {
		return dErrors.New(dErrors.CodeValidation, "events must not be empty")
	}
	if len(r.Events) > maxBatchEvents {
		return dErrors.New(dErrors.CodeValidation, "too many events")
	}
	for i := range r.Events {
		if err := r.Events[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (r *BatchRequest) events() []models.TriggerEvent {
	out := make([]models.TriggerEvent, len(r.Events))
	for i := range r.Events {
		out[i] = r.Events[i].Event()
	}
	return out
}

// QueryResultRequest is a server answer posted back for a pending query.
type QueryResultRequest struct {
	RequestID          string `json:"request_id"`
	SubID              *int   `json:"sub_id"`
	EntitlementVersion int    `json:"entitlement_version"`
	RawXML             string `json:"raw_xml"`
	Error              string `json:"error,omitempty"`

	result models.QueryResult
}

func (r *QueryResultRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	id, err := uuid.Parse(strings.TrimSpace(r.RequestID))
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "request_id must be a uuid")
	}
	if r.SubID == nil || !domain.SubID(*r.SubID).IsValid() {
		return dErrors.New(dErrors.CodeValidation, "sub_id must name a subscription")
	}
	if r.Error == "" && r.RawXML != "" && r.EntitlementVersion <= 0 {
		return dErrors.New(dErrors.CodeValidation, "entitlement_version must be positive when raw_xml is set")
	}
	r.result = models.QueryResult{
		RequestID: id,
		SubID:     domain.SubID(*r.SubID),
		Version:   domain.EntitlementVersion(r.EntitlementVersion),
		RawXML:    r.RawXML,
		Error:     r.Error,
	}
	return nil
}

// SimStateRequest reports the SIM state of a subscription.
type SimStateRequest struct {
	State string `json:"state"`

	state models.SimState
}

func (r *SimStateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.state = models.SimState(strings.TrimSpace(strings.ToLower(r.State)))
	if !r.state.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "unknown sim state: "+r.State)
	}
	return nil
}

// WfcRequest updates any subset of the WFC setting.
type WfcRequest struct {
	Enabled     *bool `json:"enabled,omitempty"`
	Mode        *int  `json:"mode,omitempty"`
	RoamingMode *int  `json:"roaming_mode,omitempty"`
}

func (r *WfcRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Enabled == nil && r.Mode == nil && r.RoamingMode == nil {
		return dErrors.New(dErrors.CodeValidation, "at least one of enabled, mode, roaming_mode is required")
	}
	if r.Mode != nil && !models.WfcMode(*r.Mode).IsValid() {
		return dErrors.New(dErrors.CodeValidation, "mode must be 0, 1 or 2")
	}
	if r.RoamingMode != nil && !models.WfcMode(*r.RoamingMode).IsValid() {
		return dErrors.New(dErrors.CodeValidation, "roaming_mode must be 0, 1 or 2")
	}
	return nil
}
