package handler

import (
	"time"

	"imsse/internal/entitlement/models"
	"imsse/internal/entitlement/provisioning"
)

type OutcomeResponse struct {
	Kind                  string `json:"kind"`
	SubID                 int    `json:"sub_id"`
	Reason                string `json:"reason"`
	Enabled               *bool  `json:"enabled,omitempty"`
	Forced                *bool  `json:"forced,omitempty"`
	ResetToCarrierDefault bool   `json:"reset_to_carrier_default,omitempty"`
}

func FromOutcome(o models.Outcome) OutcomeResponse {
	resp := OutcomeResponse{
		Kind:   string(o.Kind),
		SubID:  int(o.SubID),
		Reason: string(o.Reason),
	}
	if o.Kind == models.OutcomeApplyWfc {
		resp.Enabled = &o.Enabled
		resp.Forced = &o.Forced
		resp.ResetToCarrierDefault = o.ResetToCarrierDefault
	}
	return resp
}

type BatchResponse struct {
	Outcomes []OutcomeResponse `json:"outcomes"`
}

type VersResponse struct {
	Version        int   `json:"version"`
	ValiditySecond int64 `json:"validity_seconds"`
	ServerDisabled bool  `json:"server_disabled"`
}

type ApplicationResponse struct {
	AppID             string `json:"app_id"`
	EntitlementStatus string `json:"entitlement_status"`
	ServiceFlowURL    string `json:"service_flow_url,omitempty"`
}

type RecordResponse struct {
	SubID              int                   `json:"sub_id"`
	EntitlementVersion int                   `json:"entitlement_version"`
	HasPayload         bool                  `json:"has_payload"`
	Expired            bool                  `json:"expired"`
	ValidUntil         *time.Time            `json:"valid_until,omitempty"`
	UpdatedAt          *time.Time            `json:"updated_at,omitempty"`
	Vers               *VersResponse         `json:"vers,omitempty"`
	Applications       []ApplicationResponse `json:"applications,omitempty"`
	RawXML             string                `json:"raw_xml,omitempty"`
}

// FromRecord summarizes rec as seen at now. The payload is parsed for
// display only; a malformed document is shown raw.
func FromRecord(rec models.Record, now time.Time) RecordResponse {
	resp := RecordResponse{
		SubID:              int(rec.SubID),
		EntitlementVersion: int(rec.Version),
		HasPayload:         rec.HasPayload(),
		Expired:            rec.Expired(now),
		RawXML:             rec.RawXML,
	}
	if !rec.ValidUntil.IsZero() {
		t := rec.ValidUntil
		resp.ValidUntil = &t
	}
	if !rec.UpdatedAt.IsZero() {
		t := rec.UpdatedAt
		resp.UpdatedAt = &t
	}
	if !rec.HasPayload() {
		return resp
	}
	doc, err := provisioning.Parse(rec.RawXML)
	if err != nil {
		return resp
	}
	if vers, ok := doc.Vers(); ok {
		resp.Vers = &VersResponse{
			Version:        vers.Version,
			ValiditySecond: int64(vers.Validity / time.Second),
			ServerDisabled: vers.ServerDisabled(),
		}
	}
	for _, app := range doc.Applications() {
		resp.Applications = append(resp.Applications, ApplicationResponse{
			AppID:             app.AppID,
			EntitlementStatus: app.EntitlementStatus.String(),
			ServiceFlowURL:    app.ServiceFlowURL,
		})
	}
	return resp
}

type SlotResponse struct {
	SlotID        int  `json:"slot_id"`
	SubID         int  `json:"sub_id"`
	Bound         bool `json:"bound"`
	LastBootCount int  `json:"last_boot_count"`
}

func FromSlot(st models.SlotState) SlotResponse {
	return SlotResponse{
		SlotID:        int(st.SlotID),
		SubID:         int(st.SubID),
		Bound:         st.Bound(),
		LastBootCount: st.LastBootCount,
	}
}

type WfcResponse struct {
	SubID       int  `json:"sub_id"`
	Enabled     bool `json:"enabled"`
	Mode        int  `json:"mode"`
	RoamingMode int  `json:"roaming_mode"`
}

type QueryResponse struct {
	ID          string    `json:"id"`
	SubID       int       `json:"sub_id"`
	RequestedAt time.Time `json:"requested_at"`
}

type QueriesResponse struct {
	Queries []QueryResponse `json:"queries"`
}

func FromQueries(reqs []models.QueryRequest) QueriesResponse {
	resp := QueriesResponse{Queries: make([]QueryResponse, 0, len(reqs))}
	for _, r := range reqs {
		resp.Queries = append(resp.Queries, QueryResponse{
			ID:          r.ID.String(),
			SubID:       int(r.SubID),
			RequestedAt: r.RequestedAt,
		})
	}
	return resp
}
