// Package handler exposes the entitlement engine over HTTP: trigger
// notifications in, query results back, and read/reset of the state the
// engine keeps.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"imsse/internal/entitlement/models"
	"imsse/pkg/domain"
	dErrors "imsse/pkg/domain-errors"
	"imsse/pkg/platform/httputil"
	"imsse/pkg/platform/sentinel"
	"imsse/pkg/requestcontext"
)

const batchConcurrency = 4

// Router evaluates trigger events.
type Router interface {
	Handle(ctx context.Context, ev models.TriggerEvent) models.Outcome
	HandleBatch(ctx context.Context, events []models.TriggerEvent, limit int) []models.Outcome
	ResetRecord(ctx context.Context, sub domain.SubID) error
}

// Store reads persisted state.
type Store interface {
	Get(ctx context.Context, sub domain.SubID) (models.Record, error)
	Slot(ctx context.Context, slot domain.SlotID) (models.SlotState, error)
}

// Queries settles and lists pending entitlement queries.
type Queries interface {
	Resolve(result models.QueryResult) error
	PendingRequests() []models.QueryRequest
}

// SimStates accepts SIM state reports.
type SimStates interface {
	Set(sub domain.SubID, state models.SimState) error
}

// WfcSettings reads and writes the user-facing WFC setting.
type WfcSettings interface {
	Get(ctx context.Context, sub domain.SubID) (models.WfcSettings, error)
	SetEnabled(ctx context.Context, sub domain.SubID, enabled bool) error
	SetMode(ctx context.Context, sub domain.SubID, mode models.WfcMode) error
	SetRoamingMode(ctx context.Context, sub domain.SubID, mode models.WfcMode) error
}

// Handler wires entitlement endpoints to the engine.
type Handler struct {
	router  Router
	store   Store
	queries Queries
	sims    SimStates
	wfc     WfcSettings
	logger  *slog.Logger
}

// New constructs a handler with its dependencies.
func New(router Router, store Store, queries Queries, sims SimStates, wfc WfcSettings, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		router:  router,
		store:   store,
		queries: queries,
		sims:    sims,
		wfc:     wfc,
		logger:  logger,
	}
}

// Register mounts the endpoints on r.
func (h *Handler) Register(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Post("/events", h.HandleEvent)
		r.Post("/events/batch", h.HandleBatch)
		r.Post("/query-results", h.HandleQueryResult)
		r.Get("/queries", h.HandleListQueries)
		r.Get("/slots/{slotID}", h.HandleGetSlot)
		r.Route("/subscriptions/{subID}", func(r chi.Router) {
			r.Get("/entitlement", h.HandleGetRecord)
			r.Delete("/entitlement", h.HandleResetRecord)
			r.Put("/sim-state", h.HandlePutSimState)
			r.Get("/wfc", h.HandleGetWfc)
			r.Put("/wfc", h.HandlePutWfc)
		})
	})
}

// HandleEvent handles POST /v1/events.
func (h *Handler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[EventRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	outcome := h.router.Handle(ctx, req.Event())
	httputil.WriteJSON(w, http.StatusOK, FromOutcome(outcome))
}

// HandleBatch handles POST /v1/events/batch.
func (h *Handler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[BatchRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	outcomes := h.router.HandleBatch(ctx, req.events(), batchConcurrency)
	resp := BatchResponse{Outcomes: make([]OutcomeResponse, len(outcomes))}
	for i, o := range outcomes {
		resp.Outcomes[i] = FromOutcome(o)
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleQueryResult handles POST /v1/query-results.
func (h *Handler) HandleQueryResult(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[QueryResultRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.queries.Resolve(req.result); err != nil {
		h.logger.WarnContext(ctx, "query result rejected",
			"request_id", requestID,
			"sub_id", req.result.SubID,
			"query_id", req.result.RequestID,
			"error", err,
		)
		httputil.WriteError(w, toDomainError(err, "query"))
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, nil)
}

// HandleListQueries handles GET /v1/queries.
func (h *Handler) HandleListQueries(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, FromQueries(h.queries.PendingRequests()))
}

// HandleGetSlot handles GET /v1/slots/{slotID}.
func (h *Handler) HandleGetSlot(w http.ResponseWriter, r *http.Request) {
	slot, err := domain.ParseSlotID(chi.URLParam(r, "slotID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	st, err := h.store.Slot(r.Context(), slot)
	if err != nil {
		httputil.WriteError(w, toDomainError(err, "slot"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromSlot(st))
}

// HandleGetRecord handles GET /v1/subscriptions/{subID}/entitlement.
func (h *Handler) HandleGetRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sub, ok := h.subscription(w, r)
	if !ok {
		return
	}
	rec, err := h.store.Get(ctx, sub)
	if err != nil {
		httputil.WriteError(w, toDomainError(err, "entitlement record"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRecord(rec, requestcontext.Now(ctx)))
}

// HandleResetRecord handles DELETE /v1/subscriptions/{subID}/entitlement.
func (h *Handler) HandleResetRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sub, ok := h.subscription(w, r)
	if !ok {
		return
	}
	if err := h.router.ResetRecord(ctx, sub); err != nil {
		h.logger.ErrorContext(ctx, "entitlement reset failed",
			"request_id", requestcontext.RequestID(ctx),
			"sub_id", sub,
			"error", err,
		)
		httputil.WriteError(w, toDomainError(err, "entitlement record"))
		return
	}
	h.logger.InfoContext(ctx, "entitlement record reset", "sub_id", sub)
	w.WriteHeader(http.StatusNoContent)
}

// HandlePutSimState handles PUT /v1/subscriptions/{subID}/sim-state.
func (h *Handler) HandlePutSimState(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sub, ok := h.subscription(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[SimStateRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if err := h.sims.Set(sub, req.state); err != nil {
		httputil.WriteError(w, toDomainError(err, "sim state"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleGetWfc handles GET /v1/subscriptions/{subID}/wfc.
func (h *Handler) HandleGetWfc(w http.ResponseWriter, r *http.Request) {
	sub, ok := h.subscription(w, r)
	if !ok {
		return
	}
	st, err := h.wfc.Get(r.Context(), sub)
	if err != nil {
		httputil.WriteError(w, toDomainError(err, "wfc setting"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, WfcResponse{
		SubID:       int(sub),
		Enabled:     st.Enabled,
		Mode:        int(st.Mode),
		RoamingMode: int(st.RoamingMode),
	})
}

// HandlePutWfc handles PUT /v1/subscriptions/{subID}/wfc. This is the user
// changing the setting, not an entitlement outcome.
func (h *Handler) HandlePutWfc(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sub, ok := h.subscription(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[WfcRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	var err error
	if req.Enabled != nil {
		err = errors.Join(err, h.wfc.SetEnabled(ctx, sub, *req.Enabled))
	}
	if req.Mode != nil {
		err = errors.Join(err, h.wfc.SetMode(ctx, sub, models.WfcMode(*req.Mode)))
	}
	if req.RoamingMode != nil {
		err = errors.Join(err, h.wfc.SetRoamingMode(ctx, sub, models.WfcMode(*req.RoamingMode)))
	}
	if err != nil {
		httputil.WriteError(w, toDomainError(err, "wfc setting"))
		return
	}
	h.HandleGetWfc(w, r)
}

// subscription parses {subID}. Unlike triggers, inspection endpoints need a
// concrete subscription.
func (h *Handler) subscription(w http.ResponseWriter, r *http.Request) (domain.SubID, bool) {
	sub, err := domain.ParseSubID(chi.URLParam(r, "subID"))
	if err != nil {
		httputil.WriteError(w, err)
		return domain.InvalidSubID, false
	}
	if !sub.IsValid() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "subscription id does not name a subscription"))
		return domain.InvalidSubID, false
	}
	return sub, true
}

// toDomainError translates infrastructure sentinels into coded errors.
// Errors that already carry a code pass through.
func toDomainError(err error, what string) error {
	var de *dErrors.Error
	switch {
	case errors.As(err, &de):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, what+" not found")
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.Wrap(err, dErrors.CodeValidation, "invalid "+what)
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, what+" temporarily unavailable")
	case errors.Is(err, sentinel.ErrClosed):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "service shutting down")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "internal error")
	}
}
