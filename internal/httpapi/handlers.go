package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"cabino/internal/catalog"
	"cabino/internal/estimator"
	"cabino/internal/stats"
	"cabino/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// ConstraintUnknownOption marks a cabinet type or material ID that is not
// in the catalog.
const ConstraintUnknownOption estimator.Constraint = "unknown_option"

type CatalogSource interface {
	GetCatalog(ctx context.Context) (catalog.Catalog, error)
}

type EstimateCounter interface {
	CountEstimate(ctx context.Context) error
}

type StatsProvider interface {
	Get(ctx context.Context) stats.Statistics
}

// LeadStatusUpdater receives status changes pushed by the CRM.
type LeadStatusUpdater interface {
	UpdateLeadStatusByPublicID(ctx context.Context, publicID, status string) error
}

var (
	_ CatalogSource     = (*storage.PostgresStorage)(nil)
	_ EstimateCounter   = (*storage.PostgresStorage)(nil)
	_ LeadStatusUpdater = (*storage.PostgresStorage)(nil)
	_ StatsProvider     = (*stats.Service)(nil)
)

type Handler struct {
	estimator *estimator.Estimator
	catalog   CatalogSource
	counter   EstimateCounter
	stats     StatsProvider
	leads     LeadStatusUpdater
	crmAPIKey string
	logger    *zap.Logger
}

func NewHandler(
	est *estimator.Estimator,
	catalogSource CatalogSource,
	counter EstimateCounter,
	statsProvider StatsProvider,
	leads LeadStatusUpdater,
	crmAPIKey string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		estimator: est,
		catalog:   catalogSource,
		counter:   counter,
		stats:     statsProvider,
		leads:     leads,
		crmAPIKey: crmAPIKey,
		logger:    logger,
	}
}

// EstimateRequest takes catalog IDs; explicit multipliers win over them.
type EstimateRequest struct {
	Length                float64 `json:"length"`
	Width                 float64 `json:"width"`
	Height                float64 `json:"height"`
	CabinetType           string  `json:"cabinet_type,omitempty"`
	Material              string  `json:"material,omitempty"`
	CabinetTypeMultiplier float64 `json:"cabinet_type_multiplier,omitempty"`
	MaterialMultiplier    float64 `json:"material_multiplier,omitempty"`
}

type FormattedResult struct {
	UpperArea  string `json:"upper_area"`
	LowerArea  string `json:"lower_area"`
	TotalArea  string `json:"total_area"`
	TotalPrice string `json:"total_price"`
}

type EstimateResponse struct {
	estimator.Result
	Formatted FormattedResult `json:"formatted"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func (h *Handler) Estimate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req EstimateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in, verr := h.resolveInput(r.Context(), req)
	if verr != nil {
		writeJSON(w, http.StatusUnprocessableEntity, verr)
		return
	}

	res, err := h.estimator.Estimate(in)
	if verr, ok := estimator.AsValidationError(err); ok {
		writeJSON(w, http.StatusUnprocessableEntity, verr)
		return
	}
	if errors.Is(err, estimator.ErrPriceOverflow) {
		writeError(w, http.StatusUnprocessableEntity, "price out of range")
		return
	}
	if err != nil {
		h.logger.Error("Failed to estimate price", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := h.counter.CountEstimate(r.Context()); err != nil {
		h.logger.Warn("Failed to count estimate", zap.Error(err))
	}

	writeJSON(w, http.StatusOK, EstimateResponse{
		Result: res,
		Formatted: FormattedResult{
			UpperArea:  estimator.FormatArea(res.UpperArea),
			LowerArea:  estimator.FormatArea(res.LowerArea),
			TotalArea:  estimator.FormatArea(res.TotalArea),
			TotalPrice: estimator.FormatPrice(res.TotalPrice),
		},
	})
}

// resolveInput maps catalog IDs to multipliers. Unknown IDs are reported
// together with any dimension errors.
func (h *Handler) resolveInput(ctx context.Context, req EstimateRequest) (estimator.Input, *estimator.ValidationError) {
	in := estimator.Input{
		Length:                req.Length,
		Width:                 req.Width,
		Height:                req.Height,
		CabinetTypeMultiplier: req.CabinetTypeMultiplier,
		MaterialMultiplier:    req.MaterialMultiplier,
	}
	if (in.CabinetTypeMultiplier != 0 || req.CabinetType == "") &&
		(in.MaterialMultiplier != 0 || req.Material == "") {
		return in, nil
	}

	cat, err := h.catalog.GetCatalog(ctx)
	if err != nil {
		h.logger.Warn("Failed to load catalog, using defaults", zap.Error(err))
		cat = catalog.Default()
	}

	var unknown []estimator.FieldError
	resolve := func(kind catalog.Kind, field, id string, mul *float64) {
		if *mul != 0 || id == "" {
			return
		}
		o, err := cat.Lookup(kind, id)
		if err != nil {
			unknown = append(unknown, estimator.FieldError{Field: field, Constraint: ConstraintUnknownOption})
			return
		}
		*mul = o.Multiplier
	}
	resolve(catalog.KindCabinetType, estimator.FieldCabinetType, req.CabinetType, &in.CabinetTypeMultiplier)
	resolve(catalog.KindMaterial, estimator.FieldMaterial, req.Material, &in.MaterialMultiplier)

	if len(unknown) == 0 {
		return in, nil
	}

	verr := &estimator.ValidationError{}
	if err := estimator.Validate(in); err != nil {
		if v, ok := estimator.AsValidationError(err); ok {
			for _, f := range v.Fields {
				// the unknown option is already reported for this field
				if f.Constraint == estimator.ConstraintMissing && hasField(unknown, f.Field) {
					continue
				}
				verr.Fields = append(verr.Fields, f)
			}
		}
	}
	verr.Fields = append(verr.Fields, unknown...)
	return in, verr
}

func hasField(fields []estimator.FieldError, field string) bool {
	for _, f := range fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	cat, err := h.catalog.GetCatalog(r.Context())
	if err != nil {
		h.logger.Warn("Failed to load catalog, using defaults", zap.Error(err))
		cat = catalog.Default()
	}
	writeJSON(w, http.StatusOK, cat)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, h.stats.Get(r.Context()))
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type crmWebhook struct {
	EventType string          `json:"event_type"`
	Data      json.RawMessage `json:"data"`
}

type crmLeadStatus struct {
	PublicID string `json:"public_id"`
	Status   string `json:"status"`
}

// CRMWebhook accepts lead status changes made by managers in the CRM.
func (h *Handler) CRMWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	if h.crmAPIKey != "" && r.Header.Get("X-Api-Key") != h.crmAPIKey {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var payload crmWebhook
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch payload.EventType {
	case "lead_status_changed":
		var data crmLeadStatus
		if err := json.Unmarshal(payload.Data, &data); err != nil {
			writeError(w, http.StatusBadRequest, "invalid event data")
			return
		}
		if _, err := uuid.Parse(data.PublicID); err != nil || !storage.ValidStatus(data.Status) {
			writeError(w, http.StatusBadRequest, "invalid lead status event")
			return
		}

		err := h.leads.UpdateLeadStatusByPublicID(r.Context(), data.PublicID, data.Status)
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "lead not found")
			return
		}
		if err != nil {
			h.logger.Error("Failed to apply CRM status change",
				zap.String("public_id", data.PublicID),
				zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		h.logger.Info("Lead status changed by CRM",
			zap.String("public_id", data.PublicID),
			zap.String("status", data.Status))
	default:
		h.logger.Debug("Ignoring CRM event", zap.String("event_type", payload.EventType))
	}

	w.WriteHeader(http.StatusNoContent)
}
