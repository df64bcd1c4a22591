package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/verimotive/claims-engine/internal/domain/claim"
	domainerrors "github.com/verimotive/claims-engine/internal/domain/errors"
	"github.com/verimotive/claims-engine/internal/domain/telematics"
	"github.com/verimotive/claims-engine/internal/domain/values"
	"github.com/verimotive/claims-engine/internal/service/fraud"
	risksvc "github.com/verimotive/claims-engine/internal/service/risk"
	telsvc "github.com/verimotive/claims-engine/internal/service/telematics"
)

// Services holds everything the REST handlers call into
type Services struct {
	Stores   *telsvc.StoreService
	Analyzer fraud.TelematicsChecker
	Features *telsvc.FeatureEngineer
	Risk     *risksvc.Assessor
	Fraud    fraud.Service
}

// Handler routes claim evaluation and risk scoring requests
type Handler struct {
	services Services
	validate *validator.Validate
	logger   *slog.Logger
	version  string
}

func NewHandler(services Services, logger *slog.Logger, version string) *Handler {
	return &Handler{
		services: services,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
		version:  version,
	}
}

// Routes returns the service mux
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/claims/evaluate", h.handleEvaluateClaim)
	mux.HandleFunc("POST /api/v1/risk/score", h.handleRiskScore)
	mux.HandleFunc("GET /healthz", h.handleHealth)
	return mux
}

func (h *Handler) handleEvaluateClaim(w http.ResponseWriter, r *http.Request) {
	var req EvaluateClaimRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	assessment, err := claim.NewDamageAssessment(
		req.DamageAssessment.DamagedParts,
		req.DamageAssessment.Severity,
		req.DamageAssessment.EstimatedRepairCost,
	)
	if err != nil {
		h.writeError(w, r, domainerrors.NewValidationError("INVALID_ASSESSMENT", err.Error()))
		return
	}

	evalReq := &fraud.EvaluateRequest{
		Assessment: assessment,
		History:    toHistoryEntries(req.ClaimHistory),
	}

	var behavior *telematics.BehaviorReport
	if req.IncidentTime != "" {
		incidentTime, err := telsvc.ParseIncidentTime(req.IncidentTime)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		behavior = h.services.Analyzer.CheckDrivingBehavior(r.Context(), req.DriverID, incidentTime)
		evalReq.Telematics = behavior
		evalReq.IncidentTime = &incidentTime
	}

	evaluation := h.services.Fraud.EvaluateClaim(r.Context(), evalReq)

	h.writeJSON(w, http.StatusOK, EvaluateClaimResponse{
		Evaluation: evaluation,
		Telematics: behavior,
	})
}

func (h *Handler) handleRiskScore(w http.ResponseWriter, r *http.Request) {
	var req RiskScoreRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	driverID := h.services.Stores.ResolveDriverID(req.DriverID)
	series, err := h.services.Stores.LoadOrSynthesize(r.Context(), driverID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	metrics, err := h.services.Features.Derive(series)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	report, err := h.services.Risk.Score(r.Context(), metrics)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	summary, err := h.services.Stores.Summary(series)
	if err != nil {
		// The report stands on its own; a summary failure only drops context.
		h.logger.Warn("series summary unavailable", "driver_id", driverID, "error", err)
		summary = nil
	}

	h.writeJSON(w, http.StatusOK, RiskScoreResponse{
		DriverID: driverID,
		Report:   report,
		Summary:  summary,
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: h.version,
		Time:    time.Now().UTC(),
	})
}

func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		h.writeError(w, r, domainerrors.NewValidationError("MALFORMED_BODY",
			"request body is not valid JSON: "+err.Error()))
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			h.writeError(w, r, domainerrors.NewValidationError("INVALID_REQUEST", verrs.Error()))
			return false
		}
		h.writeError(w, r, err)
		return false
	}
	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := domainerrors.GetStatusCode(err)
	resp := ErrorResponse{
		Code:    "INTERNAL_ERROR",
		Message: "An internal error occurred",
	}

	var appErr *domainerrors.AppError
	if errors.As(err, &appErr) {
		resp.Code = appErr.Code
		resp.Message = appErr.Message
		resp.Details = appErr.Details
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"error", err)
	}

	h.writeJSON(w, status, resp)
}

func toHistoryEntries(in []HistoryEntryRequest) []claim.HistoryEntry {
	if len(in) == 0 {
		return nil
	}
	entries := make([]claim.HistoryEntry, 0, len(in))
	for _, e := range in {
		cost, err := values.NewMoneyFromFloat(e.Cost, values.USD)
		if err != nil {
			cost = values.Zero(values.USD)
		}
		entries = append(entries, claim.HistoryEntry{
			Date:         e.Date,
			DamagedParts: e.DamagedParts,
			Cost:         cost,
		})
	}
	return entries
}
