package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/altlend/decisioning/internal/application/dto"
	"github.com/altlend/decisioning/internal/application/usecase"
	"github.com/altlend/decisioning/internal/domain/service"
)

// DecisionHandler exposes the decision pipeline over HTTP.
type DecisionHandler struct {
	decide *usecase.DecideUseCase
	get    *usecase.GetDecisionUseCase
	list   *usecase.ListDecisionsUseCase
	logger *slog.Logger
}

// NewDecisionHandler creates the HTTP handler over the usecases.
func NewDecisionHandler(
	decide *usecase.DecideUseCase,
	get *usecase.GetDecisionUseCase,
	list *usecase.ListDecisionsUseCase,
	logger *slog.Logger,
) *DecisionHandler {
	return &DecisionHandler{
		decide: decide,
		get:    get,
		list:   list,
		logger: logger,
	}
}

// RegisterRoutes attaches decision routes to the given mux.
func (h *DecisionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/decisions", h.decideHandler)
	mux.HandleFunc("GET /api/v1/decisions/{id}", h.getHandler)
	mux.HandleFunc("GET /api/v1/borrowers/{id}/decisions", h.listHandler)
}

func (h *DecisionHandler) decideHandler(w http.ResponseWriter, r *http.Request) {
	var req dto.DecideRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.BorrowerID == "" {
		writeError(w, http.StatusBadRequest, "borrowerId is required")
		return
	}

	resp, err := h.decide.Execute(r.Context(), req)
	if err != nil {
		h.handleDecideError(w, r, req.BorrowerID, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// handleDecideError maps pipeline failures to HTTP statuses. Total
// credit-model failure and contract violations are dependency/deployment
// faults, so they surface as 503 and 500 rather than client errors.
func (h *DecisionHandler) handleDecideError(w http.ResponseWriter, r *http.Request, borrowerID string, err error) {
	var critical *service.CriticalModelFailure
	var compat *service.FeatureCompatibilityError

	switch {
	case errors.As(err, &critical):
		h.logger.ErrorContext(r.Context(), "all credit models failed",
			"borrower_id", borrowerID,
			"failed_models", critical.FailedModels,
		)
		writeError(w, http.StatusServiceUnavailable, "credit scoring is temporarily unavailable")
	case errors.As(err, &compat):
		h.logger.ErrorContext(r.Context(), "feature contract violation",
			"borrower_id", borrowerID,
			"consumer", compat.Consumer,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "decision pipeline misconfigured")
	default:
		h.logger.ErrorContext(r.Context(), "decision failed",
			"borrower_id", borrowerID,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "decision could not be completed")
	}
}

func (h *DecisionHandler) getHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "decision id is required")
		return
	}

	resp, err := h.get.Execute(r.Context(), dto.GetDecisionRequest{DecisionID: id})
	if err != nil {
		writeError(w, http.StatusNotFound, "decision not found")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *DecisionHandler) listHandler(w http.ResponseWriter, r *http.Request) {
	borrowerID := r.PathValue("id")
	if borrowerID == "" {
		writeError(w, http.StatusBadRequest, "borrower id is required")
		return
	}

	resps, err := h.list.Execute(r.Context(), dto.ListDecisionsRequest{BorrowerID: borrowerID})
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list decisions failed",
			"borrower_id", borrowerID,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "decisions could not be listed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"decisions": resps})
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
