package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/naturewatch/aoi-engine/pkg/apperrors"
	"github.com/naturewatch/aoi-engine/pkg/auth"
	"github.com/naturewatch/aoi-engine/pkg/services"
)

// ResolveHandler exposes the AOI resolution engine over HTTP.
type ResolveHandler struct {
	resolver services.Resolver
	verifier *auth.Verifier
	logger   *zap.Logger
}

// NewResolveHandler creates a new ResolveHandler.
func NewResolveHandler(resolver services.Resolver, verifier *auth.Verifier, logger *zap.Logger) *ResolveHandler {
	return &ResolveHandler{
		resolver: resolver,
		verifier: verifier,
		logger:   logger.Named("resolve-handler"),
	}
}

// RegisterRoutes registers the resolve handler's routes on the given mux.
func (h *ResolveHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/resolve", h.Resolve)
}

// Resolve handles POST /api/resolve requests. The response is either an
// AOISelection or a ClarificationRequest; both are 200s, since a
// clarification is a normal conversational outcome, not a failure.
func (h *ResolveHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		_ = ErrorResponse(w, http.StatusMethodNotAllowed, "method_not_allowed", "use POST")
		return
	}

	var req services.ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "request body is not valid JSON")
		return
	}
	if len(req.Places) == 0 {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "at least one place is required")
		return
	}

	principal, err := h.verifier.PrincipalFromRequest(r)
	if err != nil {
		_ = ErrorResponse(w, http.StatusUnauthorized, "invalid_token", err.Error())
		return
	}
	if principal != nil {
		req.Principal = principal.Subject
	}

	resolution, err := h.resolver.Resolve(r.Context(), req)
	if err != nil {
		h.writeResolveError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, resolution); err != nil {
		h.logger.Error("Failed to encode resolution", zap.Error(err))
	}
}

func (h *ResolveHandler) writeResolveError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrAuthorizationRequired):
		_ = ErrorResponse(w, http.StatusUnauthorized, "authorization_required", err.Error())
	case errors.Is(err, apperrors.ErrUnsupportedSubregion),
		errors.Is(err, apperrors.ErrInvalidIdentifier):
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, apperrors.ErrInvalidSelection):
		_ = ErrorResponse(w, http.StatusBadGateway, "invalid_selection", err.Error())
	case errors.Is(err, apperrors.ErrSourceUnavailable):
		_ = ErrorResponse(w, http.StatusServiceUnavailable, "source_unavailable", err.Error())
	default:
		h.logger.Error("resolution failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "failed to resolve area of interest")
	}
}
