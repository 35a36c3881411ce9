package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/sovaehr/authapi/internal/apperror"
	"github.com/sovaehr/authapi/internal/config"
	"github.com/sovaehr/authapi/internal/logger"
	"github.com/sovaehr/authapi/internal/middleware"
	"github.com/sovaehr/authapi/internal/service"
)

// errMissingGuard is surfaced (as an internal error) when a guarded handler
// runs without the auth middleware having populated the context.
var errMissingGuard = errors.New("authenticated user missing from request context")

type Handler struct {
	auth     service.AuthService
	cfg      *config.Config
	validate *validator.Validate
}

func New(auth service.AuthService, cfg *config.Config) *Handler {
	return &Handler{
		auth:     auth,
		cfg:      cfg,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// decodeValidate parses the JSON body into dst and checks the validate tags.
// Failures surface as invalid_input so no network call is ever attempted on
// a malformed request.
func (h *Handler) decodeValidate(r io.ReadCloser, dst any) error {
	if err := json.NewDecoder(r).Decode(dst); err != nil {
		return apperror.InvalidInput("body is not valid JSON")
	}
	if err := h.validate.Struct(dst); err != nil {
		return apperror.InvalidInput("required fields missing")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	apperror.WriteError(r.Context(), w, err, middleware.GetRequestID(r.Context()))
}
