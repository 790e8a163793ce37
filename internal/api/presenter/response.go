package presenter

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/SolidLabResearch/user-managed-access-sub001/internal/core"
)

type ErrorResponse struct {
	Error         string `json:"error"`
	CorrelationID string `json:"correlation_id"`
}

func JSON(w http.ResponseWriter, r *http.Request, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("failed to write json response")
	}
}

func Error(w http.ResponseWriter, r *http.Request, msg string, status int) {
	correlationID, _ := r.Context().Value("correlation_id").(string)
	resp := ErrorResponse{
		Error:         msg,
		CorrelationID: correlationID,
	}
	JSON(w, r, resp, status)
}

// Err maps the negotiation error taxonomy onto HTTP statuses. Anything not
// in the taxonomy is a collaborator failure and stays a 500.
func Err(w http.ResponseWriter, r *http.Request, err error, short string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrBadRequest),
		errors.Is(err, core.ErrInvalidToken),
		errors.Is(err, core.ErrTicketNotFound):
		status = http.StatusBadRequest
	case errors.Is(err, core.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, core.ErrForbidden),
		errors.Is(err, core.ErrRequestDenied):
		status = http.StatusForbidden
	}
	Error(w, r, short+": "+err.Error(), status)
}
