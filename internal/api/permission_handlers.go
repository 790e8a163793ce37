package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/SolidLabResearch/user-managed-access-sub001/internal/api/presenter"
	"github.com/SolidLabResearch/user-managed-access-sub001/internal/core"
)

// TicketResponse is the body of a successful permission registration.
type TicketResponse struct {
	Ticket string `json:"ticket"`
}

// handlePermissions registers requested permissions on behalf of a resource
// server and responds with a fresh ticket id. The body is either a single
// permission object or an array of them.
func (s *Server) handlePermissions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	if ct := r.Header.Get("Content-Type"); ct != "" && ct != "application/json" {
		presenter.Error(w, r, "unsupported content type", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to read permission request body")
		presenter.Error(w, r, "invalid request body", http.StatusBadRequest)
		return
	}

	perms, err := decodePermissions(body)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to decode permission request payload")
		presenter.Error(w, r, "invalid permission payload", http.StatusBadRequest)
		return
	}

	id, err := s.registrar.Register(ctx, perms)
	if err != nil {
		logger.Warn().Err(err).Msg("permission registration failed")
		presenter.Err(w, r, err, "permission registration failed")
		return
	}

	presenter.JSON(w, r, TicketResponse{Ticket: id}, http.StatusCreated)
}

func decodePermissions(body []byte) ([]core.Permission, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var perms []core.Permission
		if err := json.Unmarshal(trimmed, &perms); err != nil {
			return nil, err
		}
		return perms, nil
	}
	var perm core.Permission
	if err := json.Unmarshal(trimmed, &perm); err != nil {
		return nil, err
	}
	return []core.Permission{perm}, nil
}
