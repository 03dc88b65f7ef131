package handlers

import (
	"errors"
	"net/http"

	discoverysvc "github.com/amora-app/backend/internal/services/discovery"
	"github.com/amora-app/backend/internal/transport/http/dto"
)

type DiscoveryHandler struct {
	discovery *discoverysvc.Service
}

func NewDiscoveryHandler(discovery *discoverysvc.Service) *DiscoveryHandler {
	return &DiscoveryHandler{discovery: discovery}
}

func (h *DiscoveryHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	candidates, err := h.discovery.ListCandidates(r.Context(), identity.UserID)
	if err != nil {
		switch {
		case errors.Is(err, discoverysvc.ErrNoCoordinates):
			writeBadRequest(w, "set your location before browsing")
		case errors.Is(err, discoverysvc.ErrValidation):
			writeBadRequest(w, err.Error())
		default:
			writeInternal(w)
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.DiscoveryResponse{Candidates: candidates})
}
