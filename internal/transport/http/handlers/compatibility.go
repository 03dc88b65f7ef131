package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/amora-app/backend/internal/domain/model"
	pgrepo "github.com/amora-app/backend/internal/repo/postgres"
	compatsvc "github.com/amora-app/backend/internal/services/compatibility"
	"github.com/amora-app/backend/internal/transport/http/dto"
)

type CompatibilityHandler struct {
	compatibility *compatsvc.Service
}

func NewCompatibilityHandler(compatibility *compatsvc.Service) *CompatibilityHandler {
	return &CompatibilityHandler{compatibility: compatibility}
}

func (h *CompatibilityHandler) Compute(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	targetID := chi.URLParam(r, "user_id")

	var score model.CompatibilityScore
	var err error
	if r.URL.Query().Get("cached") == "true" {
		score, err = h.compatibility.Cached(r.Context(), identity.UserID, targetID)
	} else {
		score, err = h.compatibility.Compute(r.Context(), identity.UserID, targetID)
	}
	if err != nil {
		switch {
		case errors.Is(err, compatsvc.ErrValidation):
			writeBadRequest(w, err.Error())
		case errors.Is(err, compatsvc.ErrForbidden):
			writeForbidden(w, "no qualifying interaction with this user")
		case errors.Is(err, pgrepo.ErrProfileNotFound):
			writeNotFound(w, "profile not found")
		case errors.Is(err, pgrepo.ErrScoreNotFound):
			writeNotFound(w, "pair has not been scored yet")
		default:
			writeInternal(w)
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.CompatibilityResponse{Score: score})
}
