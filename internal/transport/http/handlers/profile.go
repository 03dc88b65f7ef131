package handlers

import (
	"errors"
	"net/http"

	"github.com/amora-app/backend/internal/domain/model"
	pgrepo "github.com/amora-app/backend/internal/repo/postgres"
	profilesvc "github.com/amora-app/backend/internal/services/profiles"
	"github.com/amora-app/backend/internal/transport/http/dto"
)

type ProfileHandler struct {
	profiles *profilesvc.Service
}

func NewProfileHandler(profiles *profilesvc.Service) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

func (h *ProfileHandler) GetOwn(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	view, err := h.profiles.GetOwn(r.Context(), identity.UserID)
	if err != nil {
		switch {
		case errors.Is(err, profilesvc.ErrValidation):
			writeBadRequest(w, err.Error())
		case errors.Is(err, pgrepo.ErrProfileNotFound):
			writeNotFound(w, "profile not found")
		default:
			writeInternal(w)
		}
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func (h *ProfileHandler) UpsertPreferences(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	var req dto.PreferencesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	pref, err := h.profiles.UpsertPreferences(r.Context(), identity.UserID, model.Preference{
		AgeMin:           req.AgeMin,
		AgeMax:           req.AgeMax,
		MaxDistanceMiles: req.MaxDistanceMiles,
		InterestedIn:     req.InterestedIn,
	})
	if err != nil {
		if errors.Is(err, profilesvc.ErrValidation) {
			writeBadRequest(w, err.Error())
			return
		}
		writeInternal(w)
		return
	}

	writeJSON(w, http.StatusOK, dto.PreferencesResponse{Preference: pref})
}
