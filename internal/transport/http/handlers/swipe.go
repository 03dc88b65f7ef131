package handlers

import (
	"errors"
	"net/http"

	"github.com/amora-app/backend/internal/domain/enums"
	swipesvc "github.com/amora-app/backend/internal/services/swipes"
	"github.com/amora-app/backend/internal/transport/http/dto"
)

type SwipeHandler struct {
	swipes *swipesvc.Service
}

func NewSwipeHandler(swipes *swipesvc.Service) *SwipeHandler {
	return &SwipeHandler{swipes: swipes}
}

func (h *SwipeHandler) Record(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	var req dto.SwipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	result, err := h.swipes.Record(r.Context(), identity.UserID, req.TargetID, enums.SwipeDirection(req.Direction))
	if err != nil {
		switch {
		case errors.Is(err, swipesvc.ErrValidation), errors.Is(err, swipesvc.ErrUnsupportedAction):
			writeBadRequest(w, err.Error())
		default:
			writeInternal(w)
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.SwipeResponse{
		Direction:    string(result.Direction),
		MatchCreated: result.MatchCreated,
	})
}
