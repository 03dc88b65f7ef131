package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/amora-app/backend/internal/pkg/validate"
	matchessvc "github.com/amora-app/backend/internal/services/matches"
	swipesvc "github.com/amora-app/backend/internal/services/swipes"
	"github.com/amora-app/backend/internal/transport/http/dto"
)

type MatchesHandler struct {
	matches *matchessvc.Service
	swipes  *swipesvc.Service
}

func NewMatchesHandler(matches *matchessvc.Service, swipes *swipesvc.Service) *MatchesHandler {
	return &MatchesHandler{matches: matches, swipes: swipes}
}

func (h *MatchesHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	summaries, err := h.matches.List(r.Context(), identity.UserID, limit)
	if err != nil {
		if errors.Is(err, matchessvc.ErrValidation) {
			writeBadRequest(w, err.Error())
			return
		}
		writeInternal(w)
		return
	}

	writeJSON(w, http.StatusOK, dto.MatchListResponse{Matches: summaries})
}

// Status reports whether the caller is matched with the given user.
func (h *MatchesHandler) Status(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	targetID := chi.URLParam(r, "user_id")
	if !validate.Required(targetID) {
		writeBadRequest(w, "user_id is required")
		return
	}

	rec, matched, err := h.swipes.MatchStatus(r.Context(), identity.UserID, targetID)
	if err != nil {
		if errors.Is(err, swipesvc.ErrValidation) {
			writeBadRequest(w, err.Error())
			return
		}
		writeInternal(w)
		return
	}

	resp := dto.MatchStatusResponse{Matched: matched}
	if matched {
		resp.MatchID = rec.ID
		createdAt := rec.CreatedAt
		resp.MatchedAt = &createdAt
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *MatchesHandler) OpenConversation(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	var req dto.OpenConversationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	conv, err := h.matches.OpenConversation(r.Context(), identity.UserID, req.TargetID)
	if err != nil {
		switch {
		case errors.Is(err, matchessvc.ErrValidation):
			writeBadRequest(w, err.Error())
		case errors.Is(err, matchessvc.ErrNotMatched):
			writeForbidden(w, "users are not matched")
		default:
			writeInternal(w)
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.ConversationResponse{Conversation: conv})
}
