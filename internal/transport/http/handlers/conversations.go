package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/amora-app/backend/internal/domain/enums"
	"github.com/amora-app/backend/internal/pkg/validate"
	pgrepo "github.com/amora-app/backend/internal/repo/postgres"
	closuresvc "github.com/amora-app/backend/internal/services/closure"
	healthsvc "github.com/amora-app/backend/internal/services/health"
	matchessvc "github.com/amora-app/backend/internal/services/matches"
	"github.com/amora-app/backend/internal/transport/http/dto"
)

type ConversationsHandler struct {
	health  *healthsvc.Service
	matches *matchessvc.Service
	closure *closuresvc.Service
}

func NewConversationsHandler(health *healthsvc.Service, matches *matchessvc.Service, closure *closuresvc.Service) *ConversationsHandler {
	return &ConversationsHandler{health: health, matches: matches, closure: closure}
}

func conversationIDFrom(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if !validate.Required(id) {
		writeBadRequest(w, "conversation id is required")
		return "", false
	}
	return id, true
}

// HealthState returns the caller's nudge and blocked queues.
func (h *ConversationsHandler) HealthState(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	state, err := h.health.GetState(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, healthsvc.ErrValidation) {
			writeBadRequest(w, err.Error())
			return
		}
		writeInternal(w)
		return
	}

	writeJSON(w, http.StatusOK, dto.HealthStateResponse{State: state})
}

func (h *ConversationsHandler) RecordMessage(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	conversationID, ok := conversationIDFrom(w, r)
	if !ok {
		return
	}

	var req dto.MessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	msg, err := h.matches.RecordMessage(r.Context(), identity.UserID, conversationID, req.Body)
	if err != nil {
		switch {
		case errors.Is(err, matchessvc.ErrValidation):
			writeBadRequest(w, err.Error())
		case errors.Is(err, matchessvc.ErrForbidden):
			writeForbidden(w, "not a conversation participant")
		case errors.Is(err, matchessvc.ErrConversationClosed):
			writeConflict(w, "conversation is closed")
		case errors.Is(err, pgrepo.ErrConversationNotFound):
			writeNotFound(w, "conversation not found")
		default:
			writeInternal(w)
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: msg})
}

func (h *ConversationsHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	conversationID, ok := conversationIDFrom(w, r)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	messages, err := h.matches.ListMessages(r.Context(), identity.UserID, conversationID, limit)
	if err != nil {
		switch {
		case errors.Is(err, matchessvc.ErrValidation):
			writeBadRequest(w, err.Error())
		case errors.Is(err, matchessvc.ErrForbidden):
			writeForbidden(w, "not a conversation participant")
		case errors.Is(err, pgrepo.ErrConversationNotFound):
			writeNotFound(w, "conversation not found")
		default:
			writeInternal(w)
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.MessageListResponse{Messages: messages})
}

func (h *ConversationsHandler) Snooze(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	conversationID, ok := conversationIDFrom(w, r)
	if !ok {
		return
	}

	until, err := h.health.Snooze(r.Context(), identity.UserID, conversationID)
	if err != nil {
		switch {
		case errors.Is(err, healthsvc.ErrValidation):
			writeBadRequest(w, err.Error())
		case errors.Is(err, healthsvc.ErrForbidden):
			writeForbidden(w, "not a conversation participant")
		case errors.Is(err, healthsvc.ErrNotActive):
			writeConflict(w, "conversation is not active")
		case errors.Is(err, pgrepo.ErrConversationNotFound):
			writeNotFound(w, "conversation not found")
		default:
			writeInternal(w)
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.SnoozeResponse{SnoozedUntil: until})
}

func (h *ConversationsHandler) Close(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	conversationID, ok := conversationIDFrom(w, r)
	if !ok {
		return
	}

	var req dto.CloseConversationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	result, err := h.closure.Close(r.Context(), identity.UserID, closuresvc.Request{
		ConversationID: conversationID,
		Resolution:     enums.ClosureResolution(req.Resolution),
		TemplateID:     req.TemplateID,
		Message:        req.Message,
	})
	if err != nil {
		switch {
		case errors.Is(err, closuresvc.ErrValidation):
			writeBadRequest(w, err.Error())
		case errors.Is(err, closuresvc.ErrForbidden):
			writeForbidden(w, "not a conversation participant")
		case errors.Is(err, closuresvc.ErrNotActive):
			writeConflict(w, "conversation is not active")
		case errors.Is(err, pgrepo.ErrConversationNotFound):
			writeNotFound(w, "conversation not found")
		default:
			writeInternal(w)
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.CloseConversationResponse{
		Status:           string(result.Status),
		Message:          result.Message,
		GracefulClosures: result.GracefulClosures,
	})
}

// Templates returns the immutable goodbye catalog.
func (h *ConversationsHandler) Templates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.closure.Templates(r.Context())
	if err != nil {
		writeInternal(w)
		return
	}
	writeJSON(w, http.StatusOK, dto.ClosureTemplatesResponse{Templates: templates})
}
