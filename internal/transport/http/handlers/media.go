package handlers

import (
	"errors"
	"net/http"

	mediasvc "github.com/amora-app/backend/internal/services/media"
	"github.com/amora-app/backend/internal/transport/http/dto"
)

type MediaHandler struct {
	media *mediasvc.Service
}

func NewMediaHandler(media *mediasvc.Service) *MediaHandler {
	return &MediaHandler{media: media}
}

// PhotoURL issues a short-lived signed URL for a stored photo key.
func (h *MediaHandler) PhotoURL(w http.ResponseWriter, r *http.Request) {
	if _, ok := identityFrom(w, r); !ok {
		return
	}

	url, err := h.media.SignedPhotoURL(r.Context(), r.URL.Query().Get("key"))
	if err != nil {
		if errors.Is(err, mediasvc.ErrValidation) {
			writeBadRequest(w, "key is required")
			return
		}
		writeInternal(w)
		return
	}

	writeJSON(w, http.StatusOK, dto.PhotoURLResponse{URL: url})
}
