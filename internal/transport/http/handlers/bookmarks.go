package handlers

import (
	"net/http"

	apierrors "github.com/the-dramaturgy/dramaturgy-service/internal/errors"
	"github.com/the-dramaturgy/dramaturgy-service/internal/transport/http/middleware"
)

// AddBookmark — PUT /questions/{id}/bookmark.
func (h *Handlers) AddBookmark(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	qid, err := pathUUID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	b, err := h.svc.AddBookmark(r.Context(), actor, qid)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, bookmarkResponse(b))
}

// RemoveBookmark — DELETE /questions/{id}/bookmark.
func (h *Handlers) RemoveBookmark(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	qid, err := pathUUID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if err := h.svc.RemoveBookmark(r.Context(), actor, qid); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListBookmarks — GET /bookmarks.
func (h *Handlers) ListBookmarks(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	limit, offset, err := pagination(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	rows, err := h.svc.Bookmarks(r.Context(), actor, limit, offset)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"bookmarks": bookmarkListResponse(rows)})
}
