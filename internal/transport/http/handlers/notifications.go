package handlers

import (
	"net/http"

	apierrors "github.com/the-dramaturgy/dramaturgy-service/internal/errors"
	"github.com/the-dramaturgy/dramaturgy-service/internal/transport/http/middleware"
)

// ListNotifications — GET /notifications.
func (h *Handlers) ListNotifications(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	limit, offset, err := pagination(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	rows, err := h.svc.Notifications(r.Context(), actor, limit, offset)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"notifications": notificationListResponse(rows)})
}

// MarkNotificationRead — POST /notifications/{id}/read.
func (h *Handlers) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	id, err := pathUUID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if err := h.svc.MarkNotificationRead(r.Context(), actor, id); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MarkAllNotificationsRead — POST /notifications/read-all.
func (h *Handlers) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	if err := h.svc.MarkAllNotificationsRead(r.Context(), actor); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
