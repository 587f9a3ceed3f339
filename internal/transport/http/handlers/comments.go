package handlers

import (
	"net/http"

	"github.com/google/uuid"

	apierrors "github.com/the-dramaturgy/dramaturgy-service/internal/errors"
	"github.com/the-dramaturgy/dramaturgy-service/internal/service"
	"github.com/the-dramaturgy/dramaturgy-service/internal/transport/http/middleware"
)

type createCommentRequest struct {
	ParentCommentID *uuid.UUID `json:"parent_comment_id"`
	Content         string     `json:"content"`
}

// CreateComment — POST /replies/{id}/comments.
func (h *Handlers) CreateComment(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	replyID, err := pathUUID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var in createCommentRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	comment, err := h.svc.CreateComment(r.Context(), actor, service.CreateCommentInput{
		ReplyID:         replyID,
		ParentCommentID: in.ParentCommentID,
		Content:         in.Content,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, commentResponse(comment))
}

// ListComments — GET /replies/{id}/comments.
func (h *Handlers) ListComments(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	replyID, err := pathUUID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	limit, offset, err := pagination(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	rows, err := h.svc.CommentsByReply(r.Context(), actor, replyID, limit, offset)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"comments": commentListResponse(rows)})
}

type updateCommentRequest struct {
	Content string `json:"content"`
}

// UpdateComment — PATCH /comments/{id}.
func (h *Handlers) UpdateComment(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	id, err := pathUUID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var in updateCommentRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	comment, err := h.svc.UpdateComment(r.Context(), actor, id, in.Content)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, commentResponse(comment))
}

// DeleteComment — DELETE /comments/{id}.
func (h *Handlers) DeleteComment(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	id, err := pathUUID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if err := h.svc.DeleteComment(r.Context(), actor, id); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
