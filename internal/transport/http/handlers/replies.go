package handlers

import (
	"net/http"

	apierrors "github.com/the-dramaturgy/dramaturgy-service/internal/errors"
	"github.com/the-dramaturgy/dramaturgy-service/internal/service"
	"github.com/the-dramaturgy/dramaturgy-service/internal/transport/http/middleware"
)

type createReplyRequest struct {
	Content             string `json:"content"`
	IsExpertPerspective bool   `json:"is_expert_perspective"`
}

// CreateReply — POST /questions/{id}/replies.
func (h *Handlers) CreateReply(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	qid, err := pathUUID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var in createReplyRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	reply, err := h.svc.CreateReply(r.Context(), actor, service.CreateReplyInput{
		QuestionID:          qid,
		Content:             in.Content,
		IsExpertPerspective: in.IsExpertPerspective,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, replyResponse(reply))
}

// ListReplies — GET /questions/{id}/replies.
func (h *Handlers) ListReplies(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	qid, err := pathUUID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	limit, offset, err := pagination(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	rows, err := h.svc.RepliesByQuestion(r.Context(), actor, qid, limit, offset)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"replies": replyListResponse(rows)})
}

type updateReplyRequest struct {
	Content             *string `json:"content"`
	IsExpertPerspective *bool   `json:"is_expert_perspective"`
}

// UpdateReply — PATCH /replies/{id}.
func (h *Handlers) UpdateReply(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	id, err := pathUUID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var in updateReplyRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	reply, err := h.svc.UpdateReply(r.Context(), actor, id, service.UpdateReplyInput{
		Content:             in.Content,
		IsExpertPerspective: in.IsExpertPerspective,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, replyResponse(reply))
}

// DeleteReply — DELETE /replies/{id}.
func (h *Handlers) DeleteReply(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	id, err := pathUUID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if err := h.svc.DeleteReply(r.Context(), actor, id); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
