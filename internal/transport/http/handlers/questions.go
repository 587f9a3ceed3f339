package handlers

import (
	"net/http"

	"github.com/google/uuid"

	apierrors "github.com/the-dramaturgy/dramaturgy-service/internal/errors"
	"github.com/the-dramaturgy/dramaturgy-service/internal/models"
	"github.com/the-dramaturgy/dramaturgy-service/internal/service"
	"github.com/the-dramaturgy/dramaturgy-service/internal/transport/http/middleware"
)

type createQuestionRequest struct {
	Title         string `json:"title"`
	Content       string `json:"content"`
	IsPrivate     bool   `json:"is_private"`
	RequestExpert bool   `json:"request_expert"`
}

// CreateQuestion — POST /questions.
func (h *Handlers) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	var in createQuestionRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	q, err := h.svc.CreateQuestion(r.Context(), actor, service.CreateQuestionInput{
		Title:         in.Title,
		Content:       in.Content,
		IsPrivate:     in.IsPrivate,
		RequestExpert: in.RequestExpert,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, questionResponse(q))
}

// GetQuestion — GET /questions/{id}.
func (h *Handlers) GetQuestion(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	id, err := pathUUID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	q, err := h.svc.QuestionByID(r.Context(), actor, id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, questionResponse(q))
}

// ListQuestions — GET /questions?author_id=&status=&limit=&offset=.
func (h *Handlers) ListQuestions(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	limit, offset, err := pagination(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	in := service.ListQuestionsInput{Limit: limit, Offset: offset}

	if raw := r.URL.Query().Get("author_id"); raw != "" {
		id, perr := uuid.Parse(raw)
		if perr != nil {
			apierrors.WriteError(w, r, errInvalidArgument())
			return
		}
		in.AuthorID = &id
	}

	if raw := r.URL.Query().Get("status"); raw != "" {
		var status models.QuestionStatus
		switch raw {
		case "draft":
			status = models.StatusDraft
		case "published":
			status = models.StatusPublished
		case "hidden":
			status = models.StatusHidden
		default:
			apierrors.WriteError(w, r, errInvalidArgument())
			return
		}
		in.Status = &status
	}

	rows, err := h.svc.ListQuestions(r.Context(), actor, in)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"questions": questionListResponse(rows)})
}

type updateQuestionRequest struct {
	Title         *string `json:"title"`
	Content       *string `json:"content"`
	IsPrivate     *bool   `json:"is_private"`
	RequestExpert *bool   `json:"request_expert"`
}

// UpdateQuestion — PATCH /questions/{id}.
func (h *Handlers) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	id, err := pathUUID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var in updateQuestionRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	q, err := h.svc.UpdateQuestion(r.Context(), actor, id, service.UpdateQuestionInput{
		Title:         in.Title,
		Content:       in.Content,
		IsPrivate:     in.IsPrivate,
		RequestExpert: in.RequestExpert,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, questionResponse(q))
}

// DeleteQuestion — DELETE /questions/{id}.
func (h *Handlers) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	id, err := pathUUID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if err := h.svc.DeleteQuestion(r.Context(), actor, id); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HideQuestion — POST /questions/{id}/hide (модерация).
func (h *Handlers) HideQuestion(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	id, err := pathUUID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if err := h.svc.HideQuestion(r.Context(), actor, id); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type solveRequest struct {
	ReplyID uuid.UUID `json:"reply_id"`
}

// SolveQuestion — POST /questions/{id}/solve.
func (h *Handlers) SolveQuestion(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	id, err := pathUUID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var in solveRequest
	if err := decodeStrict(r, &in); err != nil || in.ReplyID == uuid.Nil {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	if err := h.svc.SolveQuestion(r.Context(), actor, id, in.ReplyID); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UnsolveQuestion — POST /questions/{id}/unsolve.
func (h *Handlers) UnsolveQuestion(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	id, err := pathUUID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if err := h.svc.UnsolveQuestion(r.Context(), actor, id); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ClaimQuestion — POST /questions/{id}/claim.
func (h *Handlers) ClaimQuestion(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	id, err := pathUUID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if err := h.svc.ClaimQuestion(r.Context(), actor, id); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UnclaimQuestion — POST /questions/{id}/unclaim.
func (h *Handlers) UnclaimQuestion(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	id, err := pathUUID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if err := h.svc.UnclaimQuestion(r.Context(), actor, id); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
