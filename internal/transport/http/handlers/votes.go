package handlers

import (
	"net/http"

	"github.com/google/uuid"

	apierrors "github.com/the-dramaturgy/dramaturgy-service/internal/errors"
	"github.com/the-dramaturgy/dramaturgy-service/internal/models"
	"github.com/the-dramaturgy/dramaturgy-service/internal/service"
	"github.com/the-dramaturgy/dramaturgy-service/internal/transport/http/middleware"
)

type voteRequest struct {
	Target   string    `json:"target"`
	TargetID uuid.UUID `json:"target_id"`
	Type     string    `json:"type"`
}

// ToggleVote — POST /votes. Повторный идентичный голос снимает его,
// голос другого типа по той же цели — переключает.
func (h *Handlers) ToggleVote(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	var in voteRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	target, ok := models.ParseVoteTarget(in.Target)
	if !ok {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	voteType, ok := models.ParseVoteType(in.Type)
	if !ok {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	res, err := h.svc.ToggleVote(r.Context(), actor, service.VoteInput{
		Target:   target,
		TargetID: in.TargetID,
		Type:     voteType,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, voteResultResponse(res))
}
