package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/the-dramaturgy/dramaturgy-service/internal/errors"
	"github.com/the-dramaturgy/dramaturgy-service/internal/models"
	"github.com/the-dramaturgy/dramaturgy-service/internal/service"
	"github.com/the-dramaturgy/dramaturgy-service/internal/transport/http/middleware"
)

// GetProfile — GET /users/{username}.
func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	username := chi.URLParam(r, "username")

	user, err := h.svc.ProfileByUsername(r.Context(), actor, username)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	includeEmail := actor.ID == user.ID || actor.Role.IsStaff()
	writeJSON(w, http.StatusOK, userResponse(user, includeEmail))
}

// Me — GET /users/me: собственный профиль актора.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	if actor.IsAnonymous() {
		apierrors.WriteError(w, r, service.ErrUnauthenticated)
		return
	}

	user, err := h.svc.ProfileByUsername(r.Context(), actor, actor.Username)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, userResponse(user, true))
}

type updateProfileRequest struct {
	Username   *string `json:"username"`
	Visibility *string `json:"visibility"`
	Bio        *string `json:"bio"`
}

// UpdateProfile — PATCH /users/me.
func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	var in updateProfileRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	input := service.UpdateProfileInput{
		Username: in.Username,
		Bio:      in.Bio,
	}

	if in.Visibility != nil {
		v, ok := models.ParseVisibility(*in.Visibility)
		if !ok {
			apierrors.WriteError(w, r, errInvalidArgument())
			return
		}
		input.Visibility = &v
	}

	user, err := h.svc.UpdateProfile(r.Context(), actor, input)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, userResponse(user, true))
}
