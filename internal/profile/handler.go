// AngelaMos | 2026
// handler.go

package profile

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/ascend-api/internal/core"
	"github.com/carterperez-dev/ascend-api/internal/middleware"
)

type UpdateResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the profile endpoints under both /profile and the
// older /user prefix.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	for _, prefix := range []string{"/profile", "/user"} {
		r.Route(prefix, func(r chi.Router) {
			r.Use(authenticator)

			r.Post("/update", h.Update)
			r.Get("/{subjectID}", h.Get)
		})
	}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	requester := middleware.GetSubjectID(r.Context())
	subjectID := chi.URLParam(r, "subjectID")

	p, err := h.service.GetForSubject(r.Context(), requester, subjectID)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrForbidden):
			core.Forbidden(w, "Access denied")
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "user")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, p)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	subjectID := middleware.GetSubjectID(r.Context())

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.RequestBodyError(w, err)
		return
	}

	if err := h.service.Update(r.Context(), subjectID, req); err != nil {
		switch {
		case errors.Is(err, ErrNoFieldsProvided):
			core.BadRequest(w, "No update data provided")
		case errors.Is(err, core.ErrInvalidInput):
			core.BadRequest(w, err.Error())
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "user")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, UpdateResponse{
		Success: true,
		Message: "User updated successfully",
	})
}
