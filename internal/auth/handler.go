// AngelaMos | 2026
// handler.go

package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/ascend-api/internal/core"
	"github.com/carterperez-dev/ascend-api/internal/identity"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/google", h.Login)
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.RequestBodyError(w, err)
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.Login(r.Context(), req.RawToken())
	if err != nil {
		if errors.Is(err, identity.ErrInvalidIdentityToken) {
			core.JSONError(w, core.NewAppError(
				err,
				"Invalid identity token",
				http.StatusUnauthorized,
				"INVALID_IDENTITY_TOKEN",
			))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, resp)
}
