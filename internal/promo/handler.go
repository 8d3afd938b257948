// AngelaMos | 2026
// handler.go

package promo

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/ascend-api/internal/core"
	"github.com/carterperez-dev/ascend-api/internal/middleware"
)

type Handler struct {
	engine    *Engine
	validator *validator.Validate
}

func NewHandler(engine *Engine) *Handler {
	return &Handler{
		engine:    engine,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterRoutes mounts /promo/redeem behind authenticator. limiter may be
// nil.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	limiter func(http.Handler) http.Handler,
) {
	r.Route("/promo", func(r chi.Router) {
		r.Use(authenticator)
		if limiter != nil {
			r.Use(limiter)
		}

		r.Post("/redeem", h.Redeem)
	})
}

func (h *Handler) Redeem(w http.ResponseWriter, r *http.Request) {
	subjectID := middleware.GetSubjectID(r.Context())

	var req RedeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.RequestBodyError(w, err)
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	result, err := h.engine.Redeem(r.Context(), subjectID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "user")
		case errors.Is(err, ErrInvalidCatalogEntry):
			slog.Error("promo catalog entry unusable",
				"code", req.Code,
				"error", err,
			)
			core.JSONError(w, core.NewAppError(
				err,
				"Invalid promo code type",
				http.StatusInternalServerError,
				"INVALID_CATALOG_ENTRY",
			))
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, result)
}
