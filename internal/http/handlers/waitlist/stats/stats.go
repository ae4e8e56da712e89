// Package stats реализует HTTP-обработчик GET /api/waitlist/stats:
// количество принятых заявок по тарифам.
package stats

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/waitlist/internal/http/response"
	"github.com/magabrotheeeer/waitlist/internal/lib/sl"
	"github.com/magabrotheeeer/waitlist/internal/models"
)

// Service источник счётчиков.
type Service interface {
	PlanCounts(ctx context.Context) (map[models.Plan]int64, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// Response счётчики по тарифам и общий итог.
type Response struct {
	Success bool                  `json:"success" example:"true"`
	Message string                `json:"message" example:"ok"`
	Plans   map[models.Plan]int64 `json:"plans"`
	Total   int64                 `json:"total" example:"42"`
}

// ServeHTTP godoc
// @Summary Статистика листа ожидания
// @Description Количество принятых (не повторных) заявок по тарифам.
// @Tags Waitlist
// @Produce  json
// @Success 200 {object} stats.Response
// @Failure 500 {object} response.ErrorResponse "ServerError"
// @Router /api/waitlist/stats [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.waitlist.stats"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	counts, err := h.service.PlanCounts(r.Context())
	if err != nil {
		log.Error("failed to read waitlist stats", sl.Err(err))
		response.Fail(w, r, http.StatusInternalServerError, response.KindServerError, response.MsgServerError)
		return
	}

	var total int64
	for _, n := range counts {
		total += n
	}

	response.OK(w, r, Response{
		Success: true,
		Message: "ok",
		Plans:   counts,
		Total:   total,
	})
}
