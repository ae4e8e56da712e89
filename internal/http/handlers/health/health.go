package health

import (
	"log/slog"
	"net/http"

	"github.com/magabrotheeeer/waitlist/internal/http/response"
)

// Service сообщает имя провайдера и готовность его настроек.
type Service interface {
	ProviderName() string
	ProviderConfigured() bool
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

// Response ответ проверки живости. Ненастроенный провайдер не делает сервис мёртвым,
// поэтому статус всегда 200.
type Response struct {
	Status             string `json:"status" example:"ok"`
	Provider           string `json:"provider" example:"airtable"`
	ProviderConfigured bool   `json:"provider_configured" example:"true"`
}

// ServeHTTP godoc
// @Summary Проверка живости
// @Tags Health
// @Produce  json
// @Success 200 {object} health.Response
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	response.OK(w, r, Response{
		Status:             "ok",
		Provider:           h.service.ProviderName(),
		ProviderConfigured: h.service.ProviderConfigured(),
	})
}
