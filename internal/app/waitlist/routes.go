// Package waitlist собирает HTTP-приложение листа ожидания: провайдера,
// необязательные redis и RabbitMQ, маршруты и сервер.
package waitlist

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/magabrotheeeer/waitlist/docs"
	"github.com/magabrotheeeer/waitlist/internal/http/handlers/health"
	"github.com/magabrotheeeer/waitlist/internal/http/handlers/waitlist/signup"
	"github.com/magabrotheeeer/waitlist/internal/http/handlers/waitlist/stats"
	"github.com/magabrotheeeer/waitlist/internal/http/middlewarectx"
	services "github.com/magabrotheeeer/waitlist/internal/services/signup"
)

// RegisterRoutes регистрирует все маршруты приложения.
// statsService может быть nil: тогда /api/waitlist/stats не регистрируется.
func RegisterRoutes(r chi.Router, logger *slog.Logger, signupService *services.SignupService, statsService stats.Service, gatherer prometheus.Gatherer) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middlewarectx.Recoverer(logger),
	)

	// метод проверяет сам обработчик: OPTIONS и 405 входят в его контракт
	r.Handle("/api/signup", signup.New(logger, signupService))

	if statsService != nil {
		r.Get("/api/waitlist/stats", stats.New(logger, statsService).ServeHTTP)
	}

	r.Get("/health", health.New(logger, signupService).ServeHTTP)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
