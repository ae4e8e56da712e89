package waitlist

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/waitlist/internal/cache"
	"github.com/magabrotheeeer/waitlist/internal/config"
	"github.com/magabrotheeeer/waitlist/internal/http/handlers/waitlist/stats"
	"github.com/magabrotheeeer/waitlist/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/waitlist/internal/lib/sl"
	"github.com/magabrotheeeer/waitlist/internal/metrics"
	services "github.com/magabrotheeeer/waitlist/internal/services/signup"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	cache  *cache.Cache
	conn   *amqp.Connection
	ch     *amqp.Channel
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	p, err := NewProvider(cfg.Provider)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		// не фатально: каждый запрос получит ConfigurationError
		logger.Error("provider is not configured", slog.String("provider", p.Name()), sl.Err(err))
	}

	app := &App{logger: logger}

	var statsStore services.Stats
	var statsService stats.Service
	if cfg.AddressRedis != "" {
		c, err := cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			return nil, err
		}
		app.cache = c
		statsStore, statsService = c, c
	}

	var publisher services.Publisher
	if cfg.RabbitMQURL != "" {
		conn, err := rabbitmq.Connect(ctx, logger, cfg.RabbitMQ)
		if err != nil {
			app.close()
			return nil, err
		}
		app.conn = conn
		ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetWaitlistQueues())
		if err != nil {
			app.close()
			return nil, err
		}
		app.ch = ch
		publisher = rabbitmq.NewPublisher(ch)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	signupService := services.NewSignupService(logger, p, statsStore, publisher, m)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, signupService, statsService, registry)

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return app, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if a.ch != nil {
		if err := a.ch.Close(); err != nil {
			a.logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			a.logger.Error("failed to close connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close redis", sl.Err(err))
		}
	}
}
