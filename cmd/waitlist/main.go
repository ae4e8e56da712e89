// Package main Waitlist API
//
// @title           Waitlist API
// @version         1.0
// @description     Приём заявок в лист ожидания PulseCheck и пересылка их во внешний сервис (Airtable или Mailchimp)

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/waitlist/internal/app/waitlist"
	"github.com/magabrotheeeer/waitlist/internal/config"
	"github.com/magabrotheeeer/waitlist/internal/lib/logger"
	"github.com/magabrotheeeer/waitlist/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env, os.Stdout)

	log.Info("starting waitlist", slog.String("env", cfg.Env), slog.String("config", cfg.String()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := waitlist.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize app", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("app stopped with error", sl.Err(err))
		os.Exit(1)
	}

	log.Info("waitlist stopped gracefully")
}
