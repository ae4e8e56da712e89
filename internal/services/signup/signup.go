// Package services содержит логику приёма заявки в лист ожидания:
// проверку настроек провайдера, один вызов провайдера и разбор его ответа.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/waitlist/internal/lib/mask"
	"github.com/magabrotheeeer/waitlist/internal/lib/sl"
	"github.com/magabrotheeeer/waitlist/internal/metrics"
	"github.com/magabrotheeeer/waitlist/internal/models"
	"github.com/magabrotheeeer/waitlist/internal/provider"
)

// ErrUpstream провайдер отказал по причине, отличной от дубликата.
var ErrUpstream = errors.New("provider rejected signup")

// Stats счётчики принятых заявок.
type Stats interface {
	IncrPlan(ctx context.Context, plan models.Plan) error
}

// Publisher публикует событие о новой заявке.
type Publisher interface {
	PublishSignup(ctx context.Context, event models.SignupEvent) error
}

// Outcome результат успешной обработки заявки.
// Duplicate=true: адрес уже был у провайдера, для клиента это тоже успех.
type Outcome struct {
	Identifier string
	Duplicate  bool
}

// SignupService принимает заявки и передаёт их провайдеру.
// stats и publisher необязательны и могут быть nil.
type SignupService struct {
	provider  provider.Provider
	stats     Stats
	publisher Publisher
	metrics   *metrics.Metrics
	log       *slog.Logger
	now       func() time.Time
}

// NewSignupService создает новый экземпляр SignupService.
func NewSignupService(log *slog.Logger, p provider.Provider, stats Stats, publisher Publisher, m *metrics.Metrics) *SignupService {
	return &SignupService{
		provider:  p,
		stats:     stats,
		publisher: publisher,
		metrics:   m,
		log:       log,
		now:       time.Now,
	}
}

// ProviderName имя текущего провайдера.
func (s *SignupService) ProviderName() string {
	return s.provider.Name()
}

// ProviderConfigured сообщает о готовности провайдера без записи в лог.
func (s *SignupService) ProviderConfigured() bool {
	return s.provider.Validate() == nil
}

// CheckConfig проверяет, что у провайдера есть учётные данные.
// Ошибка означает дефект развёртывания и пишется в лог с уровнем error.
func (s *SignupService) CheckConfig() error {
	const op = "services.signup.CheckConfig"

	if err := s.provider.Validate(); err != nil {
		s.log.Error("missing provider configuration",
			slog.String("op", op),
			slog.String("provider", s.provider.Name()),
			sl.Err(err),
		)
		s.metrics.Signup(s.provider.Name(), metrics.OutcomeConfigError)
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Signup отправляет проверенную заявку провайдеру ровно одним запросом.
//
// Возвращает provider.ErrNotConfigured (обёрнутую), если провайдер не настроен,
// ErrUpstream при отказе провайдера и любую другую ошибку при сбое транспорта.
func (s *SignupService) Signup(ctx context.Context, req models.SignupRequest) (Outcome, error) {
	const op = "services.signup.Signup"
	name := s.provider.Name()

	log := s.log.With(
		slog.String("op", op),
		slog.String("provider", name),
		sl.Email(req.Email),
		slog.String("plan", req.Plan),
	)

	if err := s.CheckConfig(); err != nil {
		return Outcome{}, err
	}

	signup := models.Signup{
		Email:       req.Email,
		Plan:        models.Plan(req.Plan),
		SubmittedAt: s.now(),
		Source:      models.Source,
	}

	start := time.Now()
	res, err := s.provider.Submit(ctx, signup)
	s.metrics.ProviderCall(name, time.Since(start))
	if err != nil {
		// текст ошибки может цитировать адрес
		err = mask.Err(err, req.Email)
		log.Error("provider call failed", sl.Err(err))
		s.metrics.Signup(name, metrics.OutcomeServerError)
		return Outcome{}, fmt.Errorf("%s: %w", op, err)
	}

	if !res.OK {
		// провайдеры повторяют адрес в тексте ошибки ("... is already a list member")
		rawErr := mask.Redact(res.RawError, req.Email)
		if res.Duplicate {
			log.Info("duplicate signup accepted", slog.String("provider_error", rawErr))
			s.metrics.Signup(name, metrics.OutcomeDuplicate)
			return Outcome{Duplicate: true}, nil
		}
		log.Error("provider rejected signup", slog.String("provider_error", rawErr))
		s.metrics.Signup(name, metrics.OutcomeUpstreamError)
		return Outcome{}, fmt.Errorf("%s: %w: %s", op, ErrUpstream, rawErr)
	}

	log.Info("successful signup",
		slog.String("timestamp", signup.SubmittedAt.UTC().Format(time.RFC3339)),
		slog.String("record_id", res.Identifier),
	)
	s.metrics.Signup(name, metrics.OutcomeSuccess)

	s.afterSignup(ctx, log, signup, res.Identifier)

	return Outcome{Identifier: res.Identifier}, nil
}

// afterSignup обновляет статистику и публикует событие. Ошибки только логируются:
// заявка уже принята провайдером.
func (s *SignupService) afterSignup(ctx context.Context, log *slog.Logger, signup models.Signup, identifier string) {
	if s.stats != nil {
		if err := s.stats.IncrPlan(ctx, signup.Plan); err != nil {
			log.Warn("failed to update waitlist stats", sl.Err(err))
		}
	}

	if s.publisher != nil {
		event := models.SignupEvent{
			ID:         uuid.NewString(),
			Email:      signup.Email,
			Plan:       signup.Plan,
			Provider:   s.provider.Name(),
			Identifier: identifier,
			Source:     signup.Source,
			CreatedAt:  signup.SubmittedAt.UTC(),
		}
		if err := s.publisher.PublishSignup(ctx, event); err != nil {
			log.Warn("failed to publish signup event", sl.Err(err))
		}
	}
}
