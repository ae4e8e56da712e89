// Package services содержит рассыльщика приветственных писем: он получает
// событие о новой заявке из очереди и отправляет письмо через SMTP.
package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/magabrotheeeer/waitlist/internal/config"
	"github.com/magabrotheeeer/waitlist/internal/lib/mask"
	"github.com/magabrotheeeer/waitlist/internal/lib/sl"
	"github.com/magabrotheeeer/waitlist/internal/models"
)

// Dialer отправляет готовые письма. Реализуется *gomail.Dialer.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type SenderService struct {
	dialer Dialer
	from   string
	log    *slog.Logger
}

// NewSenderService создает SenderService с SMTP-транспортом из конфига.
func NewSenderService(cfg config.SMTP, log *slog.Logger) *SenderService {
	from := cfg.SMTPFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	return NewSenderServiceWithDialer(from, gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass), log)
}

// NewSenderServiceWithDialer создает SenderService с произвольным транспортом.
func NewSenderServiceWithDialer(from string, dialer Dialer, log *slog.Logger) *SenderService {
	return &SenderService{
		dialer: dialer,
		from:   from,
		log:    log,
	}
}

// SendWelcome разбирает models.SignupEvent и отправляет приветственное письмо.
// Битое сообщение возвращает ошибку: потребитель повторит его один раз и отбросит.
func (s *SenderService) SendWelcome(body []byte) error {
	const op = "services.sender.SendWelcome"

	var event models.SignupEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal message body", slog.String("op", op), sl.Err(err))
		return fmt.Errorf("%s: error unmarshalling message: %w", op, err)
	}
	if event.Email == "" {
		return fmt.Errorf("%s: %w", op, errors.New("event without email"))
	}

	log := s.log.With(
		slog.String("op", op),
		slog.String("event_id", event.ID),
		sl.Email(event.Email),
		slog.String("plan", string(event.Plan)),
	)

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", event.Email)
	m.SetHeader("Subject", "You're on the PulseCheck waitlist")
	m.SetBody("text/plain", welcomeText(event.Plan))

	if err := s.dialer.DialAndSend(m); err != nil {
		// SMTP-ответы цитируют получателя: "550 5.1.1 <addr>: Recipient address rejected"
		err = mask.Err(err, event.Email)
		log.Error("failed to send welcome email", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("welcome email sent")
	return nil
}

func welcomeText(plan models.Plan) string {
	name := string(plan)
	if name != "" {
		name = strings.ToUpper(name[:1]) + name[1:]
	}
	return fmt.Sprintf(`Hi there,

Thanks for joining the PulseCheck waitlist! You picked the %s plan.
We'll email you as soon as your spot opens up.

The PulseCheck team
`, name)
}
