package waitlist

import (
	"fmt"
	"net/http"

	"github.com/magabrotheeeer/waitlist/internal/config"
	"github.com/magabrotheeeer/waitlist/internal/provider"
	"github.com/magabrotheeeer/waitlist/internal/provider/airtable"
	"github.com/magabrotheeeer/waitlist/internal/provider/mailchimp"
)

const (
	KindAirtable  = "airtable"
	KindMailchimp = "mailchimp"
)

// NewProvider создаёт провайдера по cfg.Kind. Пустые учётные данные допустимы:
// они обнаружатся на первом же запросе как ConfigurationError.
func NewProvider(cfg config.Provider) (provider.Provider, error) {
	const op = "waitlist.NewProvider"

	httpClient := &http.Client{Timeout: cfg.Timeout}

	switch cfg.Kind {
	case KindAirtable, "":
		return airtable.NewClient(cfg.Airtable, httpClient), nil
	case KindMailchimp:
		return mailchimp.NewClient(cfg.Mailchimp, httpClient), nil
	default:
		return nil, fmt.Errorf("%s: unknown provider kind %q", op, cfg.Kind)
	}
}
