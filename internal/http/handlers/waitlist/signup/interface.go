package signup

import (
	"context"

	"github.com/magabrotheeeer/waitlist/internal/models"
	services "github.com/magabrotheeeer/waitlist/internal/services/signup"
)

// Service описывает бизнес-логику приёма заявки.
type Service interface {
	CheckConfig() error
	Signup(ctx context.Context, req models.SignupRequest) (services.Outcome, error)
}
