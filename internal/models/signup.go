// Package models содержит доменные структуры заявки в лист ожидания:
// входящий запрос, проверенную заявку для провайдера и событие о новой заявке.
package models

import (
	"regexp"
	"time"
)

// Source метка происхождения заявки, уходит провайдеру вместе с данными.
const Source = "Landing Page"

// Plan тариф, выбранный в форме.
type Plan string

const (
	PlanFree  Plan = "free"
	PlanIndie Plan = "indie"
	PlanTeam  Plan = "team"
)

// Plans возвращает все допустимые тарифы в порядке отображения.
func Plans() []Plan {
	return []Plan{PlanFree, PlanIndie, PlanTeam}
}

// IsValid сообщает, входит ли тариф в перечень.
func (p Plan) IsValid() bool {
	switch p {
	case PlanFree, PlanIndie, PlanTeam:
		return true
	}
	return false
}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail проверяет простой формат local@domain.tld.
func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// SignupRequest тело запроса POST /api/signup.
type SignupRequest struct {
	Email string `json:"email" validate:"required,signup_email" example:"jane@example.com"`
	Plan  string `json:"plan" validate:"required,signup_plan" example:"indie" enums:"free,indie,team"`
}

// Signup проверенная заявка, которую получает провайдер.
type Signup struct {
	Email       string
	Plan        Plan
	SubmittedAt time.Time
	Source      string
}

// SignupEvent публикуется в очередь после того, как провайдер принял новую заявку.
// Повторные заявки события не порождают.
type SignupEvent struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Plan       Plan      `json:"plan"`
	Provider   string    `json:"provider"`
	Identifier string    `json:"identifier"`
	Source     string    `json:"source"`
	CreatedAt  time.Time `json:"created_at"`
}
