// Package response содержит типы и функции для формирования унифицированных
// JSON‑ответов HTTP‑обработчиков листа ожидания.
//
// Успешный ответ всегда содержит success=true и message, ответ с ошибкой
// содержит короткий код error и message. Форма рассчитана на клиентскую форму записи,
// которая показывает пользователю поле message в обоих случаях.
package response

import (
	"net/http"

	"github.com/go-chi/render"
)

// Kind короткий код ошибки в поле error.
type Kind string

const (
	KindMethodNotAllowed   Kind = "MethodNotAllowed"
	KindMissingFields      Kind = "MissingFields"
	KindInvalidEmail       Kind = "InvalidEmail"
	KindInvalidPlan        Kind = "InvalidPlan"
	KindInvalidRequest     Kind = "InvalidRequest"
	KindConfigurationError Kind = "ConfigurationError"
	KindUpstreamError      Kind = "UpstreamError"
	KindServerError        Kind = "ServerError"
)

// Тексты сообщений для пользователя.
const (
	MsgSignedUp         = "Successfully joined the waitlist!"
	MsgDuplicate        = "Thanks! You're already on our list."
	MsgMethodNotAllowed = "Only POST requests are accepted"
	MsgMissingFields    = "Email and plan are required"
	MsgInvalidEmail     = "Please provide a valid email address"
	MsgInvalidPlan      = "Plan must be one of: free, indie, team"
	MsgInvalidRequest   = "Request body must be valid JSON"
	MsgConfiguration    = "Database service is not properly configured"
	MsgUpstream         = "Unable to process signup. Please try again."
	MsgServerError      = "An unexpected error occurred. Please try again."
)

// Success успешный ответ на заявку.
type Success struct {
	Success   bool   `json:"success" example:"true"`
	Message   string `json:"message" example:"Successfully joined the waitlist!"`
	Duplicate bool   `json:"duplicate,omitempty" example:"false"`
	RecordID  string `json:"recordId,omitempty" example:"recXXXXXXXXXXXXXX"`
}

// ErrorResponse ответ с ошибкой.
type ErrorResponse struct {
	Error   Kind   `json:"error" example:"InvalidEmail"`
	Message string `json:"message" example:"Please provide a valid email address"`
}

// SignedUp ответ на новую заявку.
func SignedUp(recordID string) Success {
	return Success{Success: true, Message: MsgSignedUp, RecordID: recordID}
}

// AlreadySignedUp ответ на повторную заявку.
func AlreadySignedUp() Success {
	return Success{Success: true, Message: MsgDuplicate, Duplicate: true}
}

// Error возвращает ErrorResponse с кодом и сообщением.
func Error(kind Kind, msg string) ErrorResponse {
	return ErrorResponse{Error: kind, Message: msg}
}

// Fail пишет ErrorResponse с указанным статусом.
func Fail(w http.ResponseWriter, r *http.Request, status int, kind Kind, msg string) {
	render.Status(r, status)
	render.JSON(w, r, Error(kind, msg))
}

// OK пишет успешный ответ со статусом 200.
func OK(w http.ResponseWriter, r *http.Request, body any) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, body)
}
