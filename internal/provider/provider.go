// Package provider описывает внешний сервис, в котором хранятся заявки листа ожидания.
//
// Все провайдеры реализуют один интерфейс Provider; конкретная реализация
// выбирается конфигурацией (см. New).
package provider

import (
	"context"
	"errors"

	"github.com/magabrotheeeer/waitlist/internal/models"
)

// ErrNotConfigured возвращается Validate, если не заданы учётные данные провайдера.
var ErrNotConfigured = errors.New("provider is not configured")

// Result итог одного обращения к провайдеру.
//
// OK=false без Duplicate означает отказ провайдера; RawError содержит его текст
// для логов и никогда не отдаётся клиенту.
type Result struct {
	OK         bool
	Duplicate  bool
	Identifier string
	RawError   string
}

// Provider создаёт запись о заявке во внешнем сервисе.
type Provider interface {
	// Name короткое имя провайдера для логов и метрик.
	Name() string
	// Validate проверяет, что провайдер настроен. Не делает сетевых вызовов.
	Validate() error
	// Submit делает ровно один запрос к провайдеру. Ошибка возвращается
	// только если запрос не удалось отправить или разобрать ответ.
	Submit(ctx context.Context, signup models.Signup) (Result, error)
}
