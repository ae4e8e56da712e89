// Package sl содержит вспомогательные функции для работы с логгером slog.
// Основная цель: упростить формирование структурированных полей лога
// и не допустить попадания в лог полного email адреса.
package sl

import (
	"log/slog"

	"github.com/magabrotheeeer/waitlist/internal/lib/mask"
)

// Err возвращает slog.Attr с ключом "error" и значением текста ошибки.
//
// Пример:
//
//	log.Error("failed to do something", sl.Err(err))
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// Email возвращает slog.Attr с ключом "email" и замаскированным адресом.
func Email(addr string) slog.Attr {
	return slog.String("email", mask.Email(addr))
}
