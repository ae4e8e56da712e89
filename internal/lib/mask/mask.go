// Package mask скрывает персональные данные перед записью в лог.
package mask

import (
	"regexp"
	"strings"
)

const visible = 3

// Email оставляет первые три символа локальной части и домен, остальное заменяет на "***".
//
//	john.doe@example.com -> joh***@example.com
//
// Короткая локальная часть сохраняется целиком, но маркер "***" всё равно ставится,
// поэтому результат никогда не совпадает с исходным адресом.
// Строка без "@" маскируется целиком после первых трёх символов.
func Email(addr string) string {
	at := strings.LastIndex(addr, "@")
	local, domain := addr, ""
	if at >= 0 {
		local, domain = addr[:at], addr[at:]
	}

	runes := []rune(local)
	if len(runes) > visible {
		runes = runes[:visible]
	}
	return string(runes) + "***" + domain
}

// Redact заменяет в text каждое вхождение addr (без учёта регистра) на Email(addr).
// Нужен для текста чужих ошибок: провайдеры и SMTP-серверы цитируют адрес получателя.
func Redact(text, addr string) string {
	if addr == "" || text == "" {
		return text
	}
	re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(addr))
	return re.ReplaceAllLiteralString(text, Email(addr))
}

type redactedError struct {
	err  error
	addr string
}

func (e redactedError) Error() string { return Redact(e.err.Error(), e.addr) }
func (e redactedError) Unwrap() error { return e.err }

// Err оборачивает err так, что его текст не содержит addr.
// errors.Is и errors.As продолжают видеть исходную ошибку.
func Err(err error, addr string) error {
	if err == nil || addr == "" {
		return err
	}
	return redactedError{err: err, addr: addr}
}
