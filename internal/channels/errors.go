// Package channels holds what the chat-platform adapters share.
package channels

import (
	"fmt"
	"net/http"
	"time"

	"github.com/aatumaykin/janitor/internal/logger"
)

// ErrorDetails - универсальный интерфейс для детализации ошибок платформы.
// Retry logic inspects it with errors.As.
type ErrorDetails interface {
	Error() string

	// IsRetryable указывает, можно ли повторить запрос
	IsRetryable() bool

	// RetryAfter возвращает задержку перед повтором; 0 означает "по умолчанию"
	RetryAfter() time.Duration

	// LogFields возвращает поля для структурированного логирования
	LogFields() []logger.Field
}

// RESTErrorDetails - детализация ошибки Discord REST API
type RESTErrorDetails struct {
	Operation  string        // Вызванная операция, например "bulk_delete"
	StatusCode int           // HTTP статус (400, 403, 429, 5xx)
	Code       int           // JSON код ошибки Discord (10008 = unknown message)
	Message    string        // Описание ошибки от Discord
	Retry      time.Duration // Retry-After при rate limit
	ChannelID  string
	Err        error // Исходная ошибка
}

func (d *RESTErrorDetails) Error() string {
	if d.Message != "" {
		return fmt.Sprintf("%s: HTTP %d (code %d): %s", d.Operation, d.StatusCode, d.Code, d.Message)
	}
	return fmt.Sprintf("%s: HTTP %d: %v", d.Operation, d.StatusCode, d.Err)
}

func (d *RESTErrorDetails) Unwrap() error {
	return d.Err
}

// IsRetryable: rate limiting (429) и ошибки сервера можно повторить
func (d *RESTErrorDetails) IsRetryable() bool {
	return d.StatusCode == http.StatusTooManyRequests || (d.StatusCode >= 500 && d.StatusCode < 600)
}

func (d *RESTErrorDetails) RetryAfter() time.Duration {
	if d.Retry > 0 {
		return d.Retry
	}
	if d.StatusCode >= 500 && d.StatusCode < 600 {
		return 2 * time.Second
	}
	return 0
}

func (d *RESTErrorDetails) LogFields() []logger.Field {
	return []logger.Field{
		{Key: "operation", Value: d.Operation},
		{Key: "status_code", Value: d.StatusCode},
		{Key: "discord_code", Value: d.Code},
		{Key: "retry_after", Value: d.Retry.String()},
		{Key: "channel_id", Value: d.ChannelID},
	}
}
