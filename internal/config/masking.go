package config

import (
	"strings"
)

// maskSecret маскирует секрет, оставляя только первые 4 и последние 4 символа
func maskSecret(secret string) string {
	if secret == "" {
		return ""
	}

	if len(secret) < 8 {
		return "***"
	}

	return secret[:4] + strings.Repeat("*", len(secret)-8) + secret[len(secret)-4:]
}

// maskDiscordToken keeps the first segment (the base64 bot id) readable for
// diagnostics and masks the rest.
func maskDiscordToken(token string) string {
	id, rest, ok := strings.Cut(token, ".")
	if !ok {
		return maskSecret(token)
	}
	return id + "." + maskSecret(rest)
}

// formatValidationError форматирует ошибку валидации с маскированным секретом
func formatValidationError(field, message string, secret string) error {
	errorMsg := field + ": " + message
	if masked := maskDiscordToken(secret); masked != "" {
		errorMsg += " (value: " + masked + ")"
	}

	return &ValidationError{Field: field, Message: errorMsg}
}

// ValidationError представляет ошибку валидации с дополнительной информацией
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
