package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/aatumaykin/janitor/internal/logger"
)

// logLevel maps a slog level onto the discordgo level filter.
func logLevel(level slog.Level) int {
	switch {
	case level <= slog.LevelDebug:
		return discordgo.LogDebug
	case level <= slog.LevelInfo:
		return discordgo.LogInformational
	case level <= slog.LevelWarn:
		return discordgo.LogWarning
	default:
		return discordgo.LogError
	}
}

// bridge routes discordgo's internal log callback into log.
func bridge(log *logger.Logger) func(msgL, caller int, format string, a ...any) {
	return func(msgL, _ int, format string, a ...any) {
		level := slog.LevelDebug
		switch msgL {
		case discordgo.LogError:
			level = slog.LevelError
		case discordgo.LogWarning:
			level = slog.LevelWarn
		case discordgo.LogInformational:
			level = slog.LevelInfo
		}
		log.Log(context.Background(), level, fmt.Sprintf(format, a...), logger.Field{Key: "source", Value: "discordgo"})
	}
}

// InstallLogBridge replaces the package-level discordgo logger.
func InstallLogBridge(log *logger.Logger) {
	discordgo.Logger = bridge(log)
}
