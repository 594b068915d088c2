package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNoToken is returned when neither the environment, the config file nor
// the token file provide a bot token.
var ErrNoToken = errors.New("no bot token configured")

// ResolveToken returns the bot token. BOT_TOKEN and discord.token are already
// merged into c.Discord.Token by Load; the token file is the last resort.
func (c *Config) ResolveToken() (string, error) {
	if token := strings.TrimSpace(c.Discord.Token); token != "" {
		return token, nil
	}

	if c.Discord.TokenFile == "" {
		return "", ErrNoToken
	}

	data, err := os.ReadFile(c.Discord.TokenFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("failed to read token file %s: %w", c.Discord.TokenFile, err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}
