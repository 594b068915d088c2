package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Render returns the effective configuration as YAML with the token masked.
func (c *Config) Render() (string, error) {
	shown := *c
	shown.Discord.Token = maskDiscordToken(c.Discord.Token)

	out, err := yaml.Marshal(&shown)
	if err != nil {
		return "", fmt.Errorf("failed to render config: %w", err)
	}
	return string(out), nil
}
