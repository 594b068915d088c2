package config

import (
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// LoadEnv загружает переменные окружения из .env файла.
// Пустые строки и комментарии (#) пропускаются.
func LoadEnv(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		key = strings.TrimSpace(key)
		if key != "" {
			os.Setenv(key, strings.TrimSpace(value))
		}
	}

	return nil
}

// LoadEnvOptional загружает .env файл, если он существует.
func LoadEnvOptional(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	return LoadEnv(path)
}

// envOverrides are process environment values that win over the config file.
type envOverrides struct {
	Token    string `envconfig:"BOT_TOKEN"`
	LogLevel string `envconfig:"JANITOR_LOG_LEVEL"`
	DBPath   string `envconfig:"JANITOR_DB_PATH"`
}

func applyEnvOverrides(c *Config) error {
	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return err
	}

	if env.Token != "" {
		c.Discord.Token = strings.TrimSpace(env.Token)
	}
	if env.LogLevel != "" {
		c.Logging.Level = env.LogLevel
	}
	if env.DBPath != "" {
		c.Store.Path = expandHome(env.DBPath)
	}
	return nil
}
