package constants

const (
	// DefaultEnvPath is the default path to the .env file
	DefaultEnvPath = "./.env"

	// DefaultConfigPath is the default path to the config.toml file
	DefaultConfigPath = "./config.toml"

	// DefaultDBPath is where channel settings are persisted.
	DefaultDBPath = "./janitorbot.db"

	// DefaultTokenFile is the credentials file consulted when BOT_TOKEN is unset.
	DefaultTokenFile = "./token.txt"

	// PIDFileName lives next to the database.
	PIDFileName = ".janitor.pid"
)
