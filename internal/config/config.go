// /internal/config/config.go
package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, falling back to system environment variables")
	}
}

type Config struct {
	DiscordToken string        `env:"DISCORD_TOKEN,required"`
	StoragePath  string        `env:"STORAGE_PATH" envDefault:"datastore.json"`
	Prefixes     []string      `env:"BOT_PREFIXES" envSeparator:"," envDefault:"v!,v."`
	AwaitTimeout time.Duration `env:"AWAIT_TIMEOUT" envDefault:"60s"`
}

func New() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}
