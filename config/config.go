// Package config reads the defaults of the command line from the
// environment, optionally seeded from a .env file
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvSave    = "VACUUM_SAVE"
	EnvSeed    = "VACUUM_SEED"
	EnvRedis   = "VACUUM_REDIS_ADDR"
	EnvNoColor = "VACUUM_NO_COLOR"
)

// DefaultEnvFiles are tried in order, the first one found is loaded
var DefaultEnvFiles = []string{
	".env",
	"../.env",
	"../../.env",
}

type Config struct {
	SaveDir   string
	Seed      uint64
	RedisAddr string
	NoColor   bool
}

func Default() Config {
	return Config{
		SaveDir: "results",
	}
}

// LoadEnvFile loads the first readable file and returns its name, empty when
// none could be loaded. Variables already set are not overridden.
func LoadEnvFile(files ...string) string {
	for _, f := range files {
		if err := godotenv.Load(f); err == nil {
			return f
		}
	}
	return ""
}

// FromEnv overlays the environment on the defaults
func FromEnv() (Config, error) {
	c := Default()
	if v, ok := os.LookupEnv(EnvSave); ok && v != "" {
		c.SaveDir = v
	}
	if v, ok := os.LookupEnv(EnvSeed); ok && v != "" {
		seed, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return c, fmt.Errorf("%s: %w", EnvSeed, err)
		}
		c.Seed = seed
	}
	if v, ok := os.LookupEnv(EnvRedis); ok {
		c.RedisAddr = strings.TrimSpace(v)
	}
	if v, ok := os.LookupEnv(EnvNoColor); ok && v != "" {
		noColor, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return c, fmt.Errorf("%s: %w", EnvNoColor, err)
		}
		c.NoColor = noColor
	}
	return c, nil
}
