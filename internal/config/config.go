// Package config loads server settings from flags and the environment,
// with .env support for local development.
package config

import (
	"flag"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	Env           string
	Model         string
	SnapshotCache int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":8082", "server port")
	flag.Parse()

	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	model := strings.TrimSpace(os.Getenv("GENUI_MODEL"))
	if model == "" {
		model = "gemini-2.5-flash"
	}

	cacheSize := 256
	if raw := strings.TrimSpace(os.Getenv("GENUI_SNAPSHOT_CACHE")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			cacheSize = n
		}
	}

	return &Config{
		Port:          *port,
		Env:           env,
		Model:         model,
		SnapshotCache: cacheSize,
	}, nil
}
