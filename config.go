package main

import (
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// config is read once at startup from the environment (and .env, if present).
type config struct {
	Port                string
	BindHost            string
	DBURL               string    // empty means sessions live in memory
	SessionID           uuid.UUID // uuid.Nil means create one on first start
	CORSOrigins         []string
	IntakeResetSchedule string
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// loadConfig reads .env then the process environment. A missing .env file
// is fine for the server; unlike the CLIs it can run on defaults alone.
func loadConfig() (config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[loadConfig] ignoring .env: %v", err)
	}

	cfg := config{
		Port:                getenv("PORT", "3000"),
		BindHost:            getenv("BIND_HOST", "localhost"),
		DBURL:               getenv("DB_URL", ""),
		IntakeResetSchedule: getenv("INTAKE_RESET_SCHEDULE", "0 0 0 * * *"),
	}

	if raw := getenv("SESSION_ID", ""); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return config{}, err
		}
		cfg.SessionID = id
	}

	for _, origin := range strings.Split(getenv("CORS_ORIGINS", "*"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}
	return cfg, nil
}

func (c config) addr() string {
	return c.BindHost + ":" + c.Port
}
