package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds process settings for the quoting server and CLI
type Config struct {
	HTTPAddr       string
	DatabaseURL    string
	ScenarioDir    string
	DBMaxConns     int
	RequestTimeout time.Duration
}

// Load reads an optional .env file, then the environment
func Load(envFiles ...string) Config {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	if err := godotenv.Load(envFiles...); err != nil {
		log.Printf("[config] no env file loaded, relying on environment: %v", err)
	}

	return Config{
		HTTPAddr:       env("HTTP_ADDR", ":8080"),
		DatabaseURL:    env("DATABASE_URL", ""),
		ScenarioDir:    env("SCENARIO_DIR", "scenario"),
		DBMaxConns:     envInt("DB_MAX_CONNS", 10),
		RequestTimeout: time.Duration(envInt("REQUEST_TIMEOUT_SECONDS", 30)) * time.Second,
	}
}

// UsesDatabase reports whether quotes are served from PostgreSQL
func (c Config) UsesDatabase() bool {
	return c.DatabaseURL != ""
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[config] invalid %s=%q, using %d", k, v, def)
		return def
	}
	return n
}
