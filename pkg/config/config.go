// Package config loads application configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Server holds the HTTP listener settings.
type Server struct {
	Host string `envconfig:"HOST" default:"localhost"`
	Port int    `envconfig:"PORT" default:"3000"`
}

// Addr returns the host:port listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Log holds logger settings.
type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"text"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[triopay]"`
}

// Bus holds the event bus tunables.
type Bus struct {
	QueueSize       int           `envconfig:"QUEUE_SIZE" default:"256"`
	Workers         int           `envconfig:"WORKERS" default:"2"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
}

// Security holds the security watcher settings.
type Security struct {
	LoginFailureThreshold int `envconfig:"LOGIN_FAILURE_THRESHOLD" default:"3"`
}

// App is the root configuration.
type App struct {
	Env      string    `envconfig:"APP_ENV" default:"development"`
	Currency string    `envconfig:"CURRENCY" default:"KES"`
	Server   *Server   `envconfig:"SERVER"`
	Log      *Log      `envconfig:"LOG"`
	Bus      *Bus      `envconfig:"BUS"`
	Security *Security `envconfig:"SECURITY"`
}

// Load reads configuration from the environment. Each provided path is
// tried as a .env file; a missing file is not an error, the system
// environment simply wins.
func Load(envFilePath ...string) (*App, error) {
	if len(envFilePath) == 0 {
		envFilePath = []string{".env"}
	}
	for _, path := range envFilePath {
		// Ignore missing files; godotenv never overrides existing vars.
		_ = godotenv.Load(path)
	}
	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	return &cfg, nil
}
