// Package config provides centralized configuration management for the
// application. It loads settings from environment variables with sensible
// defaults and validates everything on startup to fail fast on
// misconfiguration.
package config

import "time"

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Import   ImportConfig
	Tickets  TicketConfig
	Mail     MailConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string (required)
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 1)
	MinConns int `env:"DB_MIN_CONNS" default:"1"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before close (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// ImportConfig holds spreadsheet import settings.
type ImportConfig struct {
	// Article is the product label ticket orders are filtered on.
	Article string `env:"IMPORT_ARTICLE" default:"Billet de tombola / Raffle ticket 2024"`

	// MaxFileSize is the maximum allowed upload size in bytes (default: 20MB)
	MaxFileSize int64 `env:"IMPORT_MAX_FILE_SIZE" default:"20971520"`

	// MaxConcurrent is the maximum number of imports processed in parallel (default: 2)
	MaxConcurrent int `env:"IMPORT_MAX_CONCURRENT" default:"2"`

	// MaxWait is how long an import waits for a free slot before rejection (default: 10s)
	MaxWait time.Duration `env:"IMPORT_MAX_WAIT" default:"10s"`
}

// TicketConfig holds ticket numbering settings.
type TicketConfig struct {
	// StartingID is the first ticket number handed out on an empty table.
	StartingID int `env:"TICKET_STARTING_ID" default:"1"`
}

// MailConfig holds email delivery settings.
type MailConfig struct {
	// CredentialsJSON is the Gmail OAuth client secrets JSON string.
	// When empty, sends are logged instead of delivered.
	CredentialsJSON string `env:"GMAIL_CREDENTIALS_JSON"`

	// Sender is the Gmail address to send from.
	Sender string `env:"SENDER_EMAIL"`

	// Prod enables delivery to real purchaser addresses (default: false)
	Prod bool `env:"IS_PROD" default:"false"`

	// TestRecipient receives all mail when Prod is false.
	TestRecipient string `env:"TEST_RECIPIENT"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// APIKeys is a comma-separated list of accepted X-API-Key values.
	APIKeys []string `env:"API_KEYS"`

	// RequireAPIKey enables API key auth on all routes (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	if c.Host == "" {
		return ":" + itoa(c.Port)
	}
	return c.Host + ":" + itoa(c.Port)
}

// itoa converts an int to string without importing strconv in this file.
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var b [20]byte
	n := len(b)
	neg := i < 0
	if neg {
		i = -i
	}
	for i > 0 {
		n--
		b[n] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		n--
		b[n] = '-'
	}
	return string(b[n:])
}
