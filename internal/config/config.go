package config

import (
	"fmt"
	"net"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all environment-sourced settings. Secrets (keys, JWT secret)
// are read once at startup and never mutated afterwards.
type Config struct {
	AppHost string `env:"APP_HOST" envDefault:"127.0.0.1"`
	AppPort string `env:"APP_PORT" envDefault:"3000"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogJSON  bool   `env:"LOG_JSON" envDefault:"false"`

	SupabaseURL        string `env:"SUPABASE_URL,required,notEmpty"`
	SupabaseAnonKey    string `env:"SUPABASE_ANON_KEY,required,notEmpty"`
	SupabaseServiceKey string `env:"SUPABASE_SERVICE_ROLE_KEY,required,notEmpty"`
	SupabaseJWTSecret  string `env:"SUPABASE_JWT_SECRET,required,notEmpty"`

	// Default redirect for the post-confirmation flow, used when a signup
	// request doesn't carry its own redirect_to.
	EmailConfirmRedirect string `env:"EMAIL_CONFIRM_REDIRECT"`

	// When both are set the server terminates TLS itself.
	TLSCertFile string `env:"TLS_CERT_FILE"`
	TLSKeyFile  string `env:"TLS_KEY_FILE"`

	// Tracing is opt-in; empty means no exporter is registered.
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load reads configuration from the environment, loading a .env file first
// if one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// Addr is the listen address in host:port form.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.AppHost, c.AppPort)
}

// TLSEnabled reports whether the server should terminate TLS itself.
func (c *Config) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// ForTests returns a config bound to a free localhost port with dummy
// provider credentials. Tests that talk to a fake provider overwrite
// SupabaseURL with the test server's address.
func ForTests() *Config {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		panic(err)
	}
	port := l.Addr().(*net.TCPAddr).Port
	l.Close()

	return &Config{
		AppHost:            "127.0.0.1",
		AppPort:            fmt.Sprintf("%d", port),
		LogLevel:           "info",
		SupabaseURL:        "http://127.0.0.1:1",
		SupabaseAnonKey:    "test-anon-key",
		SupabaseServiceKey: "test-service-key",
		SupabaseJWTSecret:  "test-jwt-secret",
	}
}
