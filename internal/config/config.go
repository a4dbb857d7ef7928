package config // package config loads application configuration from environment variables

import (
	"fmt"     // fmt wraps parse errors
	"strings" // strings normalises the environment name
	"time"    // time types the token lifetime

	"github.com/caarlos0/env/v10" // env maps variables onto struct fields
)

// Service holds the runtime configuration of supersetconf itself, as opposed
// to the Settings it renders for Superset.  Each field corresponds to an
// environment variable.
type Service struct {
	Env          string        `env:"APP_ENV" envDefault:"dev"`                                             // application environment (dev/test/prod)
	Port         string        `env:"APP_PORT" envDefault:"8090"`                                           // HTTP port for `serve`
	LogLevel     string        `env:"LOG_LEVEL" envDefault:"info"`                                          // zerolog level name
	ConfigPath   string        `env:"SUPERSET_CONFIG_PATH" envDefault:"/app/pythonpath/superset_config.py"` // where `render` writes the module
	RabbitMQURL  string        `env:"RABBITMQ_URL"`                                                         // broker for config events (optional)
	AuditLogPath string        `env:"CONFIG_AUDIT_LOG" envDefault:"logs/config-audit.log"`                  // audit consumer output
	TokenTTL     time.Duration `env:"CONFIG_TOKEN_TTL" envDefault:"15m"`                                    // lifetime of minted API tokens
}

// LoadService reads the service configuration from environ.  AMQP_URL is
// accepted as a fallback for RABBITMQ_URL.
func LoadService(environ map[string]string) (Service, error) {
	var s Service
	if err := env.ParseWithOptions(&s, env.Options{Environment: environ}); err != nil {
		return Service{}, fmt.Errorf("%w: %w", ErrInvalidEnvironment, err)
	}
	if s.RabbitMQURL == "" {
		s.RabbitMQURL = environ["AMQP_URL"]
	}
	return s, nil
}

// IsProduction reports whether env names a production deployment.
func IsProduction(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "prod", "production":
		return true
	}
	return false
}
