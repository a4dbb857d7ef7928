package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/iliyamo/hirewire-superset/internal/log"
)

// Environment holds the raw values read from the process environment before
// they are assembled into Settings. A variable that is present is taken
// verbatim, including the empty string; only an absent one gets its default.
// The tags carry no envDefault because caarlos0/env applies defaults to empty
// values too.
type Environment struct {
	DatabaseURL string `env:"DATABASE_URL"`
	RedisHost   string `env:"REDIS_HOST"`
	RedisPort   string `env:"REDIS_PORT"`
	SecretKey   string `env:"SUPERSET_SECRET_KEY"`

	// RedisPortSet records whether REDIS_PORT was present.
	RedisPortSet bool

	SMTP smtpEnvironment
}

// smtpEnvironment is filled by lookupOptional instead of struct tags so that
// an unset variable stays nil.
type smtpEnvironment struct {
	Host     *string
	User     *string
	Password *string
	MailFrom *string
}

// envVar describes one variable for source logging.
type envVar struct {
	key       string
	def       string
	sensitive bool
}

var supersetVars = []envVar{
	{key: "DATABASE_URL", def: DefaultDatabaseURL, sensitive: true},
	{key: "REDIS_HOST", def: DefaultRedisHost},
	{key: "REDIS_PORT", def: fmt.Sprint(DefaultRedisPort)},
	{key: "SUPERSET_SECRET_KEY", def: DefaultSecretKey, sensitive: true},
	{key: "SMTP_HOST"},
	{key: "SMTP_USER"},
	{key: "SMTP_PASSWORD", sensitive: true},
	{key: "SMTP_MAIL_FROM"},
}

// DotEnvFile is loaded by Load when present. Variables already set in the
// process environment win over the file.
var DotEnvFile = ".env"

// Load reads an optional .env file, then the process environment, and
// returns the assembled Settings.
func Load() (Settings, error) {
	if err := LoadDotEnv(); err != nil {
		return Settings{}, err
	}
	return LoadFrom(Environ())
}

// LoadDotEnv copies DotEnvFile into the process environment when it exists.
// Variables already set win over the file.
func LoadDotEnv() error {
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", DotEnvFile, err)
	}
	return nil
}

// LoadFrom assembles Settings from an explicit environment map. Keys missing
// from environ take their defaults.
func LoadFrom(environ map[string]string) (Settings, error) {
	e, err := parseEnvironment(environ)
	if err != nil {
		return Settings{}, err
	}
	logSources(log.WithComponent("config"), environ, supersetVars)
	return build(e), nil
}

func parseEnvironment(environ map[string]string) (Environment, error) {
	var e Environment
	if err := env.ParseWithOptions(&e, env.Options{Environment: environ}); err != nil {
		return Environment{}, fmt.Errorf("%w: %w", ErrInvalidEnvironment, err)
	}
	for _, d := range []struct {
		key   string
		field *string
		def   string
	}{
		{"DATABASE_URL", &e.DatabaseURL, DefaultDatabaseURL},
		{"REDIS_HOST", &e.RedisHost, DefaultRedisHost},
		{"SUPERSET_SECRET_KEY", &e.SecretKey, DefaultSecretKey},
	} {
		if _, ok := environ[d.key]; !ok {
			*d.field = d.def
		}
	}
	_, e.RedisPortSet = environ["REDIS_PORT"]

	e.SMTP = smtpEnvironment{
		Host:     lookupOptional(environ, "SMTP_HOST"),
		User:     lookupOptional(environ, "SMTP_USER"),
		Password: lookupOptional(environ, "SMTP_PASSWORD"),
		MailFrom: lookupOptional(environ, "SMTP_MAIL_FROM"),
	}
	return e, nil
}

func lookupOptional(environ map[string]string, key string) *string {
	v, ok := environ[key]
	if !ok {
		return nil
	}
	return &v
}

// Environ snapshots the process environment as a map.
func Environ() map[string]string {
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		out[k] = v
	}
	return out
}

// logSources records whether each variable came from the environment or its
// default. Sensitive values are never logged.
func logSources(logger zerolog.Logger, environ map[string]string, vars []envVar) {
	for _, v := range vars {
		value, ok := environ[v.key]
		switch {
		case ok && v.sensitive:
			logger.Debug().
				Str("key", v.key).
				Str("source", "environment").
				Bool("sensitive", true).
				Msg("using environment variable")
		case ok:
			logger.Debug().
				Str("key", v.key).
				Str("value", value).
				Str("source", "environment").
				Msg("using environment variable")
		case v.def == "":
			logger.Debug().
				Str("key", v.key).
				Str("source", "unset").
				Msg("optional variable not set")
		case v.sensitive:
			logger.Debug().
				Str("key", v.key).
				Str("source", "default").
				Bool("sensitive", true).
				Msg("using default value")
		default:
			logger.Debug().
				Str("key", v.key).
				Str("default", v.def).
				Str("source", "default").
				Msg("using default value")
		}
	}
}
