package config

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/hashicorp/go-multierror"
)

// Metadata store drivers understood by the reachability checks.
const (
	DriverPostgres = "pgx"
	DriverMySQL    = "mysql"
)

// MetadataDriver maps a SQLAlchemy URI scheme (optionally carrying a
// "+dialect" suffix) to the Go driver that can open it.
func MetadataDriver(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnsupportedDatabase, err)
	}
	scheme, _, _ := strings.Cut(strings.ToLower(u.Scheme), "+")
	switch scheme {
	case "postgresql", "postgres":
		return DriverPostgres, nil
	case "mysql":
		return DriverMySQL, nil
	case "":
		return "", fmt.Errorf("%w: missing scheme", ErrUnsupportedDatabase)
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedDatabase, scheme)
}

// Validate reports settings that must not be rendered. Everything read from
// the environment is otherwise passed to Superset as given; questionable
// values surface through Warnings instead. An empty or placeholder secret key
// is only an error in production.
func (s Settings) Validate(appEnv string) error {
	var result *multierror.Error

	for _, v := range s.envStrings() {
		if !utf8.ValidString(v.value) {
			result = multierror.Append(result, fmt.Errorf("%w: %s", ErrInvalidUTF8, v.key))
		}
	}
	if s.SQLMaxRow <= 0 {
		result = multierror.Append(result, fmt.Errorf("%w: SQL_MAX_ROW=%d", ErrInvalidLimit, s.SQLMaxRow))
	}
	if s.UploadChunkSize <= 0 {
		result = multierror.Append(result, fmt.Errorf("%w: UPLOAD_CHUNK_SIZE=%d", ErrInvalidLimit, s.UploadChunkSize))
	}
	if IsProduction(appEnv) && (s.SecretKey == "" || s.SecretKey == DefaultSecretKey) {
		result = multierror.Append(result, ErrInsecureSecretKey)
	}

	return result.ErrorOrNil()
}

// Warnings lists deployable but questionable settings.
func (s Settings) Warnings(appEnv string) []string {
	var out []string
	if !IsProduction(appEnv) {
		switch s.SecretKey {
		case DefaultSecretKey:
			out = append(out, "SUPERSET_SECRET_KEY not set; using the placeholder key")
		case "":
			out = append(out, "SUPERSET_SECRET_KEY is empty")
		}
	}
	if s.RedisHost == "" {
		out = append(out, "REDIS_HOST is empty")
	}
	if _, err := s.RedisPort.Int(); err != nil {
		out = append(out, err.Error())
	}
	if _, err := MetadataDriver(s.SQLAlchemyDatabaseURI); err != nil {
		out = append(out, "DATABASE_URL: "+err.Error()+"; metadata check skipped")
	}
	if s.SMTP.Host != nil && s.SMTP.MailFrom == nil {
		out = append(out, "SMTP_HOST is set but SMTP_MAIL_FROM is not")
	}
	if s.SMTP.User != nil && s.SMTP.Password == nil {
		out = append(out, "SMTP_USER is set but SMTP_PASSWORD is not")
	}
	return out
}

type envString struct {
	key   string
	value string
}

// envStrings lists the settings that come from the environment.
func (s Settings) envStrings() []envString {
	out := []envString{
		{"DATABASE_URL", s.SQLAlchemyDatabaseURI},
		{"REDIS_HOST", s.RedisHost},
		{"REDIS_PORT", s.RedisPort.Raw},
		{"SUPERSET_SECRET_KEY", s.SecretKey},
	}
	for _, opt := range []struct {
		key string
		p   *string
	}{
		{"SMTP_HOST", s.SMTP.Host},
		{"SMTP_USER", s.SMTP.User},
		{"SMTP_PASSWORD", s.SMTP.Password},
		{"SMTP_MAIL_FROM", s.SMTP.MailFrom},
	} {
		if opt.p != nil {
			out = append(out, envString{opt.key, *opt.p})
		}
	}
	return out
}
