// Package render turns config.Settings into the documents Superset and its
// operators consume: the superset_config.py module imported at startup, and
// JSON/YAML views for inspection.
package render

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"github.com/iliyamo/hirewire-superset/internal/config"
)

// pyStr quotes s as a Python 3 string literal. Go's escape set (\n, \t, \xNN,
// \uNNNN, \UNNNNNNNN, \", \\) is a subset of Python's. For valid UTF-8 the
// literal evaluates to exactly s. An invalid byte is written as \xNN, which
// Python reads as the code point U+00NN, so Settings.Validate rejects such
// values before a module is written.
func pyStr(s string) string {
	return strconv.Quote(s)
}

func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// pyPort writes the default port as an int and an environment value as the
// string it is.
func pyPort(p config.Port) string {
	if p.FromEnv {
		return pyStr(p.Raw)
	}
	return p.Raw
}

func pyOptional(p *string) string {
	if p == nil {
		return "None"
	}
	return pyStr(*p)
}

// pyTuple renders a tuple of strings; a single element keeps its trailing comma.
func pyTuple(items []string) string {
	quoted := make([]string, len(items))
	for i, it := range items {
		quoted[i] = pyStr(it)
	}
	if len(quoted) == 1 {
		return "(" + quoted[0] + ",)"
	}
	return "(" + strings.Join(quoted, ", ") + ")"
}

func pyList(items []string) string {
	quoted := make([]string, len(items))
	for i, it := range items {
		quoted[i] = pyStr(it)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

type flag struct {
	Name    string
	Enabled bool
}

// orderedFlags yields the known flags in declaration order, then any others
// sorted by name.
func orderedFlags(flags config.FeatureFlags) []flag {
	out := make([]flag, 0, len(flags))
	seen := make(map[string]bool, len(flags))
	for _, name := range config.FeatureFlagNames {
		if v, ok := flags[name]; ok {
			out = append(out, flag{name, v})
			seen[name] = true
		}
	}
	var extra []string
	for name := range flags {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		out = append(out, flag{name, flags[name]})
	}
	return out
}

var pythonTmpl = template.Must(template.New("superset_config.py").Funcs(template.FuncMap{
	"py":       pyStr,
	"pybool":   pyBool,
	"optional": pyOptional,
	"port":     pyPort,
	"tuple":    pyTuple,
	"list":     pyList,
	"flags":    orderedFlags,
}).Parse(`# Superset configuration for HireWire
# Generated by supersetconf; edit the environment, not this file.

# Database configuration
SQLALCHEMY_DATABASE_URI = {{py .SQLAlchemyDatabaseURI}}

# Redis configuration
REDIS_HOST = {{py .RedisHost}}
REDIS_PORT = {{port .RedisPort}}

# Cache configuration
CACHE_CONFIG = {
    'CACHE_TYPE': {{py .Cache.Type}},
    'CACHE_DEFAULT_TIMEOUT': {{.Cache.DefaultTimeout}},
    'CACHE_KEY_PREFIX': {{py .Cache.KeyPrefix}},
    'CACHE_REDIS_HOST': {{py .Cache.RedisHost}},
    'CACHE_REDIS_PORT': {{port .Cache.RedisPort}},
    'CACHE_REDIS_DB': {{.Cache.RedisDB}},
}

# Celery configuration
class CeleryConfig:
    broker_url = {{py .Celery.BrokerURL}}
    imports = {{tuple .Celery.Imports}}
    result_backend = {{py .Celery.ResultBackend}}
    worker_prefetch_multiplier = {{.Celery.WorkerPrefetchMultiplier}}
    task_acks_late = {{pybool .Celery.TaskAcksLate}}

CELERY_CONFIG = CeleryConfig

# Feature flags
FEATURE_FLAGS = {
{{- range flags .FeatureFlags}}
    {{py .Name}}: {{pybool .Enabled}},
{{- end}}
}

# Security
SECRET_KEY = {{py .SecretKey}}

# DuckDB specific configuration
PREFERRED_DATABASES = [
{{- range .PreferredDatabases}}
    {
        'name': {{py .Name}},
        'description': {{py .Description}},
        'available_drivers': {{list .AvailableDrivers}},
        'engine': {{py .Engine}},
        'default_driver': {{py .DefaultDriver}},
        'sqlalchemy_uri_placeholder': {{py .SQLAlchemyURIPlaceholder}},
    },
{{- end}}
]

# Custom CSS
CUSTOM_CSS = {{py .CustomCSS}}

# Dashboard configuration
DASHBOARD_AUTO_REFRESH_MODE = {{py .DashboardAutoRefreshMode}}
DASHBOARD_AUTO_REFRESH_INTERVALS = [
{{- range .DashboardAutoRefreshIntervals}}
    [{{.Seconds}}, {{py .Label}}],
{{- end}}
]

# SQL Lab configuration
SQLLAB_CTAS_NO_LIMIT = {{pybool .SQLLabCTASNoLimit}}
SQL_MAX_ROW = {{.SQLMaxRow}}

# File upload configuration
UPLOAD_FOLDER = {{py .UploadFolder}}
UPLOAD_CHUNK_SIZE = {{.UploadChunkSize}}

# Email configuration (optional)
SMTP_HOST = {{optional .SMTP.Host}}
SMTP_STARTTLS = {{pybool .SMTP.StartTLS}}
SMTP_SSL = {{pybool .SMTP.SSL}}
SMTP_USER = {{optional .SMTP.User}}
SMTP_PASSWORD = {{optional .SMTP.Password}}
SMTP_MAIL_FROM = {{optional .SMTP.MailFrom}}

# Logging
ENABLE_TIME_ROTATE = {{pybool .Logging.EnableTimeRotate}}
TIME_ROTATE_LOG_LEVEL = {{py .Logging.TimeRotateLogLevel}}
FILENAME = {{py .Logging.Filename}}
`))

// Python writes the superset_config.py module for s.
func Python(w io.Writer, s config.Settings) error {
	if err := pythonTmpl.Execute(w, s); err != nil {
		return fmt.Errorf("render superset_config.py: %w", err)
	}
	return nil
}
