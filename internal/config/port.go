package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Port is REDIS_PORT as Superset receives it. The default is the integer
// 6379; a value taken from the environment is the variable's text, unchanged,
// and Superset sees it as a string.
type Port struct {
	Raw     string
	FromEnv bool
}

// DefaultPort is the REDIS_PORT used when the variable is unset.
func DefaultPort() Port {
	return Port{Raw: strconv.Itoa(DefaultRedisPort)}
}

// EnvPort wraps a REDIS_PORT value read from the environment.
func EnvPort(raw string) Port {
	return Port{Raw: raw, FromEnv: true}
}

func (p Port) String() string { return p.Raw }

// Value is the port as Superset's module holds it: an int for the default,
// the raw string otherwise.
func (p Port) Value() any {
	if !p.FromEnv {
		if n, err := strconv.Atoi(p.Raw); err == nil {
			return n
		}
	}
	return p.Raw
}

// Int parses the port for Go clients. Surrounding whitespace is ignored, as
// redis-py does when it builds a connection from the URL.
func (p Port) Int() (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(p.Raw))
	if err != nil || n < 1 || n > 65535 {
		return 0, fmt.Errorf("%w: REDIS_PORT=%q", ErrInvalidPort, p.Raw)
	}
	return n, nil
}
