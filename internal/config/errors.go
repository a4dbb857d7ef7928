// Errors returned while loading or validating configuration. Callers use
// errors.Is to tell a malformed environment apart from a configuration that
// parsed but is unsafe to deploy.

package config

import "errors"

// ErrInvalidEnvironment is returned when an environment variable cannot be
// converted to the type its setting requires (e.g. a non-numeric REDIS_PORT).
var ErrInvalidEnvironment = errors.New("invalid environment")

// ErrInvalidPort is returned by Port.Int for a port that is not a number in
// 1..65535.
var ErrInvalidPort = errors.New("invalid port")

// ErrUnsupportedDatabase is returned when the metadata store URI uses a
// scheme no reachability check can open.
var ErrUnsupportedDatabase = errors.New("unsupported metadata database")

// ErrInsecureSecretKey is returned by Validate when a production deployment
// carries an empty or placeholder SECRET_KEY.
var ErrInsecureSecretKey = errors.New("placeholder SECRET_KEY in production")

// ErrInvalidLimit is returned for non-positive row or chunk limits.
var ErrInvalidLimit = errors.New("invalid limit")

// ErrInvalidUTF8 is returned by Validate for a value that is not valid UTF-8
// and so has no exact Python str literal.
var ErrInvalidUTF8 = errors.New("value is not valid UTF-8")
