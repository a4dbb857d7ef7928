package config

import (
	"net/url"
	"reflect"
	"strings"
)

// Masked replaces every sensitive value.
const Masked = "***"

// sensitiveKeywords mark map keys whose values are secrets. Matching is
// case-insensitive on substrings.
var sensitiveKeywords = []string{
	"password",
	"passwd",
	"secret",
	"token",
	"credential",
}

// MaskSecrets returns a copy of data with sensitive values replaced. Maps are
// masked by key; strings that parse as URLs with a password have the
// password replaced. Non-nil values under a sensitive key become Masked;
// nil stays nil so unset options remain visible as unset.
func MaskSecrets(data any) any {
	if data == nil {
		return nil
	}

	val := reflect.ValueOf(data)
	for val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	}

	switch val.Kind() {
	case reflect.String:
		return maskURL(val.String())

	case reflect.Map:
		result := make(map[string]any, val.Len())
		iter := val.MapRange()
		for iter.Next() {
			key := iter.Key().String()
			value := iter.Value().Interface()
			if isSensitiveKey(key) && value != nil {
				result[key] = Masked
				continue
			}
			result[key] = MaskSecrets(value)
		}
		return result

	case reflect.Slice, reflect.Array:
		if val.Type().Elem().Kind() == reflect.String {
			out := make([]string, val.Len())
			for i := range out {
				out[i] = maskURL(val.Index(i).String())
			}
			return out
		}
		out := make([]any, val.Len())
		for i := range out {
			out[i] = MaskSecrets(val.Index(i).Interface())
		}
		return out
	}

	return val.Interface()
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, kw := range sensitiveKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// maskURL hides the password of a URL with userinfo. Other strings are
// returned unchanged.
func maskURL(s string) string {
	if !strings.Contains(s, "://") || !strings.Contains(s, "@") {
		return s
	}
	u, err := url.Parse(s)
	if err != nil || u.User == nil {
		return s
	}
	if _, ok := u.User.Password(); !ok {
		return s
	}
	u.User = url.UserPassword(u.User.Username(), Masked)
	return u.String()
}
