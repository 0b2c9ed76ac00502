package search

import (
	"net/url"
	"strings"
)

// Params is a flat request parameter map as parsed from a query string.
// Unrecognized keys are ignored.
type Params map[string]string

// ParamsFromValues keeps the first value of every key
func ParamsFromValues(values url.Values) Params {
	params := make(Params, len(values))
	for key, vals := range values {
		if len(vals) > 0 {
			params[key] = vals[0]
		}
	}
	return params
}

// lookup returns the first non-blank value among keys, trimmed.
func (p Params) lookup(keys ...string) (string, bool) {
	for _, key := range keys {
		if value := strings.TrimSpace(p[key]); value != "" {
			return value, true
		}
	}
	return "", false
}
