// Package env resolves configuration values and secrets from the process
// environment.
package env

import (
	"fmt"
	"os"
	"time"
)

// Source looks up a single environment variable.
type Source func(key string) (string, bool)

// OS reads the real process environment.
var OS Source = os.LookupEnv

// Map returns a Source backed by a fixed set of values.
func Map(values map[string]string) Source {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func (s Source) Duration(key string, def time.Duration) (time.Duration, error) {
	if v, ok := s(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("parse %s: %w", key, err)
		}
		return d, nil
	}
	return def, nil
}

// Required returns the value of key or an error naming the variable the
// user has to set. what describes the secret in the error message.
func (s Source) Required(key, what string) (string, error) {
	v, ok := s(key)
	if !ok || v == "" {
		return "", fmt.Errorf("%s is missing, please provide it via %s env var", what, key)
	}
	return v, nil
}

func Duration(key string, def time.Duration) (time.Duration, error) {
	return OS.Duration(key, def)
}
