// Package env covers the few environment lookups that happen before the
// typed GESTOCK_ configuration is loaded, such as picking the log format
// during bootstrap.
package env

import "os"

// Get reads key from the process environment, returning fallback when the
// variable is unset or empty. Everything after startup goes through the
// envconfig-backed config instead.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
