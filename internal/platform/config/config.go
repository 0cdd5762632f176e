package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process level configuration for the audit trail service.
type Server struct {
	Addr           string
	GraphURI       string
	GraphUsername  string
	GraphPassword  string
	GraphDatabase  string
	QueryLimit     int
	AuthSigningKey string
	RequestTimeout time.Duration
}

// DefaultQueryLimit caps history and recent-changes queries when the caller
// does not supply a limit.
var DefaultQueryLimit = 100

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("GRAPHTRAIL_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	queryLimit := DefaultQueryLimit
	if raw := os.Getenv("GRAPHTRAIL_QUERY_LIMIT"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			queryLimit = n
		}
	}

	requestTimeout := 30 * time.Second
	if raw := os.Getenv("GRAPHTRAIL_REQUEST_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			requestTimeout = d
		}
	}

	signingKey := os.Getenv("GRAPHTRAIL_SIGNING_KEY")
	if signingKey == "" {
		// Use a default for development - should be overridden in production
		signingKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:           addr,
		GraphURI:       os.Getenv("GRAPH_STORE_URI"),
		GraphUsername:  os.Getenv("GRAPH_STORE_USERNAME"),
		GraphPassword:  os.Getenv("GRAPH_STORE_PASSWORD"),
		GraphDatabase:  os.Getenv("GRAPH_STORE_DATABASE"),
		QueryLimit:     queryLimit,
		AuthSigningKey: signingKey,
		RequestTimeout: requestTimeout,
	}
}
