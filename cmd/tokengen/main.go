// Package main provides a CLI tool for generating test tokens for the audit
// query API. These tokens use the dev signing key by default and will NOT
// work against a production deployment.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"graphtrail/internal/platform/middleware"
)

const (
	// Dev signing key - matches config.go when GRAPHTRAIL_SIGNING_KEY is not set
	devSigningKey = "dev-secret-key-change-in-production"

	defaultTokenTTL = 15 * time.Minute
)

type tokenOutput struct {
	Token     string            `json:"token"`
	ExpiresIn string            `json:"expires_in"`
	Claims    map[string]any    `json:"claims"`
	Usage     map[string]string `json:"usage"`
}

func main() {
	namespace := flag.String("namespace", "default", "Namespace the token may read. Use \""+middleware.NamespaceAll+"\" for all namespaces.")
	subject := flag.String("subject", "", "Subject claim. Generated if empty.")
	ttl := flag.Duration("ttl", defaultTokenTTL, "Token time-to-live")
	key := flag.String("key", "", "Signing key. Falls back to GRAPHTRAIL_SIGNING_KEY, then the dev key.")
	jsonOutput := flag.Bool("json", false, "Output as JSON")
	flag.Usage = printUsage
	flag.Parse()

	signingKey := *key
	keyType := "flag"
	if signingKey == "" {
		signingKey = os.Getenv("GRAPHTRAIL_SIGNING_KEY")
		keyType = "env"
	}
	if signingKey == "" {
		signingKey = devSigningKey
		keyType = "dev"
	}

	sub := *subject
	if sub == "" {
		sub = uuid.NewString()
	}

	now := time.Now()
	claims := middleware.AuditClaims{
		Namespace: *namespace,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(*ttl)),
			ID:        uuid.NewString(),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(signingKey))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating token: %v\n", err)
		os.Exit(1)
	}

	if *jsonOutput {
		printJSON(tokenOutput{
			Token:     token,
			ExpiresIn: ttl.String(),
			Claims: map[string]any{
				"namespace": *namespace,
				"sub":       sub,
			},
			Usage: map[string]string{
				"header":      "Authorization: Bearer <token>",
				"signing_key": keyType,
			},
		})
		return
	}

	fmt.Println("Audit API Token (JWT)")
	fmt.Println("=====================")
	fmt.Printf("Signing Key: %s\n", keyType)
	fmt.Printf("Expires In:  %s\n", ttl)
	fmt.Printf("Namespace:   %s\n", *namespace)
	fmt.Printf("Subject:     %s\n", sub)
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(token)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  curl -H \"Authorization: Bearer <token>\" \"http://localhost:8080/audit/changes/recent?namespace=" + *namespace + "\"")
}

func printUsage() {
	fmt.Println(`tokengen - Generate test tokens for the audit query API

WARNING: Tokens signed with the dev key will NOT work in production.
         Only use for local development and testing.

Examples:
  # Token scoped to the default namespace
  tokengen

  # Token for a specific tenant with a longer TTL
  tokengen -namespace tenant-a -ttl 1h

  # All-namespaces token (required for POST /audit/indexes)
  tokengen -namespace '*'

  # Output as JSON
  tokengen -json

Flags:`)
	flag.PrintDefaults()
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}
