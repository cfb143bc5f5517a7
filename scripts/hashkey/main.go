// hashkey generates a service API key and its Argon2id hash for
// WILLY_SERVICE_KEYS.
//
// Usage (run from the repo root):
//
//	go run scripts/hashkey/main.go <service-id>
//
// Prints the plaintext key once (hand it to the calling service) and the
// "service-id:hash" pair to append to WILLY_SERVICE_KEYS. The plaintext is
// not recoverable from the hash; rerun to rotate.
package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/WEAV04/willy/internal/auth"
)

func main() {
	if len(os.Args) != 2 || os.Args[1] == "" {
		fmt.Fprintln(os.Stderr, "usage: go run scripts/hashkey/main.go <service-id>")
		os.Exit(1)
	}
	serviceID := os.Args[1]

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		fmt.Fprintf(os.Stderr, "error: generate key: %v\n", err)
		os.Exit(1)
	}
	apiKey := base64.RawURLEncoding.EncodeToString(raw)

	hash, err := auth.HashAPIKey(apiKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: hash key: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("api key (give to %s, shown only once):\n  %s\n\n", serviceID, apiKey)
	fmt.Printf("WILLY_SERVICE_KEYS entry:\n  %s:%s\n", serviceID, hash)
}
