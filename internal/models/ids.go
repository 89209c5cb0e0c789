package models

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// NewID creates a random entity ID in <prefix>-xxxxxxxx format (8-char hex).
func NewID(prefix string) (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("models: generate ID: %w", err)
	}
	return prefix + "-" + hex.EncodeToString(b), nil
}
