package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
)

// SiteKeyBytes is the entropy of a site key; it is hex encoded to 32 chars.
const SiteKeyBytes = 16

// ErrInvalidSiteKeyFormat indicates a malformed site key.
var ErrInvalidSiteKeyFormat = errors.New("invalid site key format")

var siteKeyRegex = regexp.MustCompile(`^[a-f0-9]{32}$`)

// GenerateSiteKey creates a new opaque site key.
func GenerateSiteKey() (string, error) {
	b := make([]byte, SiteKeyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate site key: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// ValidateSiteKeyFormat reports whether key looks like a generated site key.
// Keys are otherwise opaque; this is only used by tooling.
func ValidateSiteKeyFormat(key string) bool {
	return siteKeyRegex.MatchString(key)
}

// GenerateState returns a random URL-safe value for OAuth state parameters.
func GenerateState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	return hex.EncodeToString(b), nil
}
