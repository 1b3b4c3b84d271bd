package domain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
)

// slugBytes yields 6 hex characters, short enough to read aloud in a lecture
// hall and large enough that the creation-time collision check rarely loops
const slugBytes = 3

var slugPattern = regexp.MustCompile(`^[0-9a-f]{6}$`)

// NewSlug generates a random poll slug
func NewSlug() (string, error) {
	buf := make([]byte, slugBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate slug: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// ValidSlug reports whether s has the shape of a generated slug
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}
