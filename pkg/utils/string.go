package utils

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Slugs may only contain URL-safe characters.
var slugPattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

// IsValidSlug reports whether the candidate contains only allowed
// characters.
func IsValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// NewSlug generates an 8-character random URL identifier.
func NewSlug() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// SlugSuffix generates the 4-character suffix appended to a caller-chosen
// slug on collision.
func SlugSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:4]
}
