package scraper

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"strings"
)

var (
	slugStrip    = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugCollapse = regexp.MustCompile(`[\s_-]+`)
	slugTrim     = regexp.MustCompile(`^-+|-+$`)
)

// Slugify converts a group name into a filename-safe slug.
func Slugify(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = slugStrip.ReplaceAllString(s, "")
	s = slugCollapse.ReplaceAllString(s, "-")
	s = slugTrim.ReplaceAllString(s, "")
	if s == "" {
		return "unknown"
	}
	if len(s) > 50 {
		s = s[:50]
	}
	return s
}

// slugSuffix returns a 64-bit random hex suffix so parallel jobs against
// the same group never collide on filenames.
func slugSuffix() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
