// Package identity derives stable record identifiers from content so that
// re-fetching an overlapping window yields the same ids.
package identity

import (
	"crypto/sha1" //nolint:gosec // fingerprint, not a security boundary
	"encoding/hex"
	"strings"
)

// DigestLen is the number of hex characters kept from the content hash.
const DigestLen = 10

// Content holds the fields an identifier may be derived from.
type Content struct {
	Permalink string // canonical URL
	Link      string // click-through URL
	Title     string
	Summary   string
}

// CanonicalKey selects the content key in priority order: permalink, link,
// then title and summary joined by "|".
func CanonicalKey(c Content) string {
	if p := strings.TrimSpace(c.Permalink); p != "" {
		return p
	}
	if l := strings.TrimSpace(c.Link); l != "" {
		return l
	}
	title := strings.TrimSpace(c.Title)
	summary := strings.TrimSpace(c.Summary)
	if title == "" && summary == "" {
		return ""
	}
	return title + "|" + summary
}

// Fingerprint returns the truncated hex SHA-1 of key.
func Fingerprint(key string) string {
	sum := sha1.Sum([]byte(key)) //nolint:gosec
	return hex.EncodeToString(sum[:])[:DigestLen]
}

// Assign returns "<source>:<digest>:<subject>". Identical content and subject
// always produce the same identifier. Contentless records hash the empty
// string and may collide with each other.
func Assign(source, subject string, c Content) string {
	return source + ":" + Fingerprint(CanonicalKey(c)) + ":" + subject
}

// SocialID returns the identifier of a post matched to a ticker.
func SocialID(platform, sourceID, ticker string) string {
	return platform + ":" + sourceID + ":" + ticker
}
