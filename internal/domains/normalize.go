// Package domains provides domain normalization, liveness validation, and
// blacklist filtering for competitor candidates.
package domains

import (
	"net/url"
	"strings"
)

// Normalize canonicalizes a URL or bare domain to a lowercase host with the
// scheme, "www." prefix, path, and trailing slash stripped.
func Normalize(raw string) string {
	s := strings.TrimSpace(strings.ToLower(raw))
	if s == "" {
		return ""
	}
	if strings.Contains(s, "://") {
		if u, err := url.Parse(s); err == nil && u.Host != "" {
			s = u.Host
		} else {
			s = s[strings.Index(s, "://")+3:]
		}
	}
	if idx := strings.IndexAny(s, "/?#"); idx >= 0 {
		s = s[:idx]
	}
	if idx := strings.Index(s, ":"); idx >= 0 {
		s = s[:idx]
	}
	s = strings.TrimPrefix(s, "www.")
	return strings.TrimSuffix(s, ".")
}

// SameDomain reports whether two URLs or domains refer to the same site after
// normalization.
func SameDomain(a, b string) bool {
	na := Normalize(a)
	return na != "" && na == Normalize(b)
}

// EnsureURL returns an https URL for a bare domain, leaving full URLs intact.
func EnsureURL(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return s
	}
	return "https://" + s
}
