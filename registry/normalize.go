package registry

import "strings"

const httpsPrefix = "https://"

// Normalize canonicalizes a user-submitted URL for lookup.
//
// Surrounding whitespace is removed and the whole string is lower-cased,
// then "https://" is prepended unless already present. The path is folded
// too, which means mixed-case registered URLs can never match a submission.
// Registered URLs are therefore expected to be written in lower case.
//
//	Normalize("  https://www.example.com   ") // "https://www.example.com"
//	Normalize("www.example.com")              // "https://www.example.com"
//	Normalize("HTTPS://WWW.EXAMPLE.COM")      // "https://www.example.com"
//
// Normalize is idempotent.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if !strings.HasPrefix(s, httpsPrefix) {
		s = httpsPrefix + s
	}
	return s
}
