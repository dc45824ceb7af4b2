package store

import (
	"net/url"
	"strings"
)

// KeyPrefix prefixes every record key.
const KeyPrefix = "lastpage:result:"

// Key returns the Redis key holding the record for baseURL.
func Key(baseURL string) string {
	return KeyPrefix + normalize(baseURL)
}

// normalize lower-cases scheme and host and trims trailing slashes from the path.
// Unparseable input is only trimmed.
func normalize(baseURL string) string {
	raw := strings.TrimSpace(baseURL)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.TrimRight(raw, "/")
	}

	var b strings.Builder
	b.WriteString(strings.ToLower(u.Scheme))
	b.WriteString("://")
	b.WriteString(strings.ToLower(u.Host))
	b.WriteString(strings.TrimRight(u.EscapedPath(), "/"))
	if u.RawQuery != "" {
		b.WriteString("?")
		b.WriteString(u.RawQuery)
	}
	return b.String()
}
