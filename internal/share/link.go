package share

import (
	"net/url"
	"strings"
)

// Link joins a base URL and a token into a share link of the shape
// <base>/<token>. The base's trailing slash is normalized away.
func Link(base, token string) string {
	return strings.TrimRight(base, "/") + "/" + token
}

// TokenFromLink extracts the share token from user-supplied input. It
// accepts a full URL ("http://host/<token>"), a bare path ("/<token>"),
// or the token itself. Returns "" when there is nothing that looks like
// a token.
func TokenFromLink(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return ""
		}
		raw = u.Path
	}

	// Last non-empty path segment is the token.
	raw = strings.Trim(raw, "/")
	if i := strings.LastIndex(raw, "/"); i >= 0 {
		raw = raw[i+1:]
	}
	return raw
}
