package api

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrBadPlaylistURL is returned when no playlist id can be extracted from
// the given argument.
var ErrBadPlaylistURL = errors.New("api: not a playlist url")

// ParsePlaylistURL extracts the playlist id from a YouTube or Invidious
// playlist URL (the list query parameter). A bare playlist id passes
// through unchanged.
func ParsePlaylistURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrBadPlaylistURL
	}
	if isPlaylistID(raw) {
		return raw, nil
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", fmt.Errorf("%w: %s", ErrBadPlaylistURL, raw)
	}
	id := parsed.Query().Get("list")
	if !isPlaylistID(id) {
		return "", fmt.Errorf("%w: %s", ErrBadPlaylistURL, raw)
	}
	return id, nil
}

// isPlaylistID matches YouTube playlist ids: the PL prefix followed by the
// id alphabet.
func isPlaylistID(s string) bool {
	if !strings.HasPrefix(s, "PL") || len(s) < 4 {
		return false
	}
	for _, r := range s[2:] {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return false
		}
	}
	return true
}
