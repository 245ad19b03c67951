package intake

import (
	"net/url"
	"os"
	"strings"
)

// NormalizeDroppedPath turns what a terminal pastes when a file is dragged
// onto it into a plain path. Terminals quote, backslash-escape or send
// file:// URIs; with several files only the first one is kept. Input that
// already names an existing file is returned trimmed and otherwise untouched.
func NormalizeDroppedPath(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if _, err := os.Stat(s); err == nil {
		return s
	}
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	if s == "" {
		return ""
	}

	if q := s[0]; q == '\'' || q == '"' {
		if end := strings.IndexByte(s[1:], q); end >= 0 {
			s = s[1 : end+1]
		} else {
			s = strings.Trim(s, string(q))
		}
	} else {
		s = firstEscapedToken(s)
	}

	if strings.HasPrefix(s, "file://") {
		if u, err := url.Parse(s); err == nil && u.Path != "" {
			s = u.Path
		}
	}
	return s
}

// firstEscapedToken reads up to the first unescaped space, dropping the
// backslashes that escape characters within the token.
func firstEscapedToken(s string) string {
	var b strings.Builder
	escaped := false
	for _, r := range s {
		switch {
		case escaped:
			b.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == ' ':
			return b.String()
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
