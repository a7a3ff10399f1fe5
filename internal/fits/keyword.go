package fits

import "strings"

// IsKeyword reports whether token is a header keyword: upper-case ASCII
// letters, digits, hyphen and underscore. Length is not capped at the
// classic eight characters so long-keyword conventions stay addressable.
func IsKeyword(token string) bool {
	if token == "" {
		return false
	}
	for i := 0; i < len(token); i++ {
		c := token[i]
		switch {
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_':
		default:
			return false
		}
	}
	return true
}

// NormalizeKeyword upper-cases and trims a keyword for header lookups.
func NormalizeKeyword(keyword string) string {
	return strings.ToUpper(strings.TrimSpace(keyword))
}
