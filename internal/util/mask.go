package util

import "strings"

// HideToken obscures a bearer secret for logging, showing only the first and last few characters.
func HideToken(token string) string {
	switch n := len(token); {
	case n > 8:
		return token[:4] + "..." + token[n-4:]
	case n > 4:
		return token[:2] + "..." + token[n-2:]
	case n > 2:
		return token[:1] + "..." + token[n-1:]
	default:
		return token
	}
}

// MaskAuthorizationHeader masks an Authorization value while keeping the scheme prefix,
// e.g. "Bearer eyJh...9xQ".
func MaskAuthorizationHeader(value string) string {
	parts := strings.SplitN(strings.TrimSpace(value), " ", 2)
	if len(parts) < 2 {
		return HideToken(value)
	}
	return parts[0] + " " + HideToken(parts[1])
}

// MaskSensitiveHeaderValue masks Authorization and token-like header values; other values
// are returned unchanged.
func MaskSensitiveHeaderValue(key, value string) string {
	lowerKey := strings.ToLower(strings.TrimSpace(key))
	switch {
	case strings.Contains(lowerKey, "authorization"):
		return MaskAuthorizationHeader(value)
	case strings.Contains(lowerKey, "token"), strings.Contains(lowerKey, "secret"):
		return HideToken(value)
	default:
		return value
	}
}
