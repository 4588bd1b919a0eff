// Package redact strips sensitive material from strings before they reach
// logs or error responses. Errors bubbling up from the storage and auth
// layers can carry connection strings, tokens, or addresses that must not
// leak into structured log output.
package redact

import "regexp"

// Redaction placeholders.
const (
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedTokenPlaceholder      = "[REDACTED_TOKEN]"
	RedactedEmailPlaceholder      = "[REDACTED_EMAIL]"
)

// Precompiled redaction patterns, applied in order. The connection string
// pattern must run before the password pattern so the whole userinfo block
// collapses into one placeholder.
var (
	// Database connection strings with embedded credentials.
	dbConnRegex = regexp.MustCompile(`(?i)(postgres|postgresql|mysql)://[^@\s]+@`)

	// password=... / pwd: ... fragments from drivers and config dumps.
	passwordRegex = regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]['"]?)[^'"&\s]{3,}`)

	// Three-part base64url JWTs.
	jwtTokenRegex = regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`)

	// Bearer header values that are not JWTs.
	bearerRegex = regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9_\-.~+/]{8,}`)

	// Email addresses.
	emailRegex = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
)

type rule struct {
	pattern     *regexp.Regexp
	placeholder string
}

var rules = []rule{
	{dbConnRegex, RedactedCredentialPlaceholder + "@"},
	{passwordRegex, RedactedCredentialPlaceholder},
	{jwtTokenRegex, RedactedTokenPlaceholder},
	{bearerRegex, RedactedTokenPlaceholder},
	{emailRegex, RedactedEmailPlaceholder},
}

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.placeholder)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output.
// Returns the empty string for a nil error.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
