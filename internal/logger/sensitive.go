// sensitive.go
package logger

import (
	"regexp"
)

type redaction struct {
	pattern     *regexp.Regexp
	replacement string
}

// sensitiveData lists secrets that must not reach log output
var sensitiveData = []redaction{
	// Bearer tokens
	{regexp.MustCompile(`(?i)(bearer\s+)([A-Za-z0-9-._~+/]+=*)`), "$1[REDACTED]"},
	// key=value secrets in query strings
	{regexp.MustCompile(`(?i)((?:api[_-]?key|access[_-]?token|token|secret|passw(?:or)?d)=)([^&;,\s]+)`), "$1[REDACTED]"},
	// user:password@ in database DSNs
	{regexp.MustCompile(`([^\s:/@]+:)([^\s@]+)@`), "$1[REDACTED]@"},
}

// RedactSensitiveData replaces sensitive information with "[REDACTED]"
func RedactSensitiveData(input string) string {
	if input == "" {
		return input
	}
	for _, r := range sensitiveData {
		input = r.pattern.ReplaceAllString(input, r.replacement)
	}
	return input
}
