package logging

import (
	"log/slog"
	"regexp"
	"strings"
)

// Redacted replaces masked values.
const Redacted = "***"

// sensitiveKeys are attribute keys whose values are always masked.
var sensitiveKeys = map[string]struct{}{
	"authorization": {},
	"api_key":       {},
	"apikey":        {},
	"token":         {},
	"secret":        {},
	"password":      {},
	"jwt_secret":    {},
}

// Redactor masks credentials in log attributes.
type Redactor struct {
	patterns []*regexp.Regexp
}

// NewRedactor creates a Redactor with the built-in credential patterns:
// bearer tokens and compact JWTs appearing inside string values.
func NewRedactor() *Redactor {
	return &Redactor{
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)bearer\s+[a-z0-9\-._~+/]+=*`),
			regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]*`),
		},
	}
}

// ReplaceAttr is a slog.HandlerOptions.ReplaceAttr hook.
func (r *Redactor) ReplaceAttr(_ []string, a slog.Attr) slog.Attr {
	if _, ok := sensitiveKeys[strings.ToLower(a.Key)]; ok {
		return slog.String(a.Key, Redacted)
	}
	if a.Value.Kind() == slog.KindString {
		if s := r.RedactString(a.Value.String()); s != a.Value.String() {
			return slog.String(a.Key, s)
		}
	}
	return a
}

// RedactString masks every credential pattern found in s.
func (r *Redactor) RedactString(s string) string {
	for _, p := range r.patterns {
		if p.MatchString(s) {
			s = p.ReplaceAllString(s, Redacted)
		}
	}
	return s
}
