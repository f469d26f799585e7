package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"
)

// sensitiveKeys are attribute keys whose values are always masked.
var sensitiveKeys = map[string]bool{
	"authorization":       true,
	"proxy-authorization": true,
	"cookie":              true,
	"set-cookie":          true,
	"phpsessid":           true,
	"x-api-key":           true,
	"api_key":             true,
	"password":            true,
	"secret":              true,
	"token":               true,
	"session":             true,
	"session_id":          true,
	"sessionid":           true,
}

// sensitiveKeywords mask any key containing them, such as "x-auth-token"
// or "csrf_token".
var sensitiveKeywords = []string{"token", "secret", "password", "auth", "cookie", "session"}

// sensitivePatterns mask string values regardless of their key.
var sensitivePatterns = []*regexp.Regexp{
	// JWT
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`),
	regexp.MustCompile(`(?i)^bearer\s+.+`),
	regexp.MustCompile(`(?i)^basic\s+[A-Za-z0-9+/=]+$`),
	// Raw Cookie header copied from a browser session.
	regexp.MustCompile(`(?i)(^|;\s*)(phpsessid|sessionid|session)=`),
}

// MaskValue replaces sensitive values.
const MaskValue = "***REDACTED***"

// DefaultMaxValueLength is the byte length above which string values are
// clipped. Raw row markup in parse errors easily exceeds it.
const DefaultMaxValueLength = 512

// ScrubHandler wraps an slog.Handler. It masks credential-bearing
// attributes and clips oversized string values before passing records on.
type ScrubHandler struct {
	handler  slog.Handler
	maxValue int
}

// ScrubOption configures a ScrubHandler.
type ScrubOption func(*ScrubHandler)

// WithMaxValueLength sets the clipping length in bytes. 0 disables clipping.
func WithMaxValueLength(n int) ScrubOption {
	return func(h *ScrubHandler) {
		if n >= 0 {
			h.maxValue = n
		}
	}
}

// NewScrubHandler wraps handler. A nil handler means slog.Default().Handler().
func NewScrubHandler(handler slog.Handler, opts ...ScrubOption) *ScrubHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	h := &ScrubHandler{handler: handler, maxValue: DefaultMaxValueLength}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Enabled delegates to the wrapped handler.
func (h *ScrubHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle scrubs the record's attributes and passes it on.
func (h *ScrubHandler) Handle(ctx context.Context, r slog.Record) error {
	scrubbed := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		scrubbed.AddAttrs(h.scrubAttr(a))
		return true
	})
	return h.handler.Handle(ctx, scrubbed)
}

// WithAttrs returns a handler with the scrubbed attributes added.
func (h *ScrubHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	scrubbed := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		scrubbed[i] = h.scrubAttr(a)
	}
	return &ScrubHandler{handler: h.handler.WithAttrs(scrubbed), maxValue: h.maxValue}
}

// WithGroup returns a handler with the given group name.
func (h *ScrubHandler) WithGroup(name string) slog.Handler {
	return &ScrubHandler{handler: h.handler.WithGroup(name), maxValue: h.maxValue}
}

func (h *ScrubHandler) scrubAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		scrubbed := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			scrubbed[i] = h.scrubAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(scrubbed...)}
	}

	if isSensitiveKey(a.Key) {
		return slog.String(a.Key, MaskValue)
	}

	if a.Value.Kind() == slog.KindString {
		s := a.Value.String()
		if isSensitiveValue(s) {
			return slog.String(a.Key, MaskValue)
		}
		return slog.String(a.Key, clip(s, h.maxValue))
	}

	return a
}

func isSensitiveKey(key string) bool {
	key = strings.ToLower(key)
	if sensitiveKeys[key] {
		return true
	}
	for _, kw := range sensitiveKeywords {
		if strings.Contains(key, kw) {
			return true
		}
	}
	return false
}

func isSensitiveValue(value string) bool {
	for _, p := range sensitivePatterns {
		if p.MatchString(value) {
			return true
		}
	}
	return false
}

// clip shortens s to at most n bytes on a rune boundary and notes the
// original length.
func clip(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return fmt.Sprintf("%s...(%d bytes)", s[:cut], len(s))
}

func level(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

// NewLogger returns a text logger writing to w behind a ScrubHandler.
// The level is Debug when verbose and Warn otherwise.
func NewLogger(w io.Writer, verbose bool, opts ...ScrubOption) *slog.Logger {
	return slog.New(NewScrubHandler(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level(verbose)}), opts...))
}

// NewJSONLogger is NewLogger with JSON output.
func NewJSONLogger(w io.Writer, verbose bool, opts ...ScrubOption) *slog.Logger {
	return slog.New(NewScrubHandler(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level(verbose)}), opts...))
}
