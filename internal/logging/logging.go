// Package logging configures zerolog for the binaries and scrubs credentials from logged text.
package logging

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	schemeTokenPattern = regexp.MustCompile(`(?i)\b(Bearer|Token)\s+[A-Za-z0-9\-._~+/]+=*`)
	keyValuePattern    = regexp.MustCompile(
		`(?i)\b(token|secret|password|authorization|api_?key|access_token|x-vs-auth)("?\s*[:=]\s*"?)([^\s,;&"]+)`,
	)
)

// Options configures Setup.
type Options struct {
	Level   string
	DevMode bool
	Service string
	Version string
	// Out defaults to os.Stderr.
	Out io.Writer
}

// Setup sets the global level and the global logger and returns it.
func Setup(opts Options) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("parsing log level %q: %w", opts.Level, err)
	}
	zerolog.SetGlobalLevel(level)

	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	if opts.DevMode {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger()
	} else {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
		log.Logger = zerolog.New(out).With().
			Timestamp().
			Str("service", opts.Service).
			Str("version", opts.Version).
			Logger()
	}
	return log.Logger, nil
}

// Redact removes tokens, API keys and other secrets from free text such as URLs and bodies.
func Redact(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	redacted := schemeTokenPattern.ReplaceAllString(trimmed, "$1 [REDACTED]")
	return keyValuePattern.ReplaceAllString(redacted, "${1}${2}[REDACTED]")
}
