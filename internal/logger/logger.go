// Package logger configures the global zerolog logger from command-line options.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger holds logging options, embedded into go-flags option groups.
type Logger struct {
	Level      string `long:"log-level"       env:"LOG_LEVEL"       description:"Log level" choice:"trace" choice:"debug" choice:"info" choice:"warn" choice:"error" choice:"fatal" choice:"panic" choice:"disabled" default:"info"`
	Format     string `long:"log-format"      env:"LOG_FORMAT"      description:"Log output format" choice:"text" choice:"json" default:"text"`
	TimeFormat string `long:"log-time-format" env:"LOG_TIME_FORMAT" description:"Timestamp layout for text output" default:"2006-01-02T15:04:05"`
	NoColor    bool   `long:"log-no-color"    env:"LOG_NO_COLOR"    description:"Disable colors in text output"`
}

// Setup applies the options to the global logger writing to stderr.
func (l Logger) Setup() {
	log.Logger = l.New(os.Stderr)
	zerolog.SetGlobalLevel(l.level())
}

// New returns a logger writing to w with the configured format.
func (l Logger) New(w io.Writer) zerolog.Logger {
	if strings.EqualFold(l.Format, "json") {
		zerolog.TimeFieldFormat = time.RFC3339
		return zerolog.New(w).With().Timestamp().Logger()
	}

	tf := l.TimeFormat
	if tf == "" {
		tf = time.RFC3339
	}

	return zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    l.NoColor,
		TimeFormat: tf,
	}).With().Timestamp().Logger()
}

func (l Logger) level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(l.Level)))
	if err != nil || l.Level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}
