// Package logging provides a single process-wide zerolog logger, tagged per
// component the way the rest of callaudiod expects to consume it.
package logging

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	defaultLogger zerolog.Logger
	once          sync.Once
)

func initDefaultLogger() {
	level := zerolog.InfoLevel
	if lvl, err := zerolog.ParseLevel(os.Getenv("CALLAUDIOD_LOG_LEVEL")); err == nil {
		level = lvl
	}

	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05.000"}
	defaultLogger = zerolog.New(output).Level(level).With().Timestamp().Logger()
}

// GetDefaultLogger returns the process-wide base logger. Callers should scope
// it with .With().Str("component", ...).Logger() rather than logging against
// it directly.
func GetDefaultLogger() *zerolog.Logger {
	once.Do(initDefaultLogger)
	return &defaultLogger
}

// Component returns a logger scoped to the given component name.
func Component(name string) zerolog.Logger {
	return GetDefaultLogger().With().Str("component", name).Logger()
}
