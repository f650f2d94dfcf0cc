// Package logger builds the structured diagnostic logger used on stderr.
// It is separate from the progress log, which records run milestones.
package logger

import (
	"io"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Name is the root logger name.
const Name = "banketl"

// LevelFromString maps a level name to an hclog level, defaulting to INFO
// for names hclog does not know.
func LevelFromString(level string) hclog.Level {
	if l := hclog.LevelFromString(level); l != hclog.NoLevel {
		return l
	}
	return hclog.Info
}

// New creates a logger writing to w at the given level.
func New(w io.Writer, level string, json bool) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:       Name,
		JSONFormat: json,
		Output:     w,
		TimeFn:     time.Now,
		Level:      LevelFromString(level),
	})
}
