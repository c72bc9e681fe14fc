// Package logging builds the console logger used by the CLI.
package logging

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a console logger on stderr at the given level
// (debug, info, warn or error). Levels are coloured when stderr is a terminal
// and NO_COLOR is unset.
func New(level string) (*zap.Logger, error) {
	return NewWithWriter(zapcore.Lock(os.Stderr), level, colourFor(os.Stderr.Fd()))
}

func colourFor(fd uintptr) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func NewWithWriter(w zapcore.WriteSyncer, level string, colour bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	if colour {
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), w, lvl)
	return zap.New(core), nil
}
