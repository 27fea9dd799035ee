// Package logger provides the colored, prefixed logger shared by all components.
package logger

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/beka-birhanu/duo-platformer/config"
	"github.com/beka-birhanu/duo-platformer/service/i"
)

var ErrEmptyPrefix = errors.New("logger prefix is empty")

var _ i.Logger = &Logger{}

// Logger writes "[PREFIX] [LEVEL] message" lines, coloring the prefix and level.
type Logger struct {
	l *log.Logger
}

// New creates a Logger that writes to w. color is one of the config color constants.
func New(prefix, color string, w io.Writer) (*Logger, error) {
	if prefix == "" {
		return nil, ErrEmptyPrefix
	}
	if w == nil {
		w = io.Discard
	}

	p := fmt.Sprintf("%s[%s]%s ", color, prefix, config.ColorReset)
	return &Logger{l: log.New(w, p, log.LstdFlags)}, nil
}

// Discard returns a Logger that drops everything.
func Discard() *Logger {
	return &Logger{l: log.New(io.Discard, "", 0)}
}

// Info implements i.Logger.
func (lg *Logger) Info(msg string) {
	lg.l.Printf("%s[INFO]%s %s", config.LogInfoColor, config.LogColorReset, msg)
}

// Warning implements i.Logger.
func (lg *Logger) Warning(msg string) {
	lg.l.Printf("%s[WARNING]%s %s", config.LogWarningColor, config.LogColorReset, msg)
}

// Error implements i.Logger.
func (lg *Logger) Error(msg string) {
	lg.l.Printf("%s[ERROR]%s %s", config.LogErrorColor, config.LogColorReset, msg)
}
