package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Logger writes leveled diagnostics. Every level goes to stderr (or Out)
// so stdout carries only command results and --json envelopes.
type Logger struct {
	Verbose bool
	Debug   bool

	// Out overrides stderr; tests capture it.
	Out io.Writer
}

var (
	infoPrefix  = color.New(color.FgGreen).SprintFunc()
	debugPrefix = color.New(color.FgCyan).SprintFunc()
	warnPrefix  = color.New(color.FgYellow).SprintFunc()
	errorPrefix = color.New(color.FgRed).SprintFunc()
)

func (l Logger) Infof(msg string, args ...any) {
	if l.Verbose || l.Debug {
		l.write(infoPrefix("[info] "), msg, args)
	}
}

func (l Logger) Debugf(msg string, args ...any) {
	if l.Debug {
		l.write(debugPrefix("[debug] "), msg, args)
	}
}

// Warnf only prints in verbose or debug mode so spinners stay clean.
func (l Logger) Warnf(msg string, args ...any) {
	if l.Verbose || l.Debug {
		l.write(warnPrefix("[warn] "), msg, args)
	}
}

// WarnfAlways prints a warning regardless of verbosity.
func (l Logger) WarnfAlways(msg string, args ...any) {
	l.write(warnPrefix("[warn] "), msg, args)
}

func (l Logger) Errorf(msg string, args ...any) {
	l.write(errorPrefix("[error] "), msg, args)
}

func (l Logger) write(prefix, msg string, args []any) {
	out := l.Out
	if out == nil {
		out = os.Stderr
	}
	fmt.Fprintln(out, prefix+fmt.Sprintf(msg, args...))
}
