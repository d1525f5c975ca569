package mock

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fwojciec/recipefeed"
)

var _ recipefeed.Logger = (*Logger)(nil)

// LogLine is one line captured by Logger.
type LogLine struct {
	Level         string
	Msg           string
	KeysAndValues []any
}

// Logger is a recipefeed.Logger that records every line.
type Logger struct {
	mu    sync.Mutex
	lines []LogLine
}

func (l *Logger) Info(msg string, keysAndValues ...any) {
	l.record("INFO", msg, keysAndValues)
}

func (l *Logger) Success(msg string, keysAndValues ...any) {
	l.record("SUCCESS", msg, keysAndValues)
}

func (l *Logger) Warn(msg string, keysAndValues ...any) {
	l.record("WARNING", msg, keysAndValues)
}

func (l *Logger) Error(msg string, keysAndValues ...any) {
	l.record("ERROR", msg, keysAndValues)
}

func (l *Logger) record(level, msg string, kv []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, LogLine{Level: level, Msg: msg, KeysAndValues: kv})
}

// Lines returns a copy of the recorded lines.
func (l *Logger) Lines() []LogLine {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogLine, len(l.lines))
	copy(out, l.lines)
	return out
}

// Messages returns the recorded lines rendered as "LEVEL msg k=v ...".
func (l *Logger) Messages() []string {
	lines := l.Lines()
	out := make([]string, len(lines))
	for i, line := range lines {
		var b strings.Builder
		b.WriteString(line.Level)
		b.WriteString(" ")
		b.WriteString(line.Msg)
		for j := 0; j+1 < len(line.KeysAndValues); j += 2 {
			fmt.Fprintf(&b, " %v=%v", line.KeysAndValues[j], line.KeysAndValues[j+1])
		}
		out[i] = b.String()
	}
	return out
}

// Count returns the number of lines recorded at level.
func (l *Logger) Count(level string) int {
	n := 0
	for _, line := range l.Lines() {
		if line.Level == level {
			n++
		}
	}
	return n
}
