package sparks

import (
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/google/uuid"
)

// Logger is what systems and renderers report through. Pool errors never
// stop a frame; they end up here.
type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (lv Level) String() string {
	switch lv {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return "LOG"
}

// DefaultLogger writes debug and info lines to stdout, warnings and errors
// to stderr.
type DefaultLogger struct {
	mu     sync.Mutex
	debug  bool
	prefix string
	out    *log.Logger
	err    *log.Logger
}

func NewDefaultLogger(prefix string, debug bool) *DefaultLogger {
	flags := log.LstdFlags | log.Lmicroseconds
	return &DefaultLogger{
		debug:  debug,
		prefix: prefix,
		out:    log.New(os.Stdout, "", flags),
		err:    log.New(os.Stderr, "", flags),
	}
}

func (l *DefaultLogger) DebugEnabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.debug
}

func (l *DefaultLogger) SetDebug(enabled bool) {
	l.mu.Lock()
	l.debug = enabled
	l.mu.Unlock()
}

func (l *DefaultLogger) emit(level Level, format string, args ...any) {
	if level == LevelDebug && !l.DebugEnabled() {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if l.prefix != "" {
		msg = fmt.Sprintf("[%s] %s: %s", l.prefix, level, msg)
	} else {
		msg = fmt.Sprintf("%s: %s", level, msg)
	}
	if level >= LevelWarn {
		l.err.Print(msg)
		return
	}
	l.out.Print(msg)
}

func (l *DefaultLogger) Debugf(format string, args ...any) { l.emit(LevelDebug, format, args...) }
func (l *DefaultLogger) Infof(format string, args ...any)  { l.emit(LevelInfo, format, args...) }
func (l *DefaultLogger) Warnf(format string, args ...any)  { l.emit(LevelWarn, format, args...) }
func (l *DefaultLogger) Errorf(format string, args ...any) { l.emit(LevelError, format, args...) }

// emitterLogger tags every line with the emitter it concerns.
type emitterLogger struct {
	Logger
	tag string
}

// EmitterLogger scopes base to one emitter: lines read "emitter <name> <id>: ...".
func EmitterLogger(base Logger, name string, id uuid.UUID) Logger {
	return &emitterLogger{Logger: base, tag: fmt.Sprintf("emitter %s %s: ", name, id)}
}

func (l *emitterLogger) Debugf(format string, args ...any) { l.Logger.Debugf("%s%s", l.tag, fmt.Sprintf(format, args...)) }
func (l *emitterLogger) Infof(format string, args ...any)  { l.Logger.Infof("%s%s", l.tag, fmt.Sprintf(format, args...)) }
func (l *emitterLogger) Warnf(format string, args ...any)  { l.Logger.Warnf("%s%s", l.tag, fmt.Sprintf(format, args...)) }
func (l *emitterLogger) Errorf(format string, args ...any) { l.Logger.Errorf("%s%s", l.tag, fmt.Sprintf(format, args...)) }

// LoggingModule installs a DefaultLogger resource prefixed "sparks" unless told otherwise.
type LoggingModule struct {
	Prefix string
	Debug  bool
}

func (m LoggingModule) Install(app *App, cmd *Commands) {
	prefix := m.Prefix
	if prefix == "" {
		prefix = "sparks"
	}
	app.addResources(NewDefaultLogger(prefix, m.Debug))
}

// discardLogger backs App.Logger before a LoggingModule is installed, so
// headless tools and tests stay quiet.
type discardLogger struct{}

func NewNopLogger() Logger { return discardLogger{} }

func (discardLogger) DebugEnabled() bool    { return false }
func (discardLogger) SetDebug(bool)         {}
func (discardLogger) Debugf(string, ...any) {}
func (discardLogger) Infof(string, ...any)  {}
func (discardLogger) Warnf(string, ...any)  {}
func (discardLogger) Errorf(string, ...any) {}

// Logger returns the installed logger, or a discarding one. Never nil.
func (app *App) Logger() Logger {
	if app == nil || app.resources == nil {
		return NewNopLogger()
	}
	if l, ok := Resource[DefaultLogger](app); ok {
		return l
	}
	for _, r := range app.resources {
		if l, ok := r.(Logger); ok {
			return l
		}
	}
	return NewNopLogger()
}
