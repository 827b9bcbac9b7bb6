package sparks

import (
	"bytes"
	"io"
	"log"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newWriterLogger(prefix string, debug bool, w io.Writer) *DefaultLogger {
	return &DefaultLogger{
		debug:  debug,
		prefix: prefix,
		out:    log.New(w, "", 0),
		err:    log.New(w, "", 0),
	}
}

func TestDefaultLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	l := newWriterLogger("sparks", false, &buf)

	l.Debugf("hidden %d", 1)
	assert.Empty(t, buf.String())

	l.SetDebug(true)
	assert.True(t, l.DebugEnabled())
	l.Debugf("shown %d", 2)
	l.Infof("info")
	l.Warnf("warn")
	l.Errorf("err")

	assert.Equal(t, "[sparks] DEBUG: shown 2\n[sparks] INFO: info\n[sparks] WARN: warn\n[sparks] ERROR: err\n", buf.String())
}

func TestDefaultLogger_NoPrefix(t *testing.T) {
	var buf bytes.Buffer
	newWriterLogger("", false, &buf).Infof("x=%v", 3)
	assert.Equal(t, "INFO: x=3\n", buf.String())
}

func TestLoggingModule_DefaultPrefix(t *testing.T) {
	app := NewAppBuilder().UseModule(LoggingModule{Debug: true}).Build()
	l, ok := Resource[DefaultLogger](app)
	assert.True(t, ok)
	assert.Equal(t, "sparks", l.prefix)
	assert.True(t, app.Logger().DebugEnabled())
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.SetDebug(true)
	assert.False(t, l.DebugEnabled())
	l.Errorf("ignored")
}

func TestEmitterLogger_TagsLines(t *testing.T) {
	var buf bytes.Buffer
	id := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	l := EmitterLogger(newWriterLogger("", false, &buf), "fire%", id)

	l.Warnf("dropped %d", 4)
	l.Debugf("hidden")
	assert.False(t, l.DebugEnabled())
	assert.Equal(t, "WARN: emitter fire% 00000000-0000-0000-0000-000000000001: dropped 4\n", buf.String())
}

func TestLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "LOG", Level(42).String())
}
