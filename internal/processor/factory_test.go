package processor

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/cmdq/internal/eventlog"
	"github.com/roach88/cmdq/internal/testutil"
)

func TestCreate_DefaultName(t *testing.T) {
	p := Create(testutil.NewLog(), WithSink(eventlog.Discard))
	t.Cleanup(p.Halt)

	assert.Equal(t, DefaultName, p.Name())
	assert.Equal(t, "Cmd", p.Name())
	assert.True(t, p.Paused())
}

func TestBuild_UsesFactoryConfig(t *testing.T) {
	rec := eventlog.NewRecorder()
	f := Factory{Name: "jobs", Options: []Option{WithSink(rec)}}

	log := testutil.NewLog()
	p := Build(f, log)
	t.Cleanup(p.Halt)

	h := p.Submit(testutil.Record("a"))
	p.Start()
	p.Join()

	assert.Equal(t, "jobs", h.Owner)
	assert.Equal(t, []string{"a"}, log.Names())
	assert.NotEmpty(t, rec.Filter(eventlog.KindDispatchEnd))
}

func TestBuild_ZeroFactory(t *testing.T) {
	p := Build(Factory{Options: []Option{WithSink(eventlog.Discard)}}, 0)
	t.Cleanup(p.Halt)

	assert.Equal(t, DefaultName, p.Name())
}

func TestWithLogger_WritesThroughSlog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	p := New("logged", testutil.NewLog(), WithLogger(logger))
	p.Start()
	p.Halt()

	assert.Contains(t, buf.String(), "processor=logged")
	assert.Contains(t, buf.String(), "event=halt.end")
}

func TestOptions_NilIgnored(t *testing.T) {
	o := defaultOptions()
	WithSink(nil)(&o)
	WithTracer(nil)(&o)

	assert.NotNil(t, o.sink)
	assert.NotNil(t, o.tracer)
}
