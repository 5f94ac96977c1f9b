package eventlog

import (
	"bytes"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cmdq/internal/command"
)

func TestKind_Valid(t *testing.T) {
	for _, k := range Kinds {
		assert.True(t, k.Valid(), "kind %s", k)
	}
	assert.False(t, Kind("pause").Valid())
}

func TestRecorder_ConcurrentEmit(t *testing.T) {
	r := NewRecorder()
	const goroutines = 10

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Emit(Event{Kind: KindSubmit})
		}()
	}
	wg.Wait()

	assert.Len(t, r.Events(), goroutines)
	assert.Len(t, r.Filter(KindSubmit), goroutines)
	assert.Empty(t, r.Filter(KindStart))

	r.Reset()
	assert.Empty(t, r.Kinds())
}

func TestRecorder_EventsIsCopy(t *testing.T) {
	r := NewRecorder()
	r.Emit(Event{Kind: KindStart})

	got := r.Events()
	got[0].Kind = KindHaltEnd

	assert.Equal(t, []Kind{KindStart}, r.Kinds())
}

func TestMulti_FansOutAndSkipsNil(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	s := Multi(a, nil, b)

	s.Emit(Event{Kind: KindControl})

	assert.Equal(t, []Kind{KindControl}, a.Kinds())
	assert.Equal(t, []Kind{KindControl}, b.Kinds())
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() { Discard.Emit(Event{Kind: KindStart}) })
}

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestSlogSink_HandlerErrorAtErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSlogSink(newTestLogger(&buf))

	h := &command.Handle{Meta: command.Meta{Priority: 10, Seq: 4, Owner: "Cmd", Tags: command.NewTags("io")}, Name: "write", ID: "id-1"}
	sink.Emit(Event{Kind: KindHandlerError, Processor: "Cmd", Handle: h, Err: errors.New("disk full")})

	out := buf.String()
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, `msg="command failed"`)
	assert.Contains(t, out, "event=handler.error")
	assert.Contains(t, out, "command=write")
	assert.Contains(t, out, "seq=4")
	assert.Contains(t, out, "priority=10")
	assert.Contains(t, out, "id=id-1")
	assert.Contains(t, out, "tags=[io]")
	assert.Contains(t, out, `error="disk full"`)
}

func TestSlogSink_Levels(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		level string
	}{
		{"lifecycle", Event{Kind: KindStart}, "level=INFO"},
		{"dispatch", Event{Kind: KindDispatchBegin}, "level=DEBUG"},
		{"warning", Event{Kind: KindSubmit, Err: errors.New("negative priority")}, "level=WARN"},
		{"control", Event{Kind: KindControl}, "level=INFO"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewSlogSink(newTestLogger(&buf)).Emit(tt.event)
			assert.Contains(t, buf.String(), tt.level)
		})
	}
}

func TestSlogSink_DepthOnlyWhereMeaningful(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSlogSink(newTestLogger(&buf))

	sink.Emit(Event{Kind: KindDispatchEnd, Depth: 3})
	require.Contains(t, buf.String(), "depth=3")

	buf.Reset()
	sink.Emit(Event{Kind: KindStart, Depth: 3})
	assert.NotContains(t, buf.String(), "depth")
}

func TestSlogSink_NilLoggerUsesDefault(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(newTestLogger(&buf))
	defer slog.SetDefault(prev)

	NewSlogSink(nil).Emit(Event{Kind: KindHaltEnd, Processor: "Cmd"})

	assert.Contains(t, buf.String(), `msg="processor halted"`)
}
