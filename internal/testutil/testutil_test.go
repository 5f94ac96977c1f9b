package testutil

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cmdq/internal/command"
)

func TestRecord_AppendsInOrder(t *testing.T) {
	l := NewLog()

	for i, name := range []string{"a", "b"} {
		cmd := Record(name)
		h := cmd.Handle(command.Meta{Seq: int64(i + 1)})
		_, err := cmd.Run(h, l)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"a", "b"}, l.Names())
	assert.Equal(t, []int64{1, 2}, l.Seqs())
	assert.Equal(t, 2, l.Len())
}

func TestRecord_SequentialIDs(t *testing.T) {
	cmd := Record("job")
	assert.Equal(t, "job-1", cmd.Handle(command.Meta{}).ID)
	assert.Equal(t, "job-2", cmd.Handle(command.Meta{}).ID)
}

func TestFail_ReturnsErrorAfterRecording(t *testing.T) {
	boom := errors.New("boom")
	l := NewLog()
	cmd := Fail("bad", boom)

	_, err := cmd.Run(cmd.Handle(command.Meta{}), l)

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"bad"}, l.Names())
}

func TestPanic_Panics(t *testing.T) {
	l := NewLog()
	cmd := Panic("p", "kaboom")

	assert.PanicsWithValue(t, "kaboom", func() {
		_, _ = cmd.Run(cmd.Handle(command.Meta{}), l)
	})
	assert.Equal(t, 1, l.Len())
}

func TestGate_BlocksUntilReleased(t *testing.T) {
	l := NewLog()
	g := NewGate("slow")
	h := g.Handle(command.Meta{Seq: 1})

	done := make(chan struct{})
	go func() {
		_, _ = g.Run(h, l)
		close(done)
	}()

	<-g.Started()
	assert.Never(t, func() bool { return l.Len() > 0 }, 50*time.Millisecond, 5*time.Millisecond)

	g.Release()
	g.Release()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("gate command did not finish after release")
	}
	assert.Equal(t, []string{"slow"}, l.Names())
}
