package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cmdq/internal/command"
	"github.com/roach88/cmdq/internal/eventlog"
	"github.com/roach88/cmdq/internal/store"
)

// seedJournal writes a small fixed journal and returns its path.
func seedJournal(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "cmdq.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	h := &command.Handle{
		Meta: command.Meta{Priority: 10, Seq: 1, Tags: command.NewTags("io"), Owner: "Cmd"},
		Name: "load",
		ID:   "load-1",
	}
	j := store.NewJournal(st, nil)
	for _, ev := range []eventlog.Event{
		{Kind: eventlog.KindSubmit, Processor: "Cmd", Handle: h},
		{Kind: eventlog.KindStart, Processor: "Cmd"},
		{Kind: eventlog.KindDispatchBegin, Processor: "Cmd", Handle: h},
		{Kind: eventlog.KindHandlerError, Processor: "Cmd", Handle: h, Err: errors.New("disk full")},
		{Kind: eventlog.KindDispatchEnd, Processor: "Cmd", Handle: h, Depth: 2},
		{Kind: eventlog.KindStart, Processor: "Other"},
	} {
		j.Emit(ev)
	}

	n, err := st.Count(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, 6, n)
	return dbPath
}

func runTraceCommand(format string, args ...string) (*bytes.Buffer, error) {
	buf := &bytes.Buffer{}
	cmd := NewTraceCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	return buf, cmd.Execute()
}

func TestTraceMissingDatabaseFlag(t *testing.T) {
	_, err := runTraceCommand("text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestTraceText(t *testing.T) {
	dbPath := seedJournal(t)

	buf, err := runTraceCommand("text", "--db", dbPath, "--processor", "Cmd")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "dispatch.begin")
	assert.Contains(t, out, `error="disk full"`)
	assert.Contains(t, out, "depth=2")
	assert.Contains(t, out, "tags=io")
	assert.NotContains(t, out, "Other")
	assert.Contains(t, out, "5 events: 1 dispatches, 1 handler errors, 0 warnings")
}

func TestTraceJSONFilters(t *testing.T) {
	dbPath := seedJournal(t)

	buf, err := runTraceCommand("json", "--db", dbPath, "--kind", "start")
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   TraceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Events, 2)
	assert.Equal(t, "Cmd", resp.Data.Events[0].Processor)
	assert.Equal(t, "Other", resp.Data.Events[1].Processor)
	assert.Equal(t, 2, resp.Data.Stats.TotalEvents)
}

func TestTraceLimit(t *testing.T) {
	dbPath := seedJournal(t)

	buf, err := runTraceCommand("json", "--db", dbPath, "--limit", "3")
	require.NoError(t, err)

	var resp struct {
		Data TraceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	require.Len(t, resp.Data.Events, 3)
	assert.Equal(t, "submit", resp.Data.Events[0].Kind)

	_, err = runTraceCommand("json", "--db", dbPath, "--limit", "-1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTraceEmptyJournal(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.db")

	buf, err := runTraceCommand("text", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No events found.")
}

func TestTraceBadDatabase(t *testing.T) {
	_, err := runTraceCommand("text", "--db", filepath.Join(t.TempDir(), "missing", "dir", "x.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
