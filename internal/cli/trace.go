package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/cmdq/internal/eventlog"
	"github.com/roach88/cmdq/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database  string
	Processor string // optional - filter to one processor
	Kind      string // optional - filter to one event kind
	Limit     int
}

// TraceEvent is a journal record as printed by the trace command.
type TraceEvent struct {
	ID        int64    `json:"id"`
	Kind      string   `json:"kind"`
	Processor string   `json:"processor"`
	Command   string   `json:"command,omitempty"`
	HandleID  string   `json:"handle_id,omitempty"`
	Priority  int      `json:"priority"`
	Seq       int64    `json:"seq"`
	Tags      []string `json:"tags,omitempty"`
	Depth     int      `json:"depth,omitempty"`
	Error     string   `json:"error,omitempty"`
	Time      string   `json:"time"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Events []TraceEvent `json:"events"`
	Stats  TraceStats   `json:"stats"`
}

// TraceStats holds summary statistics for the trace.
type TraceStats struct {
	TotalEvents   int `json:"total_events"`
	Dispatches    int `json:"dispatches"`
	HandlerErrors int `json:"handler_errors"`
	Warnings      int `json:"warnings"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show journaled processor events",
		Long: `Show processor events journaled by "cmdq run --db".

Events are printed in the order they were written. Filter by processor
name or event kind (submit, start, join.begin, join.end, halt.begin,
halt.end, dispatch.begin, dispatch.end, handler.error, control).

Examples:
  cmdq trace --db ./cmdq.db
  cmdq trace --db ./cmdq.db --processor Cmd --kind handler.error
  cmdq trace --db ./cmdq.db --limit 20 --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Processor, "processor", "", "filter to one processor")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "filter to one event kind")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of events (0 = all)")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.Limit < 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid limit %d: must be >= 0", opts.Limit))
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	records, err := st.Records(ctx, store.Filter{
		Processor: opts.Processor,
		Kind:      opts.Kind,
		Limit:     opts.Limit,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}

	result := buildTraceResult(records)

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}
		return formatter.JSON(CLIResponse{Status: "ok", Data: result})
	}
	return outputTraceText(cmd.OutOrStdout(), result, opts.Verbose)
}

// buildTraceResult converts journal records to trace events and counts them.
func buildTraceResult(records []store.Record) TraceResult {
	result := TraceResult{Events: make([]TraceEvent, 0, len(records))}
	for _, r := range records {
		result.Events = append(result.Events, TraceEvent{
			ID:        r.ID,
			Kind:      r.Kind,
			Processor: r.Processor,
			Command:   r.Command,
			HandleID:  r.HandleID,
			Priority:  r.Priority,
			Seq:       r.Seq,
			Tags:      r.Tags,
			Depth:     r.Depth,
			Error:     r.Error,
			Time:      r.CreatedAt.UTC().Format(time.RFC3339Nano),
		})

		switch {
		case r.Kind == string(eventlog.KindDispatchBegin):
			result.Stats.Dispatches++
		case r.Kind == string(eventlog.KindHandlerError):
			result.Stats.HandlerErrors++
		case r.Error != "":
			result.Stats.Warnings++
		}
	}
	result.Stats.TotalEvents = len(result.Events)
	return result
}

func outputTraceText(w io.Writer, result TraceResult, verbose bool) error {
	if len(result.Events) == 0 {
		fmt.Fprintln(w, "No events found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPROCESSOR\tKIND\tCOMMAND\tPRIORITY\tSEQ\tDETAIL")
	for _, ev := range result.Events {
		var detail []string
		if ev.Depth > 0 {
			detail = append(detail, fmt.Sprintf("depth=%d", ev.Depth))
		}
		if len(ev.Tags) > 0 {
			detail = append(detail, "tags="+strings.Join(ev.Tags, ","))
		}
		if verbose && ev.HandleID != "" {
			detail = append(detail, "id="+ev.HandleID)
		}
		if ev.Error != "" {
			detail = append(detail, fmt.Sprintf("error=%q", ev.Error))
		}

		command, priority, seq := "-", "-", "-"
		if ev.Command != "" {
			command = ev.Command
			priority = fmt.Sprint(ev.Priority)
			seq = fmt.Sprint(ev.Seq)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			ev.ID, ev.Processor, ev.Kind, command, priority, seq, strings.Join(detail, " "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d events: %d dispatches, %d handler errors, %d warnings\n",
		result.Stats.TotalEvents, result.Stats.Dispatches, result.Stats.HandlerErrors, result.Stats.Warnings)
	return nil
}
