package harness

// TraceEvent is one worker-side event in a scenario run.
type TraceEvent struct {
	Kind     string `json:"kind"`
	Command  string `json:"command"`
	Priority int    `json:"priority"`
	Seq      int64  `json:"seq"`
	Depth    int    `json:"depth,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every expectation held and no step misbehaved.
	Pass bool `json:"pass"`

	// Executed lists command names in the order they ran.
	Executed []string `json:"executed"`

	// Failed lists commands that returned an error or panicked.
	Failed []string `json:"failed"`

	// Pending is the number of entries still queued after halt.
	Pending int `json:"pending"`

	// Trace contains dispatch, handler error and control events in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Executed: []string{},
		Failed:   []string{},
		Trace:    []TraceEvent{},
		Errors:   []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
