package harness

// TraceRecord is one audit record in the trace.
type TraceRecord struct {
	Seq    int64  `json:"seq"`
	Flag   string `json:"flag"`
	Action string `json:"action"`
	Reason string `json:"reason"`
	Actor  string `json:"actor"`
}

// TraceEvent is one executed flow step and the audit records it produced.
type TraceEvent struct {
	Step        int           `json:"step"`
	Op          string        `json:"op"` // "create" or "toggle"
	Flag        string        `json:"flag"`
	OperationID string        `json:"operation_id"`
	Outcome     string        `json:"outcome"` // "ok" or the error code
	Records     []TraceRecord `json:"records"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace holds one event per flow step. Setup steps are not traced.
	Trace []TraceEvent `json:"trace"`

	// Errors describes each failed expectation or assertion.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
