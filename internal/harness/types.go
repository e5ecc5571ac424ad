package harness

// Trace event types.
const (
	EventFiring = "firing"
	EventCall   = "call"
	EventReturn = "return"
	EventThrow  = "throw"
)

// TraceEvent is one rule firing or one step of a call.
type TraceEvent struct {
	Type   string   `json:"type"` // EventFiring, EventCall, EventReturn or EventThrow
	Seq    int64    `json:"seq"`
	Rule   string   `json:"rule,omitempty"`
	Method string   `json:"method,omitempty"`
	Block  string   `json:"block,omitempty"`
	Inst   string   `json:"inst,omitempty"`
	Args   []string `json:"args,omitempty"`
	Result string   `json:"result,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expect clauses and assertions match.
	Pass bool `json:"pass"`

	// Trace contains every firing and call in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Firings returns the firing events of the trace.
func (r *Result) Firings() []TraceEvent {
	out := []TraceEvent{}
	for _, e := range r.Trace {
		if e.Type == EventFiring {
			out = append(out, e)
		}
	}
	return out
}

func (r *Result) add(e TraceEvent) {
	r.Trace = append(r.Trace, e)
}
