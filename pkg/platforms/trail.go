package platforms

import "fmt"

// TrailStep summarizes one request made during a multi-step lookup.
type TrailStep struct {
	Request string `json:"request"`
	Status  int    `json:"status"`
	Note    string `json:"note,omitempty"`
}

// Trail is the ordered diagnostic record of an account resolution attempt.
// It is returned alongside failures, not just logged, so operators can see
// exactly which lookup step went wrong.
type Trail []TrailStep

// Add appends a step and returns the extended trail.
func (t Trail) Add(request string, status int, note string) Trail {
	return append(t, TrailStep{Request: request, Status: status, Note: note})
}

// Lines renders the trail one step per line for logs and error responses.
func (t Trail) Lines() []string {
	out := make([]string, 0, len(t))
	for i, s := range t {
		line := fmt.Sprintf("%d. %s -> %d", i+1, s.Request, s.Status)
		if s.Note != "" {
			line += " (" + s.Note + ")"
		}
		out = append(out, line)
	}
	return out
}
