package platforms

import (
	"encoding/json"
	"strings"
)

// graphErrorEnvelope is the error shape shared by both Graph-style platforms.
type graphErrorEnvelope struct {
	Error struct {
		Message      string `json:"message"`
		Type         string `json:"type"`
		Code         int    `json:"code"`
		ErrorSubcode int    `json:"error_subcode"`
		FBTraceID    string `json:"fbtrace_id"`
	} `json:"error"`
}

// ErrorMessage extracts the platform error message from a Graph error
// payload, falling back to a raw body snippet when the envelope does not
// decode.
func ErrorMessage(body []byte) string {
	var env graphErrorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error.Message != "" {
		return env.Error.Message
	}
	return BodySnippet(body)
}

// BodySnippet bounds a raw response body for error values and logs.
func BodySnippet(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > 512 {
		body = body[:512]
	}
	return strings.TrimSpace(string(body))
}
