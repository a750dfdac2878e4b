// File path: internal/llm/providers/json.go
package providers

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ResponseError reports a model response that could not be decoded as JSON.
// The raw text is retained for diagnostics.
type ResponseError struct {
	Raw string
	Err error
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("decode model response: %v", e.Err)
}

func (e *ResponseError) Unwrap() error { return e.Err }

// decodeJSON strips an optional markdown fence from the model output and
// validates the remainder as a single JSON document. Anything that is not
// valid JSON fails with a *ResponseError rather than returning partial data.
func decodeJSON(raw string) (json.RawMessage, error) {
	text := stripFence(raw)
	if strings.TrimSpace(text) == "" {
		return nil, &ResponseError{Raw: raw, Err: fmt.Errorf("empty response")}
	}
	var probe any
	if err := json.Unmarshal([]byte(text), &probe); err != nil {
		return nil, &ResponseError{Raw: raw, Err: err}
	}
	return json.RawMessage(text), nil
}

// stripFence removes a ```json ... ``` or ``` ... ``` wrapper when present.
func stripFence(s string) string {
	if idx := strings.Index(s, "```json"); idx >= 0 {
		rest := s[idx+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			rest = rest[:end]
		}
		return strings.TrimSpace(rest)
	}
	if idx := strings.Index(s, "```"); idx >= 0 {
		rest := s[idx+len("```"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			rest = rest[:end]
		}
		return strings.TrimSpace(rest)
	}
	return strings.TrimSpace(s)
}
