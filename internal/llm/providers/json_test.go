// File path: internal/llm/providers/json_test.go
package providers

import (
	"errors"
	"testing"
)

func TestDecodeJSONPlain(t *testing.T) {
	raw, err := decodeJSON(`{"a": 1}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(raw) != `{"a": 1}` {
		t.Fatalf("unexpected payload: %s", raw)
	}
}

func TestDecodeJSONFenced(t *testing.T) {
	cases := []string{
		"```json\n{\"a\": 1}\n```",
		"```\n{\"a\": 1}\n```",
		"Here you go:\n```json\n{\"a\": 1}\n```\nLet me know if you need more.",
	}
	for _, in := range cases {
		raw, err := decodeJSON(in)
		if err != nil {
			t.Fatalf("decodeJSON(%q): %v", in, err)
		}
		if string(raw) != `{"a": 1}` {
			t.Fatalf("decodeJSON(%q) = %s", in, raw)
		}
	}
}

func TestDecodeJSONInvalid(t *testing.T) {
	_, err := decodeJSON("this is not json")
	if err == nil {
		t.Fatal("expected error for non-JSON input")
	}
	var respErr *ResponseError
	if !errors.As(err, &respErr) {
		t.Fatalf("expected *ResponseError, got %T", err)
	}
	if respErr.Raw != "this is not json" {
		t.Fatalf("expected raw text to be retained, got %q", respErr.Raw)
	}
}

func TestDecodeJSONEmpty(t *testing.T) {
	for _, in := range []string{"", "   ", "```json\n\n```"} {
		if _, err := decodeJSON(in); err == nil {
			t.Fatalf("expected error for empty input %q", in)
		}
	}
}

func TestStripFenceNoFence(t *testing.T) {
	if got := stripFence("  {\"a\": 1}  "); got != `{"a": 1}` {
		t.Fatalf("unexpected result: %q", got)
	}
}

func TestStripFenceUnterminated(t *testing.T) {
	if got := stripFence("```json\n{\"a\": 1}"); got != `{"a": 1}` {
		t.Fatalf("unexpected result: %q", got)
	}
}
