package oracle

import (
	"encoding/json"
	"strings"
)

// ExtractJSON recovers a single JSON object or array from free-form
// model output. The oracle may wrap JSON in prose or markdown fences,
// so the scan takes the widest greedy span from the first opening
// brace/bracket to the last closing one and attempts a strict parse.
// This is a best-effort heuristic, not a parser: it can match too much
// or too little on pathological input, which the callers bound with a
// single-retry policy.
func ExtractJSON(text string) (any, bool) {
	cleaned := stripCodeFences(text)

	candidate := widestSpan(cleaned)
	if candidate == "" {
		candidate = cleaned
	}

	var v any
	if err := json.Unmarshal([]byte(candidate), &v); err != nil {
		return nil, false
	}
	return v, true
}

// widestSpan returns the substring from the first '{' or '[' to the
// matching last '}' or ']', or "" when no span exists.
func widestSpan(s string) string {
	objStart := strings.IndexByte(s, '{')
	arrStart := strings.IndexByte(s, '[')

	start := objStart
	closer := byte('}')
	if start == -1 || (arrStart != -1 && arrStart < start) {
		start = arrStart
		closer = ']'
	}
	if start == -1 {
		return ""
	}

	end := strings.LastIndexByte(s, closer)
	if end <= start {
		return ""
	}
	return s[start : end+1]
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimSpace(s)
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSpace(s)
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}

// Snippet truncates raw oracle output for diagnostic error responses.
func Snippet(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return text[:max]
}
