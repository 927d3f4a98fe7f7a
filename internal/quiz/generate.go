package quiz

import "fmt"

// QuestionsArray extracts the questions list from a decoded oracle
// value. Some models return a bare array instead of the requested
// {"questions": [...]} wrapper, so both shapes are accepted.
func QuestionsArray(raw any) ([]any, bool) {
	if arr, ok := raw.([]any); ok {
		return arr, true
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, false
	}
	arr, ok := obj["questions"].([]any)
	if !ok {
		return nil, false
	}
	return arr, true
}

// InferQuestionTypes patches oracle questions that lack a "type" tag:
// options+correctIndex implies mcq, answerText implies short. An
// explicit tag is never overwritten.
func InferQuestionTypes(items []any) {
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		if _, tagged := m["type"]; tagged {
			continue
		}
		_, hasOptions := m["options"]
		_, hasCorrectIdx := m["correctIndex"]
		_, hasAnswerText := m["answerText"]
		switch {
		case hasOptions && hasCorrectIdx:
			m["type"] = string(TypeMCQ)
		case hasAnswerText:
			m["type"] = string(TypeShort)
		}
	}
}

// AssignFallbackIDs replaces missing, non-string, empty, or duplicate
// question ids with a stable positional fallback ("q_1", "q_2", ...).
// Runs before schema validation so an id-sloppy oracle response still
// conforms.
func AssignFallbackIDs(items []any) {
	seen := make(map[string]bool, len(items))
	for i, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		id, isStr := m["id"].(string)
		if !isStr || id == "" || seen[id] {
			id = fmt.Sprintf("q_%d", i+1)
			m["id"] = id
		}
		seen[id] = true
	}
}
