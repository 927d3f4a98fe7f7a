package quiz

import (
	"encoding/json"
	"strings"
	"testing"
)

func validMCQMap(id string) map[string]any {
	return map[string]any{
		"type":         "mcq",
		"id":           id,
		"prompt":       "Which process moves water across a membrane?",
		"options":      []any{"Osmosis", "Diffusion", "Active transport", "Endocytosis"},
		"correctIndex": float64(0),
		"explanation":  "Osmosis is the passive movement of water.",
		"objective":    "Explain osmosis",
		"bloomLevel":   "understand",
		"difficulty":   float64(2),
	}
}

func validShortMap(id string) map[string]any {
	return map[string]any{
		"type":       "short",
		"id":         id,
		"prompt":     "Define osmosis.",
		"answerText": "The passive movement of water across a semipermeable membrane.",
		"rubric":     "Mention water, membrane, and passivity.",
		"keywords":   []any{"water", "membrane", "passive"},
		"objective":  "Explain osmosis",
	}
}

func TestParseQuiz_ValidMCQ(t *testing.T) {
	quiz, err := ParseQuiz(map[string]any{"questions": []any{validMCQMap("q_1")}})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(quiz.Questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(quiz.Questions))
	}

	q := quiz.Questions[0]
	if q.Type() != TypeMCQ || q.MCQ == nil {
		t.Fatalf("expected mcq variant, got %v", q.Type())
	}
	if q.MCQ.CorrectIndex != 0 {
		t.Errorf("expected correctIndex 0, got %d", q.MCQ.CorrectIndex)
	}
	if len(q.MCQ.Options) != 4 {
		t.Errorf("expected 4 options, got %d", len(q.MCQ.Options))
	}
}

func TestParseQuiz_ValidShort(t *testing.T) {
	quiz, err := ParseQuiz(map[string]any{"questions": []any{validShortMap("q_1")}})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	q := quiz.Questions[0]
	if q.Type() != TypeShort || q.Short == nil {
		t.Fatalf("expected short variant, got %v", q.Type())
	}
	if q.Short.AnswerText == "" {
		t.Error("expected canonical answer to survive parsing")
	}
	if len(q.Short.Keywords) != 3 {
		t.Errorf("expected 3 keywords, got %d", len(q.Short.Keywords))
	}
}

func TestParseQuiz_OptionalFieldsDefault(t *testing.T) {
	m := validMCQMap("q_1")
	delete(m, "explanation")
	delete(m, "objective")
	delete(m, "bloomLevel")
	delete(m, "difficulty")

	quiz, err := ParseQuiz(map[string]any{"questions": []any{m}})
	if err != nil {
		t.Fatalf("optional fields must default, got: %v", err)
	}
	q := quiz.Questions[0].MCQ
	if q.Explanation != "" || q.BloomLevel != "" || q.Difficulty != 0 {
		t.Errorf("expected zero-valued defaults, got %+v", q)
	}
}

func TestParseQuiz_CollectsAllIssues(t *testing.T) {
	bad := map[string]any{
		"type":         "mcq",
		"id":           "q_1",
		"options":      []any{"only", "three", "options"},
		"correctIndex": float64(7),
		"bloomLevel":   "memorize",
	}

	_, err := ParseQuiz(map[string]any{"questions": []any{bad}})
	if err == nil {
		t.Fatal("expected validation error")
	}
	vErr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}

	wantSubstrings := []string{"prompt", "options", "correctIndex", "bloomLevel"}
	for _, want := range wantSubstrings {
		found := false
		for _, issue := range vErr.Issues {
			if strings.Contains(issue, want) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected an issue mentioning %q, got %v", want, vErr.Issues)
		}
	}
}

func TestParseQuiz_RejectsUnknownType(t *testing.T) {
	_, err := ParseQuiz(map[string]any{"questions": []any{
		map[string]any{"type": "essay", "id": "q_1", "prompt": "Discuss."},
	}})
	if err == nil {
		t.Fatal("expected validation error for unknown type")
	}
}

func TestParseQuiz_RejectsFractionalIndex(t *testing.T) {
	m := validMCQMap("q_1")
	m["correctIndex"] = float64(1.5)
	_, err := ParseQuiz(map[string]any{"questions": []any{m}})
	if err == nil {
		t.Fatal("expected validation error for fractional correctIndex")
	}
}

func TestParseQuiz_RejectsEmptyQuestions(t *testing.T) {
	_, err := ParseQuiz(map[string]any{"questions": []any{}})
	if err == nil {
		t.Fatal("expected validation error for empty questions array")
	}
}

func TestParseQuiz_RejectsEmptyShortAnswer(t *testing.T) {
	m := validShortMap("q_1")
	m["answerText"] = ""
	_, err := ParseQuiz(map[string]any{"questions": []any{m}})
	if err == nil {
		t.Fatal("expected validation error for empty answerText")
	}
}

func TestQuestion_JSONRoundTrip(t *testing.T) {
	quiz, err := ParseQuiz(map[string]any{"questions": []any{
		validMCQMap("q_1"),
		validShortMap("q_2"),
	}})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	data, err := json.Marshal(quiz)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"type":"mcq"`) || !strings.Contains(string(data), `"type":"short"`) {
		t.Errorf("expected both type tags in output, got %s", data)
	}

	var back Quiz
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Questions[0].MCQ == nil || back.Questions[1].Short == nil {
		t.Error("expected variants to survive the round trip")
	}
}

func TestQuestion_UnmarshalRejectsUnknownTag(t *testing.T) {
	var q Question
	if err := json.Unmarshal([]byte(`{"type":"essay","id":"q_1"}`), &q); err == nil {
		t.Fatal("expected error for unknown type tag")
	}
}

func TestParseFeedback_MCQAndShort(t *testing.T) {
	fb, err := ParseFeedback(map[string]any{
		"items": []any{
			map[string]any{
				"type": "mcq", "questionId": "q_1",
				"correctIndex": float64(2), "userIndex": float64(1),
				"correct": false, "feedback": "Close, but option C is correct.",
			},
			map[string]any{
				"type": "short", "questionId": "q_2",
				"userText": "water moves", "feedback": "Mention the membrane.",
			},
		},
		"overall":    "Solid attempt.",
		"weakPoints": []any{"osmosis"},
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if len(fb.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(fb.Items))
	}
	if fb.Items[0].MCQ == nil || fb.Items[1].Short == nil {
		t.Fatal("expected one mcq and one short item")
	}
	if fb.Items[1].Short.Correct != nil {
		t.Error("short correct is optional and was absent, expected nil")
	}
	if len(fb.WeakPoints) != 1 || fb.WeakPoints[0] != "osmosis" {
		t.Errorf("unexpected weakPoints: %v", fb.WeakPoints)
	}
	if fb.StudyPlan == nil {
		t.Error("studyPlan must default to an empty list")
	}
}

func TestParseFeedback_MCQRequiresCorrectBool(t *testing.T) {
	_, err := ParseFeedback(map[string]any{
		"items": []any{
			map[string]any{
				"type": "mcq", "questionId": "q_1",
				"correctIndex": float64(2), "userIndex": float64(1),
				"feedback": "missing the correct flag",
			},
		},
	})
	if err == nil {
		t.Fatal("expected validation error for missing correct boolean")
	}
}
