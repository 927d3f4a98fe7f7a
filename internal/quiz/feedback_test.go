package quiz

import (
	"fmt"
	"testing"
)

func twoMCQQuiz() *Quiz {
	return &Quiz{Questions: []Question{
		{MCQ: &MCQQuestion{
			ID: "q_1", Prompt: "What is 2+2?",
			Options: []string{"3", "4", "5", "6"}, CorrectIndex: 1,
		}},
		{MCQ: &MCQQuestion{
			ID: "q_2", Prompt: "What is 3+3?",
			Options: []string{"5", "6", "7", "8"}, CorrectIndex: 1,
		}},
	}}
}

func TestReconcile_OneItemPerQuestionInOrder(t *testing.T) {
	quiz := twoMCQQuiz()
	// Oracle returned a single, duplicated item for q_2 and nothing
	// for q_1.
	oracleFB := &Feedback{Items: []FeedbackItem{
		{MCQ: &MCQFeedbackItem{QuestionID: "q_2", CorrectIndex: 1, UserIndex: 1, Correct: true, Feedback: "first"}},
		{MCQ: &MCQFeedbackItem{QuestionID: "q_2", CorrectIndex: 1, UserIndex: 1, Correct: true, Feedback: "second"}},
	}}

	scored := Reconcile(quiz, []any{float64(1), float64(1)}, oracleFB)

	if len(scored.Feedback.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(scored.Feedback.Items))
	}
	if scored.Feedback.Items[0].QuestionID() != "q_1" || scored.Feedback.Items[1].QuestionID() != "q_2" {
		t.Errorf("items out of question order: %v, %v",
			scored.Feedback.Items[0].QuestionID(), scored.Feedback.Items[1].QuestionID())
	}
	if scored.Feedback.Items[1].MCQ.Feedback != "first" {
		t.Errorf("expected first oracle item to win for q_2, got %q", scored.Feedback.Items[1].MCQ.Feedback)
	}
}

func TestReconcile_MCQCorrectnessIsRecomputed(t *testing.T) {
	quiz := twoMCQQuiz()
	// The oracle lies: it claims q_1 was wrong and q_2 was right,
	// with inverted indices.
	oracleFB := &Feedback{Items: []FeedbackItem{
		{MCQ: &MCQFeedbackItem{QuestionID: "q_1", CorrectIndex: 3, UserIndex: 0, Correct: false, Feedback: "wrong"}},
		{MCQ: &MCQFeedbackItem{QuestionID: "q_2", CorrectIndex: 0, UserIndex: 0, Correct: true, Feedback: "right"}},
	}}

	// User actually answered q_1 correctly and q_2 incorrectly.
	scored := Reconcile(quiz, []any{float64(1), float64(3)}, oracleFB)

	first := scored.Feedback.Items[0].MCQ
	if !first.Correct || first.CorrectIndex != 1 || first.UserIndex != 1 {
		t.Errorf("q_1 must be recomputed as correct with quiz indices, got %+v", first)
	}
	second := scored.Feedback.Items[1].MCQ
	if second.Correct || second.CorrectIndex != 1 || second.UserIndex != 3 {
		t.Errorf("q_2 must be recomputed as incorrect with quiz indices, got %+v", second)
	}
	if scored.CorrectCount != 1 {
		t.Errorf("expected correctCount 1, got %d", scored.CorrectCount)
	}
}

func TestReconcile_ShortUndefinedCorrectnessCountsNeitherWay(t *testing.T) {
	quiz := &Quiz{Questions: []Question{
		{Short: &ShortQuestion{ID: "q_1", Prompt: "Define osmosis.", AnswerText: "water movement"}},
	}}
	oracleFB := &Feedback{Items: []FeedbackItem{
		{Short: &ShortFeedbackItem{QuestionID: "q_1", UserText: "stuff", Feedback: "vague"}},
	}}

	scored := Reconcile(quiz, []any{"stuff"}, oracleFB)

	item := scored.Feedback.Items[0].Short
	if item.Correct != nil {
		t.Errorf("expected undefined correctness to stay nil, got %v", *item.Correct)
	}
	if scored.CorrectCount != 0 {
		t.Errorf("undefined correctness must not count correct, got %d", scored.CorrectCount)
	}
	if len(scored.StrongPoints) != 0 || len(scored.Feedback.WeakPoints) != 0 {
		t.Errorf("undefined correctness must not derive points: strong=%v weak=%v",
			scored.StrongPoints, scored.Feedback.WeakPoints)
	}
}

func TestReconcile_ShortOracleJudgmentIsKept(t *testing.T) {
	quiz := &Quiz{Questions: []Question{
		{Short: &ShortQuestion{ID: "q_1", Prompt: "Define osmosis.", AnswerText: "water movement"}},
	}}
	yes := true
	oracleFB := &Feedback{Items: []FeedbackItem{
		{Short: &ShortFeedbackItem{QuestionID: "q_1", UserText: "water moves", Correct: &yes, Feedback: "good"}},
	}}

	scored := Reconcile(quiz, []any{"water moves"}, oracleFB)

	if scored.CorrectCount != 1 {
		t.Errorf("expected oracle yes to count, got %d", scored.CorrectCount)
	}
	if len(scored.StrongPoints) != 1 {
		t.Errorf("expected one derived strong point, got %v", scored.StrongPoints)
	}
}

func TestReconcile_MissingAnswerIsUnanswered(t *testing.T) {
	quiz := twoMCQQuiz()
	scored := Reconcile(quiz, []any{nil, "not a number"}, &Feedback{})

	for i, it := range scored.Feedback.Items {
		if it.MCQ.UserIndex != -1 {
			t.Errorf("item %d: expected userIndex -1 for unanswerable input, got %d", i, it.MCQ.UserIndex)
		}
		if it.MCQ.Correct {
			t.Errorf("item %d: unanswered must be incorrect", i)
		}
	}
	if scored.CorrectCount != 0 {
		t.Errorf("expected correctCount 0, got %d", scored.CorrectCount)
	}
}

func TestReconcile_WeakPointsDedupedAndCapped(t *testing.T) {
	var questions []Question
	var answers []any
	for i := 0; i < maxDerivedPoints+50; i++ {
		questions = append(questions, Question{MCQ: &MCQQuestion{
			ID:      fmt.Sprintf("q_%d", i+1),
			Prompt:  fmt.Sprintf("prompt %d", i),
			Options: []string{"a", "b", "c", "d"}, CorrectIndex: 0,
		}})
		answers = append(answers, float64(1))
	}
	oracleFB := &Feedback{WeakPoints: []string{"prompt 0", "prompt 0", "oracle point"}}

	scored := Reconcile(&Quiz{Questions: questions}, answers, oracleFB)

	if len(scored.Feedback.WeakPoints) != maxDerivedPoints {
		t.Fatalf("expected weakPoints capped at %d, got %d", maxDerivedPoints, len(scored.Feedback.WeakPoints))
	}
	// Oracle-supplied points come first, deduped against the derived
	// prompts.
	if scored.Feedback.WeakPoints[0] != "prompt 0" || scored.Feedback.WeakPoints[1] != "oracle point" {
		t.Errorf("unexpected ordering: %v", scored.Feedback.WeakPoints[:2])
	}
	count := 0
	for _, p := range scored.Feedback.WeakPoints {
		if p == "prompt 0" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected prompt 0 to appear once, got %d", count)
	}
}

func TestInferItemTypes(t *testing.T) {
	raw := map[string]any{"items": []any{
		map[string]any{"questionId": "q_1", "userIndex": float64(1), "correctIndex": float64(2)},
		map[string]any{"questionId": "q_2", "userText": "an answer"},
		map[string]any{"questionId": "q_3", "type": "short", "userIndex": float64(0), "correctIndex": float64(0)},
		map[string]any{"questionId": "q_4"},
	}}

	InferItemTypes(raw)

	items := raw["items"].([]any)
	if items[0].(map[string]any)["type"] != "mcq" {
		t.Error("expected indices to imply mcq")
	}
	if items[1].(map[string]any)["type"] != "short" {
		t.Error("expected userText to imply short")
	}
	if items[2].(map[string]any)["type"] != "short" {
		t.Error("an explicit tag must never be overwritten")
	}
	if _, tagged := items[3].(map[string]any)["type"]; tagged {
		t.Error("an undecidable item must stay untagged")
	}
}

func TestBuildFeedbackPayload(t *testing.T) {
	quiz := &Quiz{Questions: []Question{
		{MCQ: &MCQQuestion{ID: "q_1", Prompt: "p1", Options: []string{"a", "b", "c", "d"}, CorrectIndex: 2}},
		{Short: &ShortQuestion{ID: "q_2", Prompt: "p2", AnswerText: "canonical"}},
	}}

	payload := BuildFeedbackPayload(quiz, []any{float64(1), "mine"})

	if len(payload) != 2 {
		t.Fatalf("expected 2 payload items, got %d", len(payload))
	}
	if payload[0].Type != TypeMCQ || *payload[0].CorrectIdx != 2 || *payload[0].UserIdx != 1 {
		t.Errorf("unexpected mcq payload: %+v", payload[0])
	}
	if payload[1].Type != TypeShort || payload[1].AnswerText != "canonical" || *payload[1].UserText != "mine" {
		t.Errorf("unexpected short payload: %+v", payload[1])
	}
}

func TestDedupeCap(t *testing.T) {
	got := dedupeCap([]string{"a", "b", "a", "c", "b", "d"}, 3)
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}
