package quiz

import (
	"strings"
	"testing"
)

func TestBuildGeneratePrompt_MCQ(t *testing.T) {
	prompt := BuildGeneratePrompt(ModeMCQ, 3, []string{"Explain osmosis", "Describe diffusion"})

	for _, want := range []string{
		"exactly 3",
		"multiple-choice",
		"1. Explain osmosis",
		"2. Describe diffusion",
		"All of the above",
		`"correctIndex"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("expected prompt to contain %q", want)
		}
	}
	if strings.Contains(prompt, "answerText") {
		t.Error("mcq prompt must not carry the short-answer schema")
	}
}

func TestBuildGeneratePrompt_Short(t *testing.T) {
	prompt := BuildGeneratePrompt(ModeShort, 5, []string{"Explain osmosis"})

	for _, want := range []string{
		"exactly 5",
		"short-answer",
		"rubric",
		`"answerText"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("expected prompt to contain %q", want)
		}
	}
	if strings.Contains(prompt, "correctIndex") {
		t.Error("short prompt must not carry the mcq schema")
	}
}

func TestBuildFeedbackPrompt(t *testing.T) {
	quiz := &Quiz{Questions: []Question{
		{MCQ: &MCQQuestion{ID: "q_1", Prompt: "p1", Options: []string{"a", "b", "c", "d"}, CorrectIndex: 2}},
	}}
	payload := BuildFeedbackPayload(quiz, []any{float64(1)})
	prompt := BuildFeedbackPrompt(payload)

	for _, want := range []string{
		"Do NOT contradict",
		`"weakPoints"`,
		`"studyPlan"`,
		`"q_1"`,
		`"correctIndex":2`,
		`"userIndex":1`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("expected prompt to contain %q", want)
		}
	}
}
