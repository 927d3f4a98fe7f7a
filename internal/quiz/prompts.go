package quiz

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Mode selects which question variant a generation request produces.
type Mode string

const (
	ModeMCQ   Mode = "mcq"
	ModeShort Mode = "short"
)

var ValidModes = map[Mode]bool{
	ModeMCQ:   true,
	ModeShort: true,
}

func GenerateSystemPrompt() string {
	return `You are an expert teacher and assessment designer. You write rigorous,
unambiguous quiz items aligned to stated learning objectives and you respond
with valid JSON only — no markdown, no commentary outside the JSON.`
}

const mcqItemRules = `Item-writing rules for MCQs:
- Align stem to a single learning objective; write the stem first
- Use clear language; avoid negatives when possible
- Provide exactly 4 plausible, homogeneous distractors (no clues, no overlapping meanings)
- Do NOT use 'All of the above' or 'None of the above'
- Only one best answer; randomize correct index
- Keep options similar in length/structure and free of grammatical cues
- Target a mix of Bloom's levels across the set

Each MCQ must have these fields:
type: "mcq"
id: string
prompt: string
options: [string, string, string, string]
correctIndex: 0|1|2|3
explanation: string (1-2 sentences)
objective: string (the learning objective addressed)
bloomLevel: "remember"|"understand"|"apply"|"analyze"|"evaluate"|"create"
difficulty: number (1-easy to 5-hard)`

const shortItemRules = `Guidelines for short-answer:
- Ask for a specific term, explanation, or process aligned to a learning objective
- Expect concise answers; avoid ambiguity
- Provide a brief rubric and 3-8 keywords for auto-checking

Each short-answer must have these fields:
type: "short"
id: string
prompt: string
answerText: string (concise canonical answer)
rubric: string (brief grading notes)
keywords: string[] (3-8 terms expected in a good answer)
objective: string
bloomLevel: "remember"|"understand"|"apply"|"analyze"|"evaluate"|"create"
difficulty: number (1-5)`

const mcqSchemaExample = `{ "questions": [ { "type": "mcq", "id": "string", "prompt": "string", "options": ["string", "string", "string", "string"], "correctIndex": 0, "explanation": "string", "objective": "string", "bloomLevel": "remember", "difficulty": 1 } ] }`

const shortSchemaExample = `{ "questions": [ { "type": "short", "id": "string", "prompt": "string", "answerText": "string", "rubric": "string", "keywords": ["string"], "objective": "string", "bloomLevel": "remember", "difficulty": 1 } ] }`

// BuildGeneratePrompt assembles the quiz-generation instruction: exact
// count and mode, mode-specific item-writing rules, the objective list
// with 1-based indices, and the exact JSON schema the response must use.
func BuildGeneratePrompt(mode Mode, count int, objectives []string) string {
	modeName := "multiple-choice"
	rules := mcqItemRules
	schemaOut := mcqSchemaExample
	if mode == ModeShort {
		modeName = "short-answer"
		rules = shortItemRules
		schemaOut = shortSchemaExample
	}

	var objLines strings.Builder
	for i, o := range objectives {
		fmt.Fprintf(&objLines, "%d. %s\n", i+1, o)
	}

	return fmt.Sprintf(`Create exactly %d high-quality %s questions that assess the following learning objectives.

%s

Learning objectives:
%s
Return ONLY valid minified JSON in this exact schema (no markdown):
%s`, count, modeName, rules, objLines.String(), schemaOut)
}

func FeedbackSystemPrompt() string {
	return `You are an expert tutor. You grade learner responses fairly, explain
mistakes constructively, and respond with valid JSON only — no markdown, no
commentary outside the JSON.`
}

// feedbackPayloadItem is the per-question view handed to the oracle.
// For mcq the authoritative indices are included so the oracle can
// narrate, not judge; for short the canonical answer is included so
// the oracle can judge.
type feedbackPayloadItem struct {
	Type       QuestionType `json:"type"`
	ID         string       `json:"id"`
	Prompt     string       `json:"prompt"`
	Options    []string     `json:"options,omitempty"`
	CorrectIdx *int         `json:"correctIndex,omitempty"`
	UserIdx    *int         `json:"userIndex,omitempty"`
	AnswerText string       `json:"answerText,omitempty"`
	UserText   *string      `json:"userText,omitempty"`
}

// BuildFeedbackPrompt assembles the grading instruction around the
// per-question payload. It explicitly forbids the oracle from
// contradicting the provided mcq correctness.
func BuildFeedbackPrompt(payload []feedbackPayloadItem) string {
	payloadJSON, _ := json.Marshal(payload)

	return fmt.Sprintf(`For each item below, write constructive feedback. Do NOT contradict the provided correct answers for MCQs.
Also summarize the learner's weak points and propose a concise, actionable study plan (bullet points) tailored to the objectives.
Respond ONLY in JSON matching this schema (no markdown):
{
  "items": [
    { "questionId": "string", "type": "mcq", "correctIndex": 0, "userIndex": 0, "correct": true, "feedback": "string" },
    { "questionId": "string", "type": "short", "userText": "string", "correct": true, "feedback": "string" }
  ],
  "overall": "string (optional overall encouragement and next steps)",
  "weakPoints": ["string", "string"],
  "studyPlan": ["string", "string"]
}
Items (JSON): %s`, payloadJSON)
}

// StrictDirective is appended verbatim to a prompt when the first
// oracle response could not be parsed as JSON.
const StrictDirective = "\n\nIMPORTANT: Output ONLY valid minified JSON. Do not include any explanations or markdown fences."
