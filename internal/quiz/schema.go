package quiz

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// QuestionType discriminates the two question variants.
type QuestionType string

const (
	TypeMCQ   QuestionType = "mcq"
	TypeShort QuestionType = "short"
)

var validBloomLevels = map[string]bool{
	"remember":   true,
	"understand": true,
	"apply":      true,
	"analyze":    true,
	"evaluate":   true,
	"create":     true,
}

// MCQQuestion is a multiple-choice question with exactly four options.
type MCQQuestion struct {
	ID           string   `json:"id"`
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation"`
	Objective    string   `json:"objective,omitempty"`
	BloomLevel   string   `json:"bloomLevel,omitempty"`
	Difficulty   int      `json:"difficulty,omitempty"`
}

// ShortQuestion is a short-answer question with a canonical answer.
type ShortQuestion struct {
	ID         string   `json:"id"`
	Prompt     string   `json:"prompt"`
	AnswerText string   `json:"answerText"`
	Rubric     string   `json:"rubric"`
	Keywords   []string `json:"keywords,omitempty"`
	Objective  string   `json:"objective,omitempty"`
	BloomLevel string   `json:"bloomLevel,omitempty"`
	Difficulty int      `json:"difficulty,omitempty"`
}

// Question is a tagged union over the two variants: exactly one of MCQ
// or Short is non-nil. Consumers switch on the set variant rather than
// inspecting field shapes.
type Question struct {
	MCQ   *MCQQuestion
	Short *ShortQuestion
}

func (q Question) Type() QuestionType {
	if q.MCQ != nil {
		return TypeMCQ
	}
	return TypeShort
}

func (q Question) ID() string {
	switch {
	case q.MCQ != nil:
		return q.MCQ.ID
	case q.Short != nil:
		return q.Short.ID
	}
	return ""
}

func (q Question) Prompt() string {
	switch {
	case q.MCQ != nil:
		return q.MCQ.Prompt
	case q.Short != nil:
		return q.Short.Prompt
	}
	return ""
}

func (q Question) MarshalJSON() ([]byte, error) {
	switch {
	case q.MCQ != nil:
		return json.Marshal(struct {
			Type QuestionType `json:"type"`
			*MCQQuestion
		}{TypeMCQ, q.MCQ})
	case q.Short != nil:
		return json.Marshal(struct {
			Type QuestionType `json:"type"`
			*ShortQuestion
		}{TypeShort, q.Short})
	}
	return nil, fmt.Errorf("question has no variant set")
}

func (q *Question) UnmarshalJSON(data []byte) error {
	var tag struct {
		Type QuestionType `json:"type"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return err
	}
	switch tag.Type {
	case TypeMCQ:
		var m MCQQuestion
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		*q = Question{MCQ: &m}
	case TypeShort:
		var s ShortQuestion
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*q = Question{Short: &s}
	default:
		return fmt.Errorf("unknown question type %q", tag.Type)
	}
	return nil
}

// Quiz is a non-empty ordered question sequence.
type Quiz struct {
	Questions []Question `json:"questions"`
}

// MCQFeedbackItem carries locally authoritative correctness: the
// correct/user indices come from the quiz and answers, never from the
// oracle, and Correct is always recomputed as userIndex == correctIndex.
type MCQFeedbackItem struct {
	QuestionID   string `json:"questionId"`
	CorrectIndex int    `json:"correctIndex"`
	UserIndex    int    `json:"userIndex"`
	Correct      bool   `json:"correct"`
	Feedback     string `json:"feedback"`
}

// ShortFeedbackItem carries an oracle-supplied correctness judgment
// when present; canonical-answer matching is not locally verifiable.
type ShortFeedbackItem struct {
	QuestionID string `json:"questionId"`
	UserText   string `json:"userText"`
	Correct    *bool  `json:"correct,omitempty"`
	Feedback   string `json:"feedback"`
}

// FeedbackItem is a tagged union mirroring Question.
type FeedbackItem struct {
	MCQ   *MCQFeedbackItem
	Short *ShortFeedbackItem
}

func (it FeedbackItem) QuestionID() string {
	switch {
	case it.MCQ != nil:
		return it.MCQ.QuestionID
	case it.Short != nil:
		return it.Short.QuestionID
	}
	return ""
}

// CorrectBool reports the item's correctness judgment and whether one
// exists: mcq items always have one, short items only when the oracle
// supplied a boolean.
func (it FeedbackItem) CorrectBool() (bool, bool) {
	switch {
	case it.MCQ != nil:
		return it.MCQ.Correct, true
	case it.Short != nil:
		if it.Short.Correct != nil {
			return *it.Short.Correct, true
		}
	}
	return false, false
}

func (it FeedbackItem) MarshalJSON() ([]byte, error) {
	switch {
	case it.MCQ != nil:
		return json.Marshal(struct {
			Type QuestionType `json:"type"`
			*MCQFeedbackItem
		}{TypeMCQ, it.MCQ})
	case it.Short != nil:
		return json.Marshal(struct {
			Type QuestionType `json:"type"`
			*ShortFeedbackItem
		}{TypeShort, it.Short})
	}
	return nil, fmt.Errorf("feedback item has no variant set")
}

func (it *FeedbackItem) UnmarshalJSON(data []byte) error {
	var tag struct {
		Type QuestionType `json:"type"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return err
	}
	switch tag.Type {
	case TypeMCQ:
		var m MCQFeedbackItem
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		*it = FeedbackItem{MCQ: &m}
	case TypeShort:
		var s ShortFeedbackItem
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*it = FeedbackItem{Short: &s}
	default:
		return fmt.Errorf("unknown feedback item type %q", tag.Type)
	}
	return nil
}

// Feedback is the aggregate feedback record.
type Feedback struct {
	Items      []FeedbackItem `json:"items"`
	Overall    string         `json:"overall,omitempty"`
	WeakPoints []string       `json:"weakPoints"`
	StudyPlan  []string       `json:"studyPlan"`
}

// ValidationError aggregates every violated field path found while
// conforming an untrusted JSON value to the quiz or feedback schema.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Issues, "; "))
}

// ── Coercing Validators ─────────────────────────────────

// ParseQuiz conforms a decoded JSON value to the Quiz shape. It is
// strict on structure (a wrong tag, a missing prompt, a fifth option
// all fail) but lenient on optional embellishments, which default
// rather than fail. On failure every violated field path is reported.
func ParseQuiz(v any) (*Quiz, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, &ValidationError{Issues: []string{"quiz: expected a JSON object"}}
	}

	rawQuestions, ok := obj["questions"].([]any)
	if !ok || len(rawQuestions) == 0 {
		return nil, &ValidationError{Issues: []string{"questions: expected a non-empty array"}}
	}

	var issues []string
	quiz := &Quiz{Questions: make([]Question, 0, len(rawQuestions))}
	for i, raw := range rawQuestions {
		path := fmt.Sprintf("questions[%d]", i)
		q, qIssues := parseQuestion(path, raw)
		if len(qIssues) > 0 {
			issues = append(issues, qIssues...)
			continue
		}
		quiz.Questions = append(quiz.Questions, *q)
	}

	if len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}
	return quiz, nil
}

func parseQuestion(path string, v any) (*Question, []string) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, []string{path + ": expected a JSON object"}
	}

	var issues []string
	tag, _ := m["type"].(string)
	switch QuestionType(tag) {
	case TypeMCQ:
		q := &MCQQuestion{
			ID:          requireString(m, "id", path, &issues),
			Prompt:      requireString(m, "prompt", path, &issues),
			Explanation: optionalString(m, "explanation", path, &issues),
			Objective:   optionalString(m, "objective", path, &issues),
		}
		q.Options = stringArrayExactly(m, "options", 4, path, &issues)
		q.CorrectIndex = requireIntInRange(m, "correctIndex", 0, 3, path, &issues)
		q.BloomLevel = optionalBloomLevel(m, path, &issues)
		q.Difficulty = optionalIntInRange(m, "difficulty", 1, 5, path, &issues)
		if len(issues) > 0 {
			return nil, issues
		}
		return &Question{MCQ: q}, nil

	case TypeShort:
		q := &ShortQuestion{
			ID:        requireString(m, "id", path, &issues),
			Prompt:    requireString(m, "prompt", path, &issues),
			Rubric:    optionalString(m, "rubric", path, &issues),
			Objective: optionalString(m, "objective", path, &issues),
		}
		q.AnswerText = requireString(m, "answerText", path, &issues)
		if q.AnswerText == "" && fieldPresent(m, "answerText") {
			issues = append(issues, path+".answerText: must be a non-empty string")
		}
		q.Keywords = optionalStringArray(m, "keywords", path, &issues)
		q.BloomLevel = optionalBloomLevel(m, path, &issues)
		q.Difficulty = optionalIntInRange(m, "difficulty", 1, 5, path, &issues)
		if len(issues) > 0 {
			return nil, issues
		}
		return &Question{Short: q}, nil

	default:
		return nil, []string{path + `.type: must be "mcq" or "short"`}
	}
}

// ParseFeedback conforms a decoded JSON value to the Feedback shape.
// Missing weakPoints/studyPlan default to empty lists.
func ParseFeedback(v any) (*Feedback, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, &ValidationError{Issues: []string{"feedback: expected a JSON object"}}
	}

	rawItems, ok := obj["items"].([]any)
	if !ok || len(rawItems) == 0 {
		return nil, &ValidationError{Issues: []string{"items: expected a non-empty array"}}
	}

	var issues []string
	fb := &Feedback{
		Items:      make([]FeedbackItem, 0, len(rawItems)),
		WeakPoints: []string{},
		StudyPlan:  []string{},
	}

	for i, raw := range rawItems {
		path := fmt.Sprintf("items[%d]", i)
		it, itIssues := parseFeedbackItem(path, raw)
		if len(itIssues) > 0 {
			issues = append(issues, itIssues...)
			continue
		}
		fb.Items = append(fb.Items, *it)
	}

	fb.Overall = optionalString(obj, "overall", "feedback", &issues)
	fb.WeakPoints = optionalStringArray(obj, "weakPoints", "feedback", &issues)
	fb.StudyPlan = optionalStringArray(obj, "studyPlan", "feedback", &issues)
	if fb.WeakPoints == nil {
		fb.WeakPoints = []string{}
	}
	if fb.StudyPlan == nil {
		fb.StudyPlan = []string{}
	}

	if len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}
	return fb, nil
}

func parseFeedbackItem(path string, v any) (*FeedbackItem, []string) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, []string{path + ": expected a JSON object"}
	}

	var issues []string
	tag, _ := m["type"].(string)
	switch QuestionType(tag) {
	case TypeMCQ:
		it := &MCQFeedbackItem{
			QuestionID: requireString(m, "questionId", path, &issues),
			Feedback:   requireString(m, "feedback", path, &issues),
		}
		it.CorrectIndex = requireInt(m, "correctIndex", path, &issues)
		it.UserIndex = requireInt(m, "userIndex", path, &issues)
		it.Correct = requireBool(m, "correct", path, &issues)
		if len(issues) > 0 {
			return nil, issues
		}
		return &FeedbackItem{MCQ: it}, nil

	case TypeShort:
		it := &ShortFeedbackItem{
			QuestionID: requireString(m, "questionId", path, &issues),
			UserText:   requireString(m, "userText", path, &issues),
			Feedback:   requireString(m, "feedback", path, &issues),
		}
		it.Correct = optionalBool(m, "correct", path, &issues)
		if len(issues) > 0 {
			return nil, issues
		}
		return &FeedbackItem{Short: it}, nil

	default:
		return nil, []string{path + `.type: must be "mcq" or "short"`}
	}
}

// ── Field Helpers ───────────────────────────────────────

func fieldPresent(m map[string]any, key string) bool {
	_, ok := m[key]
	return ok
}

func requireString(m map[string]any, key, path string, issues *[]string) string {
	v, ok := m[key]
	if !ok {
		*issues = append(*issues, fmt.Sprintf("%s.%s: required string is missing", path, key))
		return ""
	}
	s, ok := v.(string)
	if !ok {
		*issues = append(*issues, fmt.Sprintf("%s.%s: must be a string", path, key))
		return ""
	}
	return s
}

func optionalString(m map[string]any, key, path string, issues *[]string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		*issues = append(*issues, fmt.Sprintf("%s.%s: must be a string", path, key))
		return ""
	}
	return s
}

func asInt(v any) (int, bool) {
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

func requireInt(m map[string]any, key, path string, issues *[]string) int {
	v, ok := m[key]
	if !ok {
		*issues = append(*issues, fmt.Sprintf("%s.%s: required integer is missing", path, key))
		return 0
	}
	n, ok := asInt(v)
	if !ok {
		*issues = append(*issues, fmt.Sprintf("%s.%s: must be an integer", path, key))
		return 0
	}
	return n
}

func requireIntInRange(m map[string]any, key string, min, max int, path string, issues *[]string) int {
	before := len(*issues)
	n := requireInt(m, key, path, issues)
	if len(*issues) > before {
		return 0
	}
	if n < min || n > max {
		*issues = append(*issues, fmt.Sprintf("%s.%s: must be an integer between %d and %d", path, key, min, max))
		return 0
	}
	return n
}

func optionalIntInRange(m map[string]any, key string, min, max int, path string, issues *[]string) int {
	v, ok := m[key]
	if !ok || v == nil {
		return 0
	}
	n, ok := asInt(v)
	if !ok || n < min || n > max {
		*issues = append(*issues, fmt.Sprintf("%s.%s: must be an integer between %d and %d", path, key, min, max))
		return 0
	}
	return n
}

func requireBool(m map[string]any, key, path string, issues *[]string) bool {
	v, ok := m[key]
	if !ok {
		*issues = append(*issues, fmt.Sprintf("%s.%s: required boolean is missing", path, key))
		return false
	}
	b, ok := v.(bool)
	if !ok {
		*issues = append(*issues, fmt.Sprintf("%s.%s: must be a boolean", path, key))
		return false
	}
	return b
}

func optionalBool(m map[string]any, key, path string, issues *[]string) *bool {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	b, ok := v.(bool)
	if !ok {
		*issues = append(*issues, fmt.Sprintf("%s.%s: must be a boolean", path, key))
		return nil
	}
	return &b
}

func stringArrayExactly(m map[string]any, key string, want int, path string, issues *[]string) []string {
	arr, arrIssues := stringArray(m[key], fmt.Sprintf("%s.%s", path, key))
	if len(arrIssues) > 0 {
		*issues = append(*issues, arrIssues...)
		return nil
	}
	if len(arr) != want {
		*issues = append(*issues, fmt.Sprintf("%s.%s: expected exactly %d entries, got %d", path, key, want, len(arr)))
		return nil
	}
	return arr
}

func optionalStringArray(m map[string]any, key, path string, issues *[]string) []string {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	arr, arrIssues := stringArray(v, fmt.Sprintf("%s.%s", path, key))
	if len(arrIssues) > 0 {
		*issues = append(*issues, arrIssues...)
		return nil
	}
	return arr
}

func stringArray(v any, path string) ([]string, []string) {
	raw, ok := v.([]any)
	if !ok {
		return nil, []string{path + ": must be an array of strings"}
	}
	out := make([]string, 0, len(raw))
	for i, e := range raw {
		s, ok := e.(string)
		if !ok {
			return nil, []string{fmt.Sprintf("%s[%d]: must be a string", path, i)}
		}
		out = append(out, s)
	}
	return out, nil
}

func optionalBloomLevel(m map[string]any, path string, issues *[]string) string {
	v, ok := m["bloomLevel"]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok || !validBloomLevels[s] {
		*issues = append(*issues, path+".bloomLevel: must be one of remember, understand, apply, analyze, evaluate, create")
		return ""
	}
	return s
}
