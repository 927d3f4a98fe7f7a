package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/objectiveprep/backend/internal/insights"
	"github.com/objectiveprep/backend/internal/objectives"
	"github.com/objectiveprep/backend/internal/oracle"
)

const snippetLimit = 400

// ErrNoObjectives is returned when a generation request names no
// objectives and none are persisted either.
var ErrNoObjectives = errors.New("no objectives provided or found")

// ErrAnswersMismatch is returned when the answer set is not
// positionally aligned with the quiz.
var ErrAnswersMismatch = errors.New("answers length mismatch")

// OracleError reports unrecoverable oracle malformation after the
// retry budget is spent. Snippet carries a bounded slice of the raw
// output for diagnosis.
type OracleError struct {
	Reason  string
	Snippet string
}

func (e *OracleError) Error() string {
	return e.Reason
}

type Service struct {
	oracle     oracle.Client
	attempts   *Store
	objectives *objectives.Store
	insights   *insights.Store
}

func NewService(oc oracle.Client, attempts *Store, objStore *objectives.Store, insightStore *insights.Store) *Service {
	return &Service{
		oracle:     oc,
		attempts:   attempts,
		objectives: objStore,
		insights:   insightStore,
	}
}

// ── Quiz Generation ─────────────────────────────────────

type GenerateRequest struct {
	Objectives []string `json:"objectives"`
	Mode       Mode     `json:"mode"`
	Count      int      `json:"count"`
}

// GenerateQuiz builds the generation prompt, runs the two-shot oracle
// call, normalizes ids and array wrapping, and validates the result.
// Schema violations are terminal: the retry budget is spent only on
// malformed JSON, never on malformed schema.
func (s *Service) GenerateQuiz(ctx context.Context, req GenerateRequest) (*Quiz, error) {
	objs := req.Objectives
	if len(objs) == 0 {
		var err error
		objs, err = s.objectives.ListTexts(ctx)
		if err != nil {
			return nil, fmt.Errorf("list objectives: %w", err)
		}
	}
	if len(objs) == 0 {
		return nil, ErrNoObjectives
	}

	prompt := BuildGeneratePrompt(req.Mode, req.Count, objs)
	raw, err := s.callOracleJSON(ctx, GenerateSystemPrompt(), prompt)
	if err != nil {
		return nil, err
	}

	items, ok := QuestionsArray(raw)
	if !ok {
		encoded, _ := json.Marshal(raw)
		return nil, &OracleError{
			Reason:  "AI returned an unexpected shape",
			Snippet: oracle.Snippet(string(encoded), snippetLimit),
		}
	}
	InferQuestionTypes(items)
	AssignFallbackIDs(items)

	parsed, err := ParseQuiz(map[string]any{"questions": items})
	if err != nil {
		return nil, err
	}
	return parsed, nil
}

// ── Feedback Submission ─────────────────────────────────

type FeedbackRequest struct {
	Quiz           *Quiz
	Answers        []any
	GroupID        *int64
	Domain         string
	EnforceQuality bool
}

type FeedbackResponse struct {
	Feedback     Feedback `json:"feedback"`
	AttemptID    *int64   `json:"attemptId"`
	StrongPoints []string `json:"strongPoints"`
	GroupID      *int64   `json:"groupId"`
}

// SubmitFeedback runs the full normalization pipeline: oracle call,
// JSON extraction, type inference, schema validation, reconciliation
// against the authoritative quiz/answers, insight merge, and a
// best-effort attempt history write.
func (s *Service) SubmitFeedback(ctx context.Context, req FeedbackRequest) (*FeedbackResponse, error) {
	if len(req.Answers) != len(req.Quiz.Questions) {
		return nil, ErrAnswersMismatch
	}

	payload := BuildFeedbackPayload(req.Quiz, req.Answers)
	prompt := BuildFeedbackPrompt(payload)

	raw, err := s.callOracleJSON(ctx, FeedbackSystemPrompt(), prompt)
	if err != nil {
		return nil, err
	}

	InferItemTypes(raw)
	oracleFB, err := ParseFeedback(raw)
	if err != nil {
		return nil, err
	}

	scored := Reconcile(req.Quiz, req.Answers, oracleFB)

	if _, err := s.insights.MergeScope(ctx, req.GroupID, insights.Lists{
		WeakPoints:   scored.Feedback.WeakPoints,
		StrongPoints: scored.StrongPoints,
		StudyPlan:    scored.Feedback.StudyPlan,
	}); err != nil {
		return nil, fmt.Errorf("merge insights: %w", err)
	}

	// Attempt history is an audit side-channel: its failure is logged
	// and reported as a null id, never as a request failure.
	var attemptID *int64
	id, err := s.attempts.CreateAttempt(ctx, CreateAttemptParams{
		Quiz:           req.Quiz,
		Answers:        req.Answers,
		Feedback:       &scored.Feedback,
		Domain:         req.Domain,
		EnforceQuality: req.EnforceQuality,
		CorrectCount:   scored.CorrectCount,
		QuestionCount:  len(req.Quiz.Questions),
		GroupID:        req.GroupID,
	})
	if err != nil {
		log.Printf("WARNING: failed to record quiz attempt: %v", err)
	} else {
		attemptID = &id
	}

	return &FeedbackResponse{
		Feedback:     scored.Feedback,
		AttemptID:    attemptID,
		StrongPoints: scored.StrongPoints,
		GroupID:      req.GroupID,
	}, nil
}

// ── Oracle Plumbing ─────────────────────────────────────

// callOracleJSON invokes the oracle and extracts a JSON value from its
// output. On extraction failure the same prompt is reissued once with
// a stricter JSON-only directive; a second failure is terminal.
func (s *Service) callOracleJSON(ctx context.Context, systemPrompt, userPrompt string) (any, error) {
	resp, err := s.oracle.Generate(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("oracle call: %w", err)
	}

	raw, ok := oracle.ExtractJSON(resp.Content)
	if ok {
		return raw, nil
	}

	log.Printf("oracle returned non-JSON content, retrying with strict directive")
	retry, err := s.oracle.Generate(ctx, systemPrompt, userPrompt+StrictDirective)
	if err != nil {
		return nil, fmt.Errorf("oracle retry call: %w", err)
	}

	raw, ok = oracle.ExtractJSON(retry.Content)
	if !ok {
		return nil, &OracleError{
			Reason:  "AI returned non-JSON content",
			Snippet: oracle.Snippet(resp.Content, snippetLimit),
		}
	}
	return raw, nil
}
