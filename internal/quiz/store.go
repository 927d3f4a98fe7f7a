package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Attempt is a persisted quiz run with its answers and reconciled
// feedback. Stored blobs are decoded defensively: a corrupt column
// yields an empty value rather than a failed read.
type Attempt struct {
	ID             int64     `json:"id"`
	Quiz           *Quiz     `json:"quiz"`
	Answers        []any     `json:"answers"`
	Feedback       *Feedback `json:"feedback"`
	Domain         string    `json:"domain"`
	EnforceQuality bool      `json:"enforceQuality"`
	CorrectCount   int       `json:"correctCount"`
	QuestionCount  int       `json:"questionCount"`
	GroupID        *int64    `json:"groupId"`
	GroupName      *string   `json:"groupName,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type CreateAttemptParams struct {
	Quiz           *Quiz
	Answers        []any
	Feedback       *Feedback
	Domain         string
	EnforceQuality bool
	CorrectCount   int
	QuestionCount  int
	GroupID        *int64
}

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateAttempt(ctx context.Context, p CreateAttemptParams) (int64, error) {
	quizJSON, err := json.Marshal(p.Quiz)
	if err != nil {
		return 0, fmt.Errorf("marshal quiz: %w", err)
	}
	answersJSON, err := json.Marshal(p.Answers)
	if err != nil {
		return 0, fmt.Errorf("marshal answers: %w", err)
	}
	feedbackJSON, err := json.Marshal(p.Feedback)
	if err != nil {
		return 0, fmt.Errorf("marshal feedback: %w", err)
	}

	domain := p.Domain
	if domain == "" {
		domain = "general"
	}

	var id int64
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO quiz_attempts
		   (quiz, answers, feedback, domain, enforce_quality, correct_count, question_count, group_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		string(quizJSON), string(answersJSON), string(feedbackJSON),
		domain, p.EnforceQuality, p.CorrectCount, p.QuestionCount, p.GroupID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert attempt: %w", err)
	}
	return id, nil
}

func (s *Store) ListAttempts(ctx context.Context, limit int) ([]Attempt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT a.id, a.quiz, a.answers, a.feedback, a.domain, a.enforce_quality,
		        a.correct_count, a.question_count, a.group_id, g.name,
		        a.created_at, a.updated_at
		 FROM quiz_attempts a
		 LEFT JOIN groups g ON g.id = a.group_id
		 ORDER BY a.created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, *a)
	}
	return attempts, rows.Err()
}

func (s *Store) GetAttempt(ctx context.Context, id int64) (*Attempt, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT a.id, a.quiz, a.answers, a.feedback, a.domain, a.enforce_quality,
		        a.correct_count, a.question_count, a.group_id, g.name,
		        a.created_at, a.updated_at
		 FROM quiz_attempts a
		 LEFT JOIN groups g ON g.id = a.group_id
		 WHERE a.id = $1`,
		id,
	)
	return scanAttempt(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttempt(row rowScanner) (*Attempt, error) {
	var a Attempt
	var quizRaw, answersRaw, feedbackRaw string
	err := row.Scan(
		&a.ID, &quizRaw, &answersRaw, &feedbackRaw, &a.Domain, &a.EnforceQuality,
		&a.CorrectCount, &a.QuestionCount, &a.GroupID, &a.GroupName,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Quiz = decodeStoredQuiz(quizRaw)
	a.Answers = decodeStoredAnswers(answersRaw)
	a.Feedback = decodeStoredFeedback(feedbackRaw)
	return &a, nil
}

func decodeStoredQuiz(raw string) *Quiz {
	var q Quiz
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		return &Quiz{Questions: []Question{}}
	}
	if q.Questions == nil {
		q.Questions = []Question{}
	}
	return &q
}

func decodeStoredAnswers(raw string) []any {
	var answers []any
	if err := json.Unmarshal([]byte(raw), &answers); err != nil || answers == nil {
		return []any{}
	}
	return answers
}

func decodeStoredFeedback(raw string) *Feedback {
	var f Feedback
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		return &Feedback{Items: []FeedbackItem{}, WeakPoints: []string{}, StudyPlan: []string{}}
	}
	if f.Items == nil {
		f.Items = []FeedbackItem{}
	}
	if f.WeakPoints == nil {
		f.WeakPoints = []string{}
	}
	if f.StudyPlan == nil {
		f.StudyPlan = []string{}
	}
	return &f
}
