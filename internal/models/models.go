package models

import "time"

// DefaultGroupName is the distinguished group that always exists.
// Objectives with no explicit group are adopted into it whenever
// groups are listed.
const DefaultGroupName = "POPP"

// ── Core Records ─────────────────────────────────────────

type Group struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Objective struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	GroupID   *int64    `json:"group_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Insight is the persisted per-scope accumulation of study signals.
// The three lists are stored at rest as JSON text blobs and parsed
// defensively on read.
type Insight struct {
	ID           int64     `json:"id"`
	GroupID      *int64    `json:"group_id,omitempty"`
	WeakPoints   []string  `json:"weakPoints"`
	StrongPoints []string  `json:"strongPoints"`
	StudyPlan    []string  `json:"studyPlan"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ── Request Types ────────────────────────────────────────

type CreateObjectiveRequest struct {
	Text string `json:"text"`
}

type BulkObjectivesRequest struct {
	Items   []string `json:"items"`
	GroupID *int64   `json:"groupId,omitempty"`
}

type CreateGroupRequest struct {
	Name string `json:"name"`
}

type MergeInsightsRequest struct {
	WeakPoints   []string `json:"weakPoints"`
	StrongPoints []string `json:"strongPoints"`
	StudyPlan    []string `json:"studyPlan"`
	GroupID      *int64   `json:"groupId,omitempty"`
}

// ── Response Types ───────────────────────────────────────

type ErrorResponse struct {
	Error string `json:"error"`
	// Issues enumerates field-level violations for validation errors.
	Issues []string `json:"issues,omitempty"`
	// Snippet carries a truncated slice of raw oracle output on 502s.
	Snippet string `json:"snippet,omitempty"`
}

type BulkObjectivesResponse struct {
	Inserted   int         `json:"inserted"`
	Objectives []Objective `json:"objectives"`
}

type InsightLists struct {
	WeakPoints   []string `json:"weakPoints"`
	StrongPoints []string `json:"strongPoints"`
	StudyPlan    []string `json:"studyPlan"`
}
