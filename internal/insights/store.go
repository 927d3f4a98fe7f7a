package insights

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/objectiveprep/backend/internal/models"
)

// insightKey is the singleton discriminator within a scope.
const insightKey = "global"

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// GetScope reads the insight record for a group scope (nil = global).
// Returns nil without error when no record exists yet.
func (s *Store) GetScope(ctx context.Context, groupID *int64) (*models.Insight, error) {
	row := s.scopeRow(ctx, groupID)

	var in models.Insight
	var weak, strong, plan string
	err := row.Scan(&in.ID, &in.GroupID, &weak, &strong, &plan, &in.CreatedAt, &in.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get insight: %w", err)
	}

	in.WeakPoints = ParseStringList(weak)
	in.StrongPoints = ParseStringList(strong)
	in.StudyPlan = ParseStringList(plan)
	return &in, nil
}

// MergeScope performs the insert-or-merge for a scope: create with the
// incoming lists when no record exists, otherwise union-merge into the
// existing record. The read and conditional write are not serialized
// in one transaction; two concurrent submissions to the same scope can
// lose one side's contribution, which is accepted at this scale.
func (s *Store) MergeScope(ctx context.Context, groupID *int64, incoming Lists) (Lists, error) {
	current, err := s.GetScope(ctx, groupID)
	if err != nil {
		return Lists{}, err
	}

	merged := Lists{
		WeakPoints:   MergeUnique(nil, incoming.WeakPoints, MaxEntries),
		StrongPoints: MergeUnique(nil, incoming.StrongPoints, MaxEntries),
		StudyPlan:    MergeUnique(nil, incoming.StudyPlan, MaxEntries),
	}
	if current != nil {
		merged = Merge(Lists{
			WeakPoints:   current.WeakPoints,
			StrongPoints: current.StrongPoints,
			StudyPlan:    current.StudyPlan,
		}, incoming)
	}

	weak := encodeStringList(merged.WeakPoints)
	strong := encodeStringList(merged.StrongPoints)
	plan := encodeStringList(merged.StudyPlan)

	if current == nil {
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO insights (key, group_id, weak_points, strong_points, study_plan)
			 VALUES ($1, $2, $3, $4, $5)`,
			insightKey, groupID, weak, strong, plan,
		)
		if err != nil {
			return Lists{}, fmt.Errorf("create insight: %w", err)
		}
		return merged, nil
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE insights
		 SET weak_points = $1, strong_points = $2, study_plan = $3, updated_at = NOW()
		 WHERE id = $4`,
		weak, strong, plan, current.ID,
	)
	if err != nil {
		return Lists{}, fmt.Errorf("update insight: %w", err)
	}
	return merged, nil
}

func (s *Store) scopeRow(ctx context.Context, groupID *int64) *sql.Row {
	const cols = `id, group_id, weak_points, strong_points, study_plan, created_at, updated_at`
	if groupID == nil {
		return s.db.QueryRowContext(ctx,
			`SELECT `+cols+` FROM insights WHERE key = $1 AND group_id IS NULL`,
			insightKey,
		)
	}
	return s.db.QueryRowContext(ctx,
		`SELECT `+cols+` FROM insights WHERE key = $1 AND group_id = $2`,
		insightKey, *groupID,
	)
}

// ParseStringList defensively decodes a stored JSON text blob into a
// string list. A corrupt or non-array blob degrades to an empty list;
// non-string entries are skipped.
func ParseStringList(raw string) []string {
	var decoded []any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return []string{}
	}
	out := make([]string, 0, len(decoded))
	for _, v := range decoded {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func encodeStringList(list []string) string {
	if list == nil {
		list = []string{}
	}
	data, _ := json.Marshal(list)
	return string(data)
}
