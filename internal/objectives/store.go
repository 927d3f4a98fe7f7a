package objectives

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/objectiveprep/backend/internal/models"
)

// ErrDuplicateName is returned when a group name already exists.
var ErrDuplicateName = errors.New("group name must be unique")

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ── Objectives ──────────────────────────────────────────

func (s *Store) ListObjectives(ctx context.Context) ([]models.Objective, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, text, group_id, created_at FROM objectives ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list objectives: %w", err)
	}
	defer rows.Close()

	var objectives []models.Objective
	for rows.Next() {
		var o models.Objective
		if err := rows.Scan(&o.ID, &o.Text, &o.GroupID, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan objective: %w", err)
		}
		objectives = append(objectives, o)
	}
	return objectives, rows.Err()
}

// ListTexts returns every persisted objective text oldest-first, the
// order used when a generation request names no objectives itself.
func (s *Store) ListTexts(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT text FROM objectives ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list objective texts: %w", err)
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan objective text: %w", err)
		}
		texts = append(texts, t)
	}
	return texts, rows.Err()
}

func (s *Store) CreateObjective(ctx context.Context, text string) (*models.Objective, error) {
	var o models.Objective
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO objectives (text) VALUES ($1) RETURNING id, text, group_id, created_at`,
		text,
	).Scan(&o.ID, &o.Text, &o.GroupID, &o.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create objective: %w", err)
	}
	return &o, nil
}

// BulkCreate inserts the given texts, tolerating rows that already
// exist. Returns the number actually inserted.
func (s *Store) BulkCreate(ctx context.Context, items []string, groupID *int64) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	inserted := 0
	for _, text := range items {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO objectives (text, group_id) VALUES ($1, $2)
			 ON CONFLICT (text) DO NOTHING`,
			text, groupID,
		)
		if err != nil {
			return 0, fmt.Errorf("insert objective: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

func (s *Store) UpdateObjective(ctx context.Context, id int64, text string) (*models.Objective, error) {
	var o models.Objective
	err := s.db.QueryRowContext(ctx,
		`UPDATE objectives SET text = $1 WHERE id = $2 RETURNING id, text, group_id, created_at`,
		text, id,
	).Scan(&o.ID, &o.Text, &o.GroupID, &o.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("update objective: %w", err)
	}
	return &o, nil
}

func (s *Store) DeleteObjective(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM objectives WHERE id = $1`, id)
	return err
}

func (s *Store) DeleteAllObjectives(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM objectives`)
	return err
}

// ── Groups ──────────────────────────────────────────────

// EnsureDefaultGroup upserts the distinguished default group and
// returns it.
func (s *Store) EnsureDefaultGroup(ctx context.Context) (*models.Group, error) {
	var g models.Group
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO groups (name) VALUES ($1)
		 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id, name, created_at`,
		models.DefaultGroupName,
	).Scan(&g.ID, &g.Name, &g.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("ensure default group: %w", err)
	}
	return &g, nil
}

// ReassignUngrouped moves objectives with no group into the given one.
func (s *Store) ReassignUngrouped(ctx context.Context, groupID int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE objectives SET group_id = $1 WHERE group_id IS NULL`,
		groupID,
	)
	return err
}

func (s *Store) ListGroups(ctx context.Context) ([]models.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM groups ORDER BY name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	var groups []models.Group
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (s *Store) CreateGroup(ctx context.Context, name string) (*models.Group, error) {
	var g models.Group
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO groups (name) VALUES ($1) RETURNING id, name, created_at`,
		name,
	).Scan(&g.ID, &g.Name, &g.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrDuplicateName
		}
		return nil, fmt.Errorf("create group: %w", err)
	}
	return &g, nil
}
