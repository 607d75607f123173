package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ritual-coach-backend/internal/catalog"
	"ritual-coach-backend/internal/engine"
)

// Store is the persistence collaborator: UserState snapshots keyed by user id
// plus an append-only completion log. The core never touches storage
// directly; callers own read/write serialization.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, errors.New("store: nil db")
	}
	return &Store{db: db}, nil
}

// LoadState returns the persisted snapshot for the user, or the default
// factory state when none exists yet.
func (st *Store) LoadState(ctx context.Context, userID int) (*engine.UserState, error) {
	var raw []byte
	err := st.db.QueryRowContext(ctx,
		`SELECT state FROM user_state WHERE user_id=$1`, userID,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return engine.NewUserState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: load state: %w", err)
	}

	s := engine.NewUserState()
	if err := json.Unmarshal(raw, s); err != nil {
		return nil, fmt.Errorf("store: decode state: %w", err)
	}
	return s, nil
}

func (st *Store) SaveState(ctx context.Context, userID int, s *engine.UserState) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("store: encode state: %w", err)
	}
	_, err = st.db.ExecContext(ctx, `
		INSERT INTO user_state (user_id, state, updated_at)
		VALUES ($1, $2::jsonb, $3)
		ON CONFLICT (user_id) DO UPDATE SET state=$2::jsonb, updated_at=$3
	`, userID, string(raw), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("store: save state: %w", err)
	}
	return nil
}

// Completion is one appended completion-log row.
type Completion struct {
	ID          string    `json:"id"`
	TaskID      string    `json:"task_id"`
	Category    string    `json:"category"`
	Domain      string    `json:"domain"`
	Points      int       `json:"points"`
	CompletedAt time.Time `json:"completed_at"`
}

// LogCompletion appends one row; the log is never updated or deleted.
func (st *Store) LogCompletion(ctx context.Context, userID int, t catalog.Task) (Completion, error) {
	c := Completion{
		ID:          uuid.NewString(),
		TaskID:      t.ID,
		Category:    t.Category,
		Domain:      t.Domain,
		Points:      t.Points,
		CompletedAt: time.Now().UTC(),
	}
	_, err := st.db.ExecContext(ctx, `
		INSERT INTO completions (id, user_id, task_id, category, domain, points, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, c.ID, userID, c.TaskID, c.Category, c.Domain, c.Points, c.CompletedAt)
	if err != nil {
		return Completion{}, fmt.Errorf("store: log completion: %w", err)
	}
	return c, nil
}

// PointsSince sums completion points for the user from a cutoff time.
func (st *Store) PointsSince(ctx context.Context, userID int, since time.Time) (int, error) {
	var points int
	err := st.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(points), 0)
		FROM completions
		WHERE user_id=$1 AND completed_at >= $2
	`, userID, since).Scan(&points)
	if err != nil {
		return 0, fmt.Errorf("store: points since: %w", err)
	}
	return points, nil
}
