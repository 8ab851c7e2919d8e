package postgres

import (
	"context"
	"database/sql"
	"errors"

	"vocabpoll/internal/domain"

	"github.com/jmoiron/sqlx"
)

// PollRepo implements repository.PollRepository
type PollRepo struct {
	db *sqlx.DB
}

// NewPollRepo creates a new quiz poll repository
func NewPollRepo(db *sqlx.DB) *PollRepo {
	return &PollRepo{db: db}
}

type pollRow struct {
	PollID     string `db:"poll_id"`
	UserID     int64  `db:"user_id"`
	SourceText string `db:"source_text"`
}

// Create records an outstanding quiz poll
func (r *PollRepo) Create(ctx context.Context, record domain.PollRecord) error {
	query := `
		INSERT INTO quiz_polls (poll_id, user_id, source_text)
		VALUES ($1, $2, $3)
	`
	_, err := r.db.ExecContext(ctx, query, record.PollID, record.UserID, record.PairSource)
	return err
}

// Get returns the quiz poll record or nil
func (r *PollRepo) Get(ctx context.Context, pollID string) (*domain.PollRecord, error) {
	var row pollRow
	query := `SELECT poll_id, user_id, source_text FROM quiz_polls WHERE poll_id = $1`
	err := r.db.GetContext(ctx, &row, query, pollID)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &domain.PollRecord{PollID: row.PollID, UserID: row.UserID, PairSource: row.SourceText}, nil
}

// Delete removes the quiz poll record
func (r *PollRepo) Delete(ctx context.Context, pollID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM quiz_polls WHERE poll_id = $1`, pollID)
	return err
}

// DeleteStale removes polls that were not answered within days
func (r *PollRepo) DeleteStale(ctx context.Context, days int) (int64, error) {
	query := `
		DELETE FROM quiz_polls
		WHERE created_at < NOW() - INTERVAL '1 day' * $1
	`
	res, err := r.db.ExecContext(ctx, query, days)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
