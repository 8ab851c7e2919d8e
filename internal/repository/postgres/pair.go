package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"vocabpoll/internal/domain"

	"github.com/jmoiron/sqlx"
)

// PairRepo implements repository.PairRepository
type PairRepo struct {
	db *sqlx.DB
}

// NewPairRepo creates a new translation pair repository
func NewPairRepo(db *sqlx.DB) *PairRepo {
	return &PairRepo{db: db}
}

type pairRow struct {
	ID           int64     `db:"id"`
	UserID       int64     `db:"user_id"`
	Source       string    `db:"source_text"`
	Target       string    `db:"target_text"`
	PollCount    int       `db:"poll_count"`
	CorrectCount int       `db:"correct_count"`
	WrongCount   int       `db:"wrong_count"`
	Active       bool      `db:"active"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r pairRow) toDomain() domain.Pair {
	return domain.Pair{
		ID:           r.ID,
		UserID:       r.UserID,
		Source:       r.Source,
		Target:       r.Target,
		PollCount:    r.PollCount,
		CorrectCount: r.CorrectCount,
		WrongCount:   r.WrongCount,
		Active:       r.Active,
		CreatedAt:    r.CreatedAt,
	}
}

const pairColumns = `id, user_id, source_text, target_text, poll_count, correct_count, wrong_count, active, created_at`

// Create saves a new pair. A deactivated pair with the same source is
// reactivated with the new target and keeps its statistics.
func (r *PairRepo) Create(ctx context.Context, userID int64, source, target string) error {
	query := `
		INSERT INTO translation_pairs (user_id, source_text, target_text)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, source_text)
		DO UPDATE SET target_text = EXCLUDED.target_text, active = TRUE, created_at = NOW()
		WHERE translation_pairs.active = FALSE
	`
	res, err := r.db.ExecContext(ctx, query, userID, source, target)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrConflict
	}
	return nil
}

// GetActive returns the active pair with the given source or nil
func (r *PairRepo) GetActive(ctx context.Context, userID int64, source string) (*domain.Pair, error) {
	var row pairRow
	query := `SELECT ` + pairColumns + ` FROM translation_pairs WHERE user_id = $1 AND source_text = $2 AND active = TRUE`
	err := r.db.GetContext(ctx, &row, query, userID, source)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	p := row.toDomain()
	return &p, nil
}

// ListActive returns the user's active pairs, newest first
func (r *PairRepo) ListActive(ctx context.Context, userID int64, limit int) ([]domain.Pair, error) {
	query := `SELECT ` + pairColumns + ` FROM translation_pairs WHERE user_id = $1 AND active = TRUE ORDER BY created_at DESC`
	args := []interface{}{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	var rows []pairRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	pairs := make([]domain.Pair, 0, len(rows))
	for _, row := range rows {
		pairs = append(pairs, row.toDomain())
	}
	return pairs, nil
}

// Deactivate marks the pair inactive
func (r *PairRepo) Deactivate(ctx context.Context, userID int64, source string) (bool, error) {
	query := `
		UPDATE translation_pairs
		SET active = FALSE
		WHERE user_id = $1 AND source_text = $2 AND active = TRUE
	`
	res, err := r.db.ExecContext(ctx, query, userID, source)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// IncrementPollCount adds one to the number of polls about the pair
func (r *PairRepo) IncrementPollCount(ctx context.Context, userID int64, source string) error {
	return r.increment(ctx, "poll_count", userID, source)
}

// IncrementCorrect adds one to the number of correct answers
func (r *PairRepo) IncrementCorrect(ctx context.Context, userID int64, source string) error {
	return r.increment(ctx, "correct_count", userID, source)
}

// IncrementWrong adds one to the number of wrong answers
func (r *PairRepo) IncrementWrong(ctx context.Context, userID int64, source string) error {
	return r.increment(ctx, "wrong_count", userID, source)
}

// increment bumps a counter column in a single statement.
// column is always one of the constants above, never user input.
func (r *PairRepo) increment(ctx context.Context, column string, userID int64, source string) error {
	query := `UPDATE translation_pairs SET ` + column + ` = ` + column + ` + 1 WHERE user_id = $1 AND source_text = $2`
	_, err := r.db.ExecContext(ctx, query, userID, source)
	return err
}
