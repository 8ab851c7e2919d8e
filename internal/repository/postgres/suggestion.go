package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"vocabpoll/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// SuggestionRepo implements repository.SuggestionRepository
type SuggestionRepo struct {
	db *sqlx.DB
}

// NewSuggestionRepo creates a new suggestion poll repository
func NewSuggestionRepo(db *sqlx.DB) *SuggestionRepo {
	return &SuggestionRepo{db: db}
}

// Create records an outstanding suggestion poll.
// Candidates are stored as two parallel arrays in option order.
func (r *SuggestionRepo) Create(ctx context.Context, record domain.SuggestionRecord) error {
	sources := make([]string, len(record.Candidates))
	targets := make([]string, len(record.Candidates))
	for i, c := range record.Candidates {
		sources[i] = c.Source
		targets[i] = c.Target
	}

	query := `
		INSERT INTO suggestion_polls (poll_id, user_id, source_texts, target_texts)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.ExecContext(ctx, query, record.PollID, record.UserID, pq.Array(sources), pq.Array(targets))
	return err
}

// Get returns the suggestion poll record or nil
func (r *SuggestionRepo) Get(ctx context.Context, pollID string) (*domain.SuggestionRecord, error) {
	var (
		userID  int64
		sources []string
		targets []string
	)
	query := `SELECT user_id, source_texts, target_texts FROM suggestion_polls WHERE poll_id = $1`
	err := r.db.QueryRowxContext(ctx, query, pollID).Scan(&userID, pq.Array(&sources), pq.Array(&targets))

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(sources) != len(targets) {
		return nil, fmt.Errorf("suggestion %s has %d sources and %d targets", pollID, len(sources), len(targets))
	}

	record := &domain.SuggestionRecord{PollID: pollID, UserID: userID}
	for i := range sources {
		record.Candidates = append(record.Candidates, domain.Candidate{Source: sources[i], Target: targets[i]})
	}
	return record, nil
}

// Delete removes the suggestion poll record
func (r *SuggestionRepo) Delete(ctx context.Context, pollID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM suggestion_polls WHERE poll_id = $1`, pollID)
	return err
}

// DeleteStale removes polls that were not answered within days
func (r *SuggestionRepo) DeleteStale(ctx context.Context, days int) (int64, error) {
	query := `
		DELETE FROM suggestion_polls
		WHERE created_at < NOW() - INTERVAL '1 day' * $1
	`
	res, err := r.db.ExecContext(ctx, query, days)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
