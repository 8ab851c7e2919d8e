package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"vocabpoll/internal/domain"

	"github.com/jmoiron/sqlx"
)

// UserRepo implements repository.UserRepository
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

type userRow struct {
	UserID    int64     `db:"user_id"`
	Username  string    `db:"username"`
	CreatedAt time.Time `db:"created_at"`
}

func (r userRow) toDomain() domain.User {
	return domain.User{ID: r.UserID, Username: r.Username, CreatedAt: r.CreatedAt}
}

// Create registers a user, keeping the existing record if there is one
func (r *UserRepo) Create(ctx context.Context, userID int64, username string) error {
	query := `
		INSERT INTO users (user_id, username)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, userID, username)
	return err
}

// Get returns the user or nil if not registered
func (r *UserRepo) Get(ctx context.Context, userID int64) (*domain.User, error) {
	var row userRow
	query := `SELECT user_id, username, created_at FROM users WHERE user_id = $1`
	err := r.db.GetContext(ctx, &row, query, userID)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	u := row.toDomain()
	return &u, nil
}

// List returns all registered users
func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	var rows []userRow
	query := `SELECT user_id, username, created_at FROM users ORDER BY user_id`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}

	users := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toDomain())
	}
	return users, nil
}

// cascadeTables lists every table holding per-user records, the users table last
var cascadeTables = []string{
	"pending_actions",
	"quiz_polls",
	"suggestion_polls",
	"translation_pairs",
	"users",
}

// archivePairsQuery keeps the pairs of a removed user as one batch; users without pairs leave no row
const archivePairsQuery = `
	INSERT INTO deleted_pair_batches (user_id, source_texts, target_texts)
	SELECT user_id, array_agg(source_text ORDER BY id), array_agg(target_text ORDER BY id)
	FROM translation_pairs
	WHERE user_id = $1
	GROUP BY user_id`

// DeleteCascade archives the user's pairs, then removes the user and all
// records owned by them in one transaction
func (r *UserRepo) DeleteCascade(ctx context.Context, userID int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, archivePairsQuery, userID); err != nil {
		return fmt.Errorf("failed to archive pairs: %w", err)
	}

	for _, table := range cascadeTables {
		query := fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1`, table)
		if _, err := tx.ExecContext(ctx, query, userID); err != nil {
			return fmt.Errorf("failed to delete from %s: %w", table, err)
		}
	}

	return tx.Commit()
}
