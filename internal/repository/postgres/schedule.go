package postgres

import (
	"context"
	"database/sql"
	"errors"

	"vocabpoll/internal/domain"

	"github.com/jmoiron/sqlx"
)

// ScheduleRepo implements repository.ScheduleRepository
type ScheduleRepo struct {
	db *sqlx.DB
}

// NewScheduleRepo creates a new polling schedule repository
func NewScheduleRepo(db *sqlx.DB) *ScheduleRepo {
	return &ScheduleRepo{db: db}
}

type scheduleRow struct {
	UserID int64  `db:"user_id"`
	Amount int    `db:"amount"`
	Unit   string `db:"unit"`
}

func (r scheduleRow) toDomain() domain.Schedule {
	return domain.Schedule{
		UserID: r.UserID,
		Rate:   domain.Rate{Amount: r.Amount, Unit: domain.TimeUnit(r.Unit)},
	}
}

// Save creates or replaces the user's polling rate
func (r *ScheduleRepo) Save(ctx context.Context, schedule domain.Schedule) error {
	query := `
		INSERT INTO polling_schedules (user_id, amount, unit)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id)
		DO UPDATE SET amount = EXCLUDED.amount, unit = EXCLUDED.unit, updated_at = NOW()
	`
	_, err := r.db.ExecContext(ctx, query, schedule.UserID, schedule.Rate.Amount, string(schedule.Rate.Unit))
	return err
}

// Get returns the user's schedule or nil
func (r *ScheduleRepo) Get(ctx context.Context, userID int64) (*domain.Schedule, error) {
	var row scheduleRow
	query := `SELECT user_id, amount, unit FROM polling_schedules WHERE user_id = $1`
	err := r.db.GetContext(ctx, &row, query, userID)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	s := row.toDomain()
	return &s, nil
}

// List returns every persisted schedule
func (r *ScheduleRepo) List(ctx context.Context) ([]domain.Schedule, error) {
	var rows []scheduleRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT user_id, amount, unit FROM polling_schedules`); err != nil {
		return nil, err
	}

	schedules := make([]domain.Schedule, 0, len(rows))
	for _, row := range rows {
		schedules = append(schedules, row.toDomain())
	}
	return schedules, nil
}

// Delete removes the user's schedule
func (r *ScheduleRepo) Delete(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM polling_schedules WHERE user_id = $1`, userID)
	return err
}
