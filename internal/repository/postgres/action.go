package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"vocabpoll/internal/domain"

	"github.com/jmoiron/sqlx"
)

// ActionRepo implements repository.ActionRepository
type ActionRepo struct {
	db *sqlx.DB
}

// NewActionRepo creates a new pending action repository
func NewActionRepo(db *sqlx.DB) *ActionRepo {
	return &ActionRepo{db: db}
}

// actionRow is the flat storage form of domain.Action.
// Only the columns used by Kind are meaningful.
type actionRow struct {
	UserID          int64  `db:"user_id"`
	Kind            string `db:"kind"`
	SourceText      string `db:"source_text"`
	SuggestedTarget string `db:"suggested_target"`
	TimeUnit        string `db:"time_unit"`
	Question        string `db:"question"`
	Answer          string `db:"answer"`
	TipLength       int    `db:"tip_length"`
}

func toActionRow(userID int64, action domain.Action) (actionRow, error) {
	row := actionRow{UserID: userID}
	switch a := action.(type) {
	case domain.CreatingPair:
		row.SourceText = a.Source
		row.SuggestedTarget = a.Suggestion
	case domain.DeletingPair:
	case domain.UpdatingPollingRate:
		row.TimeUnit = string(a.Unit)
	case domain.OpenQuestion:
		row.SourceText = a.PairSource
		row.Question = a.Question
		row.Answer = a.Answer
		row.TipLength = a.TipLength
	default:
		return actionRow{}, fmt.Errorf("unsupported action %T", action)
	}
	row.Kind = string(action.Kind())
	return row, nil
}

func (r actionRow) toDomain() (domain.Action, error) {
	switch domain.ActionKind(r.Kind) {
	case domain.KindCreatingPair:
		return domain.CreatingPair{Source: r.SourceText, Suggestion: r.SuggestedTarget}, nil
	case domain.KindDeletingPair:
		return domain.DeletingPair{}, nil
	case domain.KindUpdatingPollingRate:
		return domain.UpdatingPollingRate{Unit: domain.TimeUnit(r.TimeUnit)}, nil
	case domain.KindOpenQuestion:
		return domain.OpenQuestion{
			Question:   r.Question,
			Answer:     r.Answer,
			PairSource: r.SourceText,
			TipLength:  r.TipLength,
		}, nil
	default:
		return nil, fmt.Errorf("unknown action kind %q", r.Kind)
	}
}

// Get returns the user's pending action or nil
func (r *ActionRepo) Get(ctx context.Context, userID int64) (domain.Action, error) {
	var row actionRow
	query := `
		SELECT user_id, kind, source_text, suggested_target, time_unit, question, answer, tip_length
		FROM pending_actions
		WHERE user_id = $1
	`
	err := r.db.GetContext(ctx, &row, query, userID)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return row.toDomain()
}

// Create stores the action unless the user already has one
func (r *ActionRepo) Create(ctx context.Context, userID int64, action domain.Action) error {
	row, err := toActionRow(userID, action)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO pending_actions (user_id, kind, source_text, suggested_target, time_unit, question, answer, tip_length)
		VALUES (:user_id, :kind, :source_text, :suggested_target, :time_unit, :question, :answer, :tip_length)
		ON CONFLICT (user_id) DO NOTHING
	`
	res, err := r.db.NamedExecContext(ctx, query, row)
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

// Update overwrites the user's pending action
func (r *ActionRepo) Update(ctx context.Context, userID int64, action domain.Action) error {
	row, err := toActionRow(userID, action)
	if err != nil {
		return err
	}

	query := `
		UPDATE pending_actions
		SET kind = :kind, source_text = :source_text, suggested_target = :suggested_target,
			time_unit = :time_unit, question = :question, answer = :answer,
			tip_length = :tip_length, updated_at = NOW()
		WHERE user_id = :user_id
	`
	_, err = r.db.NamedExecContext(ctx, query, row)
	return err
}

// Delete removes the user's pending action
func (r *ActionRepo) Delete(ctx context.Context, userID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pending_actions WHERE user_id = $1`, userID)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
