package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"vocabpoll/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPollRepo_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPollRepo(db)

	mock.ExpectExec("INSERT INTO quiz_polls").
		WithArgs("poll-1", int64(123), "hello").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), domain.PollRecord{PollID: "poll-1", UserID: 123, PairSource: "hello"})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPollRepo_Get(t *testing.T) {
	tests := []struct {
		name          string
		mockRows      *sqlmock.Rows
		mockError     error
		expected      *domain.PollRecord
		expectedError bool
	}{
		{
			name:     "poll found",
			mockRows: sqlmock.NewRows([]string{"poll_id", "user_id", "source_text"}).AddRow("poll-1", 123, "hello"),
			expected: &domain.PollRecord{PollID: "poll-1", UserID: 123, PairSource: "hello"},
		},
		{
			name:      "poll already removed",
			mockError: sql.ErrNoRows,
			expected:  nil,
		},
		{
			name:          "database error",
			mockError:     fmt.Errorf("db error"),
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewPollRepo(db)

			query := "SELECT poll_id, user_id, source_text FROM quiz_polls WHERE poll_id = \\$1"
			if tt.mockError != nil {
				mock.ExpectQuery(query).WithArgs("poll-1").WillReturnError(tt.mockError)
			} else {
				mock.ExpectQuery(query).WithArgs("poll-1").WillReturnRows(tt.mockRows)
			}

			record, err := repo.Get(context.Background(), "poll-1")

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, record)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPollRepo_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPollRepo(db)

	mock.ExpectExec("DELETE FROM quiz_polls WHERE poll_id = \\$1").
		WithArgs("poll-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Delete(context.Background(), "poll-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSuggestionRepo_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSuggestionRepo(db)

	mock.ExpectExec("INSERT INTO suggestion_polls").
		WithArgs("poll-2", int64(123), pq.Array([]string{"hello", "good day"}), pq.Array([]string{"привіт", "добрий день"})).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), domain.SuggestionRecord{
		PollID: "poll-2",
		UserID: 123,
		Candidates: []domain.Candidate{
			{Source: "hello", Target: "привіт"},
			{Source: "good day", Target: "добрий день"},
		},
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSuggestionRepo_Get(t *testing.T) {
	tests := []struct {
		name          string
		mockRows      *sqlmock.Rows
		mockError     error
		expected      *domain.SuggestionRecord
		expectedError bool
	}{
		{
			name: "suggestion found",
			mockRows: sqlmock.NewRows([]string{"user_id", "source_texts", "target_texts"}).
				AddRow(123, []byte(`{hello,"good day"}`), []byte(`{привіт,"добрий день"}`)),
			expected: &domain.SuggestionRecord{
				PollID: "poll-2",
				UserID: 123,
				Candidates: []domain.Candidate{
					{Source: "hello", Target: "привіт"},
					{Source: "good day", Target: "добрий день"},
				},
			},
		},
		{
			name:      "suggestion already processed",
			mockError: sql.ErrNoRows,
		},
		{
			name: "mismatched arrays",
			mockRows: sqlmock.NewRows([]string{"user_id", "source_texts", "target_texts"}).
				AddRow(123, []byte(`{hello,world}`), []byte(`{привіт}`)),
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewSuggestionRepo(db)

			query := "SELECT user_id, source_texts, target_texts FROM suggestion_polls WHERE poll_id = \\$1"
			if tt.mockError != nil {
				mock.ExpectQuery(query).WithArgs("poll-2").WillReturnError(tt.mockError)
			} else {
				mock.ExpectQuery(query).WithArgs("poll-2").WillReturnRows(tt.mockRows)
			}

			record, err := repo.Get(context.Background(), "poll-2")

			if tt.expectedError {
				assert.Error(t, err)
				assert.Nil(t, record)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, record)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSuggestionRepo_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSuggestionRepo(db)

	mock.ExpectExec("DELETE FROM suggestion_polls WHERE poll_id = \\$1").
		WithArgs("poll-2").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Delete(context.Background(), "poll-2"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPollRepo_DeleteStale(t *testing.T) {
	tests := []struct {
		name     string
		table    string
		deleteFn func(db *sqlx.DB) (int64, error)
	}{
		{
			name:     "quiz polls",
			table:    "quiz_polls",
			deleteFn: func(db *sqlx.DB) (int64, error) { return NewPollRepo(db).DeleteStale(context.Background(), 7) },
		},
		{
			name:     "suggestion polls",
			table:    "suggestion_polls",
			deleteFn: func(db *sqlx.DB) (int64, error) { return NewSuggestionRepo(db).DeleteStale(context.Background(), 7) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)

			mock.ExpectExec("DELETE FROM " + tt.table + " WHERE created_at").
				WithArgs(7).
				WillReturnResult(sqlmock.NewResult(0, 3))

			removed, err := tt.deleteFn(db)

			assert.NoError(t, err)
			assert.Equal(t, int64(3), removed)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
