package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgauth/identity-service/internal/core/domain"
)

var userCols = []string{"id", "first_name", "last_name", "email", "phone", "password_hash", "created_at"}

func TestUserRepository_Create(t *testing.T) {
	created := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	user := &domain.User{
		ID: "u-1", FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
		PasswordHash: "hash", CreatedAt: created,
	}

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "inserted",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO users`).
					WithArgs("u-1", "Ada", "Lovelace", "ada@example.com", "", "hash", created).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "duplicate email",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO users`).
					WithArgs("u-1", "Ada", "Lovelace", "ada@example.com", "", "hash", created).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})
			},
			wantErr: domain.ErrRegistrationConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()
			tt.setupMock(mock)

			err = NewUserRepository(mock).Create(context.Background(), user)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_FindByEmail(t *testing.T) {
	created := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantID    string
		wantErr   error
		anyErr    bool
	}{
		{
			name: "found",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1`).
					WithArgs("ada@example.com").
					WillReturnRows(pgxmock.NewRows(userCols).
						AddRow("u-1", "Ada", "Lovelace", "ada@example.com", "", "hash", created))
			},
			wantID: "u-1",
		},
		{
			name: "not found",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1`).
					WithArgs("ada@example.com").
					WillReturnRows(pgxmock.NewRows(userCols))
			},
			wantErr: domain.ErrUserNotFound,
		},
		{
			name: "database error",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1`).
					WithArgs("ada@example.com").
					WillReturnError(errors.New("connection refused"))
			},
			anyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()
			tt.setupMock(mock)

			got, err := NewUserRepository(mock).FindByEmail(context.Background(), "ada@example.com")
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.anyErr:
				require.Error(t, err)
				assert.NotErrorIs(t, err, domain.ErrUserNotFound)
				assert.Contains(t, err.Error(), "connection refused")
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, got.ID)
				assert.Equal(t, "hash", got.PasswordHash)
				assert.True(t, got.CreatedAt.Equal(created))
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_FindByIDInsideTransaction(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \$1`).
		WithArgs("u-1").
		WillReturnRows(pgxmock.NewRows(userCols).
			AddRow("u-1", "Ada", "Lovelace", "ada@example.com", "", "hash", time.Now()))
	mock.ExpectCommit()

	repo := NewUserRepository(mock)
	err = NewTransactor(mock).WithinTransaction(context.Background(), func(ctx context.Context) error {
		u, err := repo.FindByID(ctx, "u-1")
		if err != nil {
			return err
		}
		assert.Equal(t, "Ada", u.FirstName)
		return nil
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
