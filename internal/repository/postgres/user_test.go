package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CarlosMilan/Challenge-BCI/internal/domain"
	"github.com/CarlosMilan/Challenge-BCI/pkg/database"
	apperrors "github.com/CarlosMilan/Challenge-BCI/pkg/errors"
)

func newUserTestFixture(t *testing.T) (*UserRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewUserRepository(mock), mock
}

func sampleUser() *domain.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.User{
		ID:           "7d4f8a7e-8d1b-4c53-9a1e-0f1d2c3b4a59",
		Email:        "charlie_01@correo.com",
		PasswordHash: "$2a$04$hash",
		Name:         "Charlie",
		Role:         domain.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		Phones: []domain.Phone{
			{Number: 345790145, CityCode: 261, CountryCode: "+54"},
			{Number: 111222333, CityCode: 11, CountryCode: "+54"},
		},
	}
}

func userColumns() []string {
	return []string{"id", "email", "password_hash", "name", "role", "is_active", "created_at", "last_login"}
}

func expectUserInsert(mock pgxmock.PgxPoolIface, u *domain.User) *pgxmock.ExpectedExec {
	return mock.ExpectExec("INSERT INTO users").
		WithArgs(u.ID, u.Email, u.PasswordHash, u.Name, u.Role, u.IsActive, pgxmock.AnyArg(), pgxmock.AnyArg())
}

func emailViolation() error {
	return &pgconn.PgError{
		Code:           pgerrcode.UniqueViolation,
		ConstraintName: emailConstraint,
		Message:        "duplicate key value violates unique constraint",
	}
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestUserRepository_Create_InsertsUserAndPhones(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	u := sampleUser()

	mock.ExpectBegin()
	expectUserInsert(mock, u).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	for _, p := range u.Phones {
		mock.ExpectExec("INSERT INTO phones").
			WithArgs(u.ID, p.Number, p.CityCode, p.CountryCode).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), u))
	for _, p := range u.Phones {
		assert.Equal(t, u.ID, p.UserID)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_DuplicateEmail_WritesNoPhones(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	u := sampleUser()

	mock.ExpectBegin()
	expectUserInsert(mock, u).WillReturnError(emailViolation())
	mock.ExpectRollback()

	err := repo.Create(context.Background(), u)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrDuplicateUser), "expected ErrDuplicateUser, got: %v", err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "There is already a user with the email charlie_01@correo.com", appErr.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_OtherUniqueViolation_IsStoreFailure(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	u := sampleUser()

	mock.ExpectBegin()
	expectUserInsert(mock, u).WillReturnError(&pgconn.PgError{
		Code:           pgerrcode.UniqueViolation,
		ConstraintName: "users_pkey",
	})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), u)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrStoreFailure))
	assert.False(t, errors.Is(err, apperrors.ErrDuplicateUser))
}

func TestUserRepository_Create_PhoneInsertFails_RollsBack(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	u := sampleUser()

	mock.ExpectBegin()
	expectUserInsert(mock, u).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO phones").
		WithArgs(u.ID, u.Phones[0].Number, u.Phones[0].CityCode, u.Phones[0].CountryCode).
		WillReturnError(fmt.Errorf("connection reset"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), u)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrStoreFailure))
	assert.Contains(t, err.Error(), "insert phone")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_BeginFails(t *testing.T) {
	repo, mock := newUserTestFixture(t)

	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	err := repo.Create(context.Background(), sampleUser())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrStoreFailure))
	assert.Equal(t, 500, apperrors.HTTPStatus(err))
}

// ---------------------------------------------------------------------------
// GetByEmail
// ---------------------------------------------------------------------------

func TestUserRepository_GetByEmail_Success(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	u := sampleUser()
	lastLogin := u.CreatedAt.Add(time.Hour)

	mock.ExpectQuery("SELECT .+ FROM users WHERE email =").
		WithArgs(u.Email).
		WillReturnRows(pgxmock.NewRows(userColumns()).AddRow(
			u.ID, u.Email, u.PasswordHash, u.Name, u.Role, u.IsActive, u.CreatedAt, &lastLogin,
		))

	got, err := repo.GetByEmail(context.Background(), u.Email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, u.Name, got.Name)
	assert.Equal(t, u.PasswordHash, got.PasswordHash)
	assert.True(t, got.IsActive)
	require.NotNil(t, got.LastLogin)
	assert.True(t, lastLogin.Equal(*got.LastLogin))
	assert.Empty(t, got.Phones)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByEmail_NeverLoggedIn(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	u := sampleUser()

	mock.ExpectQuery("SELECT .+ FROM users WHERE email =").
		WithArgs(u.Email).
		WillReturnRows(pgxmock.NewRows(userColumns()).AddRow(
			u.ID, u.Email, u.PasswordHash, u.Name, u.Role, u.IsActive, u.CreatedAt, (*time.Time)(nil),
		))

	got, err := repo.GetByEmail(context.Background(), u.Email)
	require.NoError(t, err)
	assert.Nil(t, got.LastLogin)
}

func TestUserRepository_GetByEmail_NotFound(t *testing.T) {
	repo, mock := newUserTestFixture(t)

	mock.ExpectQuery("SELECT .+ FROM users WHERE email =").
		WithArgs("nobody@correo.com").
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetByEmail(context.Background(), "nobody@correo.com")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByEmail_DBError(t *testing.T) {
	repo, mock := newUserTestFixture(t)

	mock.ExpectQuery("SELECT .+ FROM users WHERE email =").
		WithArgs("charlie_01@correo.com").
		WillReturnError(errors.New("connection refused"))

	_, err := repo.GetByEmail(context.Background(), "charlie_01@correo.com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrStoreFailure))
	assert.False(t, errors.Is(err, apperrors.ErrNotFound))
}

// ---------------------------------------------------------------------------
// ExistsByEmail
// ---------------------------------------------------------------------------

func TestUserRepository_ExistsByEmail(t *testing.T) {
	for _, want := range []bool{true, false} {
		t.Run(fmt.Sprintf("exists=%v", want), func(t *testing.T) {
			repo, mock := newUserTestFixture(t)

			mock.ExpectQuery("SELECT EXISTS").
				WithArgs("charlie_01@correo.com").
				WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(want))

			got, err := repo.ExistsByEmail(context.Background(), "charlie_01@correo.com")
			require.NoError(t, err)
			assert.Equal(t, want, got)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_ExistsByEmail_DBError(t *testing.T) {
	repo, mock := newUserTestFixture(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("charlie_01@correo.com").
		WillReturnError(errors.New("timeout"))

	_, err := repo.ExistsByEmail(context.Background(), "charlie_01@correo.com")
	assert.True(t, errors.Is(err, apperrors.ErrStoreFailure))
}

// ---------------------------------------------------------------------------
// UpdateLastLogin
// ---------------------------------------------------------------------------

func TestUserRepository_UpdateLastLogin_Success(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec("UPDATE users SET last_login").
		WithArgs(at, "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.UpdateLastLogin(context.Background(), "user-1", at))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateLastLogin_NotFound(t *testing.T) {
	repo, mock := newUserTestFixture(t)

	mock.ExpectExec("UPDATE users SET last_login").
		WithArgs(pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdateLastLogin(context.Background(), "missing", time.Now())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUserRepository_UpdateLastLogin_DBError(t *testing.T) {
	repo, mock := newUserTestFixture(t)

	mock.ExpectExec("UPDATE users SET last_login").
		WithArgs(pgxmock.AnyArg(), "user-1").
		WillReturnError(errors.New("connection refused"))

	err := repo.UpdateLastLogin(context.Background(), "user-1", time.Now())
	assert.True(t, errors.Is(err, apperrors.ErrStoreFailure))
}

func TestIsEmailViolation(t *testing.T) {
	assert.True(t, isEmailViolation(fmt.Errorf("insert user: %w", emailViolation())))
	assert.False(t, isEmailViolation(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, ConstraintName: emailConstraint}))
	assert.False(t, isEmailViolation(errors.New("duplicate key value violates unique constraint \"users_email_key\"")))
}
