package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/CarlosMilan/Challenge-BCI/internal/domain"
	"github.com/CarlosMilan/Challenge-BCI/pkg/database"
	apperrors "github.com/CarlosMilan/Challenge-BCI/pkg/errors"
)

// emailConstraint is the unique constraint on users.email created by the
// first migration.
const emailConstraint = "users_email_key"

const (
	insertUserQuery = `
		INSERT INTO users (id, email, password_hash, name, role, is_active, created_at, last_login)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	insertPhoneQuery = `
		INSERT INTO phones (user_id, number, city_code, country_code)
		VALUES ($1, $2, $3, $4)`

	selectUserByEmailQuery = `
		SELECT id, email, password_hash, name, role, is_active, created_at, last_login
		FROM users
		WHERE email = $1`

	existsByEmailQuery = `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`

	updateLastLoginQuery = `UPDATE users SET last_login = $1 WHERE id = $2`
)

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	db database.DBTX
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(db database.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts the user row and then one row per phone, bound to the new
// user id, in a single transaction.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) (err error) {
	ctx, end := database.TraceQuery(ctx, "CreateUser", insertUserQuery)
	defer func() { end(err) }()

	err = database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, insertUserQuery,
			u.ID,
			u.Email,
			u.PasswordHash,
			u.Name,
			u.Role,
			u.IsActive,
			u.CreatedAt,
			u.LastLogin,
		); err != nil {
			return fmt.Errorf("insert user: %w", err)
		}

		for i := range u.Phones {
			p := &u.Phones[i]
			p.UserID = u.ID
			if _, err := tx.Exec(ctx, insertPhoneQuery, p.UserID, p.Number, p.CityCode, p.CountryCode); err != nil {
				return fmt.Errorf("insert phone: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		if isEmailViolation(err) {
			return apperrors.DuplicateUser(u.Email)
		}
		return apperrors.StoreFailure(err)
	}

	return nil
}

// GetByEmail retrieves a user by email address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (_ *domain.User, err error) {
	ctx, end := database.TraceQuery(ctx, "GetUserByEmail", selectUserByEmailQuery)
	defer func() { end(err) }()

	var u domain.User
	err = r.db.QueryRow(ctx, selectUserByEmailQuery, email).Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.Role,
		&u.IsActive,
		&u.CreatedAt,
		&u.LastLogin,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.StoreFailure(fmt.Errorf("scan user: %w", err))
	}

	return &u, nil
}

// ExistsByEmail reports whether a user with the email exists.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (_ bool, err error) {
	ctx, end := database.TraceQuery(ctx, "ExistsUserByEmail", existsByEmailQuery)
	defer func() { end(err) }()

	var exists bool
	if err = r.db.QueryRow(ctx, existsByEmailQuery, email).Scan(&exists); err != nil {
		return false, apperrors.StoreFailure(fmt.Errorf("check user email: %w", err))
	}
	return exists, nil
}

// UpdateLastLogin sets last_login for the user.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) (err error) {
	ctx, end := database.TraceQuery(ctx, "UpdateLastLogin", updateLastLoginQuery)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, updateLastLoginQuery, at.UTC(), id)
	if err != nil {
		return apperrors.StoreFailure(fmt.Errorf("update last login: %w", err))
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("user", id)
	}
	return nil
}

// isEmailViolation reports whether err is a unique violation on the email
// constraint.
func isEmailViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgerrcode.UniqueViolation && pgErr.ConstraintName == emailConstraint
}
