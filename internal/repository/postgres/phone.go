package postgres

import (
	"context"
	"fmt"

	"github.com/CarlosMilan/Challenge-BCI/internal/domain"
	"github.com/CarlosMilan/Challenge-BCI/pkg/database"
	apperrors "github.com/CarlosMilan/Challenge-BCI/pkg/errors"
)

const listPhonesByUserQuery = `
	SELECT user_id, number, city_code, country_code
	FROM phones
	WHERE user_id = $1
	ORDER BY id`

// PhoneRepository implements repository.PhoneRepository using PostgreSQL.
type PhoneRepository struct {
	db database.DBTX
}

// NewPhoneRepository creates a new PostgreSQL-backed phone repository.
func NewPhoneRepository(db database.DBTX) *PhoneRepository {
	return &PhoneRepository{db: db}
}

// ListByUserID returns all phones for the given user.
func (r *PhoneRepository) ListByUserID(ctx context.Context, userID string) (_ []domain.Phone, err error) {
	ctx, end := database.TraceQuery(ctx, "ListPhonesByUser", listPhonesByUserQuery)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, listPhonesByUserQuery, userID)
	if err != nil {
		return nil, apperrors.StoreFailure(fmt.Errorf("list phones: %w", err))
	}
	defer rows.Close()

	var phones []domain.Phone
	for rows.Next() {
		var p domain.Phone
		if err = rows.Scan(&p.UserID, &p.Number, &p.CityCode, &p.CountryCode); err != nil {
			return nil, apperrors.StoreFailure(fmt.Errorf("scan phone row: %w", err))
		}
		phones = append(phones, p)
	}

	if err = rows.Err(); err != nil {
		return nil, apperrors.StoreFailure(fmt.Errorf("iterate phone rows: %w", err))
	}

	if phones == nil {
		phones = []domain.Phone{}
	}

	return phones, nil
}
