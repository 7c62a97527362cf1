package postgres

import (
	"context"
	"errors"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CarlosMilan/Challenge-BCI/pkg/database"
	apperrors "github.com/CarlosMilan/Challenge-BCI/pkg/errors"
)

func newPhoneTestFixture(t *testing.T) (*PhoneRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPhoneRepository(mock), mock
}

func phoneColumns() []string {
	return []string{"user_id", "number", "city_code", "country_code"}
}

func TestPhoneRepository_ListByUserID_Success(t *testing.T) {
	repo, mock := newPhoneTestFixture(t)

	mock.ExpectQuery("SELECT .+ FROM phones WHERE user_id =").
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows(phoneColumns()).
			AddRow("user-1", int64(345790145), 261, "+54").
			AddRow("user-1", int64(111222333), 11, "+54"))

	phones, err := repo.ListByUserID(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, phones, 2)
	assert.Equal(t, int64(345790145), phones[0].Number)
	assert.Equal(t, 261, phones[0].CityCode)
	assert.Equal(t, "+54", phones[0].CountryCode)
	assert.Equal(t, "user-1", phones[1].UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPhoneRepository_ListByUserID_Empty(t *testing.T) {
	repo, mock := newPhoneTestFixture(t)

	mock.ExpectQuery("SELECT .+ FROM phones WHERE user_id =").
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows(phoneColumns()))

	phones, err := repo.ListByUserID(context.Background(), "user-1")
	require.NoError(t, err)
	assert.NotNil(t, phones)
	assert.Empty(t, phones)
}

func TestPhoneRepository_ListByUserID_QueryError(t *testing.T) {
	repo, mock := newPhoneTestFixture(t)

	mock.ExpectQuery("SELECT .+ FROM phones WHERE user_id =").
		WithArgs("user-1").
		WillReturnError(errors.New("connection refused"))

	_, err := repo.ListByUserID(context.Background(), "user-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrStoreFailure))
	assert.Contains(t, err.Error(), "list phones")
}

func TestPhoneRepository_ListByUserID_RowError(t *testing.T) {
	repo, mock := newPhoneTestFixture(t)

	mock.ExpectQuery("SELECT .+ FROM phones WHERE user_id =").
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows(phoneColumns()).
			AddRow("user-1", int64(345790145), 261, "+54").
			RowError(0, errors.New("broken row")))

	_, err := repo.ListByUserID(context.Background(), "user-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrStoreFailure))
}
