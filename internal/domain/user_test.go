package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_JSON_HidesPasswordHash(t *testing.T) {
	u := User{ID: "u-1", Email: "charlie_01@correo.com", PasswordHash: "$2a$12$secret", Name: "Charlie"}

	data, err := json.Marshal(u)
	require.NoError(t, err)

	assert.NotContains(t, string(data), "secret")
	assert.NotContains(t, string(data), "passwordHash")
}

func TestUser_JSON_NilLastLogin(t *testing.T) {
	data, err := json.Marshal(User{ID: "u-1"})
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "null", string(raw["lastLogin"]))
}

func TestPhone_JSON_CamelCase(t *testing.T) {
	data, err := json.Marshal(Phone{Number: 345790145, CityCode: 261, CountryCode: "+54", UserID: "u-1"})
	require.NoError(t, err)

	assert.JSONEq(t, `{"number":345790145,"cityCode":261,"countryCode":"+54"}`, string(data))
}

func TestUser_Touch(t *testing.T) {
	u := &User{}
	loc := time.FixedZone("ART", -3*60*60)
	at := time.Date(2024, 5, 1, 9, 0, 0, 0, loc)

	u.Touch(at)

	require.NotNil(t, u.LastLogin)
	assert.True(t, at.Equal(*u.LastLogin))
	assert.Equal(t, time.UTC, u.LastLogin.Location())
}
