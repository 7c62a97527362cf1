package domain

import "time"

// User is a registered account together with its phones.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Name         string     `json:"name"`
	Role         string     `json:"role"`
	IsActive     bool       `json:"isActive"`
	CreatedAt    time.Time  `json:"created"`
	LastLogin    *time.Time `json:"lastLogin"`
	Phones       []Phone    `json:"phones"`
}

// Phone is a contact number owned by a user.
type Phone struct {
	Number      int64  `json:"number"`
	CityCode    int    `json:"cityCode"`
	CountryCode string `json:"countryCode"`
	UserID      string `json:"-"`
}

// Touch records a successful login at t.
func (u *User) Touch(t time.Time) {
	t = t.UTC()
	u.LastLogin = &t
}
