package http

import (
	"time"

	"github.com/CarlosMilan/Challenge-BCI/internal/domain"
	"github.com/CarlosMilan/Challenge-BCI/internal/service"
)

// --- Request DTOs ---

// PhoneRequest is one phone in a sign-up request. Pointer fields let
// validation tell a missing value from a zero one. Bounds follow the
// phones table columns.
type PhoneRequest struct {
	Number      *int64  `json:"number" validate:"required"`
	CityCode    *int    `json:"cityCode" validate:"required,gte=-2147483648,lte=2147483647"`
	CountryCode *string `json:"countryCode" validate:"required,max=8"`
}

// SignUpRequest is the JSON request body for POST /users/sing-up.
type SignUpRequest struct {
	Name     string         `json:"name" validate:"required,max=255"`
	Email    string         `json:"email" validate:"required,max=255,email"`
	Password string         `json:"password" validate:"required,min=8,max=12"`
	Phones   []PhoneRequest `json:"phones" validate:"required,dive"`
}

// --- Response DTOs ---

// PhoneResponse is a phone as returned to clients.
type PhoneResponse struct {
	Number      int64  `json:"number"`
	CityCode    int    `json:"cityCode"`
	CountryCode string `json:"countryCode"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Created   time.Time       `json:"created"`
	LastLogin *time.Time      `json:"lastLogin"`
	IsActive  bool            `json:"isActive"`
	Phones    []PhoneResponse `json:"phones"`
}

// SignUpResponse is the 201 body of POST /users/sing-up.
type SignUpResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

// LoginResponse is the 200 body of GET /users/login.
type LoginResponse struct {
	ID        string          `json:"id"`
	Created   time.Time       `json:"created"`
	LastLogin *time.Time      `json:"lastLogin"`
	Token     string          `json:"token"`
	IsActive  bool            `json:"isActive"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Phones    []PhoneResponse `json:"phones"`
}

// --- Mapping ---

// toRegisterInput converts a validated request. Validation guarantees every
// phone pointer is set.
func toRegisterInput(req SignUpRequest) service.RegisterInput {
	phones := make([]domain.Phone, 0, len(req.Phones))
	for _, p := range req.Phones {
		phones = append(phones, domain.Phone{
			Number:      *p.Number,
			CityCode:    *p.CityCode,
			CountryCode: *p.CountryCode,
		})
	}
	return service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phones:   phones,
	}
}

func toPhoneResponses(phones []domain.Phone) []PhoneResponse {
	out := make([]PhoneResponse, 0, len(phones))
	for _, p := range phones {
		out = append(out, PhoneResponse{
			Number:      p.Number,
			CityCode:    p.CityCode,
			CountryCode: p.CountryCode,
		})
	}
	return out
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Created:   u.CreatedAt,
		LastLogin: u.LastLogin,
		IsActive:  u.IsActive,
		Phones:    toPhoneResponses(u.Phones),
	}
}

func toLoginResponse(res *service.LoginResult) LoginResponse {
	u := res.User
	return LoginResponse{
		ID:        u.ID,
		Created:   u.CreatedAt,
		LastLogin: u.LastLogin,
		Token:     res.Token,
		IsActive:  u.IsActive,
		Name:      u.Name,
		Email:     u.Email,
		Phones:    toPhoneResponses(u.Phones),
	}
}
