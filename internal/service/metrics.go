package service

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	apperrors "github.com/CarlosMilan/Challenge-BCI/pkg/errors"
)

// Outcome label values.
const (
	outcomeSuccess         = "success"
	outcomePolicyViolation = "policy_violation"
	outcomeDuplicate       = "duplicate"
	outcomeInvalidToken    = "invalid_token"
	outcomeUnknownUser     = "unknown_user"
	outcomeError           = "error"
)

// Metrics counts registration and login attempts by outcome.
type Metrics struct {
	registrations *prometheus.CounterVec
	logins        *prometheus.CounterVec
}

// NewMetrics registers the auth counters with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		registrations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "user_registrations_total",
			Help: "Sign-up attempts by outcome",
		}, []string{"outcome"}),
		logins: f.NewCounterVec(prometheus.CounterOpts{
			Name: "user_logins_total",
			Help: "Token refresh logins by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) observeRegistration(err error) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(outcome(err)).Inc()
}

func (m *Metrics) observeLogin(err error) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(outcome(err)).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return outcomeSuccess
	case errors.Is(err, apperrors.ErrConstraintViolation):
		return outcomePolicyViolation
	case errors.Is(err, apperrors.ErrDuplicateUser):
		return outcomeDuplicate
	case errors.Is(err, apperrors.ErrInvalidToken):
		return outcomeInvalidToken
	case errors.Is(err, apperrors.ErrUnknownUser):
		return outcomeUnknownUser
	default:
		return outcomeError
	}
}
