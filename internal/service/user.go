package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/CarlosMilan/Challenge-BCI/internal/auth"
	"github.com/CarlosMilan/Challenge-BCI/internal/domain"
	"github.com/CarlosMilan/Challenge-BCI/internal/password"
	"github.com/CarlosMilan/Challenge-BCI/internal/repository"
	apperrors "github.com/CarlosMilan/Challenge-BCI/pkg/errors"
)

// DefaultBcryptCost is the cost factor for bcrypt password hashing.
const DefaultBcryptCost = 12

// DefaultReservationWait bounds how long Register waits for a reservation
// held by a concurrent sign-up of the same email.
const DefaultReservationWait = 2 * time.Second

const reservationPoll = 25 * time.Millisecond

// EventPublisher publishes user domain events. Failures never fail the
// operation that produced the event.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, user *domain.User) error
	PublishUserLoggedIn(ctx context.Context, user *domain.User) error
}

// UserService implements the sign-up and token refresh workflows.
type UserService struct {
	userRepo    repository.UserRepository
	phoneRepo   repository.PhoneRepository
	reservation repository.EmailReservation
	reserveWait time.Duration
	tokens      *auth.TokenService
	events      EventPublisher
	metrics     *Metrics
	logger      *slog.Logger
	bcryptCost  int
	now         func() time.Time
}

// Option customises a UserService.
type Option func(*UserService)

// WithEmailReservation makes Register claim the email in r for the duration
// of the call.
func WithEmailReservation(r repository.EmailReservation) Option {
	return func(s *UserService) { s.reservation = r }
}

// WithReservationWait overrides DefaultReservationWait.
func WithReservationWait(d time.Duration) Option {
	return func(s *UserService) { s.reserveWait = d }
}

// WithMetrics records outcome counters in m.
func WithMetrics(m *Metrics) Option {
	return func(s *UserService) { s.metrics = m }
}

// WithBcryptCost overrides DefaultBcryptCost.
func WithBcryptCost(cost int) Option {
	return func(s *UserService) { s.bcryptCost = cost }
}

// WithClock overrides the time source used for created and lastLogin.
func WithClock(now func() time.Time) Option {
	return func(s *UserService) { s.now = now }
}

// NewUserService creates a new user service.
func NewUserService(
	userRepo repository.UserRepository,
	phoneRepo repository.PhoneRepository,
	tokens *auth.TokenService,
	events EventPublisher,
	logger *slog.Logger,
	opts ...Option,
) *UserService {
	s := &UserService{
		userRepo:    userRepo,
		phoneRepo:   phoneRepo,
		tokens:      tokens,
		events:      events,
		logger:      logger,
		bcryptCost:  DefaultBcryptCost,
		reserveWait: DefaultReservationWait,
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterInput holds the parameters for registering a new user. Request
// shape and field presence are validated by the transport.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phones   []domain.Phone
}

// LoginResult is the refreshed session returned by Login.
type LoginResult struct {
	User  *domain.User
	Token string
}

// Register creates a new account with its phones and returns it together
// with a freshly issued token.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (user *domain.User, token string, err error) {
	defer func() { s.metrics.observeRegistration(err) }()

	if err := password.Validate(input.Password); err != nil {
		return nil, "", err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, "", apperrors.Internal(fmt.Errorf("hash password: %w", err))
	}

	release, err := s.reserve(ctx, input.Email)
	if err != nil {
		return nil, "", err
	}
	defer release()

	exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, "", fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, "", apperrors.DuplicateUser(input.Email)
	}

	phones := make([]domain.Phone, len(input.Phones))
	copy(phones, input.Phones)

	user = &domain.User{
		ID:           uuid.New().String(),
		Email:        input.Email,
		PasswordHash: string(hashed),
		Name:         input.Name,
		Role:         domain.RoleUser,
		IsActive:     true,
		CreatedAt:    s.now(),
		Phones:       phones,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err = s.tokens.Issue(user.Email)
	if err != nil {
		return nil, "", apperrors.Internal(fmt.Errorf("issue token: %w", err))
	}

	if err := s.events.PublishUserRegistered(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.registered event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
		slog.Int("phones", len(user.Phones)),
	)

	return user, token, nil
}

// Login trusts the subject of a valid presented token, records the login
// and answers with the user, its phones and a rotated token.
func (s *UserService) Login(ctx context.Context, presented string) (result *LoginResult, err error) {
	defer func() { s.metrics.observeLogin(err) }()

	email, err := s.tokens.Decode(presented)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.UnknownUser()
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	phones, err := s.phoneRepo.ListByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list phones: %w", err)
	}
	user.Phones = phones

	token, err := s.tokens.Issue(user.Email)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("issue token: %w", err))
	}

	user.Touch(s.now())
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, *user.LastLogin); err != nil {
		return nil, fmt.Errorf("update last login: %w", err)
	}

	if err := s.events.PublishUserLoggedIn(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.logged_in event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user logged in",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return &LoginResult{User: user, Token: token}, nil
}

// reserve claims email when a reservation store is configured. A claim
// held by a concurrent sign-up is waited out, so the caller sees whatever
// that sign-up committed. A store outage or a claim that outlives the wait
// is logged and ignored; the unique constraint still guards the insert.
// The returned release func is always safe to call.
func (s *UserService) reserve(ctx context.Context, email string) (func(), error) {
	noop := func() {}
	if s.reservation == nil {
		return noop, nil
	}

	ok, err := s.acquire(ctx, email)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("wait for email reservation: %w", ctxErr)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "email reservation unavailable",
			slog.String("error", err.Error()),
		)
		return noop, nil
	}
	if !ok {
		s.logger.WarnContext(ctx, "email reservation still held, continuing without it",
			slog.Duration("waited", s.reserveWait),
		)
		return noop, nil
	}

	return func() {
		if err := s.reservation.Release(context.WithoutCancel(ctx), email); err != nil {
			s.logger.WarnContext(ctx, "failed to release email reservation",
				slog.String("error", err.Error()),
			)
		}
	}, nil
}

// acquire polls Reserve until the claim is won, the wait elapses or ctx is
// done.
func (s *UserService) acquire(ctx context.Context, email string) (bool, error) {
	deadline := time.NewTimer(s.reserveWait)
	defer deadline.Stop()
	ticker := time.NewTicker(reservationPoll)
	defer ticker.Stop()

	for {
		ok, err := s.reservation.Reserve(ctx, email)
		if err != nil || ok {
			return ok, err
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-deadline.C:
			return false, nil
		case <-ticker.C:
		}
	}
}
