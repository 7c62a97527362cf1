package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/CarlosMilan/Challenge-BCI/internal/domain"
	pkgkafka "github.com/CarlosMilan/Challenge-BCI/pkg/kafka"
	"github.com/CarlosMilan/Challenge-BCI/pkg/logger"
)

// Kafka topic constants for user domain events.
const (
	TopicUserRegistered = "user.registered"
	TopicUserLoggedIn   = "user.logged_in"
)

// AggregateTypeUser is the aggregate type stamped on every user event.
const AggregateTypeUser = "user"

// SourceUserService identifies events originating from this service.
const SourceUserService = "user-service"

// UserRegisteredData is the payload for a user.registered event.
type UserRegisteredData struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	PhoneCount int       `json:"phone_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// UserLoggedInData is the payload for a user.logged_in event.
type UserLoggedInData struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	LastLogin time.Time `json:"last_login"`
}

// Producer publishes user domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the user service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishUserRegistered publishes a user.registered event.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	data := UserRegisteredData{
		ID:         user.ID,
		Email:      user.Email,
		Name:       user.Name,
		Role:       user.Role,
		PhoneCount: len(user.Phones),
		CreatedAt:  user.CreatedAt,
	}
	return p.publish(ctx, TopicUserRegistered, user.ID, data)
}

// PublishUserLoggedIn publishes a user.logged_in event.
func (p *Producer) PublishUserLoggedIn(ctx context.Context, user *domain.User) error {
	data := UserLoggedInData{
		ID:    user.ID,
		Email: user.Email,
	}
	if user.LastLogin != nil {
		data.LastLogin = *user.LastLogin
	}
	return p.publish(ctx, TopicUserLoggedIn, user.ID, data)
}

func (p *Producer) publish(ctx context.Context, topic, userID string, data any) error {
	event, err := pkgkafka.NewEvent(topic, userID, AggregateTypeUser, SourceUserService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	event.WithCorrelationID(logger.CorrelationIDFromContext(ctx))

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published "+topic+" event",
		slog.String("user_id", userID),
	)

	return nil
}

// NopPublisher discards every event. It stands in for Producer when Kafka is
// disabled.
type NopPublisher struct{}

func (NopPublisher) PublishUserRegistered(context.Context, *domain.User) error { return nil }

func (NopPublisher) PublishUserLoggedIn(context.Context, *domain.User) error { return nil }
