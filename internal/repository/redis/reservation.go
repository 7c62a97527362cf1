package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "signup:email:"

// EmailReservation implements repository.EmailReservation using Redis keys
// that expire after ttl, so a crashed sign-up never blocks an email for long.
type EmailReservation struct {
	client *redis.Client
	ttl    time.Duration
}

// NewEmailReservation creates a new Redis-backed email reservation store.
func NewEmailReservation(client *redis.Client, ttl time.Duration) *EmailReservation {
	return &EmailReservation{
		client: client,
		ttl:    ttl,
	}
}

// Reserve claims email for ttl. It returns false when the email is already
// claimed.
func (r *EmailReservation) Reserve(ctx context.Context, email string) (bool, error) {
	ok, err := r.client.SetNX(ctx, keyPrefix+email, time.Now().UTC().Format(time.RFC3339Nano), r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis reserve email: %w", err)
	}
	return ok, nil
}

// Release drops the claim on email. Releasing an unclaimed email is a no-op.
func (r *EmailReservation) Release(ctx context.Context, email string) error {
	if err := r.client.Del(ctx, keyPrefix+email).Err(); err != nil {
		return fmt.Errorf("redis release email: %w", err)
	}
	return nil
}
