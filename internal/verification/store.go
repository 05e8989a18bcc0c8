// Package verification keeps short-lived verification codes in Redis.
// Codes expire on their own via TTL, so there is no cleanup job and no
// stale code column to reset.
package verification

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vendora/catalog-service/internal/apperr"
)

const (
	codeLength  = 6
	maxAttempts = 5
)

type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func codeKey(purpose, subject string) string {
	return fmt.Sprintf("verify:%s:%s", purpose, subject)
}

func attemptsKey(purpose, subject string) string {
	return fmt.Sprintf("verify:%s:%s:attempts", purpose, subject)
}

// Issue generates a fresh numeric code for the subject, replacing any
// outstanding one, and resets the attempt counter.
func (s *Store) Issue(ctx context.Context, purpose, subject string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, codeKey(purpose, subject), code, s.ttl)
	pipe.Del(ctx, attemptsKey(purpose, subject))
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("store verification code: %w", err)
	}
	return code, nil
}

// Verify checks the submitted code. A match consumes the code; a miss
// burns one attempt, and exhausting the attempts invalidates the code
// outright. Expired or missing codes report as not found.
func (s *Store) Verify(ctx context.Context, purpose, subject, code string) error {
	stored, err := s.client.Get(ctx, codeKey(purpose, subject)).Result()
	if err == redis.Nil {
		return fmt.Errorf("verification code expired or not issued: %w", apperr.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("read verification code: %w", err)
	}

	if stored != code {
		attempts, err := s.client.Incr(ctx, attemptsKey(purpose, subject)).Result()
		if err != nil {
			return fmt.Errorf("count verification attempt: %w", err)
		}
		s.client.Expire(ctx, attemptsKey(purpose, subject), s.ttl)
		if attempts >= maxAttempts {
			if err := s.Invalidate(ctx, purpose, subject); err != nil {
				return err
			}
		}
		return fmt.Errorf("verification code mismatch: %w", apperr.ErrValidation)
	}

	return s.Invalidate(ctx, purpose, subject)
}

// Invalidate drops the code and its attempt counter.
func (s *Store) Invalidate(ctx context.Context, purpose, subject string) error {
	if err := s.client.Del(ctx, codeKey(purpose, subject), attemptsKey(purpose, subject)).Err(); err != nil {
		return fmt.Errorf("invalidate verification code: %w", err)
	}
	return nil
}

func generateCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < codeLength; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeLength, n), nil
}
