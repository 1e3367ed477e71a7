package otp

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"blog_backend/internal/feature/auth/domain"
	"blog_backend/internal/feature/auth/domain/entity"
)

// RecordTTL is the Redis expiry for every OTP key. It is only a backstop;
// OtpExpires inside the record is the authoritative expiry.
const RecordTTL = 300 * time.Second

// RedisStore keeps one OtpRecord per purpose and identifier.
// Writes are plain overwrites: concurrent reissuance is last-write-wins.
type RedisStore struct {
	client redis.Cmdable
	now    func() time.Time
}

// NewRedisStore creates a new RedisStore instance.
func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{
		client: client,
		now:    time.Now,
	}
}

// key returns the Redis key for a purpose and identifier.
func (s *RedisStore) key(purpose entity.Purpose, identifier string) string {
	return fmt.Sprintf("%s:%s", purpose, identifier)
}

// Save stores rec under purpose:identifier, replacing any previous record.
func (s *RedisStore) Save(ctx context.Context, purpose entity.Purpose, identifier string, rec entity.OtpRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal otp record: %w", err)
	}
	if err := s.client.Set(ctx, s.key(purpose, identifier), data, RecordTTL).Err(); err != nil {
		return fmt.Errorf("failed to save otp record: %w", err)
	}
	return nil
}

// Get loads the record for purpose:identifier.
// It returns domain.ErrOtpNotFound if the key is absent or has expired.
func (s *RedisStore) Get(ctx context.Context, purpose entity.Purpose, identifier string) (*entity.OtpRecord, error) {
	data, err := s.client.Get(ctx, s.key(purpose, identifier)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrOtpNotFound
		}
		return nil, fmt.Errorf("failed to load otp record: %w", err)
	}

	var rec entity.OtpRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal otp record: %w", err)
	}
	return &rec, nil
}

// Throttle fails with domain.ErrResendLimitExceeded while the current record's
// resend window is open. No record means no throttling. The record is never modified.
func (s *RedisStore) Throttle(ctx context.Context, purpose entity.Purpose, identifier string) error {
	rec, err := s.Get(ctx, purpose, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrOtpNotFound) {
			return nil
		}
		return err
	}
	if !rec.CanResend(s.now()) {
		return domain.ErrResendLimitExceeded
	}
	return nil
}

// Verify checks candidate against the stored OTP. Expiry is checked before the value,
// so a correct but late OTP reports domain.ErrOtpExpired. The record is kept on success.
func (s *RedisStore) Verify(ctx context.Context, purpose entity.Purpose, identifier, candidate string) error {
	rec, err := s.Get(ctx, purpose, identifier)
	if err != nil {
		return err
	}
	if rec.IsExpired(s.now()) {
		return domain.ErrOtpExpired
	}
	if subtle.ConstantTimeCompare([]byte(candidate), []byte(rec.Otp)) != 1 {
		return domain.ErrInvalidOtp
	}
	return nil
}
