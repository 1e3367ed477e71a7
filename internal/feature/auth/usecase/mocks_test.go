package usecase

import (
	"context"
	"sync"
	"time"

	"blog_backend/internal/feature/auth/domain"
	"blog_backend/internal/feature/auth/domain/entity"
)

// mockUserRepository is a mock implementation of UserRepository.
// Unset funcs fall back to a harmless default.
type mockUserRepository struct {
	CreateFunc                 func(user *entity.User) error
	FindByEmailFunc            func(email string) (*entity.User, error)
	FindByIDFunc               func(id uint) (*entity.User, error)
	MarkVerifiedFunc           func(id uint) error
	IncrementOtpResetCountFunc func(id uint, limit int) error

	mu             sync.Mutex
	created        []*entity.User
	verified       []uint
	incrementedIDs []uint
}

func (m *mockUserRepository) Create(_ context.Context, user *entity.User) error {
	m.mu.Lock()
	m.created = append(m.created, user)
	m.mu.Unlock()
	if m.CreateFunc != nil {
		return m.CreateFunc(user)
	}
	// Default: assign an ID like the database would
	user.ID = 1
	return nil
}

func (m *mockUserRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(email)
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepository) FindByID(_ context.Context, id uint) (*entity.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(id)
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepository) MarkVerified(_ context.Context, id uint) error {
	m.mu.Lock()
	m.verified = append(m.verified, id)
	m.mu.Unlock()
	if m.MarkVerifiedFunc != nil {
		return m.MarkVerifiedFunc(id)
	}
	return nil
}

func (m *mockUserRepository) IncrementOtpResetCount(_ context.Context, id uint, limit int) error {
	m.mu.Lock()
	m.incrementedIDs = append(m.incrementedIDs, id)
	m.mu.Unlock()
	if m.IncrementOtpResetCountFunc != nil {
		return m.IncrementOtpResetCountFunc(id, limit)
	}
	return nil
}

// mockHasher derives "hashed-<password>" with a fixed salt.
type mockHasher struct {
	HashFunc func(password string) (string, string, error)

	mu            sync.Mutex
	verifiedSalts []string
}

func (m *mockHasher) Hash(password string) (string, string, error) {
	if m.HashFunc != nil {
		return m.HashFunc(password)
	}
	return "salt", "hashed-" + password, nil
}

func (m *mockHasher) Verify(password, salt, hash string) bool {
	m.mu.Lock()
	m.verifiedSalts = append(m.verifiedSalts, salt)
	m.mu.Unlock()
	return salt == "salt" && hash == "hashed-"+password
}

// mockTokenService is a mock implementation of TokenService.
type mockTokenService struct {
	SignFunc   func(claims entity.SessionClaims) (string, error)
	VerifyFunc func(token string) (*entity.SessionClaims, error)

	signed []entity.SessionClaims
}

func (m *mockTokenService) Sign(claims entity.SessionClaims) (string, error) {
	m.signed = append(m.signed, claims)
	if m.SignFunc != nil {
		return m.SignFunc(claims)
	}
	return "mock-jwt-token", nil
}

func (m *mockTokenService) Verify(token string) (*entity.SessionClaims, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(token)
	}
	return nil, domain.ErrUnauthorized
}

// mockOtpStore is a mock implementation of OtpStore.
type mockOtpStore struct {
	SaveFunc     func(purpose entity.Purpose, identifier string, rec entity.OtpRecord) error
	ThrottleFunc func(purpose entity.Purpose, identifier string) error
	VerifyFunc   func(purpose entity.Purpose, identifier, candidate string) error

	mu            sync.Mutex
	saved         []string
	throttleCalls int
}

func (m *mockOtpStore) Save(_ context.Context, purpose entity.Purpose, identifier string, rec entity.OtpRecord) error {
	m.mu.Lock()
	m.saved = append(m.saved, string(purpose)+":"+identifier)
	m.mu.Unlock()
	if m.SaveFunc != nil {
		return m.SaveFunc(purpose, identifier, rec)
	}
	return nil
}

func (m *mockOtpStore) Throttle(_ context.Context, purpose entity.Purpose, identifier string) error {
	m.mu.Lock()
	m.throttleCalls++
	m.mu.Unlock()
	if m.ThrottleFunc != nil {
		return m.ThrottleFunc(purpose, identifier)
	}
	return nil
}

func (m *mockOtpStore) Verify(_ context.Context, purpose entity.Purpose, identifier, candidate string) error {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(purpose, identifier, candidate)
	}
	return nil
}

// mockOtpGenerator always returns the same record.
type mockOtpGenerator struct {
	GenerateFunc func() (entity.OtpRecord, error)
}

func (m *mockOtpGenerator) Generate() (entity.OtpRecord, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	now := time.Now()
	return entity.OtpRecord{
		Otp:             "123456",
		OtpExpires:      now.Add(5 * time.Minute),
		ResendTimeLimit: now.Add(time.Minute),
	}, nil
}

// mockDispatcher records every notification it is asked to enqueue.
type mockDispatcher struct {
	DispatchOtpFunc func(n entity.OtpNotification) error

	mu   sync.Mutex
	sent []entity.OtpNotification
}

func (m *mockDispatcher) DispatchOtp(_ context.Context, n entity.OtpNotification) error {
	m.mu.Lock()
	m.sent = append(m.sent, n)
	m.mu.Unlock()
	if m.DispatchOtpFunc != nil {
		return m.DispatchOtpFunc(n)
	}
	return nil
}

// testDeps bundles the mocks so each test can tweak just what it needs.
type testDeps struct {
	users      *mockUserRepository
	hasher     *mockHasher
	tokens     *mockTokenService
	otps       *mockOtpStore
	generator  *mockOtpGenerator
	dispatcher *mockDispatcher
}

func newTestDeps() *testDeps {
	return &testDeps{
		users:      &mockUserRepository{},
		hasher:     &mockHasher{},
		tokens:     &mockTokenService{},
		otps:       &mockOtpStore{},
		generator:  &mockOtpGenerator{},
		dispatcher: &mockDispatcher{},
	}
}

func (d *testDeps) usecase() *authUsecase {
	return NewAuthUsecase(Deps{
		Users:      d.users,
		Hasher:     d.hasher,
		Tokens:     d.tokens,
		Otps:       d.otps,
		Generator:  d.generator,
		Dispatcher: d.dispatcher,
	}, Config{})
}

// existingUser returns a stored user whose password is "Abcdef1" under mockHasher.
func existingUser() *entity.User {
	return &entity.User{
		ID:           7,
		Email:        "a@x.com",
		Name:         "Ann",
		PasswordHash: "hashed-Abcdef1",
		PasswordSalt: "salt",
		IsActive:     true,
	}
}
