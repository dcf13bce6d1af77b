package usecase

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"gastronomy_backend/internal/feature/auth/domain/entity"
)

// mockUserRepository is a mock implementation of the UserRepository interface.
type mockUserRepository struct {
	CreateFunc      func(ctx context.Context, user *entity.User) error
	FindByEmailFunc func(ctx context.Context, email string) (*entity.User, error)
	FindByIDFunc    func(ctx context.Context, id uint) (*entity.User, error)
}

func (m *mockUserRepository) Create(ctx context.Context, user *entity.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	user.ID = 1
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, ErrUserNotFound
}

// mockSessionRepository is a mock implementation of the SessionRepository interface.
type mockSessionRepository struct {
	CreateFunc               func(ctx context.Context, session *entity.Session) error
	FindByIDFunc             func(ctx context.Context, id string) (*entity.Session, error)
	RevokeFunc               func(ctx context.Context, id string) error
	CountByUserIDFunc        func(ctx context.Context, userID uint) (int64, error)
	DeleteOldestByUserIDFunc func(ctx context.Context, userID uint) error

	created []*entity.Session
	revoked []string
	evicted int
}

func (m *mockSessionRepository) Create(ctx context.Context, session *entity.Session) error {
	m.created = append(m.created, session)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, session)
	}
	return nil
}

func (m *mockSessionRepository) FindByID(ctx context.Context, id string) (*entity.Session, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, ErrSessionNotFound
}

func (m *mockSessionRepository) Revoke(ctx context.Context, id string) error {
	m.revoked = append(m.revoked, id)
	if m.RevokeFunc != nil {
		return m.RevokeFunc(ctx, id)
	}
	return nil
}

func (m *mockSessionRepository) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	if m.CountByUserIDFunc != nil {
		return m.CountByUserIDFunc(ctx, userID)
	}
	return 0, nil
}

func (m *mockSessionRepository) DeleteOldestByUserID(ctx context.Context, userID uint) error {
	m.evicted++
	if m.DeleteOldestByUserIDFunc != nil {
		return m.DeleteOldestByUserIDFunc(ctx, userID)
	}
	return nil
}

// mockTokenIssuer is a mock implementation of the TokenIssuer interface.
type mockTokenIssuer struct {
	GenerateTokenFunc func(userID uint, email string) (string, error)
}

func (m *mockTokenIssuer) GenerateToken(userID uint, email string) (string, error) {
	if m.GenerateTokenFunc != nil {
		return m.GenerateTokenFunc(userID, email)
	}
	return "mock-jwt-token", nil
}

// fakeHasher is a deterministic PasswordHasher: the "hash" is the password
// concatenated with the salt. derivations counts calls for the
// enumeration-resistance test; failErr forces derivation failures.
type fakeHasher struct {
	derivations int
	failErr     error
}

func (f *fakeHasher) NewSalt() ([]byte, error) {
	return []byte("0123456789abcdef"), nil
}

func (f *fakeHasher) Derive(ctx context.Context, password string, salt []byte) ([]byte, error) {
	f.derivations++
	if f.failErr != nil {
		return nil, f.failErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]byte(password), salt...), nil
}

func (f *fakeHasher) Verify(ctx context.Context, password string, salt, expected []byte) (bool, error) {
	got, err := f.Derive(ctx, password, salt)
	if err != nil {
		return false, err
	}
	return bytes.Equal(got, expected), nil
}

func newTestUsecase() (*authUsecase, *mockUserRepository, *mockSessionRepository, *fakeHasher) {
	users := &mockUserRepository{}
	sessions := &mockSessionRepository{}
	hasher := &fakeHasher{}
	uc := NewAuthUsecase(users, sessions, &mockTokenIssuer{}, hasher)
	return uc, users, sessions, hasher
}

func TestAuthUsecase_Signup(t *testing.T) {
	t.Run("successful signup", func(t *testing.T) {
		uc, users, sessions, _ := newTestUsecase()

		var persisted *entity.User
		users.CreateFunc = func(ctx context.Context, user *entity.User) error {
			if user.Email != "test@example.com" {
				t.Errorf("expected normalized email, got %q", user.Email)
			}
			if string(user.PasswordHash) == "password123" || len(user.PasswordHash) == 0 {
				t.Error("password is not hashed")
			}
			if len(user.Salt) == 0 {
				t.Error("salt is not set")
			}
			user.ID = 7
			persisted = user
			return nil
		}
		users.FindByIDFunc = func(ctx context.Context, id uint) (*entity.User, error) {
			if id != 7 {
				t.Errorf("expected re-fetch by assigned ID 7, got %d", id)
			}
			return persisted, nil
		}

		result, err := uc.Signup(context.Background(), " Test@Example.com ", "password123", ClientInfo{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Token != "mock-jwt-token" {
			t.Errorf("expected issued token, got %q", result.Token)
		}
		if len(result.RefreshToken) != 64 {
			t.Errorf("expected 64-character refresh token, got %d", len(result.RefreshToken))
		}
		if result.User == nil || result.User.Email != "test@example.com" {
			t.Errorf("expected sanitized user with normalized email, got %+v", result.User)
		}
		if len(sessions.created) != 1 {
			t.Errorf("expected one refresh session, got %d", len(sessions.created))
		}
	})

	t.Run("weak password", func(t *testing.T) {
		uc, _, _, _ := newTestUsecase()

		_, err := uc.Signup(context.Background(), "test@example.com", "short", ClientInfo{})
		if !errors.Is(err, ErrWeakPassword) {
			t.Errorf("expected ErrWeakPassword, got %v", err)
		}
	})

	t.Run("duplicate caught by pre-check", func(t *testing.T) {
		uc, users, _, hasher := newTestUsecase()
		users.FindByEmailFunc = func(ctx context.Context, email string) (*entity.User, error) {
			return &entity.User{ID: 1, Email: email}, nil
		}

		_, err := uc.Signup(context.Background(), "existing@example.com", "password123", ClientInfo{})
		if !errors.Is(err, ErrEmailAlreadyExists) {
			t.Errorf("expected ErrEmailAlreadyExists, got %v", err)
		}
		if hasher.derivations != 0 {
			t.Error("pre-check duplicate should not pay for a derivation")
		}
	})

	t.Run("duplicate caught by unique index after pre-check passed", func(t *testing.T) {
		uc, users, _, _ := newTestUsecase()
		users.CreateFunc = func(ctx context.Context, user *entity.User) error {
			// Simulates losing the check-then-insert race.
			return ErrEmailAlreadyExists
		}

		_, err := uc.Signup(context.Background(), "racing@example.com", "password123", ClientInfo{})
		if !errors.Is(err, ErrEmailAlreadyExists) {
			t.Errorf("expected ErrEmailAlreadyExists, got %v", err)
		}
	})

	t.Run("derivation failure is a hashing failure", func(t *testing.T) {
		uc, _, _, hasher := newTestUsecase()
		hasher.failErr = errors.New("kdf broke")

		_, err := uc.Signup(context.Background(), "test@example.com", "password123", ClientInfo{})
		if !errors.Is(err, ErrHashingFailure) {
			t.Errorf("expected ErrHashingFailure, got %v", err)
		}
	})

	t.Run("deadline exceeded maps to timeout", func(t *testing.T) {
		uc, _, _, hasher := newTestUsecase()
		hasher.failErr = context.DeadlineExceeded

		_, err := uc.Signup(context.Background(), "test@example.com", "password123", ClientInfo{})
		if !errors.Is(err, ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
	})
}

func TestAuthUsecase_Login(t *testing.T) {
	storedSalt := []byte("0123456789abcdef")
	testUser := &entity.User{
		ID:           1,
		Email:        "test@example.com",
		PasswordHash: append([]byte("password123"), storedSalt...),
		Salt:         storedSalt,
	}
	withUser := func(users *mockUserRepository) {
		users.FindByEmailFunc = func(ctx context.Context, email string) (*entity.User, error) {
			if email == testUser.Email {
				return testUser, nil
			}
			return nil, ErrUserNotFound
		}
	}

	t.Run("successful login", func(t *testing.T) {
		uc, users, sessions, _ := newTestUsecase()
		withUser(users)

		result, err := uc.Login(context.Background(), "Test@Example.com", "password123", ClientInfo{UserAgent: "ua", IPAddress: "127.0.0.1"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Token == "" {
			t.Error("login must issue a token, same as signup")
		}
		if result.User.Email != testUser.Email {
			t.Errorf("expected sanitized user, got %+v", result.User)
		}
		if len(sessions.created) != 1 || sessions.created[0].UserAgent != "ua" {
			t.Errorf("expected one session with client metadata, got %+v", sessions.created)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		uc, users, _, _ := newTestUsecase()
		withUser(users)

		_, err := uc.Login(context.Background(), "test@example.com", "wrong-password", ClientInfo{})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("unknown email fails identically and still derives", func(t *testing.T) {
		uc, users, _, hasher := newTestUsecase()
		withUser(users)

		_, unknownErr := uc.Login(context.Background(), "nouser@example.com", "password123", ClientInfo{})
		if !errors.Is(unknownErr, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", unknownErr)
		}
		if hasher.derivations != 1 {
			t.Errorf("expected a dummy derivation for the unknown email, got %d", hasher.derivations)
		}

		_, wrongErr := uc.Login(context.Background(), "test@example.com", "wrong", ClientInfo{})
		if !errors.Is(wrongErr, unknownErr) {
			t.Error("unknown email and wrong password must be the same error")
		}
	})

	t.Run("derivation error maps to invalid credentials", func(t *testing.T) {
		uc, users, _, hasher := newTestUsecase()
		withUser(users)
		hasher.failErr = errors.New("kdf broke")

		_, err := uc.Login(context.Background(), "test@example.com", "password123", ClientInfo{})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("deadline exceeded maps to timeout, not invalid credentials", func(t *testing.T) {
		uc, users, _, hasher := newTestUsecase()
		withUser(users)
		hasher.failErr = context.DeadlineExceeded

		_, err := uc.Login(context.Background(), "test@example.com", "password123", ClientInfo{})
		if !errors.Is(err, ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
	})

	t.Run("token generation failure", func(t *testing.T) {
		users := &mockUserRepository{}
		withUser(users)
		issuer := &mockTokenIssuer{
			GenerateTokenFunc: func(userID uint, email string) (string, error) {
				return "", errors.New("failed to sign token")
			},
		}
		uc := NewAuthUsecase(users, &mockSessionRepository{}, issuer, &fakeHasher{})

		_, err := uc.Login(context.Background(), "test@example.com", "password123", ClientInfo{})
		if err == nil || err.Error() != "failed to generate token: failed to sign token" {
			t.Errorf("expected wrapped token error, got %v", err)
		}
	})

	t.Run("session cap evicts the oldest session", func(t *testing.T) {
		uc, users, sessions, _ := newTestUsecase()
		withUser(users)
		sessions.CountByUserIDFunc = func(ctx context.Context, userID uint) (int64, error) {
			return maxSessionsPerUser, nil
		}

		_, err := uc.Login(context.Background(), "test@example.com", "password123", ClientInfo{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sessions.evicted != 1 {
			t.Errorf("expected one eviction, got %d", sessions.evicted)
		}
	})
}

func TestAuthUsecase_Refresh(t *testing.T) {
	testUser := &entity.User{ID: 1, Email: "test@example.com"}
	activeSession := func(id string) *entity.Session {
		now := time.Now()
		return &entity.Session{
			ID:        id,
			UserID:    1,
			CreatedAt: now,
			ExpiresAt: now.Add(time.Hour),
		}
	}

	t.Run("successful rotation", func(t *testing.T) {
		uc, users, sessions, _ := newTestUsecase()
		users.FindByIDFunc = func(ctx context.Context, id uint) (*entity.User, error) {
			return testUser, nil
		}
		sessions.FindByIDFunc = func(ctx context.Context, id string) (*entity.Session, error) {
			return activeSession(id), nil
		}

		result, err := uc.Refresh(context.Background(), "old-token", ClientInfo{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(sessions.revoked) != 1 || sessions.revoked[0] != "old-token" {
			t.Errorf("expected the old session to be revoked, got %v", sessions.revoked)
		}
		if result.RefreshToken == "old-token" || result.RefreshToken == "" {
			t.Error("expected a fresh refresh token")
		}
	})

	t.Run("unknown token", func(t *testing.T) {
		uc, _, _, _ := newTestUsecase()

		_, err := uc.Refresh(context.Background(), "missing", ClientInfo{})
		if !errors.Is(err, ErrInvalidRefreshToken) {
			t.Errorf("expected ErrInvalidRefreshToken, got %v", err)
		}
	})

	t.Run("revoked session", func(t *testing.T) {
		uc, _, sessions, _ := newTestUsecase()
		sessions.FindByIDFunc = func(ctx context.Context, id string) (*entity.Session, error) {
			s := activeSession(id)
			now := time.Now()
			s.RevokedAt = &now
			return s, nil
		}

		_, err := uc.Refresh(context.Background(), "revoked", ClientInfo{})
		if !errors.Is(err, ErrSessionRevoked) {
			t.Errorf("expected ErrSessionRevoked, got %v", err)
		}
	})

	t.Run("expired session", func(t *testing.T) {
		uc, _, sessions, _ := newTestUsecase()
		sessions.FindByIDFunc = func(ctx context.Context, id string) (*entity.Session, error) {
			s := activeSession(id)
			s.ExpiresAt = time.Now().Add(-time.Minute)
			return s, nil
		}

		_, err := uc.Refresh(context.Background(), "expired", ClientInfo{})
		if !errors.Is(err, ErrSessionExpired) {
			t.Errorf("expected ErrSessionExpired, got %v", err)
		}
	})
}

func TestAuthUsecase_Logout(t *testing.T) {
	t.Run("revokes the session", func(t *testing.T) {
		uc, _, sessions, _ := newTestUsecase()

		if err := uc.Logout(context.Background(), "some-token"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(sessions.revoked) != 1 || sessions.revoked[0] != "some-token" {
			t.Errorf("expected revocation of some-token, got %v", sessions.revoked)
		}
	})

	t.Run("unknown token", func(t *testing.T) {
		uc, _, sessions, _ := newTestUsecase()
		sessions.RevokeFunc = func(ctx context.Context, id string) error {
			return ErrSessionNotFound
		}

		if err := uc.Logout(context.Background(), "missing"); !errors.Is(err, ErrInvalidRefreshToken) {
			t.Errorf("expected ErrInvalidRefreshToken, got %v", err)
		}
	})
}

func TestAuthUsecase_CurrentUser(t *testing.T) {
	uc, users, _, _ := newTestUsecase()
	users.FindByIDFunc = func(ctx context.Context, id uint) (*entity.User, error) {
		return &entity.User{
			ID:           id,
			Email:        "test@example.com",
			PasswordHash: []byte("hash"),
			Salt:         []byte("salt"),
		}, nil
	}

	user, err := uc.CurrentUser(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Email != "test@example.com" || user.ID != 1 {
		t.Errorf("unexpected user: %+v", user)
	}
}

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"a@x.com", "a@x.com"},
		{"A@X.COM", "a@x.com"},
		{"  a@x.com\t", "a@x.com"},
		{" MiXeD@Case.Org ", "mixed@case.org"},
	}

	for _, tt := range tests {
		if got := normalizeEmail(tt.in); got != tt.want {
			t.Errorf("normalizeEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
