package users

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidSignupCode  = errors.New("invalid signup code")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")
)

// Service contains account business logic. Signup is gated by a shared
// security code configured out of band.
type Service struct {
	Repo       Repo
	SignupCode string
}

// NewService constructs a Service.
func NewService(repo Repo, signupCode string) *Service {
	return &Service{Repo: repo, SignupCode: signupCode}
}

// Signup registers a new account after checking the shared security code.
func (s *Service) Signup(ctx context.Context, username, email, password, securityCode string) (User, error) {
	username = strings.TrimSpace(username)
	email = normalizeEmail(email)
	if username == "" || email == "" || password == "" {
		return User{}, ErrInvalidInput
	}
	if subtle.ConstantTimeCompare([]byte(securityCode), []byte(s.SignupCode)) != 1 {
		return User{}, ErrInvalidSignupCode
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	user := User{
		ID:             uuid.NewString(),
		Username:       username,
		Email:          email,
		HashedPassword: string(hashed),
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

// Authenticate verifies an email/password pair. bcrypt's comparison is
// constant-time over the hash.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	user, err := s.Repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// GetByID returns the user for userID.
func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if strings.TrimSpace(userID) == "" {
		return User{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, userID)
}

// Exists reports whether userID resolves to a live account.
func (s *Service) Exists(ctx context.Context, userID string) bool {
	_, err := s.Repo.GetByID(ctx, userID)
	return err == nil
}

// ProfileUpdate carries optional profile changes; nil fields are untouched.
type ProfileUpdate struct {
	Username *string
	Email    *string
	Password *string
}

// UpdateProfile applies a partial profile update to the user.
func (s *Service) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (User, error) {
	user, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return User{}, err
	}

	if update.Email != nil {
		email := normalizeEmail(*update.Email)
		if email == "" {
			return User{}, ErrInvalidInput
		}
		user.Email = email
	}
	if update.Username != nil {
		username := strings.TrimSpace(*update.Username)
		if username == "" {
			return User{}, ErrInvalidInput
		}
		user.Username = username
	}
	if update.Password != nil {
		if *update.Password == "" {
			return User{}, ErrInvalidInput
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*update.Password), bcrypt.DefaultCost)
		if err != nil {
			return User{}, err
		}
		user.HashedPassword = string(hashed)
	}

	user.UpdatedAt = time.Now().UTC()
	if err := s.Repo.Update(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
