// Package accounts provides username/password registration and login.
package accounts

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"taskboard/api/internal/store"
	"taskboard/api/internal/util"
)

// ErrInvalidCredentials is returned for a failed login. Unknown username and
// wrong password are indistinguishable.
var ErrInvalidCredentials = errors.New("invalid username or password")

// FieldError is a validation failure attributed to a single input field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

func fieldError(field, message string) *FieldError {
	return &FieldError{Field: field, Message: message}
}

// UserStore defines the storage interface for account management
type UserStore interface {
	GetUserByUsername(ctx context.Context, username string) (store.User, error)
	GetUserByID(ctx context.Context, id string) (store.User, error)
	CreateUser(ctx context.Context, user store.User) error
}

type Service struct {
	store UserStore
}

func NewService(store UserStore) *Service {
	return &Service{store: store}
}

// RegisterRequest contains registration parameters. Email is optional.
type RegisterRequest struct {
	Username string
	Email    string
	Password string
}

// Register creates a new user account. The password is stored only as a
// bcrypt hash.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (store.User, error) {
	if req.Username == "" {
		return store.User{}, fieldError("username", "This field is required.")
	}
	if len(req.Password) < 8 {
		return store.User{}, fieldError("password", "Ensure this field has at least 8 characters.")
	}

	if _, err := s.store.GetUserByUsername(ctx, req.Username); err == nil {
		return store.User{}, fieldError("username", "A user with that username already exists.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return store.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := store.User{
		ID:           util.NewID("usr"),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		// Two registrations can race past the lookup above; the unique
		// index on username settles it.
		if store.IsUniqueViolation(err) {
			return store.User{}, fieldError("username", "A user with that username already exists.")
		}
		return store.User{}, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// Login authenticates a user by username and password.
func (s *Service) Login(ctx context.Context, username, password string) (store.User, error) {
	if username == "" || password == "" {
		return store.User{}, ErrInvalidCredentials
	}

	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return store.User{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return store.User{}, ErrInvalidCredentials
	}

	return user, nil
}
