package accounts

import (
	"context"
	"errors"
	"testing"

	"taskboard/api/internal/store"
)

// mockUserStore is a mock implementation of UserStore for testing
type mockUserStore struct {
	users         map[string]store.User
	usernameIndex map[string]string // username -> userID
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{
		users:         make(map[string]store.User),
		usernameIndex: make(map[string]string),
	}
}

func (m *mockUserStore) GetUserByUsername(ctx context.Context, username string) (store.User, error) {
	if userID, ok := m.usernameIndex[username]; ok {
		return m.users[userID], nil
	}
	return store.User{}, errors.New("user not found")
}

func (m *mockUserStore) GetUserByID(ctx context.Context, id string) (store.User, error) {
	if user, ok := m.users[id]; ok {
		return user, nil
	}
	return store.User{}, errors.New("user not found")
}

func (m *mockUserStore) CreateUser(ctx context.Context, user store.User) error {
	m.users[user.ID] = user
	m.usernameIndex[user.Username] = user.ID
	return nil
}

func TestRegisterAndLogin(t *testing.T) {
	svc := NewService(newMockUserStore())
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{
		Username: "avery",
		Email:    "avery@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.ID == "" {
		t.Fatal("expected user id to be assigned")
	}
	if user.PasswordHash == "password123" {
		t.Fatal("password stored in plaintext")
	}

	loggedIn, err := svc.Login(ctx, "avery", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if loggedIn.ID != user.ID {
		t.Fatalf("Login() user = %s, want %s", loggedIn.ID, user.ID)
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := NewService(newMockUserStore())

	_, err := svc.Register(context.Background(), RegisterRequest{
		Username: "avery",
		Password: "short12",
	})
	var fieldErr *FieldError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("expected FieldError, got %v", err)
	}
	if fieldErr.Field != "password" {
		t.Fatalf("expected error on password, got %s", fieldErr.Field)
	}
}

func TestRegisterRejectsMissingUsername(t *testing.T) {
	svc := NewService(newMockUserStore())

	_, err := svc.Register(context.Background(), RegisterRequest{Password: "password123"})
	var fieldErr *FieldError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("expected FieldError, got %v", err)
	}
	if fieldErr.Field != "username" {
		t.Fatalf("expected error on username, got %s", fieldErr.Field)
	}
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	svc := NewService(newMockUserStore())
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterRequest{Username: "avery", Password: "password123"}); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}

	_, err := svc.Register(ctx, RegisterRequest{Username: "avery", Password: "different456"})
	var fieldErr *FieldError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("expected FieldError, got %v", err)
	}
	if fieldErr.Field != "username" {
		t.Fatalf("expected error on username, got %s", fieldErr.Field)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc := NewService(newMockUserStore())
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterRequest{Username: "avery", Password: "password123"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if _, err := svc.Login(ctx, "avery", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginUnknownUserMatchesWrongPassword(t *testing.T) {
	svc := NewService(newMockUserStore())

	_, unknownErr := svc.Login(context.Background(), "nobody", "password123")
	if !errors.Is(unknownErr, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", unknownErr)
	}
}
