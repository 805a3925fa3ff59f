package user

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/todoman/internal/model"
	"github.com/hitoshi/todoman/internal/repository"
)

// --- モック定義 ---

type mockUserRepo struct {
	findByIDFn     func(ctx context.Context, id string) (*model.User, error)
	findByAuthIDFn func(ctx context.Context, authID string) (*model.User, error)
	createFn       func(ctx context.Context, user *model.User) error
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByAuthID(ctx context.Context, authID string) (*model.User, error) {
	if m.findByAuthIDFn != nil {
		return m.findByAuthIDFn(ctx, authID)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

type mockAccountDeleter struct {
	deleteAccountFn func(ctx context.Context, userID, identityID string) error
}

func (m *mockAccountDeleter) DeleteAccount(ctx context.Context, userID, identityID string) error {
	if m.deleteAccountFn != nil {
		return m.deleteAccountFn(ctx, userID, identityID)
	}
	return nil
}

// --- compile-time interface checks ---
var _ repository.UserRepository = (*mockUserRepo)(nil)
var _ AccountDeleter = (*mockAccountDeleter)(nil)

// --- テスト ---

func TestProfile_ReturnsUser(t *testing.T) {
	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Email: "alice@example.com", Name: "Alice"}, nil
		},
	}
	svc := NewService(userRepo, &mockAccountDeleter{})

	user, err := svc.Profile(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("Email = %q, want %q", user.Email, "alice@example.com")
	}
}

func TestProfile_NotFound_ReturnsUserNotFound(t *testing.T) {
	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return nil, nil
		},
	}
	svc := NewService(userRepo, &mockAccountDeleter{})

	_, err := svc.Profile(context.Background(), "missing")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeUserNotFound {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeUserNotFound)
	}
}

func TestWithdraw_DeletesAccountWithUserAndIdentityIDs(t *testing.T) {
	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, AuthID: "auth-1"}, nil
		},
	}
	var gotUserID, gotIdentityID string
	accounts := &mockAccountDeleter{
		deleteAccountFn: func(ctx context.Context, userID, identityID string) error {
			gotUserID = userID
			gotIdentityID = identityID
			return nil
		},
	}
	svc := NewService(userRepo, accounts)

	if err := svc.Withdraw(context.Background(), "user-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotUserID != "user-1" {
		t.Errorf("user ID = %q, want user-1", gotUserID)
	}
	if gotIdentityID != "auth-1" {
		t.Errorf("identity ID = %q, want auth-1", gotIdentityID)
	}
}

func TestWithdraw_UserNotFound_ReturnsErrorWithoutDeleting(t *testing.T) {
	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return nil, nil
		},
	}
	accounts := &mockAccountDeleter{
		deleteAccountFn: func(ctx context.Context, userID, identityID string) error {
			t.Fatal("account data should not be deleted")
			return nil
		},
	}
	svc := NewService(userRepo, accounts)

	err := svc.Withdraw(context.Background(), "missing")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeUserNotFound {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeUserNotFound)
	}
}

func TestWithdraw_DeletionFailure_PropagatesError(t *testing.T) {
	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, AuthID: "auth-1"}, nil
		},
	}
	accounts := &mockAccountDeleter{
		deleteAccountFn: func(ctx context.Context, userID, identityID string) error {
			return errors.New("transaction failed")
		},
	}
	svc := NewService(userRepo, accounts)

	if err := svc.Withdraw(context.Background(), "user-1"); err == nil {
		t.Error("expected error")
	}
}
