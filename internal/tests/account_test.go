package tests

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"rideshare/internal/service"
)

func newAccountService() (*service.AccountService, *MockAccountRepository, *MockTokenIssuer) {
	repo := NewMockAccountRepository()
	tokens := &MockTokenIssuer{}
	return service.NewAccountService(repo, tokens, bcrypt.MinCost), repo, tokens
}

func TestAccount_RegisterNormalizesEmail(t *testing.T) {
	svc, repo, _ := newAccountService()

	session, err := svc.Register(context.Background(), service.Credentials{Email: "  Alice@Example.COM ", Password: "secret1"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if session.Email != "alice@example.com" || session.Token != "token-for-alice@example.com" {
		t.Errorf("unexpected session %+v", session)
	}

	account, err := repo.GetByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if account.PasswordHash == "secret1" {
		t.Error("password must be stored hashed")
	}
}

func TestAccount_RegisterValidation(t *testing.T) {
	svc, _, tokens := newAccountService()
	ctx := context.Background()

	testCases := []struct {
		name  string
		creds service.Credentials
		want  error
	}{
		{"empty email", service.Credentials{Email: "", Password: "secret1"}, service.ErrInvalidEmail},
		{"malformed email", service.Credentials{Email: "not-an-email", Password: "secret1"}, service.ErrInvalidEmail},
		{"display name", service.Credentials{Email: "Bob <bob@example.com>", Password: "secret1"}, service.ErrInvalidEmail},
		{"short password", service.Credentials{Email: "bob@example.com", Password: "123"}, service.ErrWeakPassword},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(ctx, tc.creds); !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}

	if tokens.GenerateCallCount != 0 {
		t.Error("rejected registrations must not issue tokens")
	}
}

func TestAccount_RegisterTwiceFails(t *testing.T) {
	svc, _, _ := newAccountService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, service.Credentials{Email: "bob@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, err := svc.Register(ctx, service.Credentials{Email: "BOB@example.com", Password: "other12"})
	if !errors.Is(err, service.ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAccount_Login(t *testing.T) {
	svc, _, _ := newAccountService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, service.Credentials{Email: "bob@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	session, err := svc.Login(ctx, service.Credentials{Email: "Bob@Example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if session.Email != "bob@example.com" {
		t.Errorf("expected normalized email, got %s", session.Email)
	}

	for _, creds := range []service.Credentials{
		{Email: "bob@example.com", Password: "wrong!!"},
		{Email: "nobody@example.com", Password: "secret1"},
		{Email: "garbage", Password: "secret1"},
	} {
		if _, err := svc.Login(ctx, creds); !errors.Is(err, service.ErrInvalidCredentials) {
			t.Errorf("Login(%s): expected ErrInvalidCredentials, got %v", creds.Email, err)
		}
	}
}
