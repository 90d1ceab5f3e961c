package service

import (
	"context"
	"errors"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"rideshare/internal/domain"
	"rideshare/internal/identity"
	"rideshare/internal/repository"
)

const minPasswordLength = 6

// TokenIssuer issues session tokens for an email.
type TokenIssuer interface {
	Generate(email string) (string, error)
}

// AccountService handles registration and sign-in.
type AccountService struct {
	accountRepo repository.AccountRepository
	tokens      TokenIssuer
	bcryptCost  int
}

// NewAccountService creates a new AccountService.
func NewAccountService(accountRepo repository.AccountRepository, tokens TokenIssuer, bcryptCost int) *AccountService {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AccountService{
		accountRepo: accountRepo,
		tokens:      tokens,
		bcryptCost:  bcryptCost,
	}
}

// Credentials contains an email/password pair.
type Credentials struct {
	Email    string
	Password string
}

// Session is the result of a successful sign-in.
type Session struct {
	Email string
	Token string
}

// Register creates an account and signs it in.
func (s *AccountService) Register(ctx context.Context, creds Credentials) (*Session, error) {
	email, err := validateEmail(creds.Email)
	if err != nil {
		return nil, err
	}
	if len(creds.Password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	account := &domain.Account{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return s.session(email)
}

// Login verifies credentials and issues a token.
func (s *AccountService) Login(ctx context.Context, creds Credentials) (*Session, error) {
	email, err := validateEmail(creds.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	account, err := s.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.session(account.Email)
}

func (s *AccountService) session(email string) (*Session, error) {
	token, err := s.tokens.Generate(email)
	if err != nil {
		return nil, err
	}
	return &Session{Email: email, Token: token}, nil
}

func validateEmail(raw string) (string, error) {
	email := identity.NormalizeEmail(raw)
	if email == "" {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}
