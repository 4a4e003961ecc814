package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	domaincustomer "hotelops/internal/domain/customer"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrPasswordTooShort   = errors.New("auth: password must be at least 8 characters")
	ErrTokenRequired      = errors.New("auth: token required")
	ErrSessionNotFound    = errors.New("auth: session not found")
	ErrSessionExpired     = errors.New("auth: session expired")
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenGenerator interface {
	NewToken() (string, error)
}

// Session is an opaque bearer token bound to a customer.
type Session struct {
	Token      string
	CustomerID domaincustomer.CustomerID
	Staff      bool
	ExpiresAt  time.Time
}

func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

type SessionStore interface {
	Save(ctx context.Context, session Session) error
	Get(ctx context.Context, token string) (Session, bool, error)
	Delete(ctx context.Context, token string) error
}

type Service struct {
	Customers  domaincustomer.Repository
	Sessions   SessionStore
	Passwords  PasswordHasher
	Tokens     TokenGenerator
	SessionTTL time.Duration
	Logger     *slog.Logger
}

type RegisterParams struct {
	Email    string
	Name     string
	Password string
	Staff    bool
}

type LoginParams struct {
	Email    string
	Password string
}

type AuthResult struct {
	Customer *domaincustomer.Customer
	Token    string
}

func (s *Service) Register(ctx context.Context, params RegisterParams) (*AuthResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	email := strings.TrimSpace(strings.ToLower(params.Email))
	if _, err := s.Customers.ByEmail(ctx, email); err == nil {
		return nil, domaincustomer.ErrEmailTaken
	} else if !errors.Is(err, domaincustomer.ErrNotFound) {
		return nil, err
	}
	if err := s.validatePassword(params.Password); err != nil {
		return nil, err
	}
	hash, err := s.Passwords.Hash(params.Password)
	if err != nil {
		return nil, err
	}
	cust, err := domaincustomer.New(
		domaincustomer.CustomerID(uuid.NewString()),
		email,
		params.Name,
		hash,
		params.Staff,
		time.Now().UTC(),
	)
	if err != nil {
		return nil, err
	}
	if err := s.Customers.Save(ctx, cust); err != nil {
		return nil, err
	}
	token, err := s.issueSession(ctx, cust)
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("customer registered", "customer_id", cust.ID, "email", cust.Email)
	}
	return &AuthResult{Customer: cust, Token: token}, nil
}

func (s *Service) Login(ctx context.Context, params LoginParams) (*AuthResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	email := strings.TrimSpace(strings.ToLower(params.Email))
	if email == "" {
		return nil, ErrInvalidCredentials
	}
	cust, err := s.Customers.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domaincustomer.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.Passwords.Compare(cust.PasswordHash, params.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	token, err := s.issueSession(ctx, cust)
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("customer authenticated", "customer_id", cust.ID)
	}
	return &AuthResult{Customer: cust, Token: token}, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.ensureDependencies(); err != nil {
		return err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	return s.Sessions.Delete(ctx, token)
}

func (s *Service) ResolveToken(ctx context.Context, token string) (*domaincustomer.Customer, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenRequired
	}
	session, found, err := s.Sessions.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrSessionNotFound
	}
	if session.Expired(time.Now().UTC()) {
		_ = s.Sessions.Delete(ctx, token)
		return nil, ErrSessionExpired
	}
	cust, err := s.Customers.ByID(ctx, session.CustomerID)
	if err != nil {
		_ = s.Sessions.Delete(ctx, token)
		if errors.Is(err, domaincustomer.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return cust, nil
}

func (s *Service) issueSession(ctx context.Context, cust *domaincustomer.Customer) (string, error) {
	token, err := s.Tokens.NewToken()
	if err != nil {
		return "", err
	}
	session := Session{
		Token:      token,
		CustomerID: cust.ID,
		Staff:      cust.Staff,
		ExpiresAt:  time.Now().UTC().Add(s.sessionTTL()),
	}
	if err := s.Sessions.Save(ctx, session); err != nil {
		return "", err
	}
	return token, nil
}

func (s *Service) sessionTTL() time.Duration {
	if s.SessionTTL > 0 {
		return s.SessionTTL
	}
	return 24 * time.Hour
}

func (s *Service) validatePassword(password string) error {
	if utf8.RuneCountInString(password) < 8 {
		return ErrPasswordTooShort
	}
	return nil
}

func (s *Service) ensureDependencies() error {
	switch {
	case s.Customers == nil:
		return errors.New("auth: customer repository required")
	case s.Sessions == nil:
		return errors.New("auth: session store required")
	case s.Passwords == nil:
		return errors.New("auth: password hasher required")
	case s.Tokens == nil:
		return errors.New("auth: token generator required")
	default:
		return nil
	}
}
