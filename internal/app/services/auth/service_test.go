package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelops/internal/app/services/auth"
	domaincustomer "hotelops/internal/domain/customer"
	"hotelops/internal/infra/security"
	"hotelops/internal/infra/storage/memory"
)

func newService() *auth.Service {
	return &auth.Service{
		Customers: memory.NewCustomerRepository(),
		Sessions:  memory.NewSessionStore(),
		Passwords: security.BcryptHasher{},
		Tokens:    security.RandomTokenGenerator{},
	}
}

func register(t *testing.T, svc *auth.Service) *auth.AuthResult {
	t.Helper()
	result, err := svc.Register(context.Background(), auth.RegisterParams{
		Email:    "jane@example.com",
		Name:     "Jane Doe",
		Password: "correct horse",
	})
	require.NoError(t, err)
	return result
}

func TestRegister(t *testing.T) {
	svc := newService()

	result := register(t, svc)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "jane@example.com", result.Customer.Email)
	assert.NotEqual(t, "correct horse", result.Customer.PasswordHash)

	_, err := svc.Register(context.Background(), auth.RegisterParams{
		Email:    "Jane@Example.com",
		Name:     "Jane Again",
		Password: "correct horse",
	})
	require.ErrorIs(t, err, domaincustomer.ErrEmailTaken)

	_, err = svc.Register(context.Background(), auth.RegisterParams{
		Email:    "short@example.com",
		Name:     "Shorty",
		Password: "2short",
	})
	require.ErrorIs(t, err, auth.ErrPasswordTooShort)
}

func TestLogin(t *testing.T) {
	svc := newService()
	register(t, svc)

	result, err := svc.Login(context.Background(), auth.LoginParams{
		Email:    "JANE@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)

	_, err = svc.Login(context.Background(), auth.LoginParams{
		Email:    "jane@example.com",
		Password: "wrong",
	})
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), auth.LoginParams{
		Email:    "nobody@example.com",
		Password: "correct horse",
	})
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestResolveToken(t *testing.T) {
	svc := newService()
	registered := register(t, svc)

	cust, err := svc.ResolveToken(context.Background(), registered.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.Customer.ID, cust.ID)

	_, err = svc.ResolveToken(context.Background(), "")
	require.ErrorIs(t, err, auth.ErrTokenRequired)

	_, err = svc.ResolveToken(context.Background(), "bogus")
	require.ErrorIs(t, err, auth.ErrSessionNotFound)
}

func TestResolveTokenExpiry(t *testing.T) {
	svc := newService()
	registered := register(t, svc)

	expired := auth.Session{
		Token:      "expired-token",
		CustomerID: registered.Customer.ID,
		ExpiresAt:  time.Now().UTC().Add(-time.Minute),
	}
	require.NoError(t, svc.Sessions.Save(context.Background(), expired))

	_, err := svc.ResolveToken(context.Background(), expired.Token)
	require.ErrorIs(t, err, auth.ErrSessionExpired)

	// The expired session is removed on first use.
	_, err = svc.ResolveToken(context.Background(), expired.Token)
	require.ErrorIs(t, err, auth.ErrSessionNotFound)
}

func TestLogout(t *testing.T) {
	svc := newService()
	registered := register(t, svc)

	require.NoError(t, svc.Logout(context.Background(), registered.Token))
	_, err := svc.ResolveToken(context.Background(), registered.Token)
	require.ErrorIs(t, err, auth.ErrSessionNotFound)

	// A blank token is a no-op.
	require.NoError(t, svc.Logout(context.Background(), ""))
}
