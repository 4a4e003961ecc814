package customer

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound     = errors.New("customer: not found")
	ErrEmailTaken   = errors.New("customer: email already registered")
	ErrInvalidEmail = errors.New("customer: valid email required")
	ErrInvalidName  = errors.New("customer: name required")
)

type CustomerID string

// Customer is the minimal identity bookings and payments reference. Staff
// accounts may override cancellation refunds at the desk.
type Customer struct {
	ID           CustomerID
	Email        string
	Name         string
	PasswordHash string
	Staff        bool
	CreatedAt    time.Time
	Version      int64
}

type Repository interface {
	ByID(ctx context.Context, id CustomerID) (*Customer, error)
	ByEmail(ctx context.Context, email string) (*Customer, error)
	Save(ctx context.Context, customer *Customer) error
}

func New(id CustomerID, email, name, passwordHash string, staff bool, now time.Time) (*Customer, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidName
	}
	return &Customer{
		ID:           id,
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: passwordHash,
		Staff:        staff,
		CreatedAt:    now.UTC(),
	}, nil
}
