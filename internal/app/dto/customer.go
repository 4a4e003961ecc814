package dto

import (
	"time"

	domaincustomer "hotelops/internal/domain/customer"
)

type CustomerProfile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Staff     bool      `json:"staff"`
	CreatedAt time.Time `json:"created_at"`
}

type AuthResponse struct {
	Token    string          `json:"token"`
	Customer CustomerProfile `json:"customer"`
}

func NewAuthResponse(cust *domaincustomer.Customer, token string) AuthResponse {
	return AuthResponse{
		Token: token,
		Customer: CustomerProfile{
			ID:        string(cust.ID),
			Email:     cust.Email,
			Name:      cust.Name,
			Staff:     cust.Staff,
			CreatedAt: cust.CreatedAt,
		},
	}
}
