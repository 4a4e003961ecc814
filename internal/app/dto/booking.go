package dto

import (
	"time"

	domainbooking "hotelops/internal/domain/booking"
	"hotelops/internal/domain/shared/money"
)

type MoneyDTO struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

type BookingItemSummary struct {
	ID            string     `json:"id"`
	RoomID        string     `json:"room_id"`
	PricePerNight MoneyDTO   `json:"price_per_night"`
	Adults        int        `json:"adults"`
	Children      int        `json:"children"`
	Status        string     `json:"status"`
	CheckInTime   *time.Time `json:"check_in_time,omitempty"`
	CheckOutTime  *time.Time `json:"check_out_time,omitempty"`
}

type BookingSummary struct {
	ID                 string               `json:"id"`
	CustomerID         string               `json:"customer_id"`
	CheckIn            time.Time            `json:"check_in"`
	CheckOut           time.Time            `json:"check_out"`
	Nights             int                  `json:"nights"`
	Status             string               `json:"status"`
	Items              []BookingItemSummary `json:"items"`
	TotalAmount        MoneyDTO             `json:"total_amount"`
	DiscountAmount     MoneyDTO             `json:"discount_amount"`
	FinalAmount        MoneyDTO             `json:"final_amount"`
	PaymentID          string               `json:"payment_id,omitempty"`
	CancellationReason string               `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time            `json:"created_at"`
}

type BookingCollection struct {
	Items []BookingSummary `json:"items"`
}

func MapMoney(value money.Money) MoneyDTO {
	return MoneyDTO{
		Amount:   value.Amount.StringFixed(2),
		Currency: string(value.Currency),
	}
}

func MapBookingSummary(b *domainbooking.Booking) BookingSummary {
	items := make([]BookingItemSummary, 0, len(b.Items))
	for _, item := range b.Items {
		summary := BookingItemSummary{
			ID:            item.ID,
			RoomID:        string(item.RoomID),
			PricePerNight: MapMoney(item.PricePerNight),
			Adults:        item.Guests.Adults,
			Children:      item.Guests.Children,
			Status:        string(item.Status),
		}
		if !item.CheckInTime.IsZero() {
			t := item.CheckInTime
			summary.CheckInTime = &t
		}
		if !item.CheckOutTime.IsZero() {
			t := item.CheckOutTime
			summary.CheckOutTime = &t
		}
		items = append(items, summary)
	}
	return BookingSummary{
		ID:                 string(b.ID),
		CustomerID:         string(b.CustomerID),
		CheckIn:            b.Range.Start,
		CheckOut:           b.Range.End,
		Nights:             b.Range.Nights(),
		Status:             string(b.Status),
		Items:              items,
		TotalAmount:        MapMoney(b.TotalAmount),
		DiscountAmount:     MapMoney(b.DiscountAmount),
		FinalAmount:        MapMoney(b.FinalAmount),
		PaymentID:          b.PaymentID,
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt,
	}
}
