package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hotelops/internal/domain/booking"
	"hotelops/internal/domain/customer"
	"hotelops/internal/domain/payment"
)

const paymentCollection = "payments"

type paymentDocument struct {
	ID                 string        `bson:"_id"`
	BookingID          string        `bson:"booking_id"`
	CustomerID         string        `bson:"customer_id"`
	Amount             moneyDocument `bson:"amount"`
	Method             string        `bson:"method"`
	Status             string        `bson:"status"`
	TransactionRef     txRefDoc      `bson:"transaction_ref,omitempty"`
	Card               *cardDoc      `bson:"card,omitempty"`
	ProcessedAt        int64         `bson:"processed_at,omitempty"`
	FailureReason      string        `bson:"failure_reason,omitempty"`
	ProcessingAttempts int           `bson:"processing_attempts"`
	Refunds            []refundDoc   `bson:"refunds,omitempty"`
	CreatedAt          int64         `bson:"created_at"`
	ModifiedAt         int64         `bson:"modified_at,omitempty"`
	Version            int64         `bson:"version"`
}

type txRefDoc struct {
	Value    string `bson:"value,omitempty"`
	Provider string `bson:"provider,omitempty"`
}

type cardDoc struct {
	MaskedNumber string `bson:"masked_number"`
	HolderName   string `bson:"holder_name"`
	ExpiryMonth  int    `bson:"expiry_month"`
	ExpiryYear   int    `bson:"expiry_year"`
	Last4        string `bson:"last4"`
	Brand        string `bson:"brand"`
}

type refundDoc struct {
	ID             string        `bson:"_id"`
	Amount         moneyDocument `bson:"amount"`
	Reason         string        `bson:"reason,omitempty"`
	Status         string        `bson:"status"`
	TransactionRef txRefDoc      `bson:"transaction_ref,omitempty"`
	CreatedAt      int64         `bson:"created_at"`
	ProcessedAt    int64         `bson:"processed_at,omitempty"`
	FailureReason  string        `bson:"failure_reason,omitempty"`
}

type PaymentRepository struct {
	collection *mongo.Collection
}

func NewPaymentRepository(db *mongo.Database) *PaymentRepository {
	return &PaymentRepository{collection: db.Collection(paymentCollection)}
}

func (r *PaymentRepository) ByID(ctx context.Context, id payment.PaymentID) (*payment.Payment, error) {
	var doc paymentDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, payment.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toAggregate()
}

// ByBooking returns the latest payment for a booking, so a superseded failed
// attempt never shadows the live one.
func (r *PaymentRepository) ByBooking(ctx context.Context, bookingID booking.BookingID) (*payment.Payment, error) {
	var doc paymentDocument
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	err := r.collection.FindOne(ctx, bson.M{"booking_id": string(bookingID)}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, payment.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toAggregate()
}

func (r *PaymentRepository) Save(ctx context.Context, p *payment.Payment) error {
	doc := newPaymentDocument(p)
	doc.Version = p.Version + 1
	filter := bson.M{"_id": doc.ID, "version": p.Version}
	res, err := r.collection.ReplaceOne(ctx, filter, doc, options.Replace().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		return ErrConcurrentUpdate
	}
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	p.Version = doc.Version
	return nil
}

func newPaymentDocument(p *payment.Payment) paymentDocument {
	refunds := make([]refundDoc, 0, len(p.Refunds))
	for _, rf := range p.Refunds {
		refunds = append(refunds, refundDoc{
			ID:             rf.ID,
			Amount:         newMoneyDocument(rf.Amount),
			Reason:         rf.Reason,
			Status:         string(rf.Status),
			TransactionRef: txRefDoc{Value: rf.TransactionRef.Value, Provider: rf.TransactionRef.Provider},
			CreatedAt:      timeToTimestamp(rf.CreatedAt),
			ProcessedAt:    timeToTimestamp(rf.ProcessedAt),
			FailureReason:  rf.FailureReason,
		})
	}
	var card *cardDoc
	if p.Card != nil {
		card = &cardDoc{
			MaskedNumber: p.Card.MaskedNumber,
			HolderName:   p.Card.HolderName,
			ExpiryMonth:  p.Card.ExpiryMonth,
			ExpiryYear:   p.Card.ExpiryYear,
			Last4:        p.Card.Last4,
			Brand:        p.Card.Brand,
		}
	}
	return paymentDocument{
		ID:                 string(p.ID),
		BookingID:          string(p.BookingID),
		CustomerID:         string(p.CustomerID),
		Amount:             newMoneyDocument(p.Amount),
		Method:             string(p.Method),
		Status:             string(p.Status),
		TransactionRef:     txRefDoc{Value: p.TransactionRef.Value, Provider: p.TransactionRef.Provider},
		Card:               card,
		ProcessedAt:        timeToTimestamp(p.ProcessedAt),
		FailureReason:      p.FailureReason,
		ProcessingAttempts: p.ProcessingAttempts,
		Refunds:            refunds,
		CreatedAt:          timeToTimestamp(p.CreatedAt),
		ModifiedAt:         timeToTimestamp(p.ModifiedAt),
		Version:            p.Version,
	}
}

func (d paymentDocument) toAggregate() (*payment.Payment, error) {
	amount, err := d.Amount.toMoney()
	if err != nil {
		return nil, err
	}
	refunds := make([]*payment.Refund, 0, len(d.Refunds))
	for _, rf := range d.Refunds {
		refundAmount, err := rf.Amount.toMoney()
		if err != nil {
			return nil, err
		}
		refunds = append(refunds, &payment.Refund{
			ID:             rf.ID,
			Amount:         refundAmount,
			Reason:         rf.Reason,
			Status:         payment.RefundStatus(rf.Status),
			TransactionRef: payment.TransactionRef{Value: rf.TransactionRef.Value, Provider: rf.TransactionRef.Provider},
			CreatedAt:      timestampToTime(rf.CreatedAt),
			ProcessedAt:    timestampToTime(rf.ProcessedAt),
			FailureReason:  rf.FailureReason,
		})
	}
	var card *payment.CreditCard
	if d.Card != nil {
		card = &payment.CreditCard{
			MaskedNumber: d.Card.MaskedNumber,
			HolderName:   d.Card.HolderName,
			ExpiryMonth:  d.Card.ExpiryMonth,
			ExpiryYear:   d.Card.ExpiryYear,
			Last4:        d.Card.Last4,
			Brand:        d.Card.Brand,
		}
	}
	return &payment.Payment{
		ID:                 payment.PaymentID(d.ID),
		BookingID:          booking.BookingID(d.BookingID),
		CustomerID:         customer.CustomerID(d.CustomerID),
		Amount:             amount,
		Method:             payment.Method(d.Method),
		Status:             payment.Status(d.Status),
		TransactionRef:     payment.TransactionRef{Value: d.TransactionRef.Value, Provider: d.TransactionRef.Provider},
		Card:               card,
		ProcessedAt:        timestampToTime(d.ProcessedAt),
		FailureReason:      d.FailureReason,
		ProcessingAttempts: d.ProcessingAttempts,
		Refunds:            refunds,
		CreatedAt:          timestampToTime(d.CreatedAt),
		ModifiedAt:         timestampToTime(d.ModifiedAt),
		Version:            d.Version,
	}, nil
}

var _ payment.Repository = (*PaymentRepository)(nil)
