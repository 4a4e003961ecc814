package mongo

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hotelops/internal/domain/booking"
	"hotelops/internal/domain/customer"
	"hotelops/internal/domain/room"
	"hotelops/internal/domain/shared/daterange"
	"hotelops/internal/domain/shared/money"
)

const bookingCollection = "bookings"

type bookingDocument struct {
	ID                 string             `bson:"_id"`
	CustomerID         string             `bson:"customer_id"`
	RangeStart         int64              `bson:"range_start"`
	RangeEnd           int64              `bson:"range_end"`
	Status             string             `bson:"status"`
	Items              []bookingItemDoc   `bson:"items"`
	Currency           string             `bson:"currency"`
	TotalAmount        moneyDocument      `bson:"total_amount"`
	DiscountPercent    string             `bson:"discount_percent"`
	DiscountAmount     moneyDocument      `bson:"discount_amount"`
	FinalAmount        moneyDocument      `bson:"final_amount"`
	PaymentID          string             `bson:"payment_id,omitempty"`
	Policy             cancellationPolicy `bson:"policy"`
	ConfirmedAt        int64              `bson:"confirmed_at,omitempty"`
	CancelledAt        int64              `bson:"cancelled_at,omitempty"`
	CancellationReason string             `bson:"cancellation_reason,omitempty"`
	CheckInTime        int64              `bson:"check_in_time,omitempty"`
	CheckOutTime       int64              `bson:"check_out_time,omitempty"`
	CreatedAt          int64              `bson:"created_at"`
	ModifiedAt         int64              `bson:"modified_at,omitempty"`
	Version            int64              `bson:"version"`
}

type bookingItemDoc struct {
	ID            string        `bson:"_id"`
	RoomID        string        `bson:"room_id"`
	PricePerNight moneyDocument `bson:"price_per_night"`
	Adults        int           `bson:"adults"`
	Children      int           `bson:"children"`
	Status        string        `bson:"status"`
	CheckInTime   int64         `bson:"check_in_time,omitempty"`
	CheckOutTime  int64         `bson:"check_out_time,omitempty"`
	CreatedAt     int64         `bson:"created_at"`
}

type cancellationPolicy struct {
	ThresholdHours       int    `bson:"threshold_hours"`
	PartialRefundPercent int    `bson:"partial_refund_percent"`
	Description          string `bson:"description,omitempty"`
}

type BookingRepository struct {
	collection *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{collection: db.Collection(bookingCollection)}
}

func (r *BookingRepository) ByID(ctx context.Context, id booking.BookingID) (*booking.Booking, error) {
	var doc bookingDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, booking.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toAggregate()
}

func (r *BookingRepository) Save(ctx context.Context, b *booking.Booking) error {
	doc := newBookingDocument(b)
	doc.Version = b.Version + 1
	filter := bson.M{"_id": doc.ID, "version": b.Version}
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
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) ListByCustomer(ctx context.Context, customerID customer.CustomerID) ([]*booking.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.collection.Find(ctx, bson.M{"customer_id": string(customerID)}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*booking.Booking
	for cur.Next(ctx) {
		var doc bookingDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		b, err := doc.toAggregate()
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, cur.Err()
}

// IsRoomAvailable counts blocking bookings whose range overlaps the requested
// one and which contain the room. Half-open ranges: start < other.end and
// other.start < end.
func (r *BookingRepository) IsRoomAvailable(ctx context.Context, roomID room.RoomID, dr daterange.DateRange, exclude booking.BookingID) (bool, error) {
	filter := bson.M{
		"status":        bson.M{"$nin": []string{string(booking.StatusCancelled), string(booking.StatusNoShow)}},
		"items.room_id": string(roomID),
		"range_start":   bson.M{"$lt": timeToTimestamp(dr.End)},
		"range_end":     bson.M{"$gt": timeToTimestamp(dr.Start)},
	}
	if exclude != "" {
		filter["_id"] = bson.M{"$ne": string(exclude)}
	}
	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

func newBookingDocument(b *booking.Booking) bookingDocument {
	items := make([]bookingItemDoc, 0, len(b.Items))
	for _, item := range b.Items {
		items = append(items, bookingItemDoc{
			ID:            item.ID,
			RoomID:        string(item.RoomID),
			PricePerNight: newMoneyDocument(item.PricePerNight),
			Adults:        item.Guests.Adults,
			Children:      item.Guests.Children,
			Status:        string(item.Status),
			CheckInTime:   timeToTimestamp(item.CheckInTime),
			CheckOutTime:  timeToTimestamp(item.CheckOutTime),
			CreatedAt:     timeToTimestamp(item.CreatedAt),
		})
	}
	return bookingDocument{
		ID:              string(b.ID),
		CustomerID:      string(b.CustomerID),
		RangeStart:      timeToTimestamp(b.Range.Start),
		RangeEnd:        timeToTimestamp(b.Range.End),
		Status:          string(b.Status),
		Items:           items,
		Currency:        string(b.Currency),
		TotalAmount:     newMoneyDocument(b.TotalAmount),
		DiscountPercent: b.DiscountPercent.String(),
		DiscountAmount:  newMoneyDocument(b.DiscountAmount),
		FinalAmount:     newMoneyDocument(b.FinalAmount),
		PaymentID:       b.PaymentID,
		Policy: cancellationPolicy{
			ThresholdHours:       b.Policy.ThresholdHours,
			PartialRefundPercent: b.Policy.PartialRefundPercent,
			Description:          b.Policy.Description,
		},
		ConfirmedAt:        timeToTimestamp(b.ConfirmedAt),
		CancelledAt:        timeToTimestamp(b.CancelledAt),
		CancellationReason: b.CancellationReason,
		CheckInTime:        timeToTimestamp(b.CheckInTime),
		CheckOutTime:       timeToTimestamp(b.CheckOutTime),
		CreatedAt:          timeToTimestamp(b.CreatedAt),
		ModifiedAt:         timeToTimestamp(b.ModifiedAt),
		Version:            b.Version,
	}
}

func (d bookingDocument) toAggregate() (*booking.Booking, error) {
	total, err := d.TotalAmount.toMoney()
	if err != nil {
		return nil, err
	}
	discountAmount, err := d.DiscountAmount.toMoney()
	if err != nil {
		return nil, err
	}
	final, err := d.FinalAmount.toMoney()
	if err != nil {
		return nil, err
	}
	discountPercent := decimal.Zero
	if d.DiscountPercent != "" {
		discountPercent, err = decimal.NewFromString(d.DiscountPercent)
		if err != nil {
			return nil, err
		}
	}
	items := make([]*booking.Item, 0, len(d.Items))
	for _, item := range d.Items {
		price, err := item.PricePerNight.toMoney()
		if err != nil {
			return nil, err
		}
		items = append(items, &booking.Item{
			ID:            item.ID,
			RoomID:        room.RoomID(item.RoomID),
			PricePerNight: price,
			Guests:        booking.GuestCount{Adults: item.Adults, Children: item.Children},
			Status:        booking.ItemStatus(item.Status),
			CheckInTime:   timestampToTime(item.CheckInTime),
			CheckOutTime:  timestampToTime(item.CheckOutTime),
			CreatedAt:     timestampToTime(item.CreatedAt),
		})
	}
	return &booking.Booking{
		ID:         booking.BookingID(d.ID),
		CustomerID: customer.CustomerID(d.CustomerID),
		Range: daterange.DateRange{
			Start: timestampToTime(d.RangeStart),
			End:   timestampToTime(d.RangeEnd),
		},
		Status:          booking.Status(d.Status),
		Items:           items,
		Currency:        money.Currency(d.Currency),
		TotalAmount:     total,
		DiscountPercent: discountPercent,
		DiscountAmount:  discountAmount,
		FinalAmount:     final,
		PaymentID:       d.PaymentID,
		Policy: booking.CancellationPolicy{
			ThresholdHours:       d.Policy.ThresholdHours,
			PartialRefundPercent: d.Policy.PartialRefundPercent,
			Description:          d.Policy.Description,
		},
		ConfirmedAt:        timestampToTime(d.ConfirmedAt),
		CancelledAt:        timestampToTime(d.CancelledAt),
		CancellationReason: d.CancellationReason,
		CheckInTime:        timestampToTime(d.CheckInTime),
		CheckOutTime:       timestampToTime(d.CheckOutTime),
		CreatedAt:          timestampToTime(d.CreatedAt),
		ModifiedAt:         timestampToTime(d.ModifiedAt),
		Version:            d.Version,
	}, nil
}

var _ booking.Repository = (*BookingRepository)(nil)
