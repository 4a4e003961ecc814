package mongo

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hotelops/internal/domain/customer"
)

const customerCollection = "customers"

type customerDocument struct {
	ID           string `bson:"_id"`
	Email        string `bson:"email"`
	Name         string `bson:"name"`
	PasswordHash string `bson:"password_hash"`
	Staff        bool   `bson:"staff"`
	CreatedAt    int64  `bson:"created_at"`
	Version      int64  `bson:"version"`
}

type CustomerRepository struct {
	collection *mongo.Collection
}

// NewCustomerRepository ensures the unique email index that backs
// duplicate-registration detection.
func NewCustomerRepository(ctx context.Context, db *mongo.Database) (*CustomerRepository, error) {
	collection := db.Collection(customerCollection)
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, err
	}
	return &CustomerRepository{collection: collection}, nil
}

func (r *CustomerRepository) ByID(ctx context.Context, id customer.CustomerID) (*customer.Customer, error) {
	var doc customerDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, customer.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *CustomerRepository) ByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	var doc customerDocument
	err := r.collection.FindOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, customer.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *CustomerRepository) Save(ctx context.Context, c *customer.Customer) error {
	doc := customerDocument{
		ID:           string(c.ID),
		Email:        c.Email,
		Name:         c.Name,
		PasswordHash: c.PasswordHash,
		Staff:        c.Staff,
		CreatedAt:    timeToTimestamp(c.CreatedAt),
		Version:      c.Version + 1,
	}
	filter := bson.M{"_id": doc.ID, "version": c.Version}
	res, err := r.collection.ReplaceOne(ctx, filter, doc, options.Replace().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		// Either a version race on _id or another account holding the email.
		if c.Version == 0 {
			return customer.ErrEmailTaken
		}
		return ErrConcurrentUpdate
	}
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	c.Version = doc.Version
	return nil
}

func (d customerDocument) toAggregate() *customer.Customer {
	return &customer.Customer{
		ID:           customer.CustomerID(d.ID),
		Email:        d.Email,
		Name:         d.Name,
		PasswordHash: d.PasswordHash,
		Staff:        d.Staff,
		CreatedAt:    timestampToTime(d.CreatedAt),
		Version:      d.Version,
	}
}

var _ customer.Repository = (*CustomerRepository)(nil)
