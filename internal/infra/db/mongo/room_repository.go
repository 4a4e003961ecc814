package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hotelops/internal/domain/room"
)

const roomCollection = "rooms"

type roomDocument struct {
	ID          string        `bson:"_id"`
	Number      string        `bson:"number"`
	TypeName    string        `bson:"type_name"`
	NightlyRate moneyDocument `bson:"nightly_rate"`
	Capacity    int           `bson:"capacity"`
	Status      string        `bson:"status"`
	Condition   string        `bson:"condition"`
	PhotoKeys   []string      `bson:"photo_keys,omitempty"`
	CreatedAt   int64         `bson:"created_at"`
	ModifiedAt  int64         `bson:"modified_at,omitempty"`
	Version     int64         `bson:"version"`
}

type RoomRepository struct {
	collection *mongo.Collection
}

func NewRoomRepository(db *mongo.Database) *RoomRepository {
	return &RoomRepository{collection: db.Collection(roomCollection)}
}

func (r *RoomRepository) ByID(ctx context.Context, id room.RoomID) (*room.Room, error) {
	var doc roomDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, room.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toAggregate()
}

func (r *RoomRepository) Save(ctx context.Context, rm *room.Room) error {
	doc := newRoomDocument(rm)
	doc.Version = rm.Version + 1
	filter := bson.M{"_id": doc.ID, "version": rm.Version}
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
	rm.Version = doc.Version
	return nil
}

func (r *RoomRepository) List(ctx context.Context) ([]*room.Room, error) {
	opts := options.Find().SetSort(bson.D{{Key: "number", Value: 1}})
	cur, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*room.Room
	for cur.Next(ctx) {
		var doc roomDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		rm, err := doc.toAggregate()
		if err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	return out, cur.Err()
}

func newRoomDocument(rm *room.Room) roomDocument {
	return roomDocument{
		ID:          string(rm.ID),
		Number:      rm.Number,
		TypeName:    rm.Type.Name,
		NightlyRate: newMoneyDocument(rm.Type.NightlyRate),
		Capacity:    rm.Type.Capacity,
		Status:      string(rm.Status),
		Condition:   string(rm.Condition),
		PhotoKeys:   rm.PhotoKeys,
		CreatedAt:   timeToTimestamp(rm.CreatedAt),
		ModifiedAt:  timeToTimestamp(rm.ModifiedAt),
		Version:     rm.Version,
	}
}

func (d roomDocument) toAggregate() (*room.Room, error) {
	rate, err := d.NightlyRate.toMoney()
	if err != nil {
		return nil, err
	}
	return &room.Room{
		ID:     room.RoomID(d.ID),
		Number: d.Number,
		Type: room.RoomType{
			Name:        d.TypeName,
			NightlyRate: rate,
			Capacity:    d.Capacity,
		},
		Status:     room.Status(d.Status),
		Condition:  room.Condition(d.Condition),
		PhotoKeys:  d.PhotoKeys,
		CreatedAt:  timestampToTime(d.CreatedAt),
		ModifiedAt: timestampToTime(d.ModifiedAt),
		Version:    d.Version,
	}, nil
}

var _ room.Repository = (*RoomRepository)(nil)
