package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hotelops/internal/domain/housekeeping"
	"hotelops/internal/domain/room"
	"hotelops/internal/domain/shared/money"
)

const taskCollection = "cleaning_tasks"

type taskDocument struct {
	ID            string            `bson:"_id"`
	RoomID        string            `bson:"room_id"`
	Kind          string            `bson:"kind"`
	Status        string            `bson:"status"`
	Priority      string            `bson:"priority"`
	PriorityRank  int               `bson:"priority_rank"`
	ScheduledFor  int64             `bson:"scheduled_for,omitempty"`
	StartedAt     int64             `bson:"started_at,omitempty"`
	CompletedAt   int64             `bson:"completed_at,omitempty"`
	AssignedTo    string            `bson:"assigned_to,omitempty"`
	Notes         string            `bson:"notes,omitempty"`
	DamageReports []damageReportDoc `bson:"damage_reports,omitempty"`
	CreatedAt     int64             `bson:"created_at"`
	ModifiedAt    int64             `bson:"modified_at,omitempty"`
	Version       int64             `bson:"version"`
}

type damageReportDoc struct {
	ID            string         `bson:"_id"`
	Description   string         `bson:"description"`
	ReportedBy    string         `bson:"reported_by,omitempty"`
	EstimatedCost *moneyDocument `bson:"estimated_cost,omitempty"`
	ActualCost    *moneyDocument `bson:"actual_cost,omitempty"`
	Repaired      bool           `bson:"repaired"`
	ReportedAt    int64          `bson:"reported_at"`
	RepairedAt    int64          `bson:"repaired_at,omitempty"`
	RepairNotes   string         `bson:"repair_notes,omitempty"`
}

type TaskRepository struct {
	collection *mongo.Collection
}

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{collection: db.Collection(taskCollection)}
}

func (r *TaskRepository) ByID(ctx context.Context, id housekeeping.TaskID) (*housekeeping.Task, error) {
	var doc taskDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, housekeeping.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toAggregate()
}

func (r *TaskRepository) Save(ctx context.Context, task *housekeeping.Task) error {
	doc := newTaskDocument(task)
	doc.Version = task.Version + 1
	filter := bson.M{"_id": doc.ID, "version": task.Version}
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
	task.Version = doc.Version
	return nil
}

func (r *TaskRepository) ListByRoom(ctx context.Context, roomID room.RoomID) ([]*housekeeping.Task, error) {
	return r.list(ctx, bson.M{"room_id": string(roomID)})
}

func (r *TaskRepository) ListOpen(ctx context.Context) ([]*housekeeping.Task, error) {
	open := []string{string(housekeeping.StatusPending), string(housekeeping.StatusInProgress)}
	return r.list(ctx, bson.M{"status": bson.M{"$in": open}})
}

// list sorts urgent work first, oldest first within the same priority.
func (r *TaskRepository) list(ctx context.Context, filter bson.M) ([]*housekeeping.Task, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "priority_rank", Value: -1},
		{Key: "created_at", Value: 1},
	})
	cur, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*housekeeping.Task
	for cur.Next(ctx) {
		var doc taskDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		task, err := doc.toAggregate()
		if err != nil {
			return nil, err
		}
		out = append(out, task)
	}
	return out, cur.Err()
}

func newTaskDocument(t *housekeeping.Task) taskDocument {
	reports := make([]damageReportDoc, 0, len(t.DamageReports))
	for _, report := range t.DamageReports {
		reports = append(reports, damageReportDoc{
			ID:            report.ID,
			Description:   report.Description,
			ReportedBy:    report.ReportedBy,
			EstimatedCost: optionalMoneyDocument(report.EstimatedCost),
			ActualCost:    optionalMoneyDocument(report.ActualCost),
			Repaired:      report.Repaired,
			ReportedAt:    timeToTimestamp(report.ReportedAt),
			RepairedAt:    timeToTimestamp(report.RepairedAt),
			RepairNotes:   report.RepairNotes,
		})
	}
	return taskDocument{
		ID:            string(t.ID),
		RoomID:        string(t.RoomID),
		Kind:          string(t.Kind),
		Status:        string(t.Status),
		Priority:      string(t.Priority),
		PriorityRank:  t.Priority.Rank(),
		ScheduledFor:  timeToTimestamp(t.ScheduledFor),
		StartedAt:     timeToTimestamp(t.StartedAt),
		CompletedAt:   timeToTimestamp(t.CompletedAt),
		AssignedTo:    t.AssignedTo,
		Notes:         t.Notes,
		DamageReports: reports,
		CreatedAt:     timeToTimestamp(t.CreatedAt),
		ModifiedAt:    timeToTimestamp(t.ModifiedAt),
		Version:       t.Version,
	}
}

func (d taskDocument) toAggregate() (*housekeeping.Task, error) {
	reports := make([]*housekeeping.DamageReport, 0, len(d.DamageReports))
	for _, report := range d.DamageReports {
		estimated, err := optionalMoney(report.EstimatedCost)
		if err != nil {
			return nil, err
		}
		actual, err := optionalMoney(report.ActualCost)
		if err != nil {
			return nil, err
		}
		reports = append(reports, &housekeeping.DamageReport{
			ID:            report.ID,
			TaskID:        housekeeping.TaskID(d.ID),
			Description:   report.Description,
			ReportedBy:    report.ReportedBy,
			EstimatedCost: estimated,
			ActualCost:    actual,
			Repaired:      report.Repaired,
			ReportedAt:    timestampToTime(report.ReportedAt),
			RepairedAt:    timestampToTime(report.RepairedAt),
			RepairNotes:   report.RepairNotes,
		})
	}
	return &housekeeping.Task{
		ID:            housekeeping.TaskID(d.ID),
		RoomID:        room.RoomID(d.RoomID),
		Kind:          housekeeping.Kind(d.Kind),
		Status:        housekeeping.Status(d.Status),
		Priority:      housekeeping.Priority(d.Priority),
		ScheduledFor:  timestampToTime(d.ScheduledFor),
		StartedAt:     timestampToTime(d.StartedAt),
		CompletedAt:   timestampToTime(d.CompletedAt),
		AssignedTo:    d.AssignedTo,
		Notes:         d.Notes,
		DamageReports: reports,
		CreatedAt:     timestampToTime(d.CreatedAt),
		ModifiedAt:    timestampToTime(d.ModifiedAt),
		Version:       d.Version,
	}, nil
}

func optionalMoneyDocument(value *money.Money) *moneyDocument {
	if value == nil {
		return nil
	}
	doc := newMoneyDocument(*value)
	return &doc
}

func optionalMoney(doc *moneyDocument) (*money.Money, error) {
	if doc == nil {
		return nil, nil
	}
	value, err := doc.toMoney()
	if err != nil {
		return nil, err
	}
	return &value, nil
}

var _ housekeeping.Repository = (*TaskRepository)(nil)
