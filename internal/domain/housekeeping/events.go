package housekeeping

import (
	"time"

	"hotelops/internal/domain/room"
)

type TaskCreated struct {
	TaskID   TaskID
	RoomID   room.RoomID
	Kind     Kind
	Priority Priority
	At       time.Time
}

func (e TaskCreated) EventName() string     { return "housekeeping.task_created" }
func (e TaskCreated) AggregateID() string   { return string(e.TaskID) }
func (e TaskCreated) OccurredAt() time.Time { return e.At }

type TaskStarted struct {
	TaskID     TaskID
	RoomID     room.RoomID
	AssignedTo string
	At         time.Time
}

func (e TaskStarted) EventName() string     { return "housekeeping.task_started" }
func (e TaskStarted) AggregateID() string   { return string(e.TaskID) }
func (e TaskStarted) OccurredAt() time.Time { return e.At }

type TaskCompleted struct {
	TaskID     TaskID
	RoomID     room.RoomID
	AssignedTo string
	At         time.Time
}

func (e TaskCompleted) EventName() string     { return "housekeeping.task_completed" }
func (e TaskCompleted) AggregateID() string   { return string(e.TaskID) }
func (e TaskCompleted) OccurredAt() time.Time { return e.At }

type TaskCancelled struct {
	TaskID TaskID
	RoomID room.RoomID
	Reason string
	At     time.Time
}

func (e TaskCancelled) EventName() string     { return "housekeeping.task_cancelled" }
func (e TaskCancelled) AggregateID() string   { return string(e.TaskID) }
func (e TaskCancelled) OccurredAt() time.Time { return e.At }

type DamageReported struct {
	TaskID      TaskID
	RoomID      room.RoomID
	ReportID    string
	Description string
	At          time.Time
}

func (e DamageReported) EventName() string     { return "housekeeping.damage_reported" }
func (e DamageReported) AggregateID() string   { return string(e.TaskID) }
func (e DamageReported) OccurredAt() time.Time { return e.At }
