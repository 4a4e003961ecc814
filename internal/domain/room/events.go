package room

import "time"

type RoomCreated struct {
	RoomID RoomID
	Number string
	At     time.Time
}

func (e RoomCreated) EventName() string     { return "room.created" }
func (e RoomCreated) AggregateID() string   { return string(e.RoomID) }
func (e RoomCreated) OccurredAt() time.Time { return e.At }

type RoomOccupied struct {
	RoomID RoomID
	At     time.Time
}

func (e RoomOccupied) EventName() string     { return "room.occupied" }
func (e RoomOccupied) AggregateID() string   { return string(e.RoomID) }
func (e RoomOccupied) OccurredAt() time.Time { return e.At }

type RoomVacated struct {
	RoomID RoomID
	At     time.Time
}

func (e RoomVacated) EventName() string     { return "room.vacated" }
func (e RoomVacated) AggregateID() string   { return string(e.RoomID) }
func (e RoomVacated) OccurredAt() time.Time { return e.At }
