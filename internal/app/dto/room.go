package dto

import (
	domainroom "hotelops/internal/domain/room"
)

type RoomSummary struct {
	ID          string   `json:"id"`
	Number      string   `json:"number"`
	TypeName    string   `json:"type_name"`
	NightlyRate MoneyDTO `json:"nightly_rate"`
	Capacity    int      `json:"capacity"`
	Status      string   `json:"status"`
	Condition   string   `json:"condition"`
	PhotoKeys   []string `json:"photo_keys,omitempty"`
}

type RoomCollection struct {
	Items []RoomSummary `json:"items"`
}

func MapRoomSummary(r *domainroom.Room) RoomSummary {
	return RoomSummary{
		ID:          string(r.ID),
		Number:      r.Number,
		TypeName:    r.Type.Name,
		NightlyRate: MapMoney(r.Type.NightlyRate),
		Capacity:    r.Type.Capacity,
		Status:      string(r.Status),
		Condition:   string(r.Condition),
		PhotoKeys:   r.PhotoKeys,
	}
}
