package housekeeping

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownPriority = errors.New("housekeeping: unknown priority")
	ErrUnknownKind     = errors.New("housekeeping: unknown task kind")
)

// Status is the cleaning task lifecycle state.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

func (s Status) CanStart() bool {
	return s == StatusPending
}

func (s Status) CanComplete() bool {
	return s == StatusInProgress
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Priority orders the cleaning queue. Urgent tasks come from damage reports
// and guest complaints.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

var priorityRank = map[Priority]int{
	PriorityLow:    0,
	PriorityNormal: 1,
	PriorityHigh:   2,
	PriorityUrgent: 3,
}

func ParsePriority(code string) (Priority, error) {
	if _, ok := priorityRank[Priority(code)]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPriority, code)
	}
	return Priority(code), nil
}

// Rank converts a priority to its sort weight; higher means sooner.
func (p Priority) Rank() int {
	return priorityRank[p]
}

// Kind distinguishes routine turnover cleaning from deep cleans and
// maintenance follow-ups.
type Kind string

const (
	KindCheckout    Kind = "CHECKOUT"
	KindDaily       Kind = "DAILY"
	KindDeepClean   Kind = "DEEP_CLEAN"
	KindMaintenance Kind = "MAINTENANCE"
)

func ParseKind(code string) (Kind, error) {
	switch Kind(code) {
	case KindCheckout, KindDaily, KindDeepClean, KindMaintenance:
		return Kind(code), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, code)
	}
}
