package housekeeping

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"hotelops/internal/domain/room"
	"hotelops/internal/domain/shared/events"
	"hotelops/internal/domain/shared/money"
)

var (
	ErrNotFound        = errors.New("housekeeping: task not found")
	ErrNoAssignee      = errors.New("housekeeping: assignee required")
	ErrNotStartable    = errors.New("housekeeping: task cannot be started in its current status")
	ErrNotCompletable  = errors.New("housekeeping: task cannot be completed in its current status")
	ErrTaskFinished    = errors.New("housekeeping: task already finished")
	ErrScheduleInPast  = errors.New("housekeeping: scheduled time cannot be in the past")
	ErrNoReason        = errors.New("housekeeping: reason required")
	ErrNoDescription   = errors.New("housekeeping: damage description required")
	ErrNegativeCost    = errors.New("housekeeping: repair cost cannot be negative")
	ErrDamageNotFound  = errors.New("housekeeping: damage report not found")
	ErrAlreadyRepaired = errors.New("housekeeping: damage already marked repaired")
)

type TaskID string

type Repository interface {
	ByID(ctx context.Context, id TaskID) (*Task, error)
	Save(ctx context.Context, task *Task) error
	ListByRoom(ctx context.Context, roomID room.RoomID) ([]*Task, error)
	ListOpen(ctx context.Context) ([]*Task, error)
}

// Task is a unit of housekeeping work for a single room. Damage reports are
// owned by the task and mutated only through it.
type Task struct {
	ID            TaskID
	RoomID        room.RoomID
	Kind          Kind
	Status        Status
	Priority      Priority
	ScheduledFor  time.Time
	StartedAt     time.Time
	CompletedAt   time.Time
	AssignedTo    string
	Notes         string
	DamageReports []*DamageReport
	CreatedAt     time.Time
	ModifiedAt    time.Time
	Version       int64
	events.EventRecorder
}

type CreateParams struct {
	ID           TaskID
	RoomID       room.RoomID
	Kind         Kind
	Priority     Priority
	ScheduledFor time.Time
	Notes        string
	CreatedAt    time.Time
}

func New(params CreateParams) (*Task, error) {
	if !params.ScheduledFor.IsZero() && params.ScheduledFor.Before(params.CreatedAt) {
		return nil, ErrScheduleInPast
	}
	task := &Task{
		ID:           params.ID,
		RoomID:       params.RoomID,
		Kind:         params.Kind,
		Status:       StatusPending,
		Priority:     params.Priority,
		ScheduledFor: params.ScheduledFor,
		Notes:        params.Notes,
		CreatedAt:    params.CreatedAt.UTC(),
	}
	task.Record(TaskCreated{TaskID: task.ID, RoomID: task.RoomID, Kind: task.Kind, Priority: task.Priority, At: task.CreatedAt})
	return task, nil
}

func (t *Task) Start(assignedTo string, now time.Time) error {
	if strings.TrimSpace(assignedTo) == "" {
		return ErrNoAssignee
	}
	if !t.Status.CanStart() {
		return fmt.Errorf("%w: %s", ErrNotStartable, t.Status)
	}
	t.Status = StatusInProgress
	t.AssignedTo = assignedTo
	t.StartedAt = now.UTC()
	t.ModifiedAt = t.StartedAt
	t.Record(TaskStarted{TaskID: t.ID, RoomID: t.RoomID, AssignedTo: assignedTo, At: t.StartedAt})
	return nil
}

func (t *Task) Complete(completionNotes string, now time.Time) error {
	if !t.Status.CanComplete() {
		return fmt.Errorf("%w: %s", ErrNotCompletable, t.Status)
	}
	t.Status = StatusCompleted
	t.CompletedAt = now.UTC()
	t.ModifiedAt = t.CompletedAt
	if notes := strings.TrimSpace(completionNotes); notes != "" {
		t.appendNotes("Completed", notes)
	}
	t.Record(TaskCompleted{TaskID: t.ID, RoomID: t.RoomID, AssignedTo: t.AssignedTo, At: t.CompletedAt})
	return nil
}

// ReportDamage attaches a damage report to the task. Damage can be reported
// in any non-terminal state and bumps the priority to urgent.
func (t *Task) ReportDamage(description, reportedBy string, estimatedCost *money.Money, now time.Time) (*DamageReport, error) {
	if strings.TrimSpace(description) == "" {
		return nil, ErrNoDescription
	}
	if estimatedCost != nil && !estimatedCost.IsPositive() && !estimatedCost.IsZero() {
		return nil, ErrNegativeCost
	}
	report := newDamageReport(t.ID, description, reportedBy, estimatedCost, now)
	t.DamageReports = append(t.DamageReports, report)
	if !t.Status.IsTerminal() && t.Priority.Rank() < PriorityUrgent.Rank() {
		t.Priority = PriorityUrgent
	}
	t.ModifiedAt = now.UTC()
	t.Record(DamageReported{TaskID: t.ID, RoomID: t.RoomID, ReportID: report.ID, Description: description, At: t.ModifiedAt})
	return report, nil
}

// MarkDamageRepaired closes a damage report with the actual cost.
func (t *Task) MarkDamageRepaired(reportID string, actualCost *money.Money, notes string, now time.Time) error {
	report := t.damageReport(reportID)
	if report == nil {
		return ErrDamageNotFound
	}
	return report.markRepaired(actualCost, notes, now)
}

func (t *Task) Cancel(reason string, now time.Time) error {
	if strings.TrimSpace(reason) == "" {
		return ErrNoReason
	}
	if t.Status == StatusCompleted {
		return fmt.Errorf("%w: %s", ErrTaskFinished, t.Status)
	}
	t.Status = StatusCancelled
	t.appendNotes("Cancelled", reason)
	t.ModifiedAt = now.UTC()
	t.Record(TaskCancelled{TaskID: t.ID, RoomID: t.RoomID, Reason: reason, At: t.ModifiedAt})
	return nil
}

func (t *Task) Reschedule(newTime, now time.Time) error {
	if newTime.Before(now) {
		return ErrScheduleInPast
	}
	if t.Status.IsTerminal() {
		return fmt.Errorf("%w: %s", ErrTaskFinished, t.Status)
	}
	t.ScheduledFor = newTime.UTC()
	t.ModifiedAt = now.UTC()
	return nil
}

func (t *Task) UpdatePriority(priority Priority, now time.Time) error {
	if t.Status.IsTerminal() {
		return fmt.Errorf("%w: %s", ErrTaskFinished, t.Status)
	}
	t.Priority = priority
	t.ModifiedAt = now.UTC()
	return nil
}

func (t *Task) IsOverdue(now time.Time) bool {
	return !t.ScheduledFor.IsZero() && t.ScheduledFor.Before(now) && !t.Status.IsTerminal()
}

// Duration reports how long the task took, once completed.
func (t *Task) Duration() (time.Duration, bool) {
	if t.StartedAt.IsZero() || t.CompletedAt.IsZero() {
		return 0, false
	}
	return t.CompletedAt.Sub(t.StartedAt), true
}

func (t *Task) HasUnrepairedDamage() bool {
	for _, report := range t.DamageReports {
		if !report.Repaired {
			return true
		}
	}
	return false
}

func (t *Task) appendNotes(label, text string) {
	entry := label + ": " + text
	if t.Notes == "" {
		t.Notes = entry
		return
	}
	t.Notes = t.Notes + "\n" + entry
}

func (t *Task) damageReport(reportID string) *DamageReport {
	for _, report := range t.DamageReports {
		if report.ID == reportID {
			return report
		}
	}
	return nil
}

// DamageReport records damage found while cleaning a room.
type DamageReport struct {
	ID            string
	TaskID        TaskID
	Description   string
	ReportedBy    string
	EstimatedCost *money.Money
	ActualCost    *money.Money
	Repaired      bool
	ReportedAt    time.Time
	RepairedAt    time.Time
	RepairNotes   string
}

func newDamageReport(taskID TaskID, description, reportedBy string, estimatedCost *money.Money, now time.Time) *DamageReport {
	return &DamageReport{
		ID:            uuid.NewString(),
		TaskID:        taskID,
		Description:   description,
		ReportedBy:    reportedBy,
		EstimatedCost: estimatedCost,
		ReportedAt:    now.UTC(),
	}
}

func (r *DamageReport) markRepaired(actualCost *money.Money, notes string, now time.Time) error {
	if r.Repaired {
		return ErrAlreadyRepaired
	}
	r.Repaired = true
	r.ActualCost = actualCost
	r.RepairNotes = notes
	r.RepairedAt = now.UTC()
	return nil
}
