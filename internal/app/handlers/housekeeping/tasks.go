package housekeeping

import (
	"context"
	"time"

	"hotelops/internal/app/handlers/support"
	"hotelops/internal/app/outbox"
	"hotelops/internal/app/uow"
	domainhousekeeping "hotelops/internal/domain/housekeeping"
	domainroom "hotelops/internal/domain/room"
	"hotelops/internal/domain/shared/events"
	"hotelops/internal/domain/shared/money"
)

const (
	createTaskKey   = "housekeeping.create_task"
	startTaskKey    = "housekeeping.start_task"
	completeTaskKey = "housekeeping.complete_task"
	cancelTaskKey   = "housekeeping.cancel_task"
	reportDamageKey = "housekeeping.report_damage"
)

type CreateTaskCommand struct {
	CommandID    string
	RoomID       string
	Kind         string
	Priority     string
	ScheduledFor time.Time
	Notes        string
}

func (c CreateTaskCommand) Key() string { return createTaskKey }

type StartTaskCommand struct {
	TaskID     string
	AssignedTo string
}

func (c StartTaskCommand) Key() string { return startTaskKey }

type CompleteTaskCommand struct {
	TaskID string
	Notes  string
}

func (c CompleteTaskCommand) Key() string { return completeTaskKey }

type CancelTaskCommand struct {
	TaskID string
	Reason string
}

func (c CancelTaskCommand) Key() string { return cancelTaskKey }

type ReportDamageCommand struct {
	TaskID        string
	Description   string
	ReportedBy    string
	EstimatedCost *float64
	Currency      string
}

func (c ReportDamageCommand) Key() string { return reportDamageKey }

type TaskResult struct {
	TaskID   string `json:"task_id"`
	RoomID   string `json:"room_id"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
	ReportID string `json:"report_id,omitempty"`
}

// TaskHandler drives the cleaning task lifecycle. Completing a task returns
// the room to service; reporting damage flags the room for repair.
type TaskHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *TaskHandler) HandleCreate(ctx context.Context, cmd CreateTaskCommand) (*TaskResult, error) {
	unit, ctx, err := support.Begin(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Close(ctx)

	rm, err := unit.Rooms().ByID(ctx, domainroom.RoomID(cmd.RoomID))
	if err != nil {
		return nil, err
	}
	kind := domainhousekeeping.KindCheckout
	if cmd.Kind != "" {
		kind, err = domainhousekeeping.ParseKind(cmd.Kind)
		if err != nil {
			return nil, err
		}
	}
	priority := domainhousekeeping.PriorityNormal
	if cmd.Priority != "" {
		priority, err = domainhousekeeping.ParsePriority(cmd.Priority)
		if err != nil {
			return nil, err
		}
	}
	task, err := domainhousekeeping.New(domainhousekeeping.CreateParams{
		ID:           domainhousekeeping.TaskID(cmd.CommandID),
		RoomID:       rm.ID,
		Kind:         kind,
		Priority:     priority,
		ScheduledFor: cmd.ScheduledFor,
		Notes:        cmd.Notes,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Housekeeping().Save(ctx, task); err != nil {
		return nil, err
	}
	if err := h.drain(ctx, &task.EventRecorder); err != nil {
		return nil, err
	}
	if err := unit.Finish(ctx); err != nil {
		return nil, err
	}
	return taskResult(task, ""), nil
}

func (h *TaskHandler) HandleStart(ctx context.Context, cmd StartTaskCommand) (*TaskResult, error) {
	return h.mutate(ctx, domainhousekeeping.TaskID(cmd.TaskID), func(ctx context.Context, unit *support.Unit, task *domainhousekeeping.Task, now time.Time) (string, error) {
		return "", task.Start(cmd.AssignedTo, now)
	})
}

func (h *TaskHandler) HandleComplete(ctx context.Context, cmd CompleteTaskCommand) (*TaskResult, error) {
	return h.mutate(ctx, domainhousekeeping.TaskID(cmd.TaskID), func(ctx context.Context, unit *support.Unit, task *domainhousekeeping.Task, now time.Time) (string, error) {
		if err := task.Complete(cmd.Notes, now); err != nil {
			return "", err
		}
		rm, err := unit.Rooms().ByID(ctx, task.RoomID)
		if err != nil {
			return "", err
		}
		rm.MarkCleaned(now)
		if task.HasUnrepairedDamage() {
			rm.UpdateCondition(domainroom.ConditionNeedsRepair, now)
		}
		return "", unit.Rooms().Save(ctx, rm)
	})
}

func (h *TaskHandler) HandleCancel(ctx context.Context, cmd CancelTaskCommand) (*TaskResult, error) {
	return h.mutate(ctx, domainhousekeeping.TaskID(cmd.TaskID), func(ctx context.Context, unit *support.Unit, task *domainhousekeeping.Task, now time.Time) (string, error) {
		return "", task.Cancel(cmd.Reason, now)
	})
}

func (h *TaskHandler) HandleReportDamage(ctx context.Context, cmd ReportDamageCommand) (*TaskResult, error) {
	return h.mutate(ctx, domainhousekeeping.TaskID(cmd.TaskID), func(ctx context.Context, unit *support.Unit, task *domainhousekeeping.Task, now time.Time) (string, error) {
		var estimated *money.Money
		if cmd.EstimatedCost != nil {
			currency, err := money.ParseCurrency(cmd.Currency)
			if err != nil {
				return "", err
			}
			cost, err := money.NewFromFloat(*cmd.EstimatedCost, currency)
			if err != nil {
				return "", err
			}
			estimated = &cost
		}
		report, err := task.ReportDamage(cmd.Description, cmd.ReportedBy, estimated, now)
		if err != nil {
			return "", err
		}
		rm, err := unit.Rooms().ByID(ctx, task.RoomID)
		if err != nil {
			return "", err
		}
		rm.UpdateCondition(domainroom.ConditionNeedsRepair, now)
		if err := unit.Rooms().Save(ctx, rm); err != nil {
			return "", err
		}
		return report.ID, nil
	})
}

func (h *TaskHandler) mutate(
	ctx context.Context,
	id domainhousekeeping.TaskID,
	apply func(ctx context.Context, unit *support.Unit, task *domainhousekeeping.Task, now time.Time) (string, error),
) (*TaskResult, error) {
	unit, ctx, err := support.Begin(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Close(ctx)

	task, err := unit.Housekeeping().ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	reportID, err := apply(ctx, unit, task, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err := unit.Housekeeping().Save(ctx, task); err != nil {
		return nil, err
	}
	if err := h.drain(ctx, &task.EventRecorder); err != nil {
		return nil, err
	}
	if err := unit.Finish(ctx); err != nil {
		return nil, err
	}
	return taskResult(task, reportID), nil
}

func (h *TaskHandler) drain(ctx context.Context, recorder *events.EventRecorder) error {
	pending := recorder.PendingEvents()
	recorder.ClearEvents()
	encoder := h.Encoder
	if encoder == nil {
		encoder = outbox.JSONEventEncoder{}
	}
	return outbox.RecordDomainEvents(ctx, h.Outbox, encoder, pending)
}

func taskResult(task *domainhousekeeping.Task, reportID string) *TaskResult {
	return &TaskResult{
		TaskID:   string(task.ID),
		RoomID:   string(task.RoomID),
		Status:   string(task.Status),
		Priority: string(task.Priority),
		ReportID: reportID,
	}
}
