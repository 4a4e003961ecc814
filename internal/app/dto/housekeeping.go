package dto

import (
	"time"

	domainhousekeeping "hotelops/internal/domain/housekeeping"
)

type DamageReportSummary struct {
	ID            string    `json:"id"`
	Description   string    `json:"description"`
	ReportedBy    string    `json:"reported_by"`
	EstimatedCost *MoneyDTO `json:"estimated_cost,omitempty"`
	ActualCost    *MoneyDTO `json:"actual_cost,omitempty"`
	Repaired      bool      `json:"repaired"`
	ReportedAt    time.Time `json:"reported_at"`
}

type CleaningTaskSummary struct {
	ID            string                `json:"id"`
	RoomID        string                `json:"room_id"`
	Kind          string                `json:"kind"`
	Status        string                `json:"status"`
	Priority      string                `json:"priority"`
	ScheduledFor  *time.Time            `json:"scheduled_for,omitempty"`
	AssignedTo    string                `json:"assigned_to,omitempty"`
	Notes         string                `json:"notes,omitempty"`
	DamageReports []DamageReportSummary `json:"damage_reports,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
}

type CleaningTaskCollection struct {
	Items []CleaningTaskSummary `json:"items"`
}

func MapCleaningTaskSummary(task *domainhousekeeping.Task) CleaningTaskSummary {
	reports := make([]DamageReportSummary, 0, len(task.DamageReports))
	for _, report := range task.DamageReports {
		summary := DamageReportSummary{
			ID:          report.ID,
			Description: report.Description,
			ReportedBy:  report.ReportedBy,
			Repaired:    report.Repaired,
			ReportedAt:  report.ReportedAt,
		}
		if report.EstimatedCost != nil {
			cost := MapMoney(*report.EstimatedCost)
			summary.EstimatedCost = &cost
		}
		if report.ActualCost != nil {
			cost := MapMoney(*report.ActualCost)
			summary.ActualCost = &cost
		}
		reports = append(reports, summary)
	}
	summary := CleaningTaskSummary{
		ID:            string(task.ID),
		RoomID:        string(task.RoomID),
		Kind:          string(task.Kind),
		Status:        string(task.Status),
		Priority:      string(task.Priority),
		AssignedTo:    task.AssignedTo,
		Notes:         task.Notes,
		DamageReports: reports,
		CreatedAt:     task.CreatedAt,
	}
	if !task.ScheduledFor.IsZero() {
		t := task.ScheduledFor
		summary.ScheduledFor = &t
	}
	return summary
}
