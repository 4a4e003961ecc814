package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"hotelops/internal/app/commands"
	"hotelops/internal/app/dto"
	housekeepingapp "hotelops/internal/app/handlers/housekeeping"
	viewsapp "hotelops/internal/app/handlers/views"
	"hotelops/internal/app/queries"
)

type HousekeepingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type createTaskRequest struct {
	RoomID       string    `json:"room_id"`
	Kind         string    `json:"kind"`
	Priority     string    `json:"priority"`
	ScheduledFor time.Time `json:"scheduled_for"`
	Notes        string    `json:"notes"`
}

func (h HousekeepingHandler) CreateTask(c *gin.Context) {
	if _, ok := requireStaff(c); !ok {
		return
	}
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := housekeepingapp.CreateTaskCommand{
		CommandID:    generateCommandID(),
		RoomID:       req.RoomID,
		Kind:         req.Kind,
		Priority:     req.Priority,
		ScheduledFor: req.ScheduledFor,
		Notes:        req.Notes,
	}
	result, err := commands.Dispatch[housekeepingapp.CreateTaskCommand, *housekeepingapp.TaskResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

type startTaskRequest struct {
	AssignedTo string `json:"assigned_to"`
}

func (h HousekeepingHandler) StartTask(c *gin.Context) {
	if _, ok := requireStaff(c); !ok {
		return
	}
	var req startTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := housekeepingapp.StartTaskCommand{TaskID: c.Param("id"), AssignedTo: req.AssignedTo}
	result, err := commands.Dispatch[housekeepingapp.StartTaskCommand, *housekeepingapp.TaskResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type completeTaskRequest struct {
	Notes string `json:"notes"`
}

func (h HousekeepingHandler) CompleteTask(c *gin.Context) {
	if _, ok := requireStaff(c); !ok {
		return
	}
	var req completeTaskRequest
	_ = c.ShouldBindJSON(&req)
	cmd := housekeepingapp.CompleteTaskCommand{TaskID: c.Param("id"), Notes: req.Notes}
	result, err := commands.Dispatch[housekeepingapp.CompleteTaskCommand, *housekeepingapp.TaskResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type cancelTaskRequest struct {
	Reason string `json:"reason"`
}

func (h HousekeepingHandler) CancelTask(c *gin.Context) {
	if _, ok := requireStaff(c); !ok {
		return
	}
	var req cancelTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := housekeepingapp.CancelTaskCommand{TaskID: c.Param("id"), Reason: req.Reason}
	result, err := commands.Dispatch[housekeepingapp.CancelTaskCommand, *housekeepingapp.TaskResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type reportDamageRequest struct {
	Description   string   `json:"description"`
	ReportedBy    string   `json:"reported_by"`
	EstimatedCost *float64 `json:"estimated_cost,omitempty"`
	Currency      string   `json:"currency"`
}

func (h HousekeepingHandler) ReportDamage(c *gin.Context) {
	if _, ok := requireStaff(c); !ok {
		return
	}
	var req reportDamageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := housekeepingapp.ReportDamageCommand{
		TaskID:        c.Param("id"),
		Description:   req.Description,
		ReportedBy:    req.ReportedBy,
		EstimatedCost: req.EstimatedCost,
		Currency:      req.Currency,
	}
	result, err := commands.Dispatch[housekeepingapp.ReportDamageCommand, *housekeepingapp.TaskResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h HousekeepingHandler) ListTasks(c *gin.Context) {
	if _, ok := requireStaff(c); !ok {
		return
	}
	query := viewsapp.ListCleaningTasksQuery{
		RoomID:   c.Query("room_id"),
		OpenOnly: c.Query("open") == "true",
	}
	result, err := queries.Ask[viewsapp.ListCleaningTasksQuery, *dto.CleaningTaskCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ HousekeepingHTTP = HousekeepingHandler{}
