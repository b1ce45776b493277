package v1

import (
	"time"

	"github.com/dmehra2102/prod-golang-projects/opdflow/internal/domain/queue"
	"github.com/dmehra2102/prod-golang-projects/opdflow/internal/livequeue"
	"github.com/dmehra2102/prod-golang-projects/opdflow/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type QueueHandler struct {
	svc          *service.QueueService
	pollInterval time.Duration
}

func NewQueueHandler(svc *service.QueueService, pollInterval time.Duration) *QueueHandler {
	if pollInterval <= 0 {
		pollInterval = livequeue.DefaultPollInterval
	}
	return &QueueHandler{svc: svc, pollInterval: pollInterval}
}

type enqueueRequest struct {
	PatientID     uuid.UUID  `json:"patient_id" binding:"required"`
	DoctorID      uuid.UUID  `json:"doctor_id" binding:"required"`
	Priority      bool       `json:"priority"`
	AppointmentID *uuid.UUID `json:"appointment_id"`
	Notes         string     `json:"notes"`
}

func (h *QueueHandler) Enqueue(c *gin.Context) {
	var req enqueueRequest
	if !bindJSON(c, &req) {
		return
	}

	claims := callerClaims(c)
	entry, err := h.svc.Enqueue(c.Request.Context(), &queue.EnqueueCommand{
		PatientID:     req.PatientID,
		DoctorID:      req.DoctorID,
		Priority:      req.Priority,
		AppointmentID: req.AppointmentID,
		Notes:         req.Notes,
		CreatedBy:     claims.UserID,
	}, claims.UserID, string(claims.Role), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, entry)
}

type transitionRequest struct {
	Status queue.Status `json:"status" binding:"required"`
}

func (h *QueueHandler) Transition(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req transitionRequest
	if !bindJSON(c, &req) {
		return
	}

	claims := callerClaims(c)
	entry, err := h.svc.Transition(c.Request.Context(), &queue.TransitionCommand{
		EntryID:   id,
		NewStatus: req.Status,
		UpdatedBy: claims.UserID,
	}, claims.UserID, string(claims.Role), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, entry)
}

type reorderRequest struct {
	DoctorID   uuid.UUID   `json:"doctor_id" binding:"required"`
	Date       string      `json:"date"`
	OrderedIDs []uuid.UUID `json:"ordered_ids" binding:"required"`
}

func (h *QueueHandler) Reorder(c *gin.Context) {
	var req reorderRequest
	if !bindJSON(c, &req) {
		return
	}

	scope := queue.Scope{DoctorID: req.DoctorID}
	if req.Date != "" {
		d, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			respondError(c, 400, "invalid date: must be YYYY-MM-DD")
			return
		}
		scope.Date = d
	}

	claims := callerClaims(c)
	err := h.svc.Reorder(c.Request.Context(), &queue.ReorderCommand{
		Scope:      scope,
		OrderedIDs: req.OrderedIDs,
		UpdatedBy:  claims.UserID,
	}, claims.UserID, string(claims.Role), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, gin.H{"reordered": len(req.OrderedIDs)})
}

func (h *QueueHandler) List(c *gin.Context) {
	q := &queue.ListQuery{}

	if raw := c.Query("status"); raw != "" {
		s := queue.Status(raw)
		q.Status = &s
	}
	doctorID, ok := parseQueryUUID(c, "doctor_id")
	if !ok {
		return
	}
	q.DoctorID = doctorID
	if raw := c.Query("date"); raw != "" {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondError(c, 400, "invalid date: must be YYYY-MM-DD")
			return
		}
		q.Date = d
	}

	views, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// Polling clients honor the server's configured refetch cadence.
	c.Header("X-Poll-Interval", h.pollInterval.String())
	respondOK(c, views)
}
