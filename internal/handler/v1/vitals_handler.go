package v1

import (
	"github.com/dmehra2102/prod-golang-projects/opdflow/internal/domain/vitals"
	"github.com/dmehra2102/prod-golang-projects/opdflow/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type VitalsHandler struct {
	svc *service.VitalsService
}

func NewVitalsHandler(svc *service.VitalsService) *VitalsHandler {
	return &VitalsHandler{svc: svc}
}

type recordVitalsRequest struct {
	PatientID    uuid.UUID           `json:"patient_id" binding:"required"`
	QueueEntryID *uuid.UUID          `json:"queue_entry_id"`
	Measurements vitals.Measurements `json:"measurements"`
	Notes        string              `json:"notes"`
}

func (h *VitalsHandler) Record(c *gin.Context) {
	var req recordVitalsRequest
	if !bindJSON(c, &req) {
		return
	}

	claims := callerClaims(c)
	record, err := h.svc.Record(c.Request.Context(), &vitals.RecordCommand{
		PatientID:    req.PatientID,
		QueueEntryID: req.QueueEntryID,
		Measurements: req.Measurements,
		Notes:        req.Notes,
		RecordedBy:   claims.UserID,
	}, claims.UserID, string(claims.Role), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, record)
}

func (h *VitalsHandler) LatestForEntry(c *gin.Context) {
	entryID, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	record, err := h.svc.LatestForEntry(c.Request.Context(), entryID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, record)
}

func (h *VitalsHandler) ListForPatient(c *gin.Context) {
	patientID, ok := parseUUID(c, "patientId")
	if !ok {
		return
	}
	limit := parseQueryInt(c, "limit", 20)

	records, err := h.svc.ListForPatient(c.Request.Context(), patientID, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, records)
}
