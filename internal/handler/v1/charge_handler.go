package v1

import (
	"github.com/dmehra2102/prod-golang-projects/opdflow/internal/domain/charge"
	"github.com/dmehra2102/prod-golang-projects/opdflow/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ChargeHandler struct {
	svc *service.ChargeService
}

func NewChargeHandler(svc *service.ChargeService) *ChargeHandler {
	return &ChargeHandler{svc: svc}
}

type addChargeRequest struct {
	PatientID   uuid.UUID       `json:"patient_id" binding:"required"`
	Description string          `json:"description" binding:"required"`
	UnitAmount  decimal.Decimal `json:"unit_amount" binding:"required"`
	Quantity    int             `json:"quantity"`
}

func (h *ChargeHandler) Add(c *gin.Context) {
	admissionID, ok := parseUUID(c, "admissionId")
	if !ok {
		return
	}
	var req addChargeRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	claims := callerClaims(c)
	entry, err := h.svc.AddCharge(c.Request.Context(), &charge.AddChargeCommand{
		PatientID:   req.PatientID,
		AdmissionID: admissionID,
		Description: req.Description,
		UnitAmount:  req.UnitAmount,
		Quantity:    req.Quantity,
		CreatedBy:   claims.UserID,
	}, claims.UserID, string(claims.Role), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, entry)
}

func (h *ChargeHandler) List(c *gin.Context) {
	admissionID, ok := parseUUID(c, "admissionId")
	if !ok {
		return
	}
	patientID, ok := parseQueryUUID(c, "patient_id")
	if !ok {
		return
	}
	if patientID == nil {
		respondError(c, 400, "patient_id query parameter is required")
		return
	}

	list, err := h.svc.ListCharges(c.Request.Context(), *patientID, admissionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, list)
}

func (h *ChargeHandler) Remove(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	claims := callerClaims(c)
	if err := h.svc.RemoveCharge(c.Request.Context(), id, claims.UserID, string(claims.Role), c.ClientIP()); err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, gin.H{"deleted": id})
}

type markBilledRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required"`
}

func (h *ChargeHandler) MarkBilled(c *gin.Context) {
	var req markBilledRequest
	if !bindJSON(c, &req) {
		return
	}

	claims := callerClaims(c)
	if err := h.svc.MarkBilled(c.Request.Context(), req.IDs, claims.UserID, string(claims.Role), c.ClientIP()); err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, gin.H{"billed": len(req.IDs)})
}
