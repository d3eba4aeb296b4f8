package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/arrendamientos-api/internal/models"
	"github.com/sjperalta/arrendamientos-api/internal/services"
)

type LeaseHandler struct {
	leaseService    *services.LeaseService
	scheduleService *services.ScheduleService
	paymentService  *services.PaymentService
}

func NewLeaseHandler(leaseService *services.LeaseService, scheduleService *services.ScheduleService, paymentService *services.PaymentService) *LeaseHandler {
	return &LeaseHandler{
		leaseService:    leaseService,
		scheduleService: scheduleService,
		paymentService:  paymentService,
	}
}

// @Summary Get Lease
// @Description Get a lease with its participations
// @Tags Leases
// @Produce json
// @Param lease_id path int true "Lease ID"
// @Success 200 {object} models.LeaseResponse
// @Failure 404 {object} map[string]string
// @Router /leases/{lease_id} [get]
func (h *LeaseHandler) Show(c *gin.Context) {
	id, ok := paramID(c, "lease_id")
	if !ok {
		return
	}
	lease, err := h.leaseService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lease": lease.ToResponse()})
}

// @Summary Generate Schedule
// @Description Generate every installment of an active lease. A lease can only be scheduled once.
// @Tags Leases
// @Produce json
// @Param lease_id path int true "Lease ID"
// @Success 201 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /leases/{lease_id}/schedule [post]
func (h *LeaseHandler) Schedule(c *gin.Context) {
	id, ok := paramID(c, "lease_id")
	if !ok {
		return
	}
	payments, err := h.scheduleService.Generate(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.PaymentResponse, 0, len(payments))
	for i := range payments {
		responses = append(responses, payments[i].ToResponse())
	}
	c.JSON(http.StatusCreated, gin.H{"payments": responses, "message": "Cuotas generadas"})
}

// @Summary Cancel Lease
// @Description Cancel a lease and every unpaid installment. Paid installments are kept.
// @Tags Leases
// @Produce json
// @Param lease_id path int true "Lease ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /leases/{lease_id}/cancel [post]
func (h *LeaseHandler) Cancel(c *gin.Context) {
	id, ok := paramID(c, "lease_id")
	if !ok {
		return
	}
	lease, cancelled, err := h.leaseService.Cancel(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"lease":              lease.ToResponse(),
		"payments_cancelled": cancelled,
		"message":            "Arrendamiento cancelado",
	})
}

// @Summary List Lease Payments
// @Description Get a paginated list of a lease's installments in due date order
// @Tags Leases
// @Produce json
// @Param lease_id path int true "Lease ID"
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(50)
// @Param status query string false "Filter by status"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /leases/{lease_id}/payments [get]
func (h *LeaseHandler) Payments(c *gin.Context) {
	id, ok := paramID(c, "lease_id")
	if !ok {
		return
	}
	query := listQuery(c, 50)
	query.Filters["status"] = c.Query("status")

	payments, total, err := h.paymentService.ListByLease(c.Request.Context(), id, query)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.PaymentResponse, 0, len(payments))
	for i := range payments {
		responses = append(responses, payments[i].ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{
		"payments":   responses,
		"pagination": pagination(query, total),
	})
}
