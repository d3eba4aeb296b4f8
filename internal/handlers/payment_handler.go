package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/arrendamientos-api/internal/models"
	"github.com/sjperalta/arrendamientos-api/internal/services"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// @Summary List Payments
// @Description Get a paginated list of installments across leases in due date order
// @Tags Payments
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(50)
// @Param status query string false "Filter by status"
// @Param landlord_id query int false "Filter by landlord"
// @Param lease_id query int false "Filter by lease"
// @Param due_month query string false "Due month (YYYY-MM)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /payments [get]
func (h *PaymentHandler) Index(c *gin.Context) {
	query := listQuery(c, 50)
	for _, key := range []string{"status", "landlord_id", "lease_id", "due_month"} {
		query.Filters[key] = c.Query(key)
	}

	payments, total, err := h.paymentService.List(c.Request.Context(), query)
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

// @Summary Payments Due Summary
// @Description Count and total the installments due in a month, grouped by tenant
// @Tags Payments
// @Produce json
// @Param month query string false "Month (YYYY-MM), defaults to the current one"
// @Param status query string false "Comma separated statuses, defaults to pending,overdue"
// @Success 200 {object} services.DueSummary
// @Failure 400 {object} map[string]string
// @Router /payments/summary [get]
func (h *PaymentHandler) Summary(c *gin.Context) {
	var statuses []string
	if raw := c.Query("status"); raw != "" {
		for _, status := range strings.Split(raw, ",") {
			statuses = append(statuses, strings.TrimSpace(status))
		}
	}

	summary, err := h.paymentService.SummarizeDue(c.Request.Context(), c.Query("month"), statuses)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// @Summary Get Payment
// @Description Get a payment by ID
// @Tags Payments
// @Produce json
// @Param payment_id path int true "Payment ID"
// @Success 200 {object} models.PaymentResponse
// @Failure 404 {object} map[string]string
// @Router /payments/{payment_id} [get]
func (h *PaymentHandler) Show(c *gin.Context) {
	id, ok := paramID(c, "payment_id")
	if !ok {
		return
	}
	payment, err := h.paymentService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": payment.ToResponse()})
}

// @Summary Price Payment
// @Description Price a quantity-based installment from the market average of its averaging policy
// @Tags Payments
// @Produce json
// @Param payment_id path int true "Payment ID"
// @Success 200 {object} models.PaymentResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /payments/{payment_id}/price [post]
func (h *PaymentHandler) Price(c *gin.Context) {
	id, ok := paramID(c, "payment_id")
	if !ok {
		return
	}
	payment, err := h.paymentService.PriceInstallment(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": payment.ToResponse(), "message": "Pago cotizado"})
}

// @Summary Invoice Payment
// @Description Issue the invoice for a payment, withholding tax when the landlord is not exempt, and mark it paid
// @Tags Payments
// @Produce json
// @Param payment_id path int true "Payment ID"
// @Success 201 {object} models.InvoiceResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /payments/{payment_id}/invoice [post]
func (h *PaymentHandler) Invoice(c *gin.Context) {
	id, ok := paramID(c, "payment_id")
	if !ok {
		return
	}
	invoice, err := h.paymentService.Invoice(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"invoice": invoice.ToResponse(), "message": "Pago facturado"})
}

// @Summary Get Payment Invoice
// @Description Get the invoice issued for a payment
// @Tags Payments
// @Produce json
// @Param payment_id path int true "Payment ID"
// @Success 200 {object} models.InvoiceResponse
// @Failure 404 {object} map[string]string
// @Router /payments/{payment_id}/invoice [get]
func (h *PaymentHandler) ShowInvoice(c *gin.Context) {
	id, ok := paramID(c, "payment_id")
	if !ok {
		return
	}
	invoice, err := h.paymentService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": invoice.ToResponse()})
}

// @Summary Cancel Payment
// @Description Cancel a pending or overdue payment
// @Tags Payments
// @Produce json
// @Param payment_id path int true "Payment ID"
// @Success 200 {object} models.PaymentResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /payments/{payment_id}/cancel [post]
func (h *PaymentHandler) Cancel(c *gin.Context) {
	id, ok := paramID(c, "payment_id")
	if !ok {
		return
	}
	payment, err := h.paymentService.Cancel(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": payment.ToResponse(), "message": "Pago cancelado"})
}

// @Summary Payment Quotes
// @Description Get the price quotes averaged to price a payment
// @Tags Payments
// @Produce json
// @Param payment_id path int true "Payment ID"
// @Success 200 {array} models.PriceQuoteResponse
// @Failure 404 {object} map[string]string
// @Router /payments/{payment_id}/quotes [get]
func (h *PaymentHandler) Quotes(c *gin.Context) {
	id, ok := paramID(c, "payment_id")
	if !ok {
		return
	}
	quotes, err := h.paymentService.Quotes(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.PriceQuoteResponse, 0, len(quotes))
	for i := range quotes {
		responses = append(responses, quotes[i].ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"quotes": responses})
}
