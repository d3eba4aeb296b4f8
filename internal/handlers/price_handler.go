package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/arrendamientos-api/internal/models"
	"github.com/sjperalta/arrendamientos-api/internal/services"
)

type PriceHandler struct {
	priceService *services.PriceService
}

func NewPriceHandler(priceService *services.PriceService) *PriceHandler {
	return &PriceHandler{priceService: priceService}
}

// CreatePriceRequest is the body of a quote posted by an ingestion client.
// It may be sent flat or nested under "price".
type CreatePriceRequest struct {
	Date        string          `json:"date" binding:"required" example:"2024-03-08"`
	Source      string          `json:"source" binding:"required" example:"BCR"`
	PricePerTon decimal.Decimal `json:"price_per_ton" swaggertype:"string" example:"251000.00"`
}

// @Summary List Prices
// @Description Get a paginated list of price quotes, newest first
// @Tags Prices
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(50)
// @Param source query string false "Filter by source (BCR, AGD)"
// @Success 200 {object} map[string]interface{}
// @Router /prices [get]
func (h *PriceHandler) Index(c *gin.Context) {
	query := listQuery(c, 50)
	query.Filters["source"] = strings.ToUpper(c.Query("source"))

	quotes, total, err := h.priceService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.PriceQuoteResponse, 0, len(quotes))
	for i := range quotes {
		responses = append(responses, quotes[i].ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{
		"prices":     responses,
		"pagination": pagination(query, total),
	})
}

// @Summary Record Price
// @Description Append one day's quote for a market source
// @Tags Prices
// @Accept json
// @Produce json
// @Param request body CreatePriceRequest true "Quote"
// @Success 201 {object} models.PriceQuoteResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /prices [post]
func (h *PriceHandler) Create(c *gin.Context) {
	var req CreatePriceRequest
	if err := BindNestedOrFlat(c, "price", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Solicitud inválida: " + err.Error()})
		return
	}
	date, err := time.Parse(models.DateLayout, strings.TrimSpace(req.Date))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fecha inválida, use AAAA-MM-DD"})
		return
	}

	quote, err := h.priceService.Record(c.Request.Context(), date, strings.ToUpper(strings.TrimSpace(req.Source)), req.PricePerTon)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"price": quote.ToResponse()})
}
