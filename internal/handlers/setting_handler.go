package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/arrendamientos-api/internal/services"
)

type SettingHandler struct {
	settingService *services.SettingService
}

func NewSettingHandler(settingService *services.SettingService) *SettingHandler {
	return &SettingHandler{settingService: settingService}
}

// UpdateSettingRequest is the body for writing a setting
type UpdateSettingRequest struct {
	Value string `json:"value" binding:"required" example:"67000.00"`
}

// @Summary List Settings
// @Tags Settings
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /settings [get]
func (h *SettingHandler) Index(c *gin.Context) {
	settings, err := h.settingService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// @Summary Get Setting
// @Tags Settings
// @Produce json
// @Param key path string true "Setting key" example(MINIMUM_TAXABLE_BASE)
// @Success 200 {object} models.Setting
// @Failure 404 {object} map[string]string
// @Router /settings/{key} [get]
func (h *SettingHandler) Show(c *gin.Context) {
	setting, err := h.settingService.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"setting": setting})
}

// @Summary Update Setting
// @Description Create or replace a setting. MINIMUM_TAXABLE_BASE must be a non-negative amount.
// @Tags Settings
// @Accept json
// @Produce json
// @Param key path string true "Setting key"
// @Param request body UpdateSettingRequest true "Value"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /settings/{key} [put]
func (h *SettingHandler) Update(c *gin.Context) {
	var req UpdateSettingRequest
	if err := BindNestedOrFlat(c, "setting", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Solicitud inválida: " + err.Error()})
		return
	}
	key := c.Param("key")
	if err := h.settingService.Set(c.Request.Context(), key, req.Value); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "value": req.Value, "message": "Configuración actualizada"})
}
