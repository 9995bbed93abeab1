package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/heatmap-backend-go/internal/models"
	"github.com/jengzang/heatmap-backend-go/internal/service"
	"github.com/jengzang/heatmap-backend-go/pkg/response"
)

// HeatMapHandler handles HTTP requests for heat maps
type HeatMapHandler struct {
	service *service.HeatMapService
}

// NewHeatMapHandler creates a new heat map handler
func NewHeatMapHandler(service *service.HeatMapService) *HeatMapHandler {
	return &HeatMapHandler{service: service}
}

// GetHeatMap handles GET /api/v1/heatmap
func (h *HeatMapHandler) GetHeatMap(c *gin.Context) {
	var cond models.HeatMapCondition
	if err := c.ShouldBindQuery(&cond); err != nil {
		response.BadRequest(c, "Invalid query parameters", err)
		return
	}

	hm, err := h.service.ReadHeatMap(c.Request.Context(), cond)
	if h.readFailed(c, err) {
		return
	}

	response.Success(c, hm)
}

// readFailed writes the error response of a failed read and reports
// whether it did.
func (h *HeatMapHandler) readFailed(c *gin.Context, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, service.ErrInvalidCondition):
		response.BadRequest(c, "Invalid heat map condition", err)
	case errors.Is(err, service.ErrCorruptRow):
		response.Error(c, http.StatusUnprocessableEntity, "Stored rows cannot form a heat map", err)
	default:
		response.InternalError(c, "Failed to read heat map", err)
	}
	return true
}

// GetPercentiles handles GET /api/v1/heatmap/percentiles
func (h *HeatMapHandler) GetPercentiles(c *gin.Context) {
	var cond models.PercentileCondition
	if err := c.ShouldBindQuery(&cond); err != nil {
		response.BadRequest(c, "Invalid query parameters", err)
		return
	}

	columns, err := h.service.ReadPercentiles(c.Request.Context(), cond)
	if h.readFailed(c, err) {
		return
	}

	response.Success(c, gin.H{
		"data":  columns,
		"count": len(columns),
	})
}

// SaveRow handles POST /api/v1/heatmap/rows
func (h *HeatMapHandler) SaveRow(c *gin.Context) {
	var row models.MetricRow
	if err := c.ShouldBindJSON(&row); err != nil {
		response.BadRequest(c, "Invalid request body", err)
		return
	}

	saved, err := h.service.SaveRow(c.Request.Context(), row)
	if errors.Is(err, service.ErrInvalidRow) {
		response.BadRequest(c, "Invalid metric row", err)
		return
	}
	if err != nil {
		response.InternalError(c, "Failed to save metric row", err)
		return
	}

	response.Success(c, saved)
}
