package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/polasekp/strats/internal/core/ports"
	"github.com/polasekp/strats/internal/core/services"
)

type StatsHandler struct {
	statsService *services.StatsService
	logger       ports.LoggerPort
}

func NewStatsHandler(statsService *services.StatsService, logger ports.LoggerPort) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
		logger:       logger,
	}
}

func (h *StatsHandler) GetWeekStats(c *gin.Context) {
	stats, err := h.statsService.WeekStats(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to compute week stats", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusInternalServerError, "Failed to compute stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *StatsHandler) GetYearStats(c *gin.Context) {
	stats, err := h.statsService.YearStats(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to compute year stats", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusInternalServerError, "Failed to compute stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *StatsHandler) GetSeasonStats(c *gin.Context) {
	stats, err := h.statsService.SeasonStats(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to compute season stats", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusInternalServerError, "Failed to compute stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *StatsHandler) GetTagYearReport(c *gin.Context) {
	tagName := c.Param("tag")
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid year")
		return
	}

	report, err := h.statsService.TagYearReport(c.Request.Context(), tagName, year)
	if err != nil {
		h.logger.Error("Failed to build tag report", map[string]interface{}{
			"error": err.Error(),
			"tag":   tagName,
			"year":  year,
		})
		newErrorResponse(c, http.StatusInternalServerError, "Failed to build report")
		return
	}
	c.JSON(http.StatusOK, report)
}
