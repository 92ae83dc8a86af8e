package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tradejournal/internal/middleware"
	"github.com/tradejournal/internal/service"
	"github.com/tradejournal/pkg/response"
)

// StatsHandler serves the dashboard's aggregate views
type StatsHandler struct {
	statsService *service.StatsService
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(statsService *service.StatsService) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
	}
}

// Summary returns the headline stats block
// GET /api/v1/stats/summary
func (h *StatsHandler) Summary(c *gin.Context) {
	userID := middleware.GetUserID(c)

	summary, err := h.statsService.Summary(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c, "failed to compute summary")
		return
	}

	response.Success(c, summary)
}

// EquityCurve returns the cumulative PnL curve
// GET /api/v1/stats/equity
func (h *StatsHandler) EquityCurve(c *gin.Context) {
	userID := middleware.GetUserID(c)

	points, err := h.statsService.EquityCurve(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c, "failed to compute equity curve")
		return
	}

	response.Success(c, points)
}

// PairBreakdown returns per-instrument aggregates
// GET /api/v1/stats/pairs
func (h *StatsHandler) PairBreakdown(c *gin.Context) {
	userID := middleware.GetUserID(c)

	stats, err := h.statsService.PairBreakdown(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c, "failed to compute pair breakdown")
		return
	}

	response.Success(c, stats)
}

// WeekdayBreakdown returns per-weekday aggregates
// GET /api/v1/stats/weekdays
func (h *StatsHandler) WeekdayBreakdown(c *gin.Context) {
	userID := middleware.GetUserID(c)

	stats, err := h.statsService.WeekdayBreakdown(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c, "failed to compute weekday breakdown")
		return
	}

	response.Success(c, stats)
}

// Calendar returns the daily PnL cells for one month. Defaults to the
// current month.
// GET /api/v1/stats/calendar?year=2024&month=3
func (h *StatsHandler) Calendar(c *gin.Context) {
	userID := middleware.GetUserID(c)

	now := time.Now().UTC()
	year, err := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(now.Year())))
	if err != nil {
		response.BadRequest(c, "invalid year")
		return
	}
	month, err := strconv.Atoi(c.DefaultQuery("month", strconv.Itoa(int(now.Month()))))
	if err != nil || month < 1 || month > 12 {
		response.BadRequest(c, "invalid month")
		return
	}

	days, err := h.statsService.Calendar(c.Request.Context(), userID, year, time.Month(month))
	if err != nil {
		response.InternalError(c, "failed to compute calendar")
		return
	}

	response.Success(c, days)
}

// RegisterRoutes registers stats routes
func (h *StatsHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	stats := rg.Group("/stats", authMiddleware)
	{
		stats.GET("/summary", h.Summary)
		stats.GET("/equity", h.EquityCurve)
		stats.GET("/pairs", h.PairBreakdown)
		stats.GET("/weekdays", h.WeekdayBreakdown)
		stats.GET("/calendar", h.Calendar)
	}
}
