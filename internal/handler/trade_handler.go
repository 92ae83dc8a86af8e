package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tradejournal/internal/middleware"
	"github.com/tradejournal/internal/repository"
	"github.com/tradejournal/internal/service"
	"github.com/tradejournal/pkg/response"
)

// TradeHandler handles the dashboard's trade API requests
type TradeHandler struct {
	tradeService *service.TradeService
}

// NewTradeHandler creates a new TradeHandler
func NewTradeHandler(tradeService *service.TradeService) *TradeHandler {
	return &TradeHandler{
		tradeService: tradeService,
	}
}

// ListTrades returns one page of the user's trades, newest first
// GET /api/v1/trades
func (h *TradeHandler) ListTrades(c *gin.Context) {
	userID := middleware.GetUserID(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	trades, total, err := h.tradeService.ListPaginated(userID, page, pageSize)
	if err != nil {
		response.InternalError(c, "failed to load trades")
		return
	}

	response.SuccessPaginated(c, trades, total, page, pageSize)
}

// CreateTrade records a manually entered trade
// POST /api/v1/trades
func (h *TradeHandler) CreateTrade(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req service.ManualTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	trade, err := h.tradeService.CreateManual(userID, &req)
	if err != nil {
		response.InternalError(c, "failed to save trade")
		return
	}

	response.Created(c, trade)
}

// DeleteTrade removes one of the user's trades
// DELETE /api/v1/trades/:id
func (h *TradeHandler) DeleteTrade(c *gin.Context) {
	userID := middleware.GetUserID(c)

	tradeID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid trade id")
		return
	}

	if err := h.tradeService.Delete(userID, uint(tradeID)); err != nil {
		if errors.Is(err, repository.ErrTradeNotFound) {
			response.NotFound(c, "trade not found")
			return
		}
		response.InternalError(c, "failed to delete trade")
		return
	}

	response.Success(c, gin.H{"deleted": tradeID})
}

// RegisterRoutes registers trade routes
func (h *TradeHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	trades := rg.Group("/trades", authMiddleware)
	{
		trades.GET("", h.ListTrades)
		trades.POST("", h.CreateTrade)
		trades.DELETE("/:id", h.DeleteTrade)
	}
}
