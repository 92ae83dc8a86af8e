package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tradejournal/internal/middleware"
	"github.com/tradejournal/internal/service"
)

// IngestHandler is the server-to-server trade submission surface used by
// trading bots. Unlike the dashboard API it speaks the bare wire shapes
// the connectors expect: {ok, mode} on success, {error} on failure.
type IngestHandler struct {
	tradeService *service.TradeService
}

// NewIngestHandler creates a new IngestHandler
func NewIngestHandler(tradeService *service.TradeService) *IngestHandler {
	return &IngestHandler{
		tradeService: tradeService,
	}
}

// SubmitTrade ingests one trade event and reconciles it against the
// journal: a closing event for a known ticket updates the existing row,
// everything else inserts.
// POST /api/trades
func (h *IngestHandler) SubmitTrade(c *gin.Context) {
	userID := middleware.GetAccountID(c)

	var payload service.TradePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(400, gin.H{"error": "Invalid JSON body"})
		return
	}

	mode, err := h.tradeService.Submit(userID, &payload)
	if err != nil {
		middleware.LogError("[Ingest] persist failed for user %d: %v", userID, err)
		c.JSON(500, gin.H{"error": "Failed to save trade"})
		return
	}

	c.JSON(200, gin.H{"ok": true, "mode": string(mode)})
}

// ListTrades returns the account's most recent trades, newest first.
// GET /api/trades?limit=N (default 50, cap 200)
func (h *IngestHandler) ListTrades(c *gin.Context) {
	userID := middleware.GetAccountID(c)

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil {
		limit = 50
	}

	trades, err := h.tradeService.ListRecent(userID, limit)
	if err != nil {
		middleware.LogError("[Ingest] list failed for user %d: %v", userID, err)
		c.JSON(500, gin.H{"error": "Failed to load trades"})
		return
	}

	c.JSON(200, gin.H{"ok": true, "trades": trades})
}

// RegisterRoutes registers the ingestion routes on the root router with
// API-key authentication
func (h *IngestHandler) RegisterRoutes(router *gin.Engine, apiKeyAuth gin.HandlerFunc) {
	api := router.Group("/api", apiKeyAuth)
	{
		api.POST("/trades", h.SubmitTrade)
		api.GET("/trades", h.ListTrades)
	}
}
