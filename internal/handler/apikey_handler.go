package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tradejournal/internal/middleware"
	"github.com/tradejournal/internal/repository"
	"github.com/tradejournal/internal/service"
	"github.com/tradejournal/pkg/keygen"
	"github.com/tradejournal/pkg/response"
)

// APIKeyHandler handles API key lifecycle requests
type APIKeyHandler struct {
	apiKeyService *service.APIKeyService
}

// NewAPIKeyHandler creates a new APIKeyHandler
func NewAPIKeyHandler(apiKeyService *service.APIKeyService) *APIKeyHandler {
	return &APIKeyHandler{
		apiKeyService: apiKeyService,
	}
}

// CreateKey generates a new API key. The full secret appears in this
// response only; every later listing shows the masked form.
// POST /api/v1/keys
func (h *APIKeyHandler) CreateKey(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req service.CreateKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	key, err := h.apiKeyService.CreateKey(userID, &req)
	if err != nil {
		response.InternalError(c, "failed to create api key")
		return
	}

	response.Created(c, gin.H{
		"id":         key.ID,
		"name":       key.Name,
		"key":        key.Key,
		"masked_key": keygen.Mask(key.Key),
		"created_at": key.CreatedAt,
	})
}

// ListKeys lists the user's API keys with masked secrets
// GET /api/v1/keys
func (h *APIKeyHandler) ListKeys(c *gin.Context) {
	userID := middleware.GetUserID(c)

	keys, err := h.apiKeyService.ListKeys(userID)
	if err != nil {
		response.InternalError(c, "failed to load api keys")
		return
	}

	response.Success(c, keys)
}

// RevokeKey permanently revokes an API key
// DELETE /api/v1/keys/:id
func (h *APIKeyHandler) RevokeKey(c *gin.Context) {
	userID := middleware.GetUserID(c)

	keyID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid key id")
		return
	}

	if err := h.apiKeyService.RevokeKey(userID, uint(keyID)); err != nil {
		if errors.Is(err, repository.ErrAPIKeyNotFound) {
			response.NotFound(c, "api key not found or already revoked")
			return
		}
		response.InternalError(c, "failed to revoke api key")
		return
	}

	response.Success(c, gin.H{"revoked": keyID})
}

// RegisterRoutes registers API key routes
func (h *APIKeyHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	keys := rg.Group("/keys", authMiddleware)
	{
		keys.POST("", h.CreateKey)
		keys.GET("", h.ListKeys)
		keys.DELETE("/:id", h.RevokeKey)
	}
}
