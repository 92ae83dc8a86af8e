package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tradejournal/internal/service"
)

const (
	// ContextKeyAccountID is the key for the API-key-resolved user ID
	// in gin context
	ContextKeyAccountID = "api_account_id"
)

// APIKeyAuthMiddleware authenticates server-to-server trade submissions.
// The key is taken from `Authorization: Bearer <key>` or from a
// dedicated `x-api-key` header. Unknown and revoked keys are both a 401;
// the response does not say which, so a stolen key cannot be probed for
// liveness.
//
// Responses here use the ingestion endpoint's bare wire shape, not the
// dashboard envelope: the callers are bots, not the frontend.
func APIKeyAuthMiddleware(apiKeyService *service.APIKeyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawKey := extractAPIKey(c)
		if rawKey == "" {
			c.JSON(401, gin.H{"error": "Missing API key"})
			c.Abort()
			return
		}

		userID, err := apiKeyService.Resolve(rawKey)
		if err != nil {
			if errors.Is(err, service.ErrAPIKeyInvalid) || errors.Is(err, service.ErrAPIKeyRevoked) {
				c.JSON(401, gin.H{"error": "Invalid or revoked API key"})
				c.Abort()
				return
			}
			LogError("[Ingest] API key lookup failed: %v", err)
			c.JSON(500, gin.H{"error": "Unexpected server error"})
			c.Abort()
			return
		}

		c.Set(ContextKeyAccountID, userID)
		c.Next()
	}
}

func extractAPIKey(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
			return strings.TrimSpace(authHeader[len("bearer "):])
		}
	}
	return strings.TrimSpace(c.GetHeader("x-api-key"))
}

// GetAccountID retrieves the API-key-resolved user ID from gin context
func GetAccountID(c *gin.Context) uint {
	userID, exists := c.Get(ContextKeyAccountID)
	if !exists {
		return 0
	}
	return userID.(uint)
}
