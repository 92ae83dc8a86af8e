package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tradejournal/internal/repository"
	"github.com/tradejournal/internal/service"
	"github.com/tradejournal/pkg/response"
)

// AdminHandler handles the early-access approval workflow
type AdminHandler struct {
	authService *service.AuthService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(authService *service.AuthService) *AdminHandler {
	return &AdminHandler{
		authService: authService,
	}
}

// ListUsers lists all registered users
// GET /api/v1/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.authService.ListUsers()
	if err != nil {
		response.InternalError(c, "failed to load users")
		return
	}

	response.Success(c, users)
}

// SetApproval approves or unapproves a user
// PUT /api/v1/admin/users/:id/approval
func (h *AdminHandler) SetApproval(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	var req struct {
		Approved *bool `json:"approved" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.authService.SetApproval(uint(userID), *req.Approved); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		response.InternalError(c, "failed to update approval")
		return
	}

	response.Success(c, gin.H{"id": userID, "approved": *req.Approved})
}

// RegisterRoutes registers admin routes behind auth + admin middleware
func (h *AdminHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware, adminMiddleware gin.HandlerFunc) {
	admin := rg.Group("/admin", authMiddleware, adminMiddleware)
	{
		admin.GET("/users", h.ListUsers)
		admin.PUT("/users/:id/approval", h.SetApproval)
	}
}
