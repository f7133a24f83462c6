package handlers

import (
	"net/http"

	"bookmybus/internal/domain"
	"bookmybus/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

type profileRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

type roleRequest struct {
	Role string `json:"role" binding:"required,oneof=user admin"`
}

// PUT /api/users/profile
func (h Handler) UpdateProfile(c *gin.Context) {
	var req profileRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	u, err := h.authService(c).UpdateProfile(c.Request.Context(), middleware.Requester(c), req.Name, req.Phone)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// GET /api/users/admin/all
func (h Handler) ListUsers(c *gin.Context) {
	users, err := h.userService(c).List(c.Request.Context(), middleware.Requester(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// PUT /api/users/admin/:id/role
func (h Handler) ChangeUserRole(c *gin.Context) {
	id, ok := paramID(c, "User")
	if !ok {
		return
	}
	var req roleRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	u, err := h.userService(c).ChangeRole(c.Request.Context(), middleware.Requester(c), id, domain.Role(req.Role))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// DELETE /api/users/admin/:id
func (h Handler) DeleteUser(c *gin.Context) {
	id, ok := paramID(c, "User")
	if !ok {
		return
	}
	if err := h.userService(c).Delete(c.Request.Context(), middleware.Requester(c), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User removed"})
}
