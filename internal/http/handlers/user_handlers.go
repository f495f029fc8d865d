package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Jonah-Douglas/Campfire/domain"
	"github.com/Jonah-Douglas/Campfire/internal/http/middleware"
)

// UserHandlers handles profile and user-management HTTP requests
type UserHandlers struct {
	userSvc domain.UserService
}

// NewUserHandlers creates new user handlers
func NewUserHandlers(userSvc domain.UserService) *UserHandlers {
	return &UserHandlers{userSvc: userSvc}
}

// CompleteProfileRequest carries the onboarding profile fields
type CompleteProfileRequest struct {
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"required,max=100"`
	Email     string `json:"email" binding:"required,email"`
}

// UpdateUserRequest carries a superuser-driven partial user update
type UpdateUserRequest struct {
	Email       *string `json:"email" binding:"omitempty,email"`
	FirstName   *string `json:"first_name" binding:"omitempty,max=100"`
	LastName    *string `json:"last_name" binding:"omitempty,max=100"`
	IsActive    *bool   `json:"is_active"`
	IsSuperuser *bool   `json:"is_superuser"`
}

// CompleteProfile finishes onboarding for the authenticated user
func (h *UserHandlers) CompleteProfile(c *gin.Context) {
	var req CompleteProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	updated, err := h.userSvc.CompleteProfile(c.Request.Context(), user, domain.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		if errors.Is(err, domain.ErrProfileAlreadyComplete) {
			c.JSON(http.StatusConflict, gin.H{"error": "Profile is already complete"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": userResponse(updated)})
}

// List returns a page of users
func (h *UserHandlers) List(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	users, total, err := h.userSvc.ListUsers(c.Request.Context(), offset, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list users"})
		return
	}

	items := make([]gin.H, 0, len(users))
	for i := range users {
		items = append(items, userResponse(&users[i]))
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"users": items,
		"total": total,
	}})
}

// Get returns a single user by ID
func (h *UserHandlers) Get(c *gin.Context) {
	id, err := parseUserID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	user, err := h.userSvc.GetUser(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": userResponse(user)})
}

// Update applies a partial update to a user
func (h *UserHandlers) Update(c *gin.Context) {
	id, err := parseUserID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userSvc.UpdateUser(c.Request.Context(), id, domain.UserUpdate{
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		IsActive:    req.IsActive,
		IsSuperuser: req.IsSuperuser,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": userResponse(user)})
}

// Delete removes a user
func (h *UserHandlers) Delete(c *gin.Context) {
	id, err := parseUserID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	if err := h.userSvc.DeleteUser(c.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "User deleted"}})
}

func parseUserID(c *gin.Context) (uint, error) {
	raw := c.Param("user_id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid user id %q", raw)
	}
	return uint(id), nil
}

func userResponse(user *domain.User) gin.H {
	resp := gin.H{
		"id":                  user.ID,
		"phone_number":        user.PhoneNumber,
		"email":               user.Email,
		"first_name":          user.FirstName,
		"last_name":           user.LastName,
		"is_active":           user.IsActive,
		"is_profile_complete": user.IsProfileComplete,
		"is_superuser":        user.IsSuperuser,
		"created_at":          user.CreatedAt.Format(time.RFC3339),
	}
	if user.LastLoginAt != nil {
		resp["last_login_at"] = user.LastLoginAt.Format(time.RFC3339)
	}
	return resp
}
