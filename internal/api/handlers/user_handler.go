// server/internal/api/handlers/user_handler.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"unit-supply-api-server/internal/auth"
	"unit-supply-api-server/internal/dailycode"
	"unit-supply-api-server/internal/fulfillment"
	"unit-supply-api-server/internal/models"
	"unit-supply-api-server/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UserHandler struct {
	Store         store.Store
	Svc           *fulfillment.Service
	JWTExpiration time.Duration
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login checks the credentials and issues a JWT.
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.Store.GetUserByEmail(context.Background(), req.Email)
	if err != nil || !auth.CheckPasswordHash(req.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	if user.Status != "active" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Account is not active"})
		return
	}

	token, err := auth.GenerateJWT(user.UserID, user.Email, user.Role, user.UnitID, h.JWTExpiration)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

type CreateUserRequest struct {
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
	UnitID   string `json:"unitID" binding:"required"`
}

// CreateUser registers a new account. Admin only.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := &models.User{
		UserID:   req.Role + "-" + uuid.New().String()[:8],
		Email:    req.Email,
		Name:     req.Name,
		Password: hashedPassword,
		Role:     req.Role,
		UnitID:   req.UnitID,
		Status:   "active",
	}
	if err := h.Store.InsertUser(context.Background(), user); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// GetMyDailyCode returns today's formatted daily code so the user can show
// it at a physical handoff.
func (h *UserHandler) GetMyDailyCode(c *gin.Context) {
	userID := c.GetString("user_id")
	code := dailycode.Code(userID, time.Now())
	c.JSON(http.StatusOK, gin.H{
		"code":      dailycode.Format(code),
		"validFor":  time.Now().Format("2006-01-02"),
	})
}

// GetMyPending returns the batches and furniture requests awaiting this
// user's confirmation.
func (h *UserHandler) GetMyPending(c *gin.Context) {
	userID := c.GetString("user_id")
	pending, err := h.Svc.PendingForUser(context.Background(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pending)
}
