package handlers

import (
	"errors"
	"net/http"

	"unit-supply-api-server/internal/fulfillment"
	"unit-supply-api-server/internal/store"

	"github.com/gin-gonic/gin"
)

// actorFromContext rebuilds the fulfillment Actor from the values the
// Authenticate middleware put into the request context.
func actorFromContext(c *gin.Context) fulfillment.Actor {
	return fulfillment.Actor{
		UserID: c.GetString("user_id"),
		Role:   c.GetString("user_role"),
		UnitID: c.GetString("user_unit_id"),
	}
}

// respondError maps the core's error taxonomy onto HTTP statuses. Every
// error kind keeps its message so the UI can surface an actionable reason
// instead of a generic failure.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, fulfillment.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, fulfillment.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, fulfillment.ErrInvalidCode):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Daily code incorrect, try again"})
	case errors.Is(err, fulfillment.ErrMissingJustification):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, fulfillment.ErrTooLateToCancel):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, fulfillment.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrStaleState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrAlreadyBatched):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrDuplicateConfirmation):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrDuplicateID):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
