package handlers

import (
	"context"
	"net/http"

	"unit-supply-api-server/internal/fulfillment"
	"unit-supply-api-server/internal/socket"
	"unit-supply-api-server/internal/store"

	"github.com/gin-gonic/gin"
)

type RemovalHandler struct {
	Svc *fulfillment.Service
	Hub *socket.Hub
}

type CreateRemovalPayload struct {
	ItemID   string `json:"itemID" binding:"required"`
	UnitID   string `json:"unitID" binding:"required"`
	Quantity int    `json:"quantity" binding:"required"`
	Reason   string `json:"reason" binding:"required"`
}

// CreateRemoval opens a request to retire furniture from a unit.
func (h *RemovalHandler) CreateRemoval(c *gin.Context) {
	var payload CreateRemovalPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r, err := h.Svc.CreateRemoval(context.Background(), actorFromContext(c), fulfillment.CreateRemovalInput{
		ItemID:   payload.ItemID,
		UnitID:   payload.UnitID,
		Quantity: payload.Quantity,
		Reason:   payload.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

// GetAllRemovals lists removal requests, optionally by status.
func (h *RemovalHandler) GetAllRemovals(c *gin.Context) {
	removals, err := h.Svc.Store.ListRemovals(context.Background(), store.Filter{
		Status: c.Query("status"),
		UnitID: c.Query("unitID"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, removals)
}

// GetRemovalByID returns one removal request.
func (h *RemovalHandler) GetRemovalByID(c *gin.Context) {
	r, err := h.Svc.Store.GetRemoval(context.Background(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

type ReviewRemovalPayload struct {
	Decision      string `json:"decision" binding:"required"`
	Justification string `json:"justification"`
}

// ReviewRemoval applies the STORAGE / DISPOSAL decision. Disposal without
// a justification is rejected so the caller can retry with one.
func (h *RemovalHandler) ReviewRemoval(c *gin.Context) {
	var payload ReviewRemovalPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r, err := h.Svc.ReviewRemoval(context.Background(), actorFromContext(c), c.Param("id"), payload.Decision, payload.Justification)
	if err != nil {
		respondError(c, err)
		return
	}
	h.Hub.SendEvent(r.RequestedByUserID, "removal_status_changed", r)
	c.JSON(http.StatusOK, r)
}

// RejectRemoval rejects a pending removal with a reason.
func (h *RemovalHandler) RejectRemoval(c *gin.Context) {
	var payload ReviewPayload
	c.ShouldBindJSON(&payload)

	r, err := h.Svc.RejectRemoval(context.Background(), actorFromContext(c), c.Param("id"), payload.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	h.Hub.SendEvent(r.RequestedByUserID, "removal_status_changed", r)
	c.JSON(http.StatusOK, r)
}

// SchedulePickup stages an approved removal for a driver.
func (h *RemovalHandler) SchedulePickup(c *gin.Context) {
	r, err := h.Svc.ScheduleRemovalPickup(context.Background(), actorFromContext(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// PickUp records the driver collecting the piece at the unit.
func (h *RemovalHandler) PickUp(c *gin.Context) {
	r, err := h.Svc.PickUpRemoval(context.Background(), actorFromContext(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	h.Hub.SendEvent(r.RequestedByUserID, "removal_status_changed", r)
	c.JSON(http.StatusOK, r)
}

// Complete records receipt at the warehouse or disposal point.
func (h *RemovalHandler) Complete(c *gin.Context) {
	r, err := h.Svc.CompleteRemoval(context.Background(), actorFromContext(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	h.Hub.SendEvent(r.RequestedByUserID, "removal_status_changed", r)
	c.JSON(http.StatusOK, r)
}
