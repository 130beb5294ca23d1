package handlers

import (
	"context"
	"net/http"

	"unit-supply-api-server/internal/fulfillment"
	"unit-supply-api-server/internal/socket"
	"unit-supply-api-server/internal/store"

	"github.com/gin-gonic/gin"
)

type RequestHandler struct {
	Svc *fulfillment.Service
	Hub *socket.Hub
}

type CreateRequestPayload struct {
	ItemID       string `json:"itemID" binding:"required"`
	UnitID       string `json:"unitID" binding:"required"`
	Quantity     int    `json:"quantity" binding:"required"`
	Urgency      string `json:"urgency"`
	Observations string `json:"observations"`
}

// CreateRequest opens a new material request for the caller's unit.
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	var payload CreateRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r, err := h.Svc.CreateRequest(context.Background(), actorFromContext(c), fulfillment.CreateRequestInput{
		ItemID:       payload.ItemID,
		UnitID:       payload.UnitID,
		Quantity:     payload.Quantity,
		Urgency:      payload.Urgency,
		Observations: payload.Observations,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

// GetAllRequests lists material requests, optionally filtered by status.
func (h *RequestHandler) GetAllRequests(c *gin.Context) {
	requests, err := h.Svc.Store.ListRequests(context.Background(), store.Filter{
		Status: c.Query("status"),
		UnitID: c.Query("unitID"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

// GetMyUnitRequests lists the requests of the caller's own unit.
func (h *RequestHandler) GetMyUnitRequests(c *gin.Context) {
	requests, err := h.Svc.Store.ListRequests(context.Background(), store.Filter{
		Status: c.Query("status"),
		UnitID: c.GetString("user_unit_id"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

// GetRequestByID returns one request.
func (h *RequestHandler) GetRequestByID(c *gin.Context) {
	r, err := h.Svc.Store.GetRequest(context.Background(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

type ReviewPayload struct {
	Reason       string `json:"reason"`
	Observations string `json:"observations"`
}

// ApproveRequest moves a pending request to approved.
func (h *RequestHandler) ApproveRequest(c *gin.Context) {
	var payload ReviewPayload
	c.ShouldBindJSON(&payload)

	r, err := h.Svc.ApproveRequest(context.Background(), actorFromContext(c), c.Param("id"), payload.Observations)
	if err != nil {
		respondError(c, err)
		return
	}
	h.Hub.SendEvent(r.RequestedByUserID, "request_status_changed", r)
	c.JSON(http.StatusOK, r)
}

// RejectRequest rejects a pre-dispatch request with a reason.
func (h *RequestHandler) RejectRequest(c *gin.Context) {
	var payload ReviewPayload
	c.ShouldBindJSON(&payload)

	r, err := h.Svc.RejectRequest(context.Background(), actorFromContext(c), c.Param("id"), payload.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	h.Hub.SendEvent(r.RequestedByUserID, "request_status_changed", r)
	c.JSON(http.StatusOK, r)
}

// CancelRequest cancels the caller's own request while still possible.
func (h *RequestHandler) CancelRequest(c *gin.Context) {
	r, err := h.Svc.CancelRequest(context.Background(), actorFromContext(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// StartProcessing begins warehouse fulfillment and fires the stock
// adjustment.
func (h *RequestHandler) StartProcessing(c *gin.Context) {
	r, err := h.Svc.StartProcessing(context.Background(), actorFromContext(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	h.Hub.SendEvent(r.RequestedByUserID, "request_status_changed", r)
	c.JSON(http.StatusOK, r)
}

// MarkAwaitingPickup stages a processed request for batching.
func (h *RequestHandler) MarkAwaitingPickup(c *gin.Context) {
	r, err := h.Svc.MarkAwaitingPickup(context.Background(), actorFromContext(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	h.Hub.SendEvent(r.RequestedByUserID, "request_status_changed", r)
	c.JSON(http.StatusOK, r)
}
