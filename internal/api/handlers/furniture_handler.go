package handlers

import (
	"context"
	"net/http"

	"unit-supply-api-server/internal/fulfillment"
	"unit-supply-api-server/internal/models"
	"unit-supply-api-server/internal/socket"
	"unit-supply-api-server/internal/store"

	"github.com/gin-gonic/gin"
)

type FurnitureHandler struct {
	Svc *fulfillment.Service
	Hub *socket.Hub
}

type CreateFurniturePayload struct {
	ItemID        string `json:"itemID" binding:"required"`
	UnitID        string `json:"unitID" binding:"required"`
	Quantity      int    `json:"quantity" binding:"required"`
	Location      string `json:"location" binding:"required"`
	Justification string `json:"justification" binding:"required"`
}

// CreateFurnitureRequest opens a furniture request for designer review.
func (h *FurnitureHandler) CreateFurnitureRequest(c *gin.Context) {
	var payload CreateFurniturePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r, err := h.Svc.CreateFurnitureRequest(context.Background(), actorFromContext(c), fulfillment.CreateFurnitureInput{
		ItemID:        payload.ItemID,
		UnitID:        payload.UnitID,
		Quantity:      payload.Quantity,
		Location:      payload.Location,
		Justification: payload.Justification,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

// GetAllFurnitureRequests lists furniture requests, optionally by status.
func (h *FurnitureHandler) GetAllFurnitureRequests(c *gin.Context) {
	requests, err := h.Svc.Store.ListFurnitureRequests(context.Background(), store.Filter{
		Status: c.Query("status"),
		UnitID: c.Query("unitID"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

// GetFurnitureRequestByID returns one furniture request.
func (h *FurnitureHandler) GetFurnitureRequestByID(c *gin.Context) {
	r, err := h.Svc.Store.GetFurnitureRequest(context.Background(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// ApproveByDesigner records the designer's sign-off.
func (h *FurnitureHandler) ApproveByDesigner(c *gin.Context) {
	var payload ReviewPayload
	c.ShouldBindJSON(&payload)

	r, err := h.Svc.ApproveByDesigner(context.Background(), actorFromContext(c), c.Param("id"), payload.Observations)
	if err != nil {
		respondError(c, err)
		return
	}
	h.Hub.SendEvent(r.RequestedByUserID, "furniture_status_changed", r)
	c.JSON(http.StatusOK, r)
}

// RejectFurnitureRequest rejects during review; reason required.
func (h *FurnitureHandler) RejectFurnitureRequest(c *gin.Context) {
	var payload ReviewPayload
	c.ShouldBindJSON(&payload)

	r, err := h.Svc.RejectFurnitureRequest(context.Background(), actorFromContext(c), c.Param("id"), payload.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	h.Hub.SendEvent(r.RequestedByUserID, "furniture_status_changed", r)
	c.JSON(http.StatusOK, r)
}

// ApproveByStorage records the storage sign-off after the designer's.
func (h *FurnitureHandler) ApproveByStorage(c *gin.Context) {
	r, err := h.Svc.ApproveByStorage(context.Background(), actorFromContext(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	h.Hub.SendEvent(r.RequestedByUserID, "furniture_status_changed", r)
	c.JSON(http.StatusOK, r)
}

// MarkSeparated records the piece being set aside.
func (h *FurnitureHandler) MarkSeparated(c *gin.Context) {
	r, err := h.Svc.MarkSeparated(context.Background(), actorFromContext(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// MarkAwaitingDelivery stages the piece for a driver.
func (h *FurnitureHandler) MarkAwaitingDelivery(c *gin.Context) {
	r, err := h.Svc.MarkAwaitingDelivery(context.Background(), actorFromContext(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// DispatchFurniture sends the piece out individually, generating its QR
// token.
func (h *FurnitureHandler) DispatchFurniture(c *gin.Context) {
	r, err := h.Svc.DispatchFurniture(context.Background(), actorFromContext(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	h.Hub.SendEvent(r.RequestedByUserID, "furniture_status_changed", r)
	c.JSON(http.StatusOK, r)
}

type DeliverFurniturePayload struct {
	PhotoURL string           `json:"photoURL"`
	Notes    string           `json:"notes"`
	Location *models.GeoPoint `json:"location"`
}

// MarkDelivered is the driver's delivered-but-unconfirmed attestation.
func (h *FurnitureHandler) MarkDelivered(c *gin.Context) {
	var payload DeliverFurniturePayload
	c.ShouldBindJSON(&payload)

	r, err := h.Svc.MarkFurnitureDelivered(context.Background(), actorFromContext(c), c.Param("id"), payload.PhotoURL, payload.Notes, payload.Location)
	if err != nil {
		respondError(c, err)
		return
	}
	h.Hub.SendEvent(r.RequestedByUserID, "furniture_delivered", r)
	c.JSON(http.StatusOK, r)
}

type ConfirmFurniturePayload struct {
	Code     string `json:"code" binding:"required"`
	PhotoURL string `json:"photoURL"`
	Notes    string `json:"notes"`
}

// ConfirmReceipt closes the request with the recipient's daily code.
func (h *FurnitureHandler) ConfirmReceipt(c *gin.Context) {
	var payload ConfirmFurniturePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r, err := h.Svc.ConfirmFurnitureReceipt(context.Background(), actorFromContext(c), c.Param("id"), payload.Code, payload.PhotoURL, payload.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// GetConfirmations returns the ledger entries for a furniture request in
// insertion order.
func (h *FurnitureHandler) GetConfirmations(c *gin.Context) {
	entries, err := h.Svc.EntriesForFurnitureRequest(context.Background(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
