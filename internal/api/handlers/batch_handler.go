package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"unit-supply-api-server/internal/fulfillment"
	"unit-supply-api-server/internal/models"
	"unit-supply-api-server/internal/s3"
	"unit-supply-api-server/internal/socket"
	"unit-supply-api-server/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BatchHandler struct {
	Svc      *fulfillment.Service
	Hub      *socket.Hub
	Uploader *s3.Uploader
}

type CreateBatchPayload struct {
	RequestIDs          []string `json:"requestIDs"`
	FurnitureRequestIDs []string `json:"furnitureRequestIDs"`
	TargetUnitID        string   `json:"targetUnitID" binding:"required"`
	DriverUserID        string   `json:"driverUserID" binding:"required"`
	Notes               string   `json:"notes"`
}

// CreateBatch groups staged requests for one unit under one driver.
func (h *BatchHandler) CreateBatch(c *gin.Context) {
	var payload CreateBatchPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := h.Svc.CreateBatch(context.Background(), actorFromContext(c), fulfillment.CreateBatchInput{
		RequestIDs:          payload.RequestIDs,
		FurnitureRequestIDs: payload.FurnitureRequestIDs,
		TargetUnitID:        payload.TargetUnitID,
		DriverUserID:        payload.DriverUserID,
		Notes:               payload.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	h.Hub.SendEvent(b.DriverUserID, "batch_assigned", b)
	c.JSON(http.StatusCreated, b)
}

// GetAllBatches lists batches, optionally by status or unit.
func (h *BatchHandler) GetAllBatches(c *gin.Context) {
	batches, err := h.Svc.Store.ListBatches(context.Background(), store.Filter{
		Status: c.Query("status"),
		UnitID: c.Query("unitID"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, batches)
}

// GetMyBatches lists the batches assigned to the calling driver.
func (h *BatchHandler) GetMyBatches(c *gin.Context) {
	batches, err := h.Svc.Store.ListBatches(context.Background(), store.Filter{
		Status:       c.Query("status"),
		DriverUserID: c.GetString("user_id"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, batches)
}

// GetBatchByID returns one batch.
func (h *BatchHandler) GetBatchByID(c *gin.Context) {
	b, err := h.Svc.Store.GetBatch(context.Background(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// CancelBatch releases an undispatched batch so its members can be
// re-batched.
func (h *BatchHandler) CancelBatch(c *gin.Context) {
	b, err := h.Svc.CancelBatch(context.Background(), actorFromContext(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	h.Hub.SendEvent(b.DriverUserID, "batch_cancelled", b)
	c.JSON(http.StatusOK, b)
}

// DispatchBatch sends the batch out: QR token, dispatch timestamp and the
// member cascade.
func (h *BatchHandler) DispatchBatch(c *gin.Context) {
	b, err := h.Svc.DispatchBatch(context.Background(), actorFromContext(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

type ConfirmDeliveryPayload struct {
	PhotoURL        string           `json:"photoURL" binding:"required"`
	RecipientUserID string           `json:"recipientUserID" binding:"required"`
	RecipientCode   string           `json:"recipientCode" binding:"required"`
	Location        *models.GeoPoint `json:"location"`
	Notes           string           `json:"notes"`
}

// ConfirmDelivery is the scan-and-confirm drop-off: photo evidence plus the
// recipient's daily code, validated on the spot.
func (h *BatchHandler) ConfirmDelivery(c *gin.Context) {
	var payload ConfirmDeliveryPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := h.Svc.ConfirmBatchDelivery(context.Background(), actorFromContext(c), c.Param("id"), fulfillment.ConfirmDeliveryInput{
		PhotoURL:        payload.PhotoURL,
		RecipientUserID: payload.RecipientUserID,
		RecipientCode:   payload.RecipientCode,
		Location:        payload.Location,
		Notes:           payload.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	h.Hub.SendEvent(payload.RecipientUserID, "batch_delivered", b)
	c.JSON(http.StatusOK, b)
}

type ConfirmLaterPayload struct {
	PhotoURL string           `json:"photoURL"`
	Location *models.GeoPoint `json:"location"`
	Notes    string           `json:"notes"`
}

// ConfirmLater is the deferred drop-off: the driver attests delivery
// without a recipient code and the batch waits for the receiving side.
func (h *BatchHandler) ConfirmLater(c *gin.Context) {
	var payload ConfirmLaterPayload
	c.ShouldBindJSON(&payload)

	b, err := h.Svc.ConfirmBatchLater(context.Background(), actorFromContext(c), c.Param("id"), fulfillment.ConfirmLaterInput{
		PhotoURL: payload.PhotoURL,
		Location: payload.Location,
		Notes:    payload.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

type ConfirmReceiptPayload struct {
	Code     string           `json:"code" binding:"required"`
	PhotoURL string           `json:"photoURL"`
	Location *models.GeoPoint `json:"location"`
	Notes    string           `json:"notes"`
}

// ConfirmReceipt is the receiving side's own proof: the controller or the
// requester presents their daily code to close the handoff.
func (h *BatchHandler) ConfirmReceipt(c *gin.Context) {
	var payload ConfirmReceiptPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := h.Svc.ConfirmBatchReceipt(context.Background(), actorFromContext(c), c.Param("id"), fulfillment.ConfirmReceiptInput{
		Code:     payload.Code,
		PhotoURL: payload.PhotoURL,
		Location: payload.Location,
		Notes:    payload.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	h.Hub.SendEvent(b.DriverUserID, "batch_receipt_confirmed", b)
	c.JSON(http.StatusOK, b)
}

// GetConfirmations returns the batch's ledger entries in insertion order.
func (h *BatchHandler) GetConfirmations(c *gin.Context) {
	entries, err := h.Svc.EntriesForBatch(context.Background(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// UploadDeliveryPhoto receives a multipart photo, stores it in S3 and
// returns the URL the confirm endpoints expect.
func (h *BatchHandler) UploadDeliveryPhoto(c *gin.Context) {
	if h.Uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Photo storage is not configured"})
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer file.Close()

	objectKey := fmt.Sprintf("deliveries/%s/%s-%s", c.Param("id"), time.Now().Format("20060102"), uuid.New().String()[:8])
	url, err := h.Uploader.UploadPhoto(context.Background(), file, objectKey, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"photoURL": url})
}
