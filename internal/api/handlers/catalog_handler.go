package handlers

import (
	"context"
	"net/http"
	"time"

	"unit-supply-api-server/internal/models"
	"unit-supply-api-server/internal/store"

	"github.com/gin-gonic/gin"
)

// CatalogHandler manages the item and unit catalogs the fulfillment core
// validates requests against.
type CatalogHandler struct {
	Store store.Store
}

type CreateItemPayload struct {
	ItemID      string `json:"itemID" binding:"required"`
	Name        string `json:"name" binding:"required"`
	IsFurniture bool   `json:"isFurniture"`
}

// CreateItem registers a catalog item. Admin only.
func (h *CatalogHandler) CreateItem(c *gin.Context) {
	var payload CreateItemPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item := &models.Item{
		ItemID:      payload.ItemID,
		Name:        payload.Name,
		IsFurniture: payload.IsFurniture,
		CreatedAt:   time.Now(),
	}
	if err := h.Store.InsertItem(context.Background(), item); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// GetAllItems lists the item catalog.
func (h *CatalogHandler) GetAllItems(c *gin.Context) {
	items, err := h.Store.ListItems(context.Background())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

type CreateUnitPayload struct {
	UnitID           string `json:"unitID" binding:"required"`
	Name             string `json:"name" binding:"required"`
	ControllerUserID string `json:"controllerUserID"`
}

// CreateUnit registers an organizational unit. Admin only.
func (h *CatalogHandler) CreateUnit(c *gin.Context) {
	var payload CreateUnitPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	unit := &models.Unit{
		UnitID:           payload.UnitID,
		Name:             payload.Name,
		ControllerUserID: payload.ControllerUserID,
		CreatedAt:        time.Now(),
	}
	if err := h.Store.InsertUnit(context.Background(), unit); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, unit)
}

// GetAllUnits lists the registered units.
func (h *CatalogHandler) GetAllUnits(c *gin.Context) {
	units, err := h.Store.ListUnits(context.Background())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, units)
}
