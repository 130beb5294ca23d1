package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Item is a catalog entry. Catalog CRUD lives outside the fulfillment core;
// the core only resolves items by ID to validate requests.
type Item struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ItemID      string             `bson:"itemID" json:"itemID"` // User-friendly unique ID, e.g., "item-chair-01"
	Name        string             `bson:"name" json:"name"`
	IsFurniture bool               `bson:"isFurniture" json:"isFurniture"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// Unit is an organizational unit that requests and receives goods.
// ControllerUserID may be empty; units without a designated controller fall
// back to requester-side confirmation.
type Unit struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UnitID           string             `bson:"unitID" json:"unitID"`
	Name             string             `bson:"name" json:"name"`
	ControllerUserID string             `bson:"controllerUserID,omitempty" json:"controllerUserID,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
}
