package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Confirmation types. DELIVERY proves the driver's side of the handoff;
// RECEIPT and REQUESTER prove who received. A DELIVERY entry must exist
// before either of the other two for the same batch.
const (
	ConfirmationTypeDelivery  = "DELIVERY"
	ConfirmationTypeReceipt   = "RECEIPT"
	ConfirmationTypeRequester = "REQUESTER"
)

// DeliveryConfirmation is one entry of the append-only confirmation ledger.
// Exactly one of BatchID/FurnitureRequestID is set. Entries are never
// mutated or deleted; corrections are new entries with explanatory notes.
type DeliveryConfirmation struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ConfirmationID     string             `bson:"confirmationID" json:"confirmationID"` // e.g., "CONF-1A2B3C4D"
	BatchID            string             `bson:"batchID,omitempty" json:"batchID,omitempty"`
	FurnitureRequestID string             `bson:"furnitureRequestID,omitempty" json:"furnitureRequestID,omitempty"`
	Type               string             `bson:"type" json:"type"`
	ConfirmedByUserID  string             `bson:"confirmedByUserID" json:"confirmedByUserID"`
	ReceivedByUserID   string             `bson:"receivedByUserID,omitempty" json:"receivedByUserID,omitempty"`
	PhotoURL           string             `bson:"photoURL" json:"photoURL"`
	Timestamp          time.Time          `bson:"timestamp" json:"timestamp"`
	Location           *GeoPoint          `bson:"location,omitempty" json:"location,omitempty"`
	Notes              string             `bson:"notes,omitempty" json:"notes,omitempty"`
}

// Subject returns the identifier the entry is recorded against.
func (c *DeliveryConfirmation) Subject() string {
	if c.BatchID != "" {
		return c.BatchID
	}
	return c.FurnitureRequestID
}
