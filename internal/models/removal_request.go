package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Furniture removal statuses. The reviewer's decision is binary: send the
// piece back to storage or dispose of it. Disposal carries a mandatory
// justification.
const (
	RemovalStatusPending          = "PENDING"
	RemovalStatusApprovedStorage  = "APPROVED_STORAGE"
	RemovalStatusApprovedDisposal = "APPROVED_DISPOSAL"
	RemovalStatusAwaitingPickup   = "AWAITING_PICKUP"
	RemovalStatusInTransit        = "IN_TRANSIT"
	RemovalStatusCompleted        = "COMPLETED"
	RemovalStatusRejected         = "REJECTED"
)

// Rejection is only reachable from PENDING.
var removalEdges = map[string][]string{
	RemovalStatusPending:          {RemovalStatusApprovedStorage, RemovalStatusApprovedDisposal, RemovalStatusRejected},
	RemovalStatusApprovedStorage:  {RemovalStatusAwaitingPickup},
	RemovalStatusApprovedDisposal: {RemovalStatusAwaitingPickup},
	RemovalStatusAwaitingPickup:   {RemovalStatusInTransit},
	RemovalStatusInTransit:        {RemovalStatusCompleted},
}

// RemovalCanTransition reports whether from -> to is a defined edge.
func RemovalCanTransition(from, to string) bool {
	for _, next := range removalEdges[from] {
		if next == to {
			return true
		}
	}
	return false
}

// RemovalStatusTerminal reports whether no forward edge leaves s.
func RemovalStatusTerminal(s string) bool {
	return len(removalEdges[s]) == 0
}

// RemovalRequest retires a piece of furniture from a unit. The receiving
// party at completion is an internal warehouse or disposal operator, so no
// QR/daily-code check is required at that handoff.
type RemovalRequest struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RequestID             string             `bson:"requestID" json:"requestID"` // e.g., "FREM-1A2B3C4D"
	ItemID                string             `bson:"itemID" json:"itemID"`
	UnitID                string             `bson:"unitID" json:"unitID"`
	RequestedByUserID     string             `bson:"requestedByUserID" json:"requestedByUserID"`
	Quantity              int                `bson:"quantity" json:"quantity"`
	Reason                string             `bson:"reason" json:"reason"`
	Status                string             `bson:"status" json:"status"`
	ReviewedByUserID      string             `bson:"reviewedByUserID,omitempty" json:"reviewedByUserID,omitempty"`
	ReviewedAt            *time.Time         `bson:"reviewedAt,omitempty" json:"reviewedAt,omitempty"`
	DisposalJustification string             `bson:"disposalJustification,omitempty" json:"disposalJustification,omitempty"`
	PickedUpByUserID      string             `bson:"pickedUpByUserID,omitempty" json:"pickedUpByUserID,omitempty"`
	PickedUpAt            *time.Time         `bson:"pickedUpAt,omitempty" json:"pickedUpAt,omitempty"`
	ReceivedByUserID      string             `bson:"receivedByUserID,omitempty" json:"receivedByUserID,omitempty"`
	ReceivedAt            *time.Time         `bson:"receivedAt,omitempty" json:"receivedAt,omitempty"`
	RejectedReason        string             `bson:"rejectedReason,omitempty" json:"rejectedReason,omitempty"`
	CreatedAt             time.Time          `bson:"createdAt" json:"createdAt"`
}
