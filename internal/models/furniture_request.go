package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Furniture request statuses. The flow carries a double sign-off: the
// designer reviews first, then storage approves before physical handling.
const (
	FurnitureStatusPendingDesigner     = "PENDING_DESIGNER"
	FurnitureStatusApprovedDesigner    = "APPROVED_DESIGNER"
	FurnitureStatusApprovedStorage     = "APPROVED_STORAGE"
	FurnitureStatusSeparated           = "SEPARATED"
	FurnitureStatusAwaitingDelivery    = "AWAITING_DELIVERY"
	FurnitureStatusInTransit           = "IN_TRANSIT"
	FurnitureStatusPendingConfirmation = "PENDING_CONFIRMATION"
	FurnitureStatusCompleted           = "COMPLETED"
	FurnitureStatusRejected            = "REJECTED"
)

// Rejection is only reachable during review, before storage signs off.
var furnitureEdges = map[string][]string{
	FurnitureStatusPendingDesigner:     {FurnitureStatusApprovedDesigner, FurnitureStatusRejected},
	FurnitureStatusApprovedDesigner:    {FurnitureStatusApprovedStorage, FurnitureStatusRejected},
	FurnitureStatusApprovedStorage:     {FurnitureStatusSeparated, FurnitureStatusInTransit},
	FurnitureStatusSeparated:           {FurnitureStatusAwaitingDelivery, FurnitureStatusInTransit},
	FurnitureStatusAwaitingDelivery:    {FurnitureStatusInTransit},
	FurnitureStatusInTransit:           {FurnitureStatusPendingConfirmation, FurnitureStatusCompleted},
	FurnitureStatusPendingConfirmation: {FurnitureStatusCompleted},
}

// FurnitureCanTransition reports whether from -> to is a defined edge.
func FurnitureCanTransition(from, to string) bool {
	for _, next := range furnitureEdges[from] {
		if next == to {
			return true
		}
	}
	return false
}

// FurnitureStatusTerminal reports whether no forward edge leaves s.
func FurnitureStatusTerminal(s string) bool {
	return len(furnitureEdges[s]) == 0
}

// FurniturePreTransit reports whether s is a state from which the request
// may still join a delivery batch (storage approved, not yet moving).
func FurniturePreTransit(s string) bool {
	return s == FurnitureStatusApprovedStorage ||
		s == FurnitureStatusSeparated ||
		s == FurnitureStatusAwaitingDelivery
}

// FurnitureRequest is a furniture request routed through a designer.
// QRCode is populated only when the request joins a batch or is dispatched
// individually; IN_TRANSIT requires it to be non-empty.
type FurnitureRequest struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RequestID             string             `bson:"requestID" json:"requestID"` // e.g., "FREQ-1A2B3C4D"
	ItemID                string             `bson:"itemID" json:"itemID"`
	RequestingUnitID      string             `bson:"requestingUnitID" json:"requestingUnitID"`
	RequestedByUserID     string             `bson:"requestedByUserID" json:"requestedByUserID"`
	Quantity              int                `bson:"quantity" json:"quantity"`
	Location              string             `bson:"location" json:"location"`
	Justification         string             `bson:"justification" json:"justification"`
	Status                string             `bson:"status" json:"status"`
	QRCode                string             `bson:"qrCode,omitempty" json:"qrCode,omitempty"`
	ReviewedByDesignerID  string             `bson:"reviewedByDesignerID,omitempty" json:"reviewedByDesignerID,omitempty"`
	ApprovedByStorageUser string             `bson:"approvedByStorageUserID,omitempty" json:"approvedByStorageUserID,omitempty"`
	DeliveredByUserID     string             `bson:"deliveredByUserID,omitempty" json:"deliveredByUserID,omitempty"`
	DeliveredAt           *time.Time         `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
	RejectionReason       string             `bson:"rejectionReason,omitempty" json:"rejectionReason,omitempty"`
	Observations          string             `bson:"observations,omitempty" json:"observations,omitempty"`
	CreatedAt             time.Time          `bson:"createdAt" json:"createdAt"`
}
