package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Material request statuses. Forward edges are defined in requestEdges;
// nothing outside that table is a legal transition.
const (
	RequestStatusPending           = "PENDING"
	RequestStatusApproved          = "APPROVED"
	RequestStatusProcessing        = "PROCESSING"
	RequestStatusAwaitingPickup    = "AWAITING_PICKUP"
	RequestStatusOutForDelivery    = "OUT_FOR_DELIVERY"
	RequestStatusDeliveryConfirmed = "DELIVERY_CONFIRMED"
	RequestStatusReceivedConfirmed = "RECEIVED_CONFIRMED"
	RequestStatusCompleted         = "COMPLETED"
	RequestStatusRejected          = "REJECTED"
	RequestStatusCancelled         = "CANCELLED"
)

// requestEdges lists the legal forward edges for a material request.
// Rejection is reachable from every pre-dispatch state; cancellation only
// while PENDING or APPROVED (later cancels fail with a dedicated error, not
// an edge check). OUT_FOR_DELIVERY onward is driven by the owning batch.
var requestEdges = map[string][]string{
	RequestStatusPending:           {RequestStatusApproved, RequestStatusRejected, RequestStatusCancelled},
	RequestStatusApproved:          {RequestStatusProcessing, RequestStatusRejected, RequestStatusCancelled},
	RequestStatusProcessing:        {RequestStatusAwaitingPickup, RequestStatusRejected},
	RequestStatusAwaitingPickup:    {RequestStatusOutForDelivery, RequestStatusRejected},
	RequestStatusOutForDelivery:    {RequestStatusDeliveryConfirmed, RequestStatusReceivedConfirmed},
	RequestStatusDeliveryConfirmed: {RequestStatusReceivedConfirmed},
	RequestStatusReceivedConfirmed: {RequestStatusCompleted},
}

// RequestCanTransition reports whether from -> to is a defined edge.
func RequestCanTransition(from, to string) bool {
	for _, next := range requestEdges[from] {
		if next == to {
			return true
		}
	}
	return false
}

// RequestStatusTerminal reports whether no forward edge leaves s.
func RequestStatusTerminal(s string) bool {
	return len(requestEdges[s]) == 0
}

// Request is a material request from a unit to the warehouse. Terminal
// requests are retained for audit, never deleted.
type Request struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RequestID         string             `bson:"requestID" json:"requestID"` // e.g., "REQ-1A2B3C4D"
	ItemID            string             `bson:"itemID" json:"itemID"`
	RequestingUnitID  string             `bson:"requestingUnitID" json:"requestingUnitID"`
	RequestedByUserID string             `bson:"requestedByUserID" json:"requestedByUserID"`
	Quantity          int                `bson:"quantity" json:"quantity"`
	Urgency           string             `bson:"urgency" json:"urgency"`
	Status            string             `bson:"status" json:"status"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	ApprovedByUserID  string             `bson:"approvedByUserID,omitempty" json:"approvedByUserID,omitempty"`
	ApprovedAt        *time.Time         `bson:"approvedAt,omitempty" json:"approvedAt,omitempty"`
	PickedUpByUserID  string             `bson:"pickedUpByUserID,omitempty" json:"pickedUpByUserID,omitempty"`
	PickedUpAt        *time.Time         `bson:"pickedUpAt,omitempty" json:"pickedUpAt,omitempty"`
	CompletedByUserID string             `bson:"completedByUserID,omitempty" json:"completedByUserID,omitempty"`
	CompletedAt       *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	RejectedReason    string             `bson:"rejectedReason,omitempty" json:"rejectedReason,omitempty"`
	Observations      string             `bson:"observations,omitempty" json:"observations,omitempty"`
}
