package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Delivery batch statuses. After dispatch the driver closes the handoff on
// one of two mutually exclusive paths: scan-and-confirm (DELIVERY_CONFIRMED,
// recipient daily code validated at drop-off) or confirm-later
// (PENDING_CONFIRMATION, no recipient identity captured yet; a weaker-trust
// state that an out-of-band receipt confirmation closes later).
const (
	BatchStatusPending              = "PENDING"
	BatchStatusInTransit            = "IN_TRANSIT"
	BatchStatusDeliveryConfirmed    = "DELIVERY_CONFIRMED"
	BatchStatusPendingConfirmation  = "PENDING_CONFIRMATION"
	BatchStatusReceivedConfirmed    = "RECEIVED_CONFIRMED"
	BatchStatusConfirmedByRequester = "CONFIRMED_BY_REQUESTER"
	BatchStatusCompleted            = "COMPLETED"
	BatchStatusCancelled            = "CANCELLED"
)

// Cancellation only before dispatch; driver reassignment is not modeled,
// cancel and recreate instead.
var batchEdges = map[string][]string{
	BatchStatusPending:              {BatchStatusInTransit, BatchStatusCancelled},
	BatchStatusInTransit:            {BatchStatusDeliveryConfirmed, BatchStatusPendingConfirmation},
	BatchStatusDeliveryConfirmed:    {BatchStatusReceivedConfirmed, BatchStatusConfirmedByRequester},
	BatchStatusPendingConfirmation:  {BatchStatusReceivedConfirmed, BatchStatusConfirmedByRequester},
	BatchStatusReceivedConfirmed:    {BatchStatusCompleted},
	BatchStatusConfirmedByRequester: {BatchStatusCompleted},
}

// BatchCanTransition reports whether from -> to is a defined edge.
func BatchCanTransition(from, to string) bool {
	for _, next := range batchEdges[from] {
		if next == to {
			return true
		}
	}
	return false
}

// BatchStatusTerminal reports whether no forward edge leaves s. A request
// id is claimable again only once its batch is terminal.
func BatchStatusTerminal(s string) bool {
	return len(batchEdges[s]) == 0
}

// DeliveryBatch bundles requests bound for one unit under one driver. It
// stores member identifiers only, never embedded documents; the coordinator
// resolves them through the store when it needs the full entities.
type DeliveryBatch struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BatchID              string             `bson:"batchID" json:"batchID"` // e.g., "BATCH-1A2B3C4D"
	RequestIDs           []string           `bson:"requestIDs" json:"requestIDs"`
	FurnitureRequestIDs  []string           `bson:"furnitureRequestIDs" json:"furnitureRequestIDs"`
	TargetUnitID         string             `bson:"targetUnitID" json:"targetUnitID"`
	DriverUserID         string             `bson:"driverUserID" json:"driverUserID"`
	QRCode               string             `bson:"qrCode,omitempty" json:"qrCode,omitempty"` // opaque token, generated at dispatch
	Status               string             `bson:"status" json:"status"`
	CreatedAt            time.Time          `bson:"createdAt" json:"createdAt"`
	DispatchedAt         *time.Time         `bson:"dispatchedAt,omitempty" json:"dispatchedAt,omitempty"`
	DeliveryConfirmedAt  *time.Time         `bson:"deliveryConfirmedAt,omitempty" json:"deliveryConfirmedAt,omitempty"`
	ReceivedConfirmedAt  *time.Time         `bson:"receivedConfirmedAt,omitempty" json:"receivedConfirmedAt,omitempty"`
	ConfirmedByRequester *time.Time         `bson:"confirmedByRequesterAt,omitempty" json:"confirmedByRequesterAt,omitempty"`
	CompletedAt          *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	Notes                string             `bson:"notes,omitempty" json:"notes,omitempty"`
}

// Members returns all member identifiers, material then furniture.
func (b *DeliveryBatch) Members() []string {
	out := make([]string, 0, len(b.RequestIDs)+len(b.FurnitureRequestIDs))
	out = append(out, b.RequestIDs...)
	out = append(out, b.FurnitureRequestIDs...)
	return out
}
