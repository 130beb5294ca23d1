// server/internal/models/common.go
package models

// GeoPoint stores the coordinates attached to a delivery confirmation.
type GeoPoint struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
}

// Urgency levels for material requests.
const (
	UrgencyLow    = "LOW"
	UrgencyMedium = "MEDIUM"
	UrgencyHigh   = "HIGH"
)

// ValidUrgency reports whether u is one of the known urgency levels.
func ValidUrgency(u string) bool {
	return u == UrgencyLow || u == UrgencyMedium || u == UrgencyHigh
}

// Roles known to the system. Route groups and transition checks both use
// these values; they travel inside the JWT claims.
const (
	RoleRequester  = "requester"
	RoleController = "controller"
	RoleWarehouse  = "warehouse"
	RoleDriver     = "driver"
	RoleDesigner   = "designer"
	RoleAdmin      = "admin"
)
