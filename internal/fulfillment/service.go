// Package fulfillment implements the request, furniture, removal and batch
// state machines, the append-only confirmation ledger and the coordinator
// that keeps them consistent. Every transition takes an explicit Actor;
// there is no ambient session state.
package fulfillment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"unit-supply-api-server/internal/models"
	"unit-supply-api-server/internal/stock"
	"unit-supply-api-server/internal/store"
)

// Anchor receives every ledger entry after it is appended, for external
// anchoring of the audit trail. Implementations must tolerate replays.
type Anchor interface {
	AnchorConfirmation(ctx context.Context, c *models.DeliveryConfirmation) error
}

// Service carries the fulfillment core's dependencies. Clock and token
// generation are injected so tests can pin them.
type Service struct {
	Store    store.Store
	Stock    stock.Adjuster
	Anchor   Anchor // optional
	Now      func() time.Time
	NewToken func() string
}

// NewService wires a Service with the production clock and token source.
func NewService(st store.Store, adj stock.Adjuster) *Service {
	return &Service{
		Store:    st,
		Stock:    adj,
		Now:      time.Now,
		NewToken: func() string { return uuid.New().String() },
	}
}

// Actor identifies who is performing a transition.
type Actor struct {
	UserID string
	Role   string
	UnitID string
}

// hasRole reports whether the actor holds one of the roles. Admin passes
// every check.
func (a Actor) hasRole(roles ...string) bool {
	if a.Role == models.RoleAdmin {
		return true
	}
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// requireRole is the single authorization gate for transitions.
func requireRole(a Actor, roles ...string) error {
	if !a.hasRole(roles...) {
		return fmt.Errorf("%w: role %q, need one of %v", ErrForbidden, a.Role, roles)
	}
	return nil
}

// newID builds a human-friendly identifier, e.g. "REQ-1A2B3C4D".
func newID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, strings.ToUpper(uuid.New().String()[:8]))
}

func timePtr(t time.Time) *time.Time { return &t }
