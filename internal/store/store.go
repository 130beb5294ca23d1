// Package store is the persistence boundary of the fulfillment core.
// Every status transition is written as a compare-and-swap: the update is
// conditioned on the status the caller read, and a concurrent writer that
// got there first surfaces as ErrStaleState.
package store

import (
	"context"
	"errors"

	"unit-supply-api-server/internal/models"
)

var (
	// ErrNotFound means no entity with the given id exists.
	ErrNotFound = errors.New("entity not found")
	// ErrStaleState means the conditional write lost to a concurrent update.
	ErrStaleState = errors.New("entity changed since it was read")
	// ErrAlreadyBatched means a member id is claimed by another open batch.
	ErrAlreadyBatched = errors.New("request already belongs to an open batch")
	// ErrDuplicateConfirmation means the ledger already holds an entry of
	// this type for the same subject.
	ErrDuplicateConfirmation = errors.New("confirmation already recorded")
	// ErrDuplicateID means an insert collided with an existing id.
	ErrDuplicateID = errors.New("id already exists")
)

// Filter narrows list queries. Zero-value fields are ignored.
type Filter struct {
	Status        string
	UnitID        string
	RequestedBy   string
	DriverUserID  string
}

// Store is everything the fulfillment core needs from persistence.
//
// Update* methods write the full document conditioned on fromStatus still
// being the stored status. CreateBatch performs the open-batch membership
// check and the insert as one atomic unit; AppendConfirmation is an
// idempotent append keyed on (subject, type).
type Store interface {
	InsertUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	InsertItem(ctx context.Context, it *models.Item) error
	GetItem(ctx context.Context, itemID string) (*models.Item, error)
	ListItems(ctx context.Context) ([]models.Item, error)

	InsertUnit(ctx context.Context, u *models.Unit) error
	GetUnit(ctx context.Context, unitID string) (*models.Unit, error)
	ListUnits(ctx context.Context) ([]models.Unit, error)

	InsertRequest(ctx context.Context, r *models.Request) error
	GetRequest(ctx context.Context, requestID string) (*models.Request, error)
	ListRequests(ctx context.Context, f Filter) ([]models.Request, error)
	UpdateRequest(ctx context.Context, r *models.Request, fromStatus string) error

	InsertFurnitureRequest(ctx context.Context, r *models.FurnitureRequest) error
	GetFurnitureRequest(ctx context.Context, requestID string) (*models.FurnitureRequest, error)
	ListFurnitureRequests(ctx context.Context, f Filter) ([]models.FurnitureRequest, error)
	UpdateFurnitureRequest(ctx context.Context, r *models.FurnitureRequest, fromStatus string) error

	InsertRemoval(ctx context.Context, r *models.RemovalRequest) error
	GetRemoval(ctx context.Context, requestID string) (*models.RemovalRequest, error)
	ListRemovals(ctx context.Context, f Filter) ([]models.RemovalRequest, error)
	UpdateRemoval(ctx context.Context, r *models.RemovalRequest, fromStatus string) error

	CreateBatch(ctx context.Context, b *models.DeliveryBatch) error
	GetBatch(ctx context.Context, batchID string) (*models.DeliveryBatch, error)
	ListBatches(ctx context.Context, f Filter) ([]models.DeliveryBatch, error)
	UpdateBatch(ctx context.Context, b *models.DeliveryBatch, fromStatus string) error

	AppendConfirmation(ctx context.Context, c *models.DeliveryConfirmation) error
	ListConfirmationsByBatch(ctx context.Context, batchID string) ([]models.DeliveryConfirmation, error)
	ListConfirmationsByFurnitureRequest(ctx context.Context, requestID string) ([]models.DeliveryConfirmation, error)
}
