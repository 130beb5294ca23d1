package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"unit-supply-api-server/internal/dailycode"
	"unit-supply-api-server/internal/models"
	"unit-supply-api-server/internal/store"
)

// CreateBatchInput bundles requests bound for one unit under one driver.
type CreateBatchInput struct {
	RequestIDs          []string
	FurnitureRequestIDs []string
	TargetUnitID        string
	DriverUserID        string
	Notes               string
}

// CreateBatch validates every member is in a pre-dispatch state and destined
// for the target unit, then claims the members atomically. A member already
// held by another open batch fails the whole creation with AlreadyBatched.
func (s *Service) CreateBatch(ctx context.Context, actor Actor, in CreateBatchInput) (*models.DeliveryBatch, error) {
	if err := requireRole(actor, models.RoleWarehouse); err != nil {
		return nil, err
	}
	if len(in.RequestIDs)+len(in.FurnitureRequestIDs) == 0 {
		return nil, fmt.Errorf("%w: batch needs at least one member", ErrValidation)
	}
	if _, err := s.Store.GetUnit(ctx, in.TargetUnitID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: unit %q does not exist", ErrValidation, in.TargetUnitID)
		}
		return nil, err
	}
	driver, err := s.Store.GetUser(ctx, in.DriverUserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: driver %q does not exist", ErrValidation, in.DriverUserID)
		}
		return nil, err
	}
	if driver.Role != models.RoleDriver {
		return nil, fmt.Errorf("%w: user %q is not a driver", ErrValidation, in.DriverUserID)
	}

	for _, id := range in.RequestIDs {
		r, err := s.Store.GetRequest(ctx, id)
		if err != nil {
			return nil, err
		}
		if r.Status != models.RequestStatusAwaitingPickup {
			return nil, fmt.Errorf("%w: request %s is %s, not %s", ErrInvalidTransition, id, r.Status, models.RequestStatusAwaitingPickup)
		}
		if r.RequestingUnitID != in.TargetUnitID {
			return nil, fmt.Errorf("%w: request %s targets unit %s", ErrValidation, id, r.RequestingUnitID)
		}
	}
	for _, id := range in.FurnitureRequestIDs {
		r, err := s.Store.GetFurnitureRequest(ctx, id)
		if err != nil {
			return nil, err
		}
		if !models.FurniturePreTransit(r.Status) {
			return nil, fmt.Errorf("%w: furniture request %s is %s", ErrInvalidTransition, id, r.Status)
		}
		if r.RequestingUnitID != in.TargetUnitID {
			return nil, fmt.Errorf("%w: furniture request %s targets unit %s", ErrValidation, id, r.RequestingUnitID)
		}
	}

	b := &models.DeliveryBatch{
		BatchID:             newID("BATCH"),
		RequestIDs:          in.RequestIDs,
		FurnitureRequestIDs: in.FurnitureRequestIDs,
		TargetUnitID:        in.TargetUnitID,
		DriverUserID:        in.DriverUserID,
		Status:              models.BatchStatusPending,
		Notes:               in.Notes,
		CreatedAt:           s.Now(),
	}
	// Membership check and claim happen atomically inside the store.
	if err := s.Store.CreateBatch(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// CancelBatch releases an undispatched batch; members become claimable
// again. There is no driver reassignment; cancel and recreate instead.
func (s *Service) CancelBatch(ctx context.Context, actor Actor, batchID string) (*models.DeliveryBatch, error) {
	if err := requireRole(actor, models.RoleWarehouse); err != nil {
		return nil, err
	}
	b, err := s.Store.GetBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	from := b.Status
	if !models.BatchCanTransition(from, models.BatchStatusCancelled) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, models.BatchStatusCancelled)
	}
	b.Status = models.BatchStatusCancelled
	if err := s.Store.UpdateBatch(ctx, b, from); err != nil {
		return nil, err
	}
	return b, nil
}

// DispatchBatch moves PENDING -> IN_TRANSIT: generates the batch QR token,
// stamps dispatchedAt and cascades every member out the door. Material
// requests go OUT_FOR_DELIVERY; furniture requests go IN_TRANSIT carrying
// the batch QR code.
func (s *Service) DispatchBatch(ctx context.Context, actor Actor, batchID string) (*models.DeliveryBatch, error) {
	b, err := s.Store.GetBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if !actor.hasRole(models.RoleWarehouse) && actor.UserID != b.DriverUserID {
		return nil, fmt.Errorf("%w: only the assigned driver or warehouse may dispatch", ErrForbidden)
	}
	from := b.Status
	if !models.BatchCanTransition(from, models.BatchStatusInTransit) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, models.BatchStatusInTransit)
	}
	now := s.Now()
	b.Status = models.BatchStatusInTransit
	b.QRCode = s.NewToken()
	b.DispatchedAt = timePtr(now)
	if err := s.Store.UpdateBatch(ctx, b, from); err != nil {
		return nil, err
	}

	for _, id := range b.RequestIDs {
		err := s.setRequestStatus(ctx, id, models.RequestStatusOutForDelivery, func(r *models.Request) {
			r.PickedUpByUserID = b.DriverUserID
			r.PickedUpAt = timePtr(now)
		})
		if err != nil {
			return nil, fmt.Errorf("cascading dispatch to %s: %w", id, err)
		}
	}
	for _, id := range b.FurnitureRequestIDs {
		err := s.setFurnitureStatus(ctx, id, models.FurnitureStatusInTransit, func(r *models.FurnitureRequest) {
			r.QRCode = b.QRCode
		})
		if err != nil {
			return nil, fmt.Errorf("cascading dispatch to %s: %w", id, err)
		}
	}
	return b, nil
}

// ConfirmDeliveryInput is the driver's drop-off attestation.
type ConfirmDeliveryInput struct {
	PhotoURL        string
	RecipientUserID string
	RecipientCode   string
	Location        *models.GeoPoint
	Notes           string
}

// ConfirmBatchDelivery is the scan-and-confirm path: the driver supplies
// photo evidence and validates the recipient's daily code at the moment of
// drop-off. Records the DELIVERY ledger entry and cascades members.
func (s *Service) ConfirmBatchDelivery(ctx context.Context, actor Actor, batchID string, in ConfirmDeliveryInput) (*models.DeliveryBatch, error) {
	b, err := s.Store.GetBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if !actor.hasRole() && actor.UserID != b.DriverUserID {
		return nil, fmt.Errorf("%w: only the assigned driver may confirm delivery", ErrForbidden)
	}
	if in.PhotoURL == "" {
		return nil, fmt.Errorf("%w: photo evidence is required", ErrValidation)
	}
	entries, err := s.Store.ListConfirmationsByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if hasConfirmation(entries, models.ConfirmationTypeDelivery) {
		return nil, store.ErrDuplicateConfirmation
	}
	from := b.Status
	if !models.BatchCanTransition(from, models.BatchStatusDeliveryConfirmed) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, models.BatchStatusDeliveryConfirmed)
	}
	if !dailycode.IsValid(in.RecipientUserID, in.RecipientCode, s.Now()) {
		return nil, ErrInvalidCode
	}

	now := s.Now()
	entry := &models.DeliveryConfirmation{
		ConfirmationID:    newID("CONF"),
		BatchID:           b.BatchID,
		Type:              models.ConfirmationTypeDelivery,
		ConfirmedByUserID: actor.UserID,
		ReceivedByUserID:  in.RecipientUserID,
		PhotoURL:          in.PhotoURL,
		Timestamp:         now,
		Location:          in.Location,
		Notes:             in.Notes,
	}
	// The append is the serialization point: under a race exactly one
	// confirmation lands, the loser sees DuplicateConfirmation.
	if err := s.recordConfirmation(ctx, entry); err != nil {
		return nil, err
	}
	b.Status = models.BatchStatusDeliveryConfirmed
	b.DeliveryConfirmedAt = timePtr(now)
	if err := s.Store.UpdateBatch(ctx, b, from); err != nil {
		return nil, err
	}
	if err := s.cascadeDelivered(ctx, b, now); err != nil {
		return nil, err
	}
	return b, nil
}

// ConfirmLaterInput is the deferred drop-off attestation.
type ConfirmLaterInput struct {
	PhotoURL string
	Location *models.GeoPoint
	Notes    string
}

// ConfirmBatchLater is the confirm-later path: the driver attests delivery
// happened (e.g. left at reception) without validating any recipient code.
// No recipient identity is captured, so the batch sits in the weaker-trust
// PENDING_CONFIRMATION state until an out-of-band receipt confirmation
// closes the loop. This path intentionally skips one of the two proofs.
func (s *Service) ConfirmBatchLater(ctx context.Context, actor Actor, batchID string, in ConfirmLaterInput) (*models.DeliveryBatch, error) {
	b, err := s.Store.GetBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if !actor.hasRole() && actor.UserID != b.DriverUserID {
		return nil, fmt.Errorf("%w: only the assigned driver may confirm delivery", ErrForbidden)
	}
	entries, err := s.Store.ListConfirmationsByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if hasConfirmation(entries, models.ConfirmationTypeDelivery) {
		return nil, store.ErrDuplicateConfirmation
	}
	from := b.Status
	if !models.BatchCanTransition(from, models.BatchStatusPendingConfirmation) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, models.BatchStatusPendingConfirmation)
	}

	now := s.Now()
	entry := &models.DeliveryConfirmation{
		ConfirmationID:    newID("CONF"),
		BatchID:           b.BatchID,
		Type:              models.ConfirmationTypeDelivery,
		ConfirmedByUserID: actor.UserID,
		PhotoURL:          in.PhotoURL,
		Timestamp:         now,
		Location:          in.Location,
		Notes:             in.Notes,
	}
	if err := s.recordConfirmation(ctx, entry); err != nil {
		return nil, err
	}
	b.Status = models.BatchStatusPendingConfirmation
	b.DeliveryConfirmedAt = timePtr(now)
	if err := s.Store.UpdateBatch(ctx, b, from); err != nil {
		return nil, err
	}
	if err := s.cascadeDelivered(ctx, b, now); err != nil {
		return nil, err
	}
	return b, nil
}

// cascadeDelivered applies the delivery entry's side effects to the
// members: material requests become DELIVERY_CONFIRMED, furniture requests
// become PENDING_CONFIRMATION (delivered but not yet received-confirmed).
func (s *Service) cascadeDelivered(ctx context.Context, b *models.DeliveryBatch, now time.Time) error {
	for _, id := range b.RequestIDs {
		if err := s.setRequestStatus(ctx, id, models.RequestStatusDeliveryConfirmed, nil); err != nil {
			return fmt.Errorf("cascading delivery to %s: %w", id, err)
		}
	}
	for _, id := range b.FurnitureRequestIDs {
		err := s.setFurnitureStatus(ctx, id, models.FurnitureStatusPendingConfirmation, func(r *models.FurnitureRequest) {
			r.DeliveredByUserID = b.DriverUserID
			r.DeliveredAt = timePtr(now)
		})
		if err != nil {
			return fmt.Errorf("cascading delivery to %s: %w", id, err)
		}
	}
	return nil
}

// ConfirmReceiptInput is the receiving side's proof of identity.
type ConfirmReceiptInput struct {
	Code     string
	PhotoURL string
	Location *models.GeoPoint
	Notes    string
}

// ConfirmBatchReceipt is the second, independent proof of the handoff: a
// unit controller (RECEIPT) or the original requester (REQUESTER) supplies
// their own daily code. Works from both DELIVERY_CONFIRMED and the
// weaker-trust PENDING_CONFIRMATION state; the latter jumps straight to
// RECEIVED_CONFIRMED once the code checks out. Completion of the batch and
// its members is handed to the coordinator.
func (s *Service) ConfirmBatchReceipt(ctx context.Context, actor Actor, batchID string, in ConfirmReceiptInput) (*models.DeliveryBatch, error) {
	if err := requireRole(actor, models.RoleController, models.RoleRequester); err != nil {
		return nil, err
	}
	b, err := s.Store.GetBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}

	entryType := models.ConfirmationTypeReceipt
	to := models.BatchStatusReceivedConfirmed
	if actor.Role == models.RoleRequester {
		// The requester path is only open to someone who actually owns a
		// member request of this batch.
		owns := false
		for _, id := range b.RequestIDs {
			r, err := s.Store.GetRequest(ctx, id)
			if err != nil {
				return nil, err
			}
			if r.RequestedByUserID == actor.UserID {
				owns = true
				break
			}
		}
		for _, id := range b.FurnitureRequestIDs {
			if owns {
				break
			}
			r, err := s.Store.GetFurnitureRequest(ctx, id)
			if err != nil {
				return nil, err
			}
			if r.RequestedByUserID == actor.UserID {
				owns = true
			}
		}
		if !owns {
			return nil, fmt.Errorf("%w: not the requester of any member of this batch", ErrForbidden)
		}
		entryType = models.ConfirmationTypeRequester
		to = models.BatchStatusConfirmedByRequester
	}

	entries, err := s.Store.ListConfirmationsByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if hasConfirmation(entries, models.ConfirmationTypeReceipt, models.ConfirmationTypeRequester) {
		return nil, store.ErrDuplicateConfirmation
	}
	// A DELIVERY entry must exist before any receipt-side entry.
	if !hasConfirmation(entries, models.ConfirmationTypeDelivery) {
		return nil, fmt.Errorf("%w: no delivery confirmation recorded yet", ErrInvalidTransition)
	}
	from := b.Status
	if !models.BatchCanTransition(from, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	if !dailycode.IsValid(actor.UserID, in.Code, s.Now()) {
		return nil, ErrInvalidCode
	}

	now := s.Now()
	entry := &models.DeliveryConfirmation{
		ConfirmationID:    newID("CONF"),
		BatchID:           b.BatchID,
		Type:              entryType,
		ConfirmedByUserID: actor.UserID,
		ReceivedByUserID:  actor.UserID,
		PhotoURL:          in.PhotoURL,
		Timestamp:         now,
		Location:          in.Location,
		Notes:             in.Notes,
	}
	if err := s.recordConfirmation(ctx, entry); err != nil {
		return nil, err
	}
	b.Status = to
	if to == models.BatchStatusConfirmedByRequester {
		b.ConfirmedByRequester = timePtr(now)
	} else {
		b.ReceivedConfirmedAt = timePtr(now)
	}
	if err := s.Store.UpdateBatch(ctx, b, from); err != nil {
		return nil, err
	}

	// Receipt-side cascade. Requests on the confirm-later path are still
	// DELIVERY_CONFIRMED by now because the deferred attestation cascaded
	// them when its DELIVERY entry was recorded.
	for _, id := range b.RequestIDs {
		if err := s.setRequestStatus(ctx, id, models.RequestStatusReceivedConfirmed, nil); err != nil {
			return nil, fmt.Errorf("cascading receipt to %s: %w", id, err)
		}
	}
	for _, id := range b.FurnitureRequestIDs {
		if err := s.setFurnitureStatus(ctx, id, models.FurnitureStatusCompleted, nil); err != nil {
			return nil, fmt.Errorf("cascading receipt to %s: %w", id, err)
		}
	}

	return s.completeBatchIfReady(ctx, actor, b.BatchID)
}
