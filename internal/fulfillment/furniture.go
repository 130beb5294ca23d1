package fulfillment

import (
	"context"
	"errors"
	"fmt"

	"unit-supply-api-server/internal/dailycode"
	"unit-supply-api-server/internal/models"
	"unit-supply-api-server/internal/store"
)

// CreateFurnitureInput is the payload for a new furniture request.
type CreateFurnitureInput struct {
	ItemID        string
	UnitID        string
	Quantity      int
	Location      string
	Justification string
}

// CreateFurnitureRequest opens a furniture request in PENDING_DESIGNER.
func (s *Service) CreateFurnitureRequest(ctx context.Context, actor Actor, in CreateFurnitureInput) (*models.FurnitureRequest, error) {
	if err := requireRole(actor, models.RoleRequester, models.RoleController); err != nil {
		return nil, err
	}
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}
	if in.Location == "" || in.Justification == "" {
		return nil, fmt.Errorf("%w: location and justification are required", ErrValidation)
	}
	item, err := s.Store.GetItem(ctx, in.ItemID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: item %q does not exist", ErrValidation, in.ItemID)
		}
		return nil, err
	}
	if !item.IsFurniture {
		return nil, fmt.Errorf("%w: item %q is not furniture", ErrValidation, in.ItemID)
	}
	if _, err := s.Store.GetUnit(ctx, in.UnitID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: unit %q does not exist", ErrValidation, in.UnitID)
		}
		return nil, err
	}

	r := &models.FurnitureRequest{
		RequestID:         newID("FREQ"),
		ItemID:            in.ItemID,
		RequestingUnitID:  in.UnitID,
		RequestedByUserID: actor.UserID,
		Quantity:          in.Quantity,
		Location:          in.Location,
		Justification:     in.Justification,
		Status:            models.FurnitureStatusPendingDesigner,
		CreatedAt:         s.Now(),
	}
	if err := s.Store.InsertFurnitureRequest(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// ApproveByDesigner moves PENDING_DESIGNER -> APPROVED_DESIGNER.
func (s *Service) ApproveByDesigner(ctx context.Context, actor Actor, requestID, observations string) (*models.FurnitureRequest, error) {
	if err := requireRole(actor, models.RoleDesigner); err != nil {
		return nil, err
	}
	r, err := s.Store.GetFurnitureRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	from := r.Status
	if !models.FurnitureCanTransition(from, models.FurnitureStatusApprovedDesigner) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, models.FurnitureStatusApprovedDesigner)
	}
	r.Status = models.FurnitureStatusApprovedDesigner
	r.ReviewedByDesignerID = actor.UserID
	if observations != "" {
		r.Observations = observations
	}
	if err := s.Store.UpdateFurnitureRequest(ctx, r, from); err != nil {
		return nil, err
	}
	return r, nil
}

// RejectFurnitureRequest rejects during review; a reason is mandatory.
func (s *Service) RejectFurnitureRequest(ctx context.Context, actor Actor, requestID, reason string) (*models.FurnitureRequest, error) {
	if err := requireRole(actor, models.RoleDesigner, models.RoleWarehouse); err != nil {
		return nil, err
	}
	if reason == "" {
		return nil, fmt.Errorf("%w: rejection requires a reason", ErrValidation)
	}
	r, err := s.Store.GetFurnitureRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	from := r.Status
	if !models.FurnitureCanTransition(from, models.FurnitureStatusRejected) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, models.FurnitureStatusRejected)
	}
	r.Status = models.FurnitureStatusRejected
	r.RejectionReason = reason
	if err := s.Store.UpdateFurnitureRequest(ctx, r, from); err != nil {
		return nil, err
	}
	return r, nil
}

// ApproveByStorage is the second sign-off before physical handling. It must
// come from a different person than the designer review.
func (s *Service) ApproveByStorage(ctx context.Context, actor Actor, requestID string) (*models.FurnitureRequest, error) {
	if err := requireRole(actor, models.RoleWarehouse); err != nil {
		return nil, err
	}
	r, err := s.Store.GetFurnitureRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if actor.UserID == r.ReviewedByDesignerID {
		return nil, fmt.Errorf("%w: storage approval must be independent of the designer review", ErrForbidden)
	}
	from := r.Status
	if !models.FurnitureCanTransition(from, models.FurnitureStatusApprovedStorage) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, models.FurnitureStatusApprovedStorage)
	}
	r.Status = models.FurnitureStatusApprovedStorage
	r.ApprovedByStorageUser = actor.UserID
	if err := s.Store.UpdateFurnitureRequest(ctx, r, from); err != nil {
		return nil, err
	}
	return r, nil
}

// MarkSeparated records that the piece was set aside for delivery.
func (s *Service) MarkSeparated(ctx context.Context, actor Actor, requestID string) (*models.FurnitureRequest, error) {
	return s.furnitureStep(ctx, actor, requestID, models.FurnitureStatusSeparated, nil)
}

// MarkAwaitingDelivery records that the piece is staged for a driver.
func (s *Service) MarkAwaitingDelivery(ctx context.Context, actor Actor, requestID string) (*models.FurnitureRequest, error) {
	return s.furnitureStep(ctx, actor, requestID, models.FurnitureStatusAwaitingDelivery, nil)
}

func (s *Service) furnitureStep(ctx context.Context, actor Actor, requestID, to string, mutate func(*models.FurnitureRequest)) (*models.FurnitureRequest, error) {
	if err := requireRole(actor, models.RoleWarehouse); err != nil {
		return nil, err
	}
	r, err := s.Store.GetFurnitureRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	from := r.Status
	if !models.FurnitureCanTransition(from, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	r.Status = to
	if mutate != nil {
		mutate(r)
	}
	if err := s.Store.UpdateFurnitureRequest(ctx, r, from); err != nil {
		return nil, err
	}
	return r, nil
}

// DispatchFurniture sends a single furniture request out without a batch.
// The QR token is generated here; IN_TRANSIT always carries a non-empty
// qrCode.
func (s *Service) DispatchFurniture(ctx context.Context, actor Actor, requestID string) (*models.FurnitureRequest, error) {
	if err := requireRole(actor, models.RoleWarehouse, models.RoleDriver); err != nil {
		return nil, err
	}
	r, err := s.Store.GetFurnitureRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	from := r.Status
	if !models.FurnitureCanTransition(from, models.FurnitureStatusInTransit) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, models.FurnitureStatusInTransit)
	}
	if r.QRCode == "" {
		r.QRCode = s.NewToken()
	}
	r.Status = models.FurnitureStatusInTransit
	if err := s.Store.UpdateFurnitureRequest(ctx, r, from); err != nil {
		return nil, err
	}
	return r, nil
}

// MarkFurnitureDelivered is the driver's delivered-but-unconfirmed step for
// an individually dispatched request: IN_TRANSIT -> PENDING_CONFIRMATION
// plus a DELIVERY ledger entry.
func (s *Service) MarkFurnitureDelivered(ctx context.Context, actor Actor, requestID, photoURL, notes string, location *models.GeoPoint) (*models.FurnitureRequest, error) {
	if err := requireRole(actor, models.RoleDriver); err != nil {
		return nil, err
	}
	r, err := s.Store.GetFurnitureRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	from := r.Status
	if !models.FurnitureCanTransition(from, models.FurnitureStatusPendingConfirmation) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, models.FurnitureStatusPendingConfirmation)
	}
	entry := &models.DeliveryConfirmation{
		ConfirmationID:     newID("CONF"),
		FurnitureRequestID: r.RequestID,
		Type:               models.ConfirmationTypeDelivery,
		ConfirmedByUserID:  actor.UserID,
		PhotoURL:           photoURL,
		Timestamp:          s.Now(),
		Location:           location,
		Notes:              notes,
	}
	if err := s.recordConfirmation(ctx, entry); err != nil {
		return nil, err
	}
	r.Status = models.FurnitureStatusPendingConfirmation
	r.DeliveredByUserID = actor.UserID
	r.DeliveredAt = timePtr(s.Now())
	if notes != "" {
		r.Observations = notes
	}
	if err := s.Store.UpdateFurnitureRequest(ctx, r, from); err != nil {
		return nil, err
	}
	return r, nil
}

// ConfirmFurnitureReceipt closes an individually dispatched furniture
// request. The receiving party proves identity with their own daily code;
// the entry is recorded as RECEIPT and the request completes.
func (s *Service) ConfirmFurnitureReceipt(ctx context.Context, actor Actor, requestID, code, photoURL, notes string) (*models.FurnitureRequest, error) {
	if err := requireRole(actor, models.RoleController, models.RoleRequester); err != nil {
		return nil, err
	}
	r, err := s.Store.GetFurnitureRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	from := r.Status
	if !models.FurnitureCanTransition(from, models.FurnitureStatusCompleted) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, models.FurnitureStatusCompleted)
	}
	if !dailycode.IsValid(actor.UserID, code, s.Now()) {
		return nil, ErrInvalidCode
	}
	entry := &models.DeliveryConfirmation{
		ConfirmationID:     newID("CONF"),
		FurnitureRequestID: r.RequestID,
		Type:               models.ConfirmationTypeReceipt,
		ConfirmedByUserID:  actor.UserID,
		ReceivedByUserID:   actor.UserID,
		PhotoURL:           photoURL,
		Timestamp:          s.Now(),
		Notes:              notes,
	}
	if err := s.recordConfirmation(ctx, entry); err != nil {
		return nil, err
	}
	r.Status = models.FurnitureStatusCompleted
	if err := s.Store.UpdateFurnitureRequest(ctx, r, from); err != nil {
		return nil, err
	}
	return r, nil
}

// setFurnitureStatus is the batch-cascade helper.
func (s *Service) setFurnitureStatus(ctx context.Context, requestID, to string, mutate func(*models.FurnitureRequest)) error {
	r, err := s.Store.GetFurnitureRequest(ctx, requestID)
	if err != nil {
		return err
	}
	from := r.Status
	if !models.FurnitureCanTransition(from, to) {
		return fmt.Errorf("%w: %s: %s -> %s", ErrInvalidTransition, requestID, from, to)
	}
	r.Status = to
	if mutate != nil {
		mutate(r)
	}
	return s.Store.UpdateFurnitureRequest(ctx, r, from)
}
