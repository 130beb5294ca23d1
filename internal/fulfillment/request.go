package fulfillment

import (
	"context"
	"errors"
	"fmt"

	"unit-supply-api-server/internal/models"
	"unit-supply-api-server/internal/store"
)

// CreateRequestInput is the payload for a new material request.
type CreateRequestInput struct {
	ItemID       string
	UnitID       string
	Quantity     int
	Urgency      string
	Observations string
}

// CreateRequest opens a material request in PENDING.
func (s *Service) CreateRequest(ctx context.Context, actor Actor, in CreateRequestInput) (*models.Request, error) {
	if err := requireRole(actor, models.RoleRequester, models.RoleController); err != nil {
		return nil, err
	}
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}
	if in.Urgency == "" {
		in.Urgency = models.UrgencyMedium
	}
	if !models.ValidUrgency(in.Urgency) {
		return nil, fmt.Errorf("%w: unknown urgency %q", ErrValidation, in.Urgency)
	}
	if _, err := s.Store.GetItem(ctx, in.ItemID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: item %q does not exist", ErrValidation, in.ItemID)
		}
		return nil, err
	}
	if _, err := s.Store.GetUnit(ctx, in.UnitID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: unit %q does not exist", ErrValidation, in.UnitID)
		}
		return nil, err
	}

	r := &models.Request{
		RequestID:         newID("REQ"),
		ItemID:            in.ItemID,
		RequestingUnitID:  in.UnitID,
		RequestedByUserID: actor.UserID,
		Quantity:          in.Quantity,
		Urgency:           in.Urgency,
		Status:            models.RequestStatusPending,
		Observations:      in.Observations,
		CreatedAt:         s.Now(),
	}
	if err := s.Store.InsertRequest(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// ApproveRequest moves PENDING -> APPROVED, recording the approving user.
func (s *Service) ApproveRequest(ctx context.Context, actor Actor, requestID, observations string) (*models.Request, error) {
	if err := requireRole(actor, models.RoleController); err != nil {
		return nil, err
	}
	r, err := s.Store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	from := r.Status
	if !models.RequestCanTransition(from, models.RequestStatusApproved) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, models.RequestStatusApproved)
	}
	r.Status = models.RequestStatusApproved
	r.ApprovedByUserID = actor.UserID
	r.ApprovedAt = timePtr(s.Now())
	if observations != "" {
		r.Observations = observations
	}
	if err := s.Store.UpdateRequest(ctx, r, from); err != nil {
		return nil, err
	}
	return r, nil
}

// RejectRequest is reachable from every pre-dispatch state and requires a
// reason. Once the request is out for delivery it can no longer be rejected.
func (s *Service) RejectRequest(ctx context.Context, actor Actor, requestID, reason string) (*models.Request, error) {
	if err := requireRole(actor, models.RoleController, models.RoleWarehouse); err != nil {
		return nil, err
	}
	if reason == "" {
		return nil, fmt.Errorf("%w: rejection requires a reason", ErrValidation)
	}
	r, err := s.Store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	from := r.Status
	if !models.RequestCanTransition(from, models.RequestStatusRejected) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, models.RequestStatusRejected)
	}
	r.Status = models.RequestStatusRejected
	r.RejectedReason = reason
	if err := s.Store.UpdateRequest(ctx, r, from); err != nil {
		return nil, err
	}
	return r, nil
}

// CancelRequest is allowed only while PENDING or APPROVED. From PROCESSING
// on, the stock side effect may already have fired and the call fails with
// ErrTooLateToCancel.
func (s *Service) CancelRequest(ctx context.Context, actor Actor, requestID string) (*models.Request, error) {
	r, err := s.Store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !actor.hasRole(models.RoleController) && actor.UserID != r.RequestedByUserID {
		return nil, fmt.Errorf("%w: only the requester may cancel", ErrForbidden)
	}
	from := r.Status
	if models.RequestCanTransition(from, models.RequestStatusCancelled) {
		r.Status = models.RequestStatusCancelled
		if err := s.Store.UpdateRequest(ctx, r, from); err != nil {
			return nil, err
		}
		return r, nil
	}
	if models.RequestStatusTerminal(from) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, models.RequestStatusCancelled)
	}
	return nil, ErrTooLateToCancel
}

// StartProcessing moves APPROVED -> PROCESSING and fires the stock
// adjustment. The adjustment runs first under an operation id derived from
// the request id, so a replay after a lost race decrements exactly once.
func (s *Service) StartProcessing(ctx context.Context, actor Actor, requestID string) (*models.Request, error) {
	if err := requireRole(actor, models.RoleWarehouse); err != nil {
		return nil, err
	}
	r, err := s.Store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	from := r.Status
	if !models.RequestCanTransition(from, models.RequestStatusProcessing) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, models.RequestStatusProcessing)
	}
	opID := "stock-" + r.RequestID
	if err := s.Stock.AdjustStock(ctx, opID, r.ItemID, actor.UnitID, -r.Quantity); err != nil {
		return nil, fmt.Errorf("adjusting stock for %s: %w", r.RequestID, err)
	}
	r.Status = models.RequestStatusProcessing
	if err := s.Store.UpdateRequest(ctx, r, from); err != nil {
		return nil, err
	}
	return r, nil
}

// MarkAwaitingPickup moves PROCESSING -> AWAITING_PICKUP; the request is now
// eligible for batching.
func (s *Service) MarkAwaitingPickup(ctx context.Context, actor Actor, requestID string) (*models.Request, error) {
	if err := requireRole(actor, models.RoleWarehouse); err != nil {
		return nil, err
	}
	r, err := s.Store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	from := r.Status
	if !models.RequestCanTransition(from, models.RequestStatusAwaitingPickup) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, models.RequestStatusAwaitingPickup)
	}
	r.Status = models.RequestStatusAwaitingPickup
	if err := s.Store.UpdateRequest(ctx, r, from); err != nil {
		return nil, err
	}
	return r, nil
}

// setRequestStatus is the batch-cascade helper: it applies a single forward
// edge that only the owning batch may drive.
func (s *Service) setRequestStatus(ctx context.Context, requestID, to string, mutate func(*models.Request)) error {
	r, err := s.Store.GetRequest(ctx, requestID)
	if err != nil {
		return err
	}
	from := r.Status
	if !models.RequestCanTransition(from, to) {
		return fmt.Errorf("%w: %s: %s -> %s", ErrInvalidTransition, requestID, from, to)
	}
	r.Status = to
	if mutate != nil {
		mutate(r)
	}
	return s.Store.UpdateRequest(ctx, r, from)
}
