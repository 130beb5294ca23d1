package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"unit-supply-api-server/internal/models"
	"unit-supply-api-server/internal/store"
)

// Removal review decisions.
const (
	RemovalDecisionStorage  = "STORAGE"
	RemovalDecisionDisposal = "DISPOSAL"
)

// CreateRemovalInput is the payload for retiring furniture from a unit.
type CreateRemovalInput struct {
	ItemID   string
	UnitID   string
	Quantity int
	Reason   string
}

// CreateRemoval opens a removal request in PENDING.
func (s *Service) CreateRemoval(ctx context.Context, actor Actor, in CreateRemovalInput) (*models.RemovalRequest, error) {
	if err := requireRole(actor, models.RoleRequester, models.RoleController); err != nil {
		return nil, err
	}
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}
	if in.Reason == "" {
		return nil, fmt.Errorf("%w: reason is required", ErrValidation)
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

	r := &models.RemovalRequest{
		RequestID:         newID("FREM"),
		ItemID:            in.ItemID,
		UnitID:            in.UnitID,
		RequestedByUserID: actor.UserID,
		Quantity:          in.Quantity,
		Reason:            in.Reason,
		Status:            models.RemovalStatusPending,
		CreatedAt:         s.Now(),
	}
	if err := s.Store.InsertRemoval(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// ReviewRemoval applies the binary storage/disposal decision. A disposal
// decision without a justification fails with ErrMissingJustification; it
// never silently falls back to storage.
func (s *Service) ReviewRemoval(ctx context.Context, actor Actor, requestID, decision, justification string) (*models.RemovalRequest, error) {
	if err := requireRole(actor, models.RoleWarehouse); err != nil {
		return nil, err
	}
	var to string
	switch strings.ToUpper(decision) {
	case RemovalDecisionStorage:
		to = models.RemovalStatusApprovedStorage
	case RemovalDecisionDisposal:
		if strings.TrimSpace(justification) == "" {
			return nil, ErrMissingJustification
		}
		to = models.RemovalStatusApprovedDisposal
	default:
		return nil, fmt.Errorf("%w: decision must be STORAGE or DISPOSAL", ErrValidation)
	}

	r, err := s.Store.GetRemoval(ctx, requestID)
	if err != nil {
		return nil, err
	}
	from := r.Status
	if !models.RemovalCanTransition(from, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	r.Status = to
	r.ReviewedByUserID = actor.UserID
	r.ReviewedAt = timePtr(s.Now())
	if to == models.RemovalStatusApprovedDisposal {
		r.DisposalJustification = justification
	}
	if err := s.Store.UpdateRemoval(ctx, r, from); err != nil {
		return nil, err
	}
	return r, nil
}

// RejectRemoval rejects a pending removal; a reason is mandatory.
func (s *Service) RejectRemoval(ctx context.Context, actor Actor, requestID, reason string) (*models.RemovalRequest, error) {
	if err := requireRole(actor, models.RoleWarehouse); err != nil {
		return nil, err
	}
	if reason == "" {
		return nil, fmt.Errorf("%w: rejection requires a reason", ErrValidation)
	}
	r, err := s.Store.GetRemoval(ctx, requestID)
	if err != nil {
		return nil, err
	}
	from := r.Status
	if !models.RemovalCanTransition(from, models.RemovalStatusRejected) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, models.RemovalStatusRejected)
	}
	r.Status = models.RemovalStatusRejected
	r.RejectedReason = reason
	if err := s.Store.UpdateRemoval(ctx, r, from); err != nil {
		return nil, err
	}
	return r, nil
}

// ScheduleRemovalPickup stages an approved removal for a driver.
func (s *Service) ScheduleRemovalPickup(ctx context.Context, actor Actor, requestID string) (*models.RemovalRequest, error) {
	if err := requireRole(actor, models.RoleWarehouse); err != nil {
		return nil, err
	}
	r, err := s.Store.GetRemoval(ctx, requestID)
	if err != nil {
		return nil, err
	}
	from := r.Status
	if !models.RemovalCanTransition(from, models.RemovalStatusAwaitingPickup) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, models.RemovalStatusAwaitingPickup)
	}
	r.Status = models.RemovalStatusAwaitingPickup
	if err := s.Store.UpdateRemoval(ctx, r, from); err != nil {
		return nil, err
	}
	return r, nil
}

// PickUpRemoval records the driver collecting the piece at the unit.
func (s *Service) PickUpRemoval(ctx context.Context, actor Actor, requestID string) (*models.RemovalRequest, error) {
	if err := requireRole(actor, models.RoleDriver); err != nil {
		return nil, err
	}
	r, err := s.Store.GetRemoval(ctx, requestID)
	if err != nil {
		return nil, err
	}
	from := r.Status
	if !models.RemovalCanTransition(from, models.RemovalStatusInTransit) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, models.RemovalStatusInTransit)
	}
	r.Status = models.RemovalStatusInTransit
	r.PickedUpByUserID = actor.UserID
	r.PickedUpAt = timePtr(s.Now())
	if err := s.Store.UpdateRemoval(ctx, r, from); err != nil {
		return nil, err
	}
	return r, nil
}

// CompleteRemoval records receipt at the destination (warehouse for storage,
// disposal point for disposal). The receiving party is an internal operator,
// so no QR or daily-code check applies at this handoff.
func (s *Service) CompleteRemoval(ctx context.Context, actor Actor, requestID string) (*models.RemovalRequest, error) {
	if err := requireRole(actor, models.RoleWarehouse); err != nil {
		return nil, err
	}
	r, err := s.Store.GetRemoval(ctx, requestID)
	if err != nil {
		return nil, err
	}
	from := r.Status
	if !models.RemovalCanTransition(from, models.RemovalStatusCompleted) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, models.RemovalStatusCompleted)
	}
	r.Status = models.RemovalStatusCompleted
	r.ReceivedByUserID = actor.UserID
	r.ReceivedAt = timePtr(s.Now())
	if err := s.Store.UpdateRemoval(ctx, r, from); err != nil {
		return nil, err
	}
	return r, nil
}
