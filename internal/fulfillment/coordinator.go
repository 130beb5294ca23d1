package fulfillment

import (
	"context"
	"errors"
	"fmt"

	"unit-supply-api-server/internal/models"
	"unit-supply-api-server/internal/store"
)

// completeBatchIfReady fires the batch's terminal transition once every
// member has independently reached its delivered sub-state
// (RECEIVED_CONFIRMED for material, COMPLETED for furniture). No single
// entity fires completion unilaterally; this aggregation is the
// coordinator's job.
func (s *Service) completeBatchIfReady(ctx context.Context, actor Actor, batchID string) (*models.DeliveryBatch, error) {
	b, err := s.Store.GetBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if !models.BatchCanTransition(b.Status, models.BatchStatusCompleted) {
		return b, nil
	}
	for _, id := range b.RequestIDs {
		r, err := s.Store.GetRequest(ctx, id)
		if err != nil {
			return nil, err
		}
		if r.Status != models.RequestStatusReceivedConfirmed {
			return b, nil
		}
	}
	for _, id := range b.FurnitureRequestIDs {
		r, err := s.Store.GetFurnitureRequest(ctx, id)
		if err != nil {
			return nil, err
		}
		if r.Status != models.FurnitureStatusCompleted {
			return b, nil
		}
	}

	now := s.Now()
	for _, id := range b.RequestIDs {
		err := s.setRequestStatus(ctx, id, models.RequestStatusCompleted, func(r *models.Request) {
			r.CompletedByUserID = actor.UserID
			r.CompletedAt = timePtr(now)
		})
		if err != nil {
			return nil, fmt.Errorf("completing %s: %w", id, err)
		}
	}
	from := b.Status
	b.Status = models.BatchStatusCompleted
	b.CompletedAt = timePtr(now)
	if err := s.Store.UpdateBatch(ctx, b, from); err != nil {
		// A concurrent caller may have completed the batch already.
		if errors.Is(err, store.ErrStaleState) {
			return s.Store.GetBatch(ctx, batchID)
		}
		return nil, err
	}
	return b, nil
}

// PendingWork is everything awaiting one specific user's confirmation.
type PendingWork struct {
	Batches           []models.DeliveryBatch    `json:"batches"`
	FurnitureRequests []models.FurnitureRequest `json:"furnitureRequests"`
}

// PendingForUser joins batch membership, unit controllers and requester
// identity to answer "what is waiting on me": batches sitting in a
// post-delivery, pre-receipt state where the user is either the target
// unit's controller or the requester of a member, plus individually
// dispatched furniture requests the user created that are awaiting their
// code.
func (s *Service) PendingForUser(ctx context.Context, userID string) (*PendingWork, error) {
	out := &PendingWork{
		Batches:           []models.DeliveryBatch{},
		FurnitureRequests: []models.FurnitureRequest{},
	}

	for _, status := range []string{models.BatchStatusDeliveryConfirmed, models.BatchStatusPendingConfirmation} {
		batches, err := s.Store.ListBatches(ctx, store.Filter{Status: status})
		if err != nil {
			return nil, err
		}
		for _, b := range batches {
			waiting, err := s.awaitsUser(ctx, &b, userID)
			if err != nil {
				return nil, err
			}
			if waiting {
				out.Batches = append(out.Batches, b)
			}
		}
	}

	pending, err := s.Store.ListFurnitureRequests(ctx, store.Filter{
		Status:      models.FurnitureStatusPendingConfirmation,
		RequestedBy: userID,
	})
	if err != nil {
		return nil, err
	}
	for _, r := range pending {
		// Batch-managed furniture is confirmed through its batch, not
		// individually.
		if open, err := s.openBatchFor(ctx, r.RequestID); err != nil {
			return nil, err
		} else if open == nil {
			out.FurnitureRequests = append(out.FurnitureRequests, r)
		}
	}
	return out, nil
}

func (s *Service) awaitsUser(ctx context.Context, b *models.DeliveryBatch, userID string) (bool, error) {
	unit, err := s.Store.GetUnit(ctx, b.TargetUnitID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return false, err
	}
	if unit != nil && unit.ControllerUserID == userID {
		return true, nil
	}
	for _, id := range b.RequestIDs {
		r, err := s.Store.GetRequest(ctx, id)
		if err != nil {
			return false, err
		}
		if r.RequestedByUserID == userID {
			return true, nil
		}
	}
	for _, id := range b.FurnitureRequestIDs {
		r, err := s.Store.GetFurnitureRequest(ctx, id)
		if err != nil {
			return false, err
		}
		if r.RequestedByUserID == userID {
			return true, nil
		}
	}
	return false, nil
}

// openBatchFor returns the non-terminal batch holding the member id, or nil.
func (s *Service) openBatchFor(ctx context.Context, memberID string) (*models.DeliveryBatch, error) {
	batches, err := s.Store.ListBatches(ctx, store.Filter{})
	if err != nil {
		return nil, err
	}
	for i := range batches {
		b := &batches[i]
		if models.BatchStatusTerminal(b.Status) {
			continue
		}
		for _, id := range b.Members() {
			if id == memberID {
				return b, nil
			}
		}
	}
	return nil, nil
}
