package fulfillment

import (
	"context"
	"log"

	"unit-supply-api-server/internal/models"
)

// recordConfirmation appends one entry to the confirmation ledger. The store
// guarantees the idempotent-append semantics (one entry per subject+type);
// anchoring failures are logged and do not fail the business transition,
// since the anchor can be replayed from the ledger later.
func (s *Service) recordConfirmation(ctx context.Context, c *models.DeliveryConfirmation) error {
	if err := s.Store.AppendConfirmation(ctx, c); err != nil {
		return err
	}
	if s.Anchor != nil {
		if err := s.Anchor.AnchorConfirmation(ctx, c); err != nil {
			log.Printf("Failed to anchor confirmation %s: %v", c.ConfirmationID, err)
		}
	}
	return nil
}

// EntriesForBatch returns the ledger entries for a batch in insertion order.
func (s *Service) EntriesForBatch(ctx context.Context, batchID string) ([]models.DeliveryConfirmation, error) {
	return s.Store.ListConfirmationsByBatch(ctx, batchID)
}

// EntriesForFurnitureRequest returns the ledger entries for an individually
// dispatched furniture request in insertion order.
func (s *Service) EntriesForFurnitureRequest(ctx context.Context, requestID string) ([]models.DeliveryConfirmation, error) {
	return s.Store.ListConfirmationsByFurnitureRequest(ctx, requestID)
}

func hasConfirmation(entries []models.DeliveryConfirmation, types ...string) bool {
	for _, e := range entries {
		for _, t := range types {
			if e.Type == t {
				return true
			}
		}
	}
	return false
}
