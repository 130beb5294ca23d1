package fulfillment

import (
	"context"
	"errors"
	"testing"

	"unit-supply-api-server/internal/models"
)

func newRemoval(t *testing.T, svc *Service) *models.RemovalRequest {
	t.Helper()
	r, err := svc.CreateRemoval(context.Background(), requester, CreateRemovalInput{
		ItemID: "item-desk-01", UnitID: "unit-north", Quantity: 1, Reason: "no longer needed",
	})
	if err != nil {
		t.Fatalf("create removal: %v", err)
	}
	return r
}

func TestRemovalDisposalRequiresJustification(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	r := newRemoval(t, svc)

	// Disposal with a blank justification must fail without falling back to
	// the storage decision.
	if _, err := svc.ReviewRemoval(ctx, warehouse, r.RequestID, "DISPOSAL", "  "); !errors.Is(err, ErrMissingJustification) {
		t.Fatalf("expected ErrMissingJustification, got %v", err)
	}
	got, err := svc.Store.GetRemoval(ctx, r.RequestID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != models.RemovalStatusPending {
		t.Fatalf("failed review must leave the request PENDING, got %s", got.Status)
	}

	// The retry with a justification succeeds.
	got, err = svc.ReviewRemoval(ctx, warehouse, r.RequestID, "DISPOSAL", "unit danificado")
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if got.Status != models.RemovalStatusApprovedDisposal {
		t.Fatalf("expected APPROVED_DISPOSAL, got %s", got.Status)
	}
	if got.DisposalJustification != "unit danificado" {
		t.Fatalf("justification not recorded: %q", got.DisposalJustification)
	}
	if got.ReviewedByUserID != "wh-1" || got.ReviewedAt == nil {
		t.Fatal("review metadata not recorded")
	}
}

func TestRemovalStorageDecision(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	r := newRemoval(t, svc)

	got, err := svc.ReviewRemoval(ctx, warehouse, r.RequestID, "storage", "")
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if got.Status != models.RemovalStatusApprovedStorage {
		t.Fatalf("expected APPROVED_STORAGE, got %s", got.Status)
	}

	if _, err := svc.ReviewRemoval(ctx, warehouse, r.RequestID, "BURN", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown decision, got %v", err)
	}
}

func TestRemovalFullFlow(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	r := newRemoval(t, svc)

	if _, err := svc.ReviewRemoval(ctx, warehouse, r.RequestID, "STORAGE", ""); err != nil {
		t.Fatalf("review: %v", err)
	}
	if _, err := svc.ScheduleRemovalPickup(ctx, warehouse, r.RequestID); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	got, err := svc.PickUpRemoval(ctx, driver, r.RequestID)
	if err != nil {
		t.Fatalf("pickup: %v", err)
	}
	if got.PickedUpByUserID != "drv-1" || got.PickedUpAt == nil {
		t.Fatal("pickup metadata not recorded")
	}

	got, err = svc.CompleteRemoval(ctx, warehouse, r.RequestID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got.Status != models.RemovalStatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", got.Status)
	}
	if got.ReceivedByUserID != "wh-1" || got.ReceivedAt == nil {
		t.Fatal("receipt metadata not recorded")
	}
}

func TestRemovalRejectOnlyWhilePending(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	r := newRemoval(t, svc)

	if _, err := svc.RejectRemoval(ctx, warehouse, r.RequestID, ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("reject without reason: expected ErrValidation, got %v", err)
	}

	if _, err := svc.ReviewRemoval(ctx, warehouse, r.RequestID, "STORAGE", ""); err != nil {
		t.Fatalf("review: %v", err)
	}
	if _, err := svc.RejectRemoval(ctx, warehouse, r.RequestID, "changed my mind"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("reject after review: expected ErrInvalidTransition, got %v", err)
	}
}
