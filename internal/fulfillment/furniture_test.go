package fulfillment

import (
	"context"
	"errors"
	"testing"

	"unit-supply-api-server/internal/dailycode"
	"unit-supply-api-server/internal/models"
)

func TestFurnitureLifecycleIndividualDispatch(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	r := stagedFurniture(t, svc)
	if r.ReviewedByDesignerID != "dsg-1" || r.ApprovedByStorageUser != "wh-1" {
		t.Fatal("sign-off metadata not recorded")
	}

	if _, err := svc.MarkSeparated(ctx, warehouse, r.RequestID); err != nil {
		t.Fatalf("separate: %v", err)
	}
	if _, err := svc.MarkAwaitingDelivery(ctx, warehouse, r.RequestID); err != nil {
		t.Fatalf("stage: %v", err)
	}

	r2, err := svc.DispatchFurniture(ctx, warehouse, r.RequestID)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if r2.Status != models.FurnitureStatusInTransit || r2.QRCode == "" {
		t.Fatalf("expected IN_TRANSIT with a QR token, got %s %q", r2.Status, r2.QRCode)
	}

	r2, err = svc.MarkFurnitureDelivered(ctx, driver, r.RequestID, "https://photos/1.jpg", "left in room 12", nil)
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if r2.Status != models.FurnitureStatusPendingConfirmation {
		t.Fatalf("expected PENDING_CONFIRMATION, got %s", r2.Status)
	}

	code := dailycode.Code(requester.UserID, testNow)
	r2, err = svc.ConfirmFurnitureReceipt(ctx, requester, r.RequestID, code, "", "")
	if err != nil {
		t.Fatalf("confirm receipt: %v", err)
	}
	if r2.Status != models.FurnitureStatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", r2.Status)
	}

	entries, err := svc.EntriesForFurnitureRequest(ctx, r.RequestID)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected DELIVERY and RECEIPT entries, got %d", len(entries))
	}
	if entries[0].Type != models.ConfirmationTypeDelivery || entries[1].Type != models.ConfirmationTypeReceipt {
		t.Fatalf("unexpected entry order: %s, %s", entries[0].Type, entries[1].Type)
	}
}

func TestStorageApprovalMustBeIndependent(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	r, err := svc.CreateFurnitureRequest(ctx, requester, CreateFurnitureInput{
		ItemID: "item-desk-01", UnitID: "unit-north", Quantity: 1,
		Location: "Room 3", Justification: "new hire",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.ApproveByDesigner(ctx, designer, r.RequestID, ""); err != nil {
		t.Fatalf("designer approve: %v", err)
	}

	// The same person wearing a storage hat cannot provide the second
	// sign-off.
	sameUser := Actor{UserID: "dsg-1", Role: models.RoleWarehouse}
	if _, err := svc.ApproveByStorage(ctx, sameUser, r.RequestID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	if _, err := svc.ApproveByStorage(ctx, warehouse, r.RequestID); err != nil {
		t.Fatalf("independent storage approve: %v", err)
	}
}

func TestFurnitureRejectionWindow(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	r, err := svc.CreateFurnitureRequest(ctx, requester, CreateFurnitureInput{
		ItemID: "item-desk-01", UnitID: "unit-north", Quantity: 1,
		Location: "Room 3", Justification: "new hire",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.RejectFurnitureRequest(ctx, designer, r.RequestID, ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("reject without reason: expected ErrValidation, got %v", err)
	}

	r2 := stagedFurniture(t, svc)
	// After the storage sign-off the rejection window is closed.
	if _, err := svc.RejectFurnitureRequest(ctx, warehouse, r2.RequestID, "wrong size"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestCreateFurnitureRequestValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	tests := []struct {
		name string
		in   CreateFurnitureInput
	}{
		{"not furniture", CreateFurnitureInput{ItemID: "item-paper-01", UnitID: "unit-north", Quantity: 1, Location: "A", Justification: "B"}},
		{"missing location", CreateFurnitureInput{ItemID: "item-desk-01", UnitID: "unit-north", Quantity: 1, Justification: "B"}},
		{"missing justification", CreateFurnitureInput{ItemID: "item-desk-01", UnitID: "unit-north", Quantity: 1, Location: "A"}},
		{"zero quantity", CreateFurnitureInput{ItemID: "item-desk-01", UnitID: "unit-north", Location: "A", Justification: "B"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateFurnitureRequest(ctx, requester, tt.in); !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestConfirmFurnitureReceiptRejectsBadCode(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	r := stagedFurniture(t, svc)
	if _, err := svc.DispatchFurniture(ctx, warehouse, r.RequestID); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if _, err := svc.MarkFurnitureDelivered(ctx, driver, r.RequestID, "https://photos/2.jpg", "", nil); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	// Yesterday's code is already rotated out.
	stale := dailycode.Code(requester.UserID, testNow.AddDate(0, 0, -1))
	if _, err := svc.ConfirmFurnitureReceipt(ctx, requester, r.RequestID, stale, "", ""); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}

	// Someone else's valid code does not prove this actor's identity.
	other := dailycode.Code("ctrl-1", testNow)
	if _, err := svc.ConfirmFurnitureReceipt(ctx, requester, r.RequestID, other, "", ""); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}

	got, err := svc.Store.GetFurnitureRequest(ctx, r.RequestID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != models.FurnitureStatusPendingConfirmation {
		t.Fatalf("failed confirms must not advance the request, got %s", got.Status)
	}

	// The formatted rendering of the right code is accepted.
	formatted := dailycode.Format(dailycode.Code(requester.UserID, testNow))
	if _, err := svc.ConfirmFurnitureReceipt(ctx, requester, r.RequestID, formatted, "", ""); err != nil {
		t.Fatalf("formatted code: %v", err)
	}
}
