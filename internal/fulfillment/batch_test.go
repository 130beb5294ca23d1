package fulfillment

import (
	"context"
	"errors"
	"testing"

	"unit-supply-api-server/internal/dailycode"
	"unit-supply-api-server/internal/models"
	"unit-supply-api-server/internal/store"
)

// stagedBatch builds a PENDING batch holding one material and one furniture
// request bound for unit-north.
func stagedBatch(t *testing.T, svc *Service) (*models.DeliveryBatch, *models.Request, *models.FurnitureRequest) {
	t.Helper()
	req := stagedRequest(t, svc)
	fr := stagedFurniture(t, svc)
	b, err := svc.CreateBatch(context.Background(), warehouse, CreateBatchInput{
		RequestIDs:          []string{req.RequestID},
		FurnitureRequestIDs: []string{fr.RequestID},
		TargetUnitID:        "unit-north",
		DriverUserID:        "drv-1",
	})
	if err != nil {
		t.Fatalf("creating batch: %v", err)
	}
	return b, req, fr
}

func TestCreateBatchValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	if _, err := svc.CreateBatch(ctx, warehouse, CreateBatchInput{TargetUnitID: "unit-north", DriverUserID: "drv-1"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("empty batch: expected ErrValidation, got %v", err)
	}

	req := stagedRequest(t, svc)
	if _, err := svc.CreateBatch(ctx, warehouse, CreateBatchInput{
		RequestIDs: []string{req.RequestID}, TargetUnitID: "unit-north", DriverUserID: "ctrl-1",
	}); !errors.Is(err, ErrValidation) {
		t.Fatalf("non-driver assignee: expected ErrValidation, got %v", err)
	}

	pending, err := svc.CreateRequest(ctx, requester, CreateRequestInput{
		ItemID: "item-paper-01", UnitID: "unit-north", Quantity: 1,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.CreateBatch(ctx, warehouse, CreateBatchInput{
		RequestIDs: []string{pending.RequestID}, TargetUnitID: "unit-north", DriverUserID: "drv-1",
	}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("unstaged member: expected ErrInvalidTransition, got %v", err)
	}
}

func TestBatchMembershipIsExclusive(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	_, req, _ := stagedBatch(t, svc)

	if _, err := svc.CreateBatch(ctx, warehouse, CreateBatchInput{
		RequestIDs: []string{req.RequestID}, TargetUnitID: "unit-north", DriverUserID: "drv-1",
	}); !errors.Is(err, store.ErrAlreadyBatched) {
		t.Fatalf("expected ErrAlreadyBatched, got %v", err)
	}
}

func TestCancelBatchReleasesMembers(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	b, req, fr := stagedBatch(t, svc)

	if _, err := svc.CancelBatch(ctx, warehouse, b.BatchID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	// The members are claimable again by a new batch.
	if _, err := svc.CreateBatch(ctx, warehouse, CreateBatchInput{
		RequestIDs:          []string{req.RequestID},
		FurnitureRequestIDs: []string{fr.RequestID},
		TargetUnitID:        "unit-north",
		DriverUserID:        "drv-1",
	}); err != nil {
		t.Fatalf("recreate after cancel: %v", err)
	}
}

func TestBatchScanAndConfirm(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	b, req, fr := stagedBatch(t, svc)

	b, err := svc.DispatchBatch(ctx, driver, b.BatchID)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if b.Status != models.BatchStatusInTransit || b.QRCode == "" || b.DispatchedAt == nil {
		t.Fatalf("dispatch did not stamp the batch: %+v", b)
	}

	gotReq, _ := svc.Store.GetRequest(ctx, req.RequestID)
	if gotReq.Status != models.RequestStatusOutForDelivery || gotReq.PickedUpByUserID != "drv-1" {
		t.Fatalf("request cascade failed: %s by %s", gotReq.Status, gotReq.PickedUpByUserID)
	}
	gotFr, _ := svc.Store.GetFurnitureRequest(ctx, fr.RequestID)
	if gotFr.Status != models.FurnitureStatusInTransit || gotFr.QRCode != b.QRCode {
		t.Fatalf("furniture cascade failed: %s qr=%q", gotFr.Status, gotFr.QRCode)
	}

	// The driver scans the controller's daily code at drop-off.
	b, err = svc.ConfirmBatchDelivery(ctx, driver, b.BatchID, ConfirmDeliveryInput{
		PhotoURL:        "https://photos/drop.jpg",
		RecipientUserID: "ctrl-1",
		RecipientCode:   dailycode.Code("ctrl-1", testNow),
	})
	if err != nil {
		t.Fatalf("confirm delivery: %v", err)
	}
	if b.Status != models.BatchStatusDeliveryConfirmed {
		t.Fatalf("expected DELIVERY_CONFIRMED, got %s", b.Status)
	}

	gotReq, _ = svc.Store.GetRequest(ctx, req.RequestID)
	if gotReq.Status != models.RequestStatusDeliveryConfirmed {
		t.Fatalf("request not cascaded: %s", gotReq.Status)
	}
	gotFr, _ = svc.Store.GetFurnitureRequest(ctx, fr.RequestID)
	if gotFr.Status != models.FurnitureStatusPendingConfirmation {
		t.Fatalf("furniture not cascaded: %s", gotFr.Status)
	}

	// The controller closes the loop with their own code; the coordinator
	// then completes every member and the batch itself.
	b, err = svc.ConfirmBatchReceipt(ctx, controller, b.BatchID, ConfirmReceiptInput{
		Code: dailycode.Code("ctrl-1", testNow),
	})
	if err != nil {
		t.Fatalf("confirm receipt: %v", err)
	}
	if b.Status != models.BatchStatusCompleted || b.CompletedAt == nil {
		t.Fatalf("expected COMPLETED batch, got %s", b.Status)
	}

	gotReq, _ = svc.Store.GetRequest(ctx, req.RequestID)
	if gotReq.Status != models.RequestStatusCompleted {
		t.Fatalf("request not completed: %s", gotReq.Status)
	}
	gotFr, _ = svc.Store.GetFurnitureRequest(ctx, fr.RequestID)
	if gotFr.Status != models.FurnitureStatusCompleted {
		t.Fatalf("furniture not completed: %s", gotFr.Status)
	}

	entries, err := svc.EntriesForBatch(ctx, b.BatchID)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 ledger entries, got %d", len(entries))
	}
	if entries[0].Type != models.ConfirmationTypeDelivery || entries[1].Type != models.ConfirmationTypeReceipt {
		t.Fatalf("unexpected entry order: %s, %s", entries[0].Type, entries[1].Type)
	}
}

func TestBatchConfirmLater(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	b, req, fr := stagedBatch(t, svc)

	if _, err := svc.DispatchBatch(ctx, driver, b.BatchID); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	b, err := svc.ConfirmBatchLater(ctx, driver, b.BatchID, ConfirmLaterInput{
		PhotoURL: "https://photos/reception.jpg",
		Notes:    "left at reception",
	})
	if err != nil {
		t.Fatalf("confirm later: %v", err)
	}
	if b.Status != models.BatchStatusPendingConfirmation {
		t.Fatalf("expected PENDING_CONFIRMATION, got %s", b.Status)
	}

	// The deferred attestation still records the DELIVERY entry; only the
	// recipient identity is missing.
	entries, _ := svc.EntriesForBatch(ctx, b.BatchID)
	if len(entries) != 1 || entries[0].Type != models.ConfirmationTypeDelivery {
		t.Fatalf("expected a single DELIVERY entry, got %v", entries)
	}
	if entries[0].ReceivedByUserID != "" {
		t.Fatalf("confirm-later must not capture a recipient, got %q", entries[0].ReceivedByUserID)
	}

	// The requester owns a member, so the requester path closes the batch.
	b, err = svc.ConfirmBatchReceipt(ctx, requester, b.BatchID, ConfirmReceiptInput{
		Code: dailycode.Code("req-1", testNow),
	})
	if err != nil {
		t.Fatalf("requester receipt: %v", err)
	}
	if b.Status != models.BatchStatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", b.Status)
	}

	entries, _ = svc.EntriesForBatch(ctx, b.BatchID)
	if len(entries) != 2 || entries[1].Type != models.ConfirmationTypeRequester {
		t.Fatalf("expected a REQUESTER entry, got %v", entries)
	}

	gotReq, _ := svc.Store.GetRequest(ctx, req.RequestID)
	gotFr, _ := svc.Store.GetFurnitureRequest(ctx, fr.RequestID)
	if gotReq.Status != models.RequestStatusCompleted || gotFr.Status != models.FurnitureStatusCompleted {
		t.Fatalf("members not completed: %s / %s", gotReq.Status, gotFr.Status)
	}
}

func TestDuplicateDeliveryConfirmation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	b, _, _ := stagedBatch(t, svc)

	if _, err := svc.DispatchBatch(ctx, driver, b.BatchID); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	in := ConfirmDeliveryInput{
		PhotoURL:        "https://photos/drop.jpg",
		RecipientUserID: "ctrl-1",
		RecipientCode:   dailycode.Code("ctrl-1", testNow),
	}
	if _, err := svc.ConfirmBatchDelivery(ctx, driver, b.BatchID, in); err != nil {
		t.Fatalf("first confirm: %v", err)
	}

	// Replays report duplication, not a generic transition error, so the
	// caller knows the first confirmation landed.
	if _, err := svc.ConfirmBatchDelivery(ctx, driver, b.BatchID, in); !errors.Is(err, store.ErrDuplicateConfirmation) {
		t.Fatalf("expected ErrDuplicateConfirmation, got %v", err)
	}
	if _, err := svc.ConfirmBatchLater(ctx, driver, b.BatchID, ConfirmLaterInput{}); !errors.Is(err, store.ErrDuplicateConfirmation) {
		t.Fatalf("confirm-later replay: expected ErrDuplicateConfirmation, got %v", err)
	}

	entries, _ := svc.EntriesForBatch(ctx, b.BatchID)
	if len(entries) != 1 {
		t.Fatalf("expected a single DELIVERY entry, got %d", len(entries))
	}
}

func TestConfirmDeliveryGuards(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	b, _, _ := stagedBatch(t, svc)

	if _, err := svc.DispatchBatch(ctx, driver, b.BatchID); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	if _, err := svc.ConfirmBatchDelivery(ctx, driver, b.BatchID, ConfirmDeliveryInput{
		RecipientUserID: "ctrl-1",
		RecipientCode:   dailycode.Code("ctrl-1", testNow),
	}); !errors.Is(err, ErrValidation) {
		t.Fatalf("missing photo: expected ErrValidation, got %v", err)
	}

	otherDriver := Actor{UserID: "drv-2", Role: models.RoleDriver}
	if _, err := svc.ConfirmBatchDelivery(ctx, otherDriver, b.BatchID, ConfirmDeliveryInput{
		PhotoURL:        "https://photos/drop.jpg",
		RecipientUserID: "ctrl-1",
		RecipientCode:   dailycode.Code("ctrl-1", testNow),
	}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("unassigned driver: expected ErrForbidden, got %v", err)
	}

	// Yesterday's code fails and nothing moves.
	if _, err := svc.ConfirmBatchDelivery(ctx, driver, b.BatchID, ConfirmDeliveryInput{
		PhotoURL:        "https://photos/drop.jpg",
		RecipientUserID: "ctrl-1",
		RecipientCode:   dailycode.Code("ctrl-1", testNow.AddDate(0, 0, -1)),
	}); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}

	got, _ := svc.Store.GetBatch(ctx, b.BatchID)
	if got.Status != models.BatchStatusInTransit {
		t.Fatalf("failed confirms must not advance the batch, got %s", got.Status)
	}
	entries, _ := svc.EntriesForBatch(ctx, b.BatchID)
	if len(entries) != 0 {
		t.Fatalf("failed confirms must not write ledger entries, got %d", len(entries))
	}
}

func TestConfirmReceiptRequiresDeliveryEntry(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	b, _, _ := stagedBatch(t, svc)

	if _, err := svc.DispatchBatch(ctx, driver, b.BatchID); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	// Receipt before any delivery attestation is out of order.
	if _, err := svc.ConfirmBatchReceipt(ctx, controller, b.BatchID, ConfirmReceiptInput{
		Code: dailycode.Code("ctrl-1", testNow),
	}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestConfirmReceiptRequesterMustOwnMember(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	b, _, _ := stagedBatch(t, svc)

	if _, err := svc.DispatchBatch(ctx, driver, b.BatchID); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if _, err := svc.ConfirmBatchLater(ctx, driver, b.BatchID, ConfirmLaterInput{}); err != nil {
		t.Fatalf("confirm later: %v", err)
	}

	outsider := Actor{UserID: "req-9", Role: models.RoleRequester, UnitID: "unit-north"}
	if _, err := svc.ConfirmBatchReceipt(ctx, outsider, b.BatchID, ConfirmReceiptInput{
		Code: dailycode.Code("req-9", testNow),
	}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestPendingForUser(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	b, _, _ := stagedBatch(t, svc)

	if _, err := svc.DispatchBatch(ctx, driver, b.BatchID); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if _, err := svc.ConfirmBatchLater(ctx, driver, b.BatchID, ConfirmLaterInput{}); err != nil {
		t.Fatalf("confirm later: %v", err)
	}

	// An individually dispatched furniture request awaiting the same user.
	fr := stagedFurniture(t, svc)
	if _, err := svc.DispatchFurniture(ctx, warehouse, fr.RequestID); err != nil {
		t.Fatalf("dispatch furniture: %v", err)
	}
	if _, err := svc.MarkFurnitureDelivered(ctx, driver, fr.RequestID, "https://photos/3.jpg", "", nil); err != nil {
		t.Fatalf("deliver furniture: %v", err)
	}

	// The unit controller sees the batch, not the furniture request they
	// never made.
	pending, err := svc.PendingForUser(ctx, "ctrl-1")
	if err != nil {
		t.Fatalf("pending for controller: %v", err)
	}
	if len(pending.Batches) != 1 || pending.Batches[0].BatchID != b.BatchID {
		t.Fatalf("controller batches: %v", pending.Batches)
	}
	if len(pending.FurnitureRequests) != 0 {
		t.Fatalf("controller furniture: %v", pending.FurnitureRequests)
	}

	// The requester owns a member of the batch and the individual request.
	pending, err = svc.PendingForUser(ctx, "req-1")
	if err != nil {
		t.Fatalf("pending for requester: %v", err)
	}
	if len(pending.Batches) != 1 {
		t.Fatalf("requester batches: %v", pending.Batches)
	}
	if len(pending.FurnitureRequests) != 1 || pending.FurnitureRequests[0].RequestID != fr.RequestID {
		t.Fatalf("requester furniture: %v", pending.FurnitureRequests)
	}

	// Nothing waits on the driver.
	pending, err = svc.PendingForUser(ctx, "drv-1")
	if err != nil {
		t.Fatalf("pending for driver: %v", err)
	}
	if len(pending.Batches) != 0 || len(pending.FurnitureRequests) != 0 {
		t.Fatalf("driver should have nothing pending: %+v", pending)
	}
}
