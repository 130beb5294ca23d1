package fulfillment

import (
	"context"
	"fmt"
	"testing"
	"time"

	"unit-supply-api-server/internal/models"
	"unit-supply-api-server/internal/stock"
	"unit-supply-api-server/internal/store"
)

var testNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

var (
	requester  = Actor{UserID: "req-1", Role: models.RoleRequester, UnitID: "unit-north"}
	controller = Actor{UserID: "ctrl-1", Role: models.RoleController, UnitID: "unit-north"}
	warehouse  = Actor{UserID: "wh-1", Role: models.RoleWarehouse, UnitID: "warehouse"}
	driver     = Actor{UserID: "drv-1", Role: models.RoleDriver, UnitID: "warehouse"}
	designer   = Actor{UserID: "dsg-1", Role: models.RoleDesigner, UnitID: "warehouse"}
)

// newTestService builds a Service over the in-memory store with a pinned
// clock and a deterministic token source.
func newTestService(t *testing.T) (*Service, *store.Memory, *stock.MemoryAdjuster) {
	t.Helper()
	st := store.NewMemory()
	adj := stock.NewMemoryAdjuster()
	svc := NewService(st, adj)
	svc.Now = func() time.Time { return testNow }
	tokens := 0
	svc.NewToken = func() string {
		tokens++
		return fmt.Sprintf("token-%d", tokens)
	}
	seedFixtures(t, st)
	return svc, st, adj
}

func seedFixtures(t *testing.T, st store.Store) {
	t.Helper()
	ctx := context.Background()

	items := []models.Item{
		{ItemID: "item-paper-01", Name: "Printer paper", IsFurniture: false},
		{ItemID: "item-desk-01", Name: "Standing desk", IsFurniture: true},
	}
	for i := range items {
		if err := st.InsertItem(ctx, &items[i]); err != nil {
			t.Fatalf("seeding item: %v", err)
		}
	}

	unit := models.Unit{UnitID: "unit-north", Name: "North unit", ControllerUserID: "ctrl-1"}
	if err := st.InsertUnit(ctx, &unit); err != nil {
		t.Fatalf("seeding unit: %v", err)
	}

	users := []models.User{
		{UserID: "req-1", Email: "req@example.com", Role: models.RoleRequester, UnitID: "unit-north", Status: "active"},
		{UserID: "ctrl-1", Email: "ctrl@example.com", Role: models.RoleController, UnitID: "unit-north", Status: "active"},
		{UserID: "wh-1", Email: "wh@example.com", Role: models.RoleWarehouse, UnitID: "warehouse", Status: "active"},
		{UserID: "drv-1", Email: "drv@example.com", Role: models.RoleDriver, UnitID: "warehouse", Status: "active"},
		{UserID: "dsg-1", Email: "dsg@example.com", Role: models.RoleDesigner, UnitID: "warehouse", Status: "active"},
	}
	for i := range users {
		if err := st.InsertUser(ctx, &users[i]); err != nil {
			t.Fatalf("seeding user: %v", err)
		}
	}
}

// stagedRequest brings a fresh material request to AWAITING_PICKUP.
func stagedRequest(t *testing.T, svc *Service) *models.Request {
	t.Helper()
	ctx := context.Background()
	r, err := svc.CreateRequest(ctx, requester, CreateRequestInput{
		ItemID: "item-paper-01", UnitID: "unit-north", Quantity: 3,
	})
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}
	if _, err := svc.ApproveRequest(ctx, controller, r.RequestID, ""); err != nil {
		t.Fatalf("approving request: %v", err)
	}
	if _, err := svc.StartProcessing(ctx, warehouse, r.RequestID); err != nil {
		t.Fatalf("processing request: %v", err)
	}
	r, err = svc.MarkAwaitingPickup(ctx, warehouse, r.RequestID)
	if err != nil {
		t.Fatalf("staging request: %v", err)
	}
	return r
}

// stagedFurniture brings a fresh furniture request to APPROVED_STORAGE.
func stagedFurniture(t *testing.T, svc *Service) *models.FurnitureRequest {
	t.Helper()
	ctx := context.Background()
	r, err := svc.CreateFurnitureRequest(ctx, requester, CreateFurnitureInput{
		ItemID: "item-desk-01", UnitID: "unit-north", Quantity: 1,
		Location: "Room 12", Justification: "replacing a broken desk",
	})
	if err != nil {
		t.Fatalf("creating furniture request: %v", err)
	}
	if _, err := svc.ApproveByDesigner(ctx, designer, r.RequestID, ""); err != nil {
		t.Fatalf("designer approval: %v", err)
	}
	r, err = svc.ApproveByStorage(ctx, warehouse, r.RequestID)
	if err != nil {
		t.Fatalf("storage approval: %v", err)
	}
	return r
}
