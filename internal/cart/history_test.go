package cart

import (
	"testing"

	"github.com/pawmart/storefront-backend/internal/upstream"
)

func TestCollapseOrdersGroupsByCode(t *testing.T) {
	t.Parallel()

	records := []upstream.OrderRecord{
		{
			OrderCode: "OC-1",
			Total:     100,
			CreatedAt: "2025-08-01T10:00:00Z",
			User:      upstream.OrderUser{ID: "an@example.com", Address: "12 Lê Lợi", Phone: "0901"},
			Products:  []upstream.DraftItem{{ProductID: "p1", Title: "Food A", Price: 100, Quantity: 1}},
		},
		{
			OrderCode: "OC-2",
			Total:     40,
			CreatedAt: "2025-08-02T09:00:00Z",
			User:      upstream.OrderUser{ID: "an@example.com", Address: "12 Lê Lợi", Phone: "0901"},
			Products:  []upstream.DraftItem{{ProductID: "p3", Title: "Leash", Price: 40, Quantity: 1}},
		},
		{
			OrderCode: "OC-1",
			Total:     50,
			CreatedAt: "2025-08-01T10:00:05Z",
			User:      upstream.OrderUser{ID: "other@example.com", Address: "elsewhere", Phone: "0999"},
			Products:  []upstream.DraftItem{{ProductID: "p2", Title: "Toy B", Price: 25, Quantity: 2}},
		},
	}

	orders := collapseOrders(records)
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}

	first := orders[0]
	if first.OrderCode != "OC-1" {
		t.Fatalf("first-appearance order must hold, got %q", first.OrderCode)
	}
	if first.TotalPrice != 150 {
		t.Fatalf("totals must sum across records, got %v", first.TotalPrice)
	}
	if len(first.Items) != 2 {
		t.Fatalf("items must concatenate, got %d", len(first.Items))
	}
	if first.Date != "2025-08-01T10:00:00Z" || first.Address != "12 Lê Lợi" || first.Phone != "0901" {
		t.Fatalf("metadata must come from the first record, got %+v", first)
	}
	if first.Email != "an@example.com" {
		t.Fatalf("email must come from the user id, got %q", first.Email)
	}
	if orders[1].OrderCode != "OC-2" || orders[1].TotalPrice != 40 {
		t.Fatalf("unexpected second order %+v", orders[1])
	}
}

func TestCollapseOrdersEmpty(t *testing.T) {
	t.Parallel()

	if got := collapseOrders(nil); len(got) != 0 {
		t.Fatalf("expected no orders, got %v", got)
	}
}
