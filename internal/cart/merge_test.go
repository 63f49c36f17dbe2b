package cart

import "testing"

func TestDedupeLinesSumsQuantities(t *testing.T) {
	t.Parallel()

	merged, _ := dedupeLines([]Line{
		{ProductID: "p1", Title: "Food A", Brand: "PetCo", Image: "/a.jpg", Price: 100, Quantity: 2},
		{ProductID: "p2", Title: "Toy B", Brand: "PetCo", Image: "/b.jpg", Price: 50, Quantity: 1},
		{ProductID: "p1", Title: "ignored", Quantity: 3},
	})

	if len(merged) != 2 {
		t.Fatalf("expected 2 merged lines, got %d", len(merged))
	}
	if merged[0].ProductID != "p1" || merged[0].Quantity != 5 {
		t.Fatalf("expected p1 quantity 5, got %+v", merged[0])
	}
	if merged[0].Title != "Food A" {
		t.Fatalf("first-seen metadata must win, got title %q", merged[0].Title)
	}
	if merged[1].ProductID != "p2" {
		t.Fatalf("insertion order must hold, got %q second", merged[1].ProductID)
	}
}

func TestDedupeLinesAppliesFallbacks(t *testing.T) {
	t.Parallel()

	merged, incomplete := dedupeLines([]Line{
		{ProductID: "p1", Quantity: 1},
		{ProductID: "p2", Title: "Toy B", Brand: "PetCo", Image: "/b.jpg", Price: 50, Quantity: 1},
	})

	got := merged[0]
	if got.Image != FallbackImage || got.Brand != FallbackBrand || got.Title != FallbackTitle {
		t.Fatalf("fallbacks not applied: %+v", got)
	}
	if len(incomplete) != 1 || incomplete[0] != "p1" {
		t.Fatalf("expected only p1 marked incomplete, got %v", incomplete)
	}
}

func TestDedupeLinesReportsIncompleteOnce(t *testing.T) {
	t.Parallel()

	_, incomplete := dedupeLines([]Line{
		{ProductID: "p1", Quantity: 1},
		{ProductID: "p1", Quantity: 2},
	})
	if len(incomplete) != 1 {
		t.Fatalf("duplicate candidate must not repeat in incomplete list: %v", incomplete)
	}
}

func TestParseDisplayPrice(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"150₫", 150, true},
		{"1.5", 1.5, true},
		{"  99 VND ", 99, true},
		{"miễn phí", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseDisplayPrice(tc.raw)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("parseDisplayPrice(%q) = %v, %v; want %v, %v", tc.raw, got, ok, tc.want, tc.ok)
		}
	}
}
