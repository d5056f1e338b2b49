package storage

import (
	"io"
	"log/slog"
	"testing"

	"campusnav/models"
)

func testRepo(t *testing.T) *ProviderSQL {
	t.Helper()
	p, err := NewProviderSQL(":memory:", slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

func TestSearchPlaces(t *testing.T) {
	repo := testRepo(t)
	results, err := repo.SearchPlaces("gate", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("seeded gates not found")
	}
	for _, pl := range results {
		if pl.Lat == 0 || pl.Lon == 0 {
			t.Errorf("place %q missing coordinates", pl.Name)
		}
	}
	// LIKE match is substring, case-insensitive for ASCII
	none, err := repo.SearchPlaces("definitely-not-a-place", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("unexpected matches: %v", none)
	}
}

func TestSearchLimit(t *testing.T) {
	repo := testRepo(t)
	results, err := repo.SearchPlaces("", 3)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("limit ignored: got %d places", len(results))
	}
}

func TestUpsertAndGet(t *testing.T) {
	repo := testRepo(t)
	pl := &models.Place{ID: 9001, Name: "New Lab", Category: "laboratory", Lat: 8.9891, Lon: 7.3870}
	if err := repo.UpsertPlace(pl); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, err := repo.GetPlaceByID(9001)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "New Lab" || got.Lat != 8.9891 {
		t.Errorf("round trip mismatch: %+v", got)
	}
	// replace on same id
	pl.Name = "Renamed Lab"
	if err := repo.UpsertPlace(pl); err != nil {
		t.Fatalf("upsert replace: %v", err)
	}
	got, err = repo.GetPlaceByID(9001)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Renamed Lab" {
		t.Errorf("replace did not stick: %+v", got)
	}
}

func TestListCategories(t *testing.T) {
	repo := testRepo(t)
	cats, err := repo.ListCategories()
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(cats) == 0 {
		t.Fatal("no categories from seed data")
	}
	for i := 1; i < len(cats); i++ {
		if cats[i-1] > cats[i] {
			t.Errorf("categories not sorted: %v", cats)
		}
	}
}
