package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/matzehuels/waterfall/pkg/dashboard"
	wferrors "github.com/matzehuels/waterfall/pkg/errors"
)

func samplePayload(title string) dashboard.Payload {
	return dashboard.Payload{
		Title:      title,
		WeekLabels: []string{"W1", "W2"},
		WeekDeltas: []float64{5, -2},
	}
}

// testStore exercises the Store contract against any backend.
func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	first := &Dashboard{Payload: samplePayload("Older"), CreatedAt: base}
	second := &Dashboard{Payload: samplePayload("Newer"), CreatedAt: base.Add(time.Hour)}
	for _, d := range []*Dashboard{first, second} {
		if err := s.Save(ctx, d); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if d.ID == "" {
			t.Fatal("Save should assign an id")
		}
	}
	if first.Title != "Older" {
		t.Errorf("Title should default to payload title, got %q", first.Title)
	}

	got, err := s.Get(ctx, first.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Older" || !got.CreatedAt.Equal(base) {
		t.Errorf("Get() = %+v", got)
	}
	if len(got.Payload.WeekDeltas) != 2 || got.Payload.WeekDeltas[1] != -2 {
		t.Errorf("payload = %+v", got.Payload)
	}

	list, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != second.ID || list[1].ID != first.ID {
		t.Errorf("List order wrong: %+v", list)
	}
	if limited, _ := s.List(ctx, 1); len(limited) != 1 {
		t.Errorf("List(1) returned %d", len(limited))
	}

	first.Title = "Renamed"
	if err := s.Save(ctx, first); err != nil {
		t.Fatalf("Save (replace): %v", err)
	}
	if got, _ := s.Get(ctx, first.ID); got == nil || got.Title != "Renamed" {
		t.Errorf("replace did not persist: %+v", got)
	}

	if err := s.Delete(ctx, first.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, first.ID); !wferrors.Is(err, wferrors.ErrCodeNotFound) {
		t.Errorf("Get after Delete = %v, want NOT_FOUND", err)
	}
	if err := s.Delete(ctx, first.ID); !wferrors.Is(err, wferrors.ErrCodeNotFound) {
		t.Errorf("second Delete = %v, want NOT_FOUND", err)
	}
	if _, err := s.Get(ctx, "not-a-uuid"); !wferrors.Is(err, wferrors.ErrCodeNotFound) {
		t.Errorf("Get(garbage) = %v, want NOT_FOUND", err)
	}

	bad := &Dashboard{}
	if err := s.Save(ctx, bad); !wferrors.Is(err, wferrors.ErrCodeEmptyInput) {
		t.Errorf("Save(empty payload) = %v, want EMPTY_INPUT", err)
	}
	badID := &Dashboard{ID: "nope", Payload: samplePayload("")}
	if err := s.Save(ctx, badID); !wferrors.Is(err, wferrors.ErrCodeInvalidInput) {
		t.Errorf("Save(bad id) = %v, want INVALID_INPUT", err)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close(context.Background())
	testStore(t, s)
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("WATERFALL_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("WATERFALL_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	s, err := NewMongoStore(ctx, MongoOptions{
		URI:        uri,
		Database:   "waterfall_test",
		Collection: "dashboards_" + NewID()[:8],
	})
	if err != nil {
		t.Fatalf("NewMongoStore: %v", err)
	}
	defer func() {
		_ = s.coll.Drop(ctx)
		_ = s.Close(ctx)
	}()
	testStore(t, s)
}

func TestNewMongoStoreRequiresConfig(t *testing.T) {
	_, err := NewMongoStore(context.Background(), MongoOptions{})
	if !wferrors.Is(err, wferrors.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want INVALID_CONFIG", err)
	}
}

func TestParseID(t *testing.T) {
	id := NewID()
	got, err := ParseID(id)
	if err != nil || got != id {
		t.Errorf("ParseID(%q) = %q, %v", id, got, err)
	}
	if _, err := ParseID("../etc/passwd"); err == nil {
		t.Error("expected error for non-uuid id")
	}
}
