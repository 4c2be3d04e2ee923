package telemetry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pthm-cable/windflow/systems"
)

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()

	region := systems.Bounds{West: 92, South: -11, East: 141, North: 28}
	view := systems.Bounds{West: 100, South: 0, East: 120, North: 15}
	field := systems.NewFieldSynthesizer(30, 500).Synthesize(view.Intersect(region), 10)

	snap := NewFieldSnapshot(42, 1000, "canvas", view, field)
	path := filepath.Join(tmpDir, "field.json")
	if err := SaveSnapshot(snap, path); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if loaded.RNGSeed != 42 || loaded.Frame != 1000 || loaded.Renderer != "canvas" {
		t.Errorf("header = %d/%d/%q", loaded.RNGSeed, loaded.Frame, loaded.Renderer)
	}
	if loaded.View.Bounds() != view {
		t.Errorf("view = %+v, want %+v", loaded.View.Bounds(), view)
	}

	got := loaded.Field()
	if diff := cmp.Diff(field, got); diff != "" {
		t.Fatalf("rebuilt field differs (-want +got):\n%s", diff)
	}

	// The rebuilt field must answer lookups exactly like the original
	p := systems.LngLat{Lng: 111.3, Lat: 7.7}
	a, _ := systems.Nearest(field, p)
	b, _ := systems.Nearest(got, p)
	if a != b {
		t.Errorf("nearest = %+v, want %+v", b, a)
	}
}

func TestLoadSnapshotRejectsVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.json")
	if err := os.WriteFile(path, []byte(`{"version": 99}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSnapshot(path); err == nil {
		t.Error("expected version mismatch error")
	}
}

func TestLoadSnapshotMissingFile(t *testing.T) {
	if _, err := LoadSnapshot(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
