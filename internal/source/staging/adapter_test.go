package staging

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, base, id, content string) {
	t.Helper()
	dir := filepath.Join(base, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFetchTrending_SkipsMalformedLines(t *testing.T) {
	base := t.TempDir()
	writeManifest(t, base, "classics", `{"id":"1","name":"Drake","url":"https://i.example/1.jpg","width":1200,"height":1200,"box_count":2}
not json

{"id":"","name":"no id","url":"https://i.example/x.jpg"}
{"id":"2","name":"Doge","url":"https://i.example/2.jpg"}
{"id":"1","name":"Drake again","url":"https://i.example/1b.jpg"}
`)

	a := NewAdapter(base, "classics")
	items, err := a.FetchTrending(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Name != "Drake" || items[0].BoxCount != 2 || items[0].Width != 1200 {
		t.Errorf("first item decoded wrong: %+v", items[0])
	}
	if items[1].ID != "2" {
		t.Errorf("second item id = %q", items[1].ID)
	}
	if a.GetSourceID() != "staging:classics" {
		t.Errorf("source id = %q", a.GetSourceID())
	}
}

func TestFetchTrending_MissingManifest(t *testing.T) {
	a := NewAdapter(t.TempDir(), "nope")
	if _, err := a.FetchTrending(context.Background()); err == nil {
		t.Error("expected error for missing manifest")
	}
}

func TestListStagingSources(t *testing.T) {
	base := t.TempDir()
	writeManifest(t, base, "a", "")
	if err := os.MkdirAll(filepath.Join(base, "empty"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := ListStagingSources(base)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "a" {
		t.Errorf("got %v, want [a]", got)
	}

	missing, err := ListStagingSources(filepath.Join(base, "missing"))
	if err != nil || len(missing) != 0 {
		t.Errorf("missing base: got %v, %v", missing, err)
	}
}
