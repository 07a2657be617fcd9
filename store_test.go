package grove

import (
	"errors"
	"testing"
)

func TestStoreLookupUnknownTag(t *testing.T) {
	s := NewAssetStore()
	h, err := s.Lookup("ship")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if h != NoHandle {
		t.Errorf("handle = %d, want NoHandle", h)
	}
}

func TestStoreLookupBeforeResolve(t *testing.T) {
	s := NewAssetStore()
	if err := s.insert("ship", 7); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Lookup("ship"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unresolved lookup err = %v, want ErrNotFound", err)
	}
	if s.Resolved("ship") {
		t.Error("Resolved before resolve")
	}

	s.resolve("ship")
	h, err := s.Lookup("ship")
	if err != nil {
		t.Fatalf("resolved lookup: %v", err)
	}
	if h != 7 {
		t.Errorf("handle = %d, want 7", h)
	}
}

func TestStoreInsertDuplicate(t *testing.T) {
	s := NewAssetStore()
	if err := s.insert("ship", 1); err != nil {
		t.Fatal(err)
	}
	if err := s.insert("ship", 2); !errors.Is(err, ErrDuplicateTag) {
		t.Fatalf("err = %v, want ErrDuplicateTag", err)
	}
	if err := s.insertResolved("ship", 3); !errors.Is(err, ErrDuplicateTag) {
		t.Fatalf("insertResolved err = %v, want ErrDuplicateTag", err)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

func TestStoreTagsSorted(t *testing.T) {
	s := NewAssetStore()
	for i, tag := range []string{"wall", "dragon", "main_menu"} {
		if err := s.insert(tag, Handle(i+1)); err != nil {
			t.Fatal(err)
		}
	}
	got := s.Tags()
	want := []string{"dragon", "main_menu", "wall"}
	if len(got) != len(want) {
		t.Fatalf("Tags = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Tags[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestStoreUnresolvedInTagOrder(t *testing.T) {
	s := NewAssetStore()
	s.insert("b", 2)
	s.insert("a", 1)
	s.insert("c", 3)
	s.resolve("b")

	got := s.unresolved()
	if len(got) != 2 {
		t.Fatalf("expected 2 unresolved, got %d", len(got))
	}
	if got[0].tag != "a" || got[1].tag != "c" {
		t.Errorf("unresolved = %+v, want a then c", got)
	}
}

func TestMustLookupPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unknown tag")
		}
	}()
	NewAssetStore().MustLookup("missing")
}

func TestBaseTag(t *testing.T) {
	if got := BaseTag("ship"); got != "ship_base" {
		t.Errorf("BaseTag = %q, want ship_base", got)
	}
}

func TestParseAssetKind(t *testing.T) {
	for _, k := range []AssetKind{KindImage, KindSound, KindSpriteSheet} {
		got, err := ParseAssetKind(k.String())
		if err != nil {
			t.Fatalf("ParseAssetKind(%q): %v", k.String(), err)
		}
		if got != k {
			t.Errorf("ParseAssetKind(%q) = %v, want %v", k.String(), got, k)
		}
	}
	if _, err := ParseAssetKind("video"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestSheetGeometryFrames(t *testing.T) {
	g := SheetGeometry{TileWidth: 62, TileHeight: 65, Columns: 4, Rows: 1}
	if g.Frames() != 4 {
		t.Errorf("Frames = %d, want 4", g.Frames())
	}
	if !g.valid() {
		t.Error("expected valid geometry")
	}
	g.Rows = 0
	if g.valid() {
		t.Error("zero rows should be invalid")
	}
}
