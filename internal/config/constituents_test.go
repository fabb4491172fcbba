package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConstituents(t *testing.T) {
	set := DefaultConstituents()
	if len(set) != 30 {
		t.Fatalf("expected 30 constituents, got %d", len(set))
	}
	for _, code := range []string{"GP", "BRACBANK", "ROBI", "WALTONHIL"} {
		if !set.Contains(code) {
			t.Errorf("expected %s in default set", code)
		}
	}
}

func TestLoadConstituentFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ds30.txt")
	content := "# revised list\nGP\nbracbank\n\nROBI\nGP\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	set, err := LoadConstituentFile(path)
	if err != nil {
		t.Fatalf("LoadConstituentFile: %v", err)
	}

	if len(set) != 3 {
		t.Fatalf("expected 3 entries after dedup, got %d", len(set))
	}
	if !set.Contains("BRACBANK") {
		t.Error("codes should be upcased")
	}

	list := ConstituentList(set)
	if len(list) != 3 || list[0] != "BRACBANK" || list[2] != "ROBI" {
		t.Errorf("unexpected sorted list: %v", list)
	}
}

func TestLoadConstituentFile_Errors(t *testing.T) {
	if _, err := LoadConstituentFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(path, []byte("# only comments\n\n"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := LoadConstituentFile(path); err == nil {
		t.Error("expected error for empty list")
	}
}
