package render

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadStyleOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "style.yaml")
	data := "background: \"#000000\"\ngrid_spacing: 40\nhud: false\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	st, err := LoadStyle(path)
	if err != nil {
		t.Fatalf("LoadStyle: %v", err)
	}
	if st.Background != "#000000" || st.GridSpacing != 40 || st.HUD {
		t.Fatalf("overrides not applied: %+v", st)
	}
	if st.SelectedStroke != DefaultStyle().SelectedStroke {
		t.Fatalf("missing keys should keep defaults, got %q", st.SelectedStroke)
	}
}

func TestLoadStyleRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "style.yaml")
	if err := os.WriteFile(path, []byte("grid_spacing: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadStyle(path); err == nil {
		t.Fatal("expected error for zero grid spacing")
	}

	if _, err := LoadStyle(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
