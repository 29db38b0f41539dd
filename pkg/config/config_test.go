package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type sample struct {
	Name string `yaml:"name"`
	Root string `yaml:"root"`
}

func (s *sample) Validate() error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("ITEMBOX_TEST_ROOT", "/tmp/items/")
	p := writeFile(t, "name: box\nroot: ${ITEMBOX_TEST_ROOT}\n")

	var s sample
	if err := Load(p, &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Root != "/tmp/items/" {
		t.Errorf("root = %q", s.Root)
	}
}

func TestLoadRunsValidator(t *testing.T) {
	p := writeFile(t, "root: ./items/\n")
	var s sample
	if err := Load(p, &s); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadOptionalMissingKeepsDefaults(t *testing.T) {
	s := sample{Name: "default", Root: "./items/"}
	found, err := LoadOptional(filepath.Join(t.TempDir(), "nope.yaml"), &s)
	if err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if found {
		t.Error("found = true for missing file")
	}
	if s.Name != "default" || s.Root != "./items/" {
		t.Errorf("defaults changed: %+v", s)
	}
}

func TestLoadOptionalOverlaysFile(t *testing.T) {
	p := writeFile(t, "root: /data/items/\n")
	s := sample{Name: "default", Root: "./items/"}
	found, err := LoadOptional(p, &s)
	if err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if !found {
		t.Error("found = false for existing file")
	}
	if s.Name != "default" || s.Root != "/data/items/" {
		t.Errorf("got %+v", s)
	}
}

func TestLoadOptionalExpandsAndRejectsLikeLoad(t *testing.T) {
	t.Setenv("ITEMBOX_TEST_NAME", "")
	p := writeFile(t, "name: ${ITEMBOX_TEST_NAME}\n")
	s := sample{Name: "default"}
	found, err := LoadOptional(p, &s)
	if !found {
		t.Error("found = false for existing file")
	}
	if err == nil {
		t.Fatal("expected validation error after env expansion emptied name")
	}

	p = writeFile(t, "name: [unterminated\n")
	if _, err := LoadOptional(p, &s); err == nil {
		t.Fatal("expected parse error")
	}
}
