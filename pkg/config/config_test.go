package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hemesh.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	c := Default()
	if err := c.Check(); err != nil {
		t.Errorf("Default().Check() = %v", err)
	}
	if c.Levels != 1 || !c.Validate || c.Workers < 1 {
		t.Errorf("Default() = %+v", c)
	}
	if _, err := c.Options(); err != nil {
		t.Errorf("Default().Options() error = %v", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeFile(t, "input: mesh.obj\nlevels: 3\nboundary: fixed\n")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Input != "mesh.obj" || c.Levels != 3 || c.Boundary != "fixed" {
		t.Errorf("Load() = %+v", c)
	}
	// Untouched keys keep their defaults.
	if c.Weld != Default().Weld || !c.Validate {
		t.Errorf("defaults lost: %+v", c)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	c, err := Load(writeFile(t, ""))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c != Default() {
		t.Errorf("Load(empty) = %+v, want defaults", c)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown key", "levels: 1\ncolour: red\n", "colour"},
		{"negative levels", "levels: -2\n", "levels"},
		{"negative workers", "workers: -1\n", "workers"},
		{"negative weld", "weld: -0.5\n", "weld"},
		{"bad boundary", "boundary: sharp\n", "sharp"},
		{"not yaml", "levels: [\n", "hemesh.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.content))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error = %v, want a not-exist error", err)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	want := Default()
	want.Input = "in.obj"
	want.Output = "out.obj"
	want.Levels = 2
	want.Workers = 4
	if err := Save(path, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != want {
		t.Errorf("Load(Save(c)) = %+v, want %+v", got, want)
	}
}
