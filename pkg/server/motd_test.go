package server

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadMOTDReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "motd.txt")
	content := "Welcome!\nRules:\n  - be nice\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	got := LoadMOTD(path)
	want := []string{"Welcome!", "Rules:", "  - be nice"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestLoadMOTDNormalizesCRLF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "motd.txt")
	if err := os.WriteFile(path, []byte("line one\r\nline two\r\n"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	got := LoadMOTD(path)
	want := []string{"line one", "line two"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestLoadMOTDMissingFileFallsBack(t *testing.T) {
	got := LoadMOTD(filepath.Join(t.TempDir(), "nope.txt"))
	if !reflect.DeepEqual(got, []string{DefaultMOTD}) {
		t.Fatalf("got %v, want default greeting", got)
	}
}

func TestLoadMOTDEmptyFileFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "motd.txt")
	if err := os.WriteFile(path, []byte("\n\n"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	got := LoadMOTD(path)
	if !reflect.DeepEqual(got, []string{DefaultMOTD}) {
		t.Fatalf("got %v, want default greeting", got)
	}
}
