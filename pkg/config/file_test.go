package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tallycalc/tally/pkg/utils/ptr"
)

func TestNewFileMissingUsesDefaults(t *testing.T) {
	f, err := NewFile(filepath.Join(t.TempDir(), "tally.json"))
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	if got := f.MaxDigits(); got != 9 {
		t.Errorf("MaxDigits() = %d, want 9", got)
	}
	if got := f.Precision(); got != 15 {
		t.Errorf("Precision() = %d, want 15", got)
	}
	if f.AllowNonRootAccess() {
		t.Errorf("AllowNonRootAccess() = true, want false")
	}
	if got := f.AutoClear(); got != "" {
		t.Errorf("AutoClear() = %q, want empty", got)
	}
}

func TestFileSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tally.json")
	f, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}

	f.SetMaxDigits(12)
	f.SetPrecision(10)
	f.SetAllowNonRootAccess(true)
	f.SetAutoClear("@every 30m")
	if err := f.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	g, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile after save: %v", err)
	}
	if got := g.MaxDigits(); got != 12 {
		t.Errorf("MaxDigits() = %d, want 12", got)
	}
	if got := g.Precision(); got != 10 {
		t.Errorf("Precision() = %d, want 10", got)
	}
	if !g.AllowNonRootAccess() {
		t.Errorf("AllowNonRootAccess() = false, want true")
	}
	if got := g.AutoClear(); got != "@every 30m" {
		t.Errorf("AutoClear() = %q, want %q", got, "@every 30m")
	}
}

func TestFileLoadEmptyAndPartial(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.json")
	if err := os.WriteFile(empty, []byte("  \n"), 0644); err != nil {
		t.Fatal(err)
	}
	f, err := NewFile(empty)
	if err != nil {
		t.Fatalf("NewFile(empty): %v", err)
	}
	if got := f.MaxDigits(); got != 9 {
		t.Errorf("MaxDigits() = %d, want 9", got)
	}

	partial := filepath.Join(dir, "partial.json")
	if err := os.WriteFile(partial, []byte(`{"precision": 4}`), 0644); err != nil {
		t.Fatal(err)
	}
	f, err = NewFile(partial)
	if err != nil {
		t.Fatalf("NewFile(partial): %v", err)
	}
	if got := f.Precision(); got != 4 {
		t.Errorf("Precision() = %d, want 4", got)
	}
	if got := f.MaxDigits(); got != 9 {
		t.Errorf("MaxDigits() = %d, want default 9", got)
	}
}

func TestFileLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "malformed json", content: `{"maxDigits":`},
		{name: "digits out of range", content: `{"maxDigits": 40}`},
		{name: "negative precision", content: `{"precision": -1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "tally.json")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := NewFile(path); err == nil {
				t.Errorf("NewFile(%s) succeeded, want error", tt.content)
			}
		})
	}
}

func TestNewRawFileConfigFromConfig(t *testing.T) {
	f := NewFileFromConfig(&RawFileConfig{MaxDigits: ptr.To(5)}, "")
	raw, err := NewRawFileConfigFromConfig(f)
	if err != nil {
		t.Fatalf("NewRawFileConfigFromConfig: %v", err)
	}
	if *raw.MaxDigits != 5 || *raw.Precision != 15 || *raw.AutoClear != "" {
		t.Errorf("raw config = %d/%d/%q, want 5/15/\"\"", *raw.MaxDigits, *raw.Precision, *raw.AutoClear)
	}

	if _, err := NewRawFileConfigFromConfig(nil); err == nil {
		t.Errorf("NewRawFileConfigFromConfig(nil) succeeded, want error")
	}
}

func TestSetMaxDigitsPanicsOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("SetMaxDigits(0) did not panic")
		}
	}()
	NewFileFromConfig(nil, "").SetMaxDigits(0)
}
