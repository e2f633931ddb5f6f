package haptic

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFormatDetection(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"a.ahap", FormatSparse},
		{"a.haptic", FormatDense},
		{"a.HAPTIC", FormatDense},
		{"a.json", FormatSparse},
	}
	for _, tt := range tests {
		if got := FormatFromPath(tt.path); got != tt.want {
			t.Fatalf("FormatFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
	if _, err := ParseFormat("wav"); err == nil {
		t.Fatalf("ParseFormat(wav) accepted")
	}
}

func TestEncodeEmpty(t *testing.T) {
	if _, err := Encode(NewEventList(), FormatSparse, Metadata{}); !errors.Is(err, ErrEmptyExport) {
		t.Fatalf("err = %v, want ErrEmptyExport", err)
	}
}

func TestExportEmptyWritesNothing(t *testing.T) {
	dir := t.TempDir()
	_, err := Export(NewEventList(), ExportOptions{Format: FormatSparse, ProjectName: "x", Dir: dir}, "")
	if !errors.Is(err, ErrEmptyExport) {
		t.Fatalf("err = %v, want ErrEmptyExport", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("files written: %v", entries)
	}
}

func TestExportPaths(t *testing.T) {
	dir := t.TempDir()
	list := NewEventList(NewTransient(0.1, 1, 0.5))
	opts := ExportOptions{Format: FormatDense, ProjectName: "My Song: v2", Dir: dir}

	first, err := Export(list, opts, "")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if filepath.Base(first) != "My-Song--v2.haptic" {
		t.Fatalf("path = %s", first)
	}

	second, err := Export(list, opts, first)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if second == first || !strings.HasPrefix(filepath.Base(second), "My-Song--v2_") {
		t.Fatalf("second export = %s, want a new timestamped file", second)
	}

	opts.Overwrite = true
	third, err := Export(list, opts, first)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if third != first {
		t.Fatalf("overwrite wrote %s, want %s", third, first)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	list := NewEventList(
		NewContinuous(0, 1, 0.3, 0.4, 0.5, 0.6),
		NewTransient(1.5, 0.9, 0.1),
	)
	path, err := Export(list, ExportOptions{Format: FormatSparse, ProjectName: "demo", ProjectVersion: "1.2", Dir: dir}, "")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	into := NewEventList(NewTransient(9, 1, 1))
	meta, err := Importer{}.Import(path, into)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if meta.ProjectName != "demo" || meta.ProjectVersion != "1.2" {
		t.Fatalf("meta = %+v", meta)
	}
	if into.Len() != 2 || len(into.Continuous()) != 1 {
		t.Fatalf("imported %d events", into.Len())
	}
}

func TestImportNamesProjectAfterFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rumble.haptic")
	data, err := Encode(NewEventList(NewTransient(0.5, 1, 0)), FormatDense, Metadata{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	meta, err := Importer{}.Import(path, NewEventList())
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if meta.ProjectName != "rumble" {
		t.Fatalf("project = %q, want rumble", meta.ProjectName)
	}
}

func TestImportMalformedKeepsList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.ahap")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	keep := NewTransient(1, 1, 1)
	list := NewEventList(keep)
	_, err := Importer{}.Import(path, list)

	var mf *MalformedFileError
	if !errors.As(err, &mf) {
		t.Fatalf("err = %v, want MalformedFileError", err)
	}
	if mf.Path != path || len(mf.Attempts) != 3 {
		t.Fatalf("error = %+v", mf)
	}
	if !errors.Is(err, ErrNoFallback) {
		t.Fatalf("missing container decoder not reported: %v", err)
	}
	for _, name := range []string{"sparse", "dense", "container"} {
		if !strings.Contains(err.Error(), name) {
			t.Fatalf("message %q does not mention %s", err.Error(), name)
		}
	}
	if list.Len() != 1 || list.Events()[0] != keep {
		t.Fatalf("list mutated by failed import")
	}
}

type stubContainer struct {
	events []Event
	err    error
}

func (s stubContainer) Name() string { return "stub" }
func (s stubContainer) DecodeContainer([]byte) ([]Event, error) {
	return s.events, s.err
}

func TestDecodeFallbackOrder(t *testing.T) {
	events, _, format, err := Decode([]byte{0x00, 0x01}, stubContainer{events: []Event{NewTransient(0, 1, 1)}})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if format != "stub" || len(events) != 1 {
		t.Fatalf("format = %q events = %d", format, len(events))
	}

	boom := errors.New("boom")
	_, _, _, err = Decode([]byte{0x00}, stubContainer{err: boom})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped container failure", err)
	}
}

func TestImportRejectsInvalidDocument(t *testing.T) {
	doc := `{"Version":1,"Pattern":[
  {"Event":{"Time":0,"EventType":"HapticContinuous","EventDuration":1,"EventParameters":[]}},
  {"Event":{"Time":0.5,"EventType":"HapticContinuous","EventDuration":1,"EventParameters":[]}}]}`
	path := filepath.Join(t.TempDir(), "overlap.ahap")
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	list := NewEventList(NewTransient(3, 1, 1))
	if _, err := (Importer{}).Import(path, list); err == nil {
		t.Fatalf("overlapping document imported")
	}
	if list.Len() != 1 {
		t.Fatalf("list mutated by rejected import")
	}
}
