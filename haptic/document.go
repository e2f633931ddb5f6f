package haptic

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"hapticedit/debug"
)

// Format selects one of the two JSON schemas
type Format string

const (
	FormatSparse Format = "sparse"
	FormatDense  Format = "dense"
)

// Ext returns the file extension used for the format
func (f Format) Ext() string {
	if f == FormatDense {
		return ".haptic"
	}
	return ".ahap"
}

// ParseFormat accepts a format name or a file extension
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "sparse", "ahap":
		return FormatSparse, nil
	case "dense", "haptic":
		return FormatDense, nil
	}
	return "", fmt.Errorf("unknown format %q", s)
}

// FormatFromPath picks the format from a file extension, defaulting to sparse
func FormatFromPath(path string) Format {
	if f, err := ParseFormat(filepath.Ext(path)); err == nil {
		return f
	}
	return FormatSparse
}

// Metadata describes the project a document belongs to
type Metadata struct {
	ProjectName    string
	ProjectVersion string
	Created        string
	Description    string
}

// ContainerDecoder is the last-resort decoder tried when neither JSON format
// matches.
type ContainerDecoder interface {
	Name() string
	DecodeContainer(data []byte) ([]Event, error)
}

// Encode serializes events in the given format
func Encode(list *EventList, format Format, meta Metadata) ([]byte, error) {
	if list == nil || list.Len() == 0 {
		return nil, ErrEmptyExport
	}
	switch format {
	case FormatSparse:
		return encodeSparse(list.Events(), meta)
	case FormatDense:
		return encodeDense(list.Events(), meta)
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

// Decode tries the sparse format, then the dense format, then fallback.
// Only when all of them fail is a *MalformedFileError returned.
func Decode(data []byte, fallback ContainerDecoder) ([]Event, Metadata, Format, error) {
	var attempts []FormatAttempt

	events, meta, err := decodeSparse(data)
	if err == nil {
		return events, meta, FormatSparse, nil
	}
	attempts = append(attempts, FormatAttempt{Format: string(FormatSparse), Err: err})

	events, meta, err = decodeDense(data)
	if err == nil {
		return events, meta, FormatDense, nil
	}
	attempts = append(attempts, FormatAttempt{Format: string(FormatDense), Err: err})

	if fallback == nil {
		attempts = append(attempts, FormatAttempt{Format: "container", Err: ErrNoFallback})
		return nil, Metadata{}, "", &MalformedFileError{Attempts: attempts}
	}
	events, err = fallback.DecodeContainer(data)
	if err == nil {
		return events, Metadata{}, Format(fallback.Name()), nil
	}
	attempts = append(attempts, FormatAttempt{Format: fallback.Name(), Err: err})
	return nil, Metadata{}, "", &MalformedFileError{Attempts: attempts}
}

// ExportOptions control where and how a document is written
type ExportOptions struct {
	Format         Format
	Overwrite      bool
	ProjectName    string
	ProjectVersion string
	Dir            string
}

// Export writes the list to disk. With Overwrite set and an existing path the
// file is replaced; otherwise a new file is created in Dir, named after the
// project, with a timestamp added if that name is taken. It returns the path
// written.
func Export(list *EventList, opts ExportOptions, existing string) (string, error) {
	if list == nil || list.Len() == 0 {
		return "", ErrEmptyExport
	}
	if opts.Format == "" {
		opts.Format = FormatFromPath(existing)
	}

	meta := Metadata{ProjectName: opts.ProjectName, ProjectVersion: opts.ProjectVersion}
	data, err := Encode(list, opts.Format, meta)
	if err != nil {
		return "", err
	}

	path := existing
	if !opts.Overwrite || existing == "" {
		path, err = newAssetPath(opts)
		if err != nil {
			return "", err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	debug.Log("export", "wrote %d events to %s (%s)", list.Len(), path, opts.Format)
	return path, nil
}

func newAssetPath(opts ExportOptions) (string, error) {
	name := sanitizeFilename(opts.ProjectName)
	if name == "" {
		name = "untitled"
	}
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}

	path := filepath.Join(dir, name+opts.Format.Ext())
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path, nil
	} else if err != nil {
		return "", err
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(dir, name+"_"+timestamp+opts.Format.Ext()), nil
}

// sanitizeFilename removes characters that are problematic in filenames
func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	replacer := strings.NewReplacer(
		" ", "-", "/", "-", "\\", "-", ":", "-",
		"*", "", "?", "", "\"", "", "<", "", ">", "", "|", "",
	)
	return replacer.Replace(name)
}

// Importer reads documents in any supported format
type Importer struct {
	Fallback ContainerDecoder
}

// Import replaces the content of list with the events stored at path. The
// list is left untouched when the file cannot be read.
func (im Importer) Import(path string, list *EventList) (Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, err
	}

	events, meta, format, err := Decode(data, im.Fallback)
	if err != nil {
		if mf, ok := err.(*MalformedFileError); ok {
			mf.Path = path
		}
		debug.Log("import", "%s: %v", path, err)
		return Metadata{}, err
	}

	candidate := NewEventList(events...)
	if err := candidate.Validate(); err != nil {
		debug.Log("import", "%s: %v", path, err)
		return Metadata{}, fmt.Errorf("%s: %w", path, err)
	}

	list.Replace(candidate.Events())
	if meta.ProjectName == "" {
		meta.ProjectName = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	debug.Log("import", "read %d events from %s (%s)", len(events), path, format)
	return meta, nil
}
