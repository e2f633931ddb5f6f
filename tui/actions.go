package tui

import (
	"errors"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"hapticedit/analysis"
	"hapticedit/debug"
	"hapticedit/editor"
	"hapticedit/generate"
	"hapticedit/haptic"
)

var (
	errNoReference = errors.New("no reference audio, generate from a wav first")
	errOverlap     = errors.New("generated envelope overlaps an existing continuous event")
)

// generatedMsg carries the analysis of a reference clip back to Update
type generatedMsg struct {
	kind   promptKind
	path   string
	clip   *analysis.Clip
	frames *analysis.Frames
	err    error
}

func generateCmd(kind promptKind, path string, opts generate.Options) tea.Cmd {
	return func() tea.Msg {
		clip, err := analysis.LoadWAV(path)
		if err != nil {
			return generatedMsg{kind: kind, path: path, err: err}
		}
		frames, err := generate.FromClip(clip, opts)
		if err != nil {
			return generatedMsg{kind: kind, path: path, err: err}
		}
		return generatedMsg{kind: kind, path: path, clip: clip, frames: frames}
	}
}

func (m Model) generateOptions() generate.Options {
	a := m.Config.Analysis
	return generate.NewOptions(
		generate.WithChunkSize(a.ChunkSize),
		generate.WithSimplifyTolerance(a.SimplifyTolerance),
		generate.WithRMSThreshold(a.OnsetThreshold),
		generate.WithPeakWindow(a.PeakWindow),
		generate.WithMaxClipSeconds(a.MaxClipSeconds),
	)
}

func (m Model) applyGenerated(msg generatedMsg) Model {
	if msg.err != nil {
		return m.fail("generate", msg.err)
	}

	m.ref = &reference{
		path: msg.path,
		clip: msg.clip,
		rms:  analysis.Normalize(msg.frames.RMS),
		step: msg.frames.ChunkDuration(),
	}

	switch msg.kind {
	case promptEnvelope:
		c, err := generate.Envelope(msg.frames, m.generateOptions())
		if err != nil {
			return m.fail("envelope", err)
		}
		if m.Session.Events.OverlapsContinuous(c.Time(), c.TimeMax(), nil) {
			return m.fail("envelope", errOverlap)
		}
		m.Session.Events.Add(c)
		m = m.setStatus(fmt.Sprintf("envelope: %d intensity points from %s",
			len(c.IntensityCurve), filepath.Base(msg.path)))

	case promptOnsets:
		transients := generate.Onsets(msg.frames, m.generateOptions())
		for _, t := range transients {
			m.Session.Events.Add(t)
		}
		m = m.setStatus(fmt.Sprintf("onsets: %d transients from %s", len(transients), filepath.Base(msg.path)))
	}
	return m
}

// Open replaces the document with the file at path. On failure the current
// document is kept.
func (m Model) Open(path string) Model {
	meta, err := m.Importer.Import(path, m.Session.Events)
	if err != nil {
		return m.fail("open", err)
	}
	m.Session.Selection = editor.Selection{}
	m.Session.Reset()
	m.meta = meta

	// containers we cannot write back are saved as a new file
	if format, err := haptic.ParseFormat(filepath.Ext(path)); err == nil {
		m.path, m.format = path, format
	} else {
		m.path = ""
	}
	m.remember(path)
	return m.setStatus(fmt.Sprintf("opened %s (%d events)", path, m.Session.Events.Len()))
}

// save exports the document. With overwrite the current file is replaced
// when it has the current format's extension.
func (m Model) save(overwrite bool) Model {
	dir, err := m.Config.ResolveExportDir()
	if err != nil {
		return m.fail("save", err)
	}

	existing := m.path
	if existing != "" && haptic.FormatFromPath(existing) != m.format {
		existing = ""
	}
	path, err := haptic.Export(m.Session.Events, haptic.ExportOptions{
		Format:         m.format,
		Overwrite:      overwrite,
		ProjectName:    m.projectName(),
		ProjectVersion: m.meta.ProjectVersion,
		Dir:            dir,
	}, existing)
	if err != nil {
		return m.fail("save", err)
	}

	m.path = path
	m.remember(path)
	return m.setStatus("saved " + path)
}

func (m Model) remember(path string) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	m.Config.AddRecent(path)
	if err := m.Config.Save(); err != nil {
		debug.Log("tui", "save config: %v", err)
	}
}

func (m Model) preview() Model {
	if m.ref == nil {
		return m.fail("preview", errNoReference)
	}
	if err := m.Preview.Play(m.ref.clip); err != nil {
		return m.fail("preview", err)
	}
	return m.setStatus("playing " + filepath.Base(m.ref.path))
}
