package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"hapticedit/config"
	"hapticedit/debug"
	"hapticedit/generate"
	"hapticedit/haptic"
	"hapticedit/midi"
)

func main() {
	var (
		debugLog = flag.Bool("debug", false, "write ~/.config/hapticedit/debug.log")
		format   = flag.String("format", "", "output format: sparse|dense (default: from the output extension)")
		project  = flag.String("project", "", "project name stored in the output")
		chunk    = flag.Int("chunk", 0, "analysis chunk size, a power of two (default from config)")
	)
	flag.Usage = usage
	flag.Parse()

	if *debugLog {
		if err := debug.Enable(); err != nil {
			log.Printf("debug log: %v", err)
		}
		defer debug.Disable()
	}

	cfg, err := config.Load()
	if err != nil {
		log.Printf("config: %v, using defaults", err)
		cfg = config.DefaultConfig()
	}

	c := &converter{cfg: cfg, project: *project, out: os.Stdout}
	if *format != "" {
		f, err := haptic.ParseFormat(*format)
		if err != nil {
			log.Fatal(err)
		}
		c.format = f
	}
	if *chunk > 0 {
		c.cfg.Analysis.ChunkSize = *chunk
	}

	err = c.run(flag.Args())
	if errors.Is(err, errUsage) {
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

var errUsage = errors.New("bad command line")

func usage() {
	fmt.Println("hapticconv - haptic pattern conversion")
	fmt.Println("")
	fmt.Println("Usage: hapticconv [flags] <command> <args>")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  convert  <in> <out>   - Convert between .ahap, .haptic and .mid")
	fmt.Println("  info     <file>       - Describe a haptic file")
	fmt.Println("  envelope <wav> <out>  - Continuous event from loudness and brightness")
	fmt.Println("  onsets   <wav> <out>  - Transients at detected onsets")
	fmt.Println("  midi     <in> <out>   - .mid to haptic, or haptic transients to .mid")
	fmt.Println("")
	fmt.Println("Flags:")
	flag.PrintDefaults()
}

type converter struct {
	cfg     *config.Config
	format  haptic.Format
	project string
	out     io.Writer
}

// run dispatches one command. Unknown commands and wrong argument counts
// return errUsage.
func (c *converter) run(args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	switch {
	case args[0] == "convert" && len(args) == 3:
		return c.convert(args[1], args[2])
	case args[0] == "info" && len(args) == 2:
		return c.info(args[1])
	case args[0] == "envelope" && len(args) == 3:
		return c.generate(args[1], args[2], true)
	case args[0] == "onsets" && len(args) == 3:
		return c.generate(args[1], args[2], false)
	case args[0] == "midi" && len(args) == 3:
		return c.convertMIDI(args[1], args[2])
	}
	return errUsage
}

func (c *converter) importer() haptic.Importer {
	return haptic.Importer{Fallback: midi.Decoder{}}
}

// write exports list to out, replacing any file there
func (c *converter) write(list *haptic.EventList, meta haptic.Metadata, out string) error {
	format := c.format
	if format == "" {
		format = haptic.FormatFromPath(out)
	}
	name := meta.ProjectName
	if c.project != "" {
		name = c.project
	}
	if name == "" {
		name = c.cfg.Editor.ProjectName
	}
	version := meta.ProjectVersion
	if version == "" {
		version = c.cfg.Editor.ProjectVersion
	}

	path, err := haptic.Export(list, haptic.ExportOptions{
		Format:         format,
		Overwrite:      true,
		ProjectName:    name,
		ProjectVersion: version,
	}, out)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "wrote %d events to %s (%s)\n", list.Len(), path, format)
	return nil
}

func (c *converter) convert(in, out string) error {
	list := haptic.NewEventList()
	meta, err := c.importer().Import(in, list)
	if err != nil {
		return err
	}
	return c.write(list, meta, out)
}

func (c *converter) info(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	events, meta, format, err := haptic.Decode(data, midi.Decoder{})
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	list := haptic.NewEventList(events...)

	fmt.Fprintf(c.out, "file:        %s\n", path)
	fmt.Fprintf(c.out, "format:      %s\n", format)
	if meta.ProjectName != "" {
		fmt.Fprintf(c.out, "project:     %s %s\n", meta.ProjectName, meta.ProjectVersion)
	}
	if meta.Description != "" {
		fmt.Fprintf(c.out, "description: %s\n", meta.Description)
	}
	fmt.Fprintf(c.out, "transients:  %d\n", len(list.Transients()))
	fmt.Fprintf(c.out, "continuous:  %d\n", len(list.Continuous()))

	end := 0.0
	for _, e := range list.Events() {
		end = max(end, e.TimeMax())
	}
	fmt.Fprintf(c.out, "duration:    %.3fs\n", end)
	if err := list.Validate(); err != nil {
		fmt.Fprintf(c.out, "warning:     %v\n", err)
	}
	return nil
}

func (c *converter) options() generate.Options {
	a := c.cfg.Analysis
	return generate.NewOptions(
		generate.WithChunkSize(a.ChunkSize),
		generate.WithSimplifyTolerance(a.SimplifyTolerance),
		generate.WithRMSThreshold(a.OnsetThreshold),
		generate.WithPeakWindow(a.PeakWindow),
		generate.WithMaxClipSeconds(a.MaxClipSeconds),
	)
}

func (c *converter) generate(wavPath, out string, envelope bool) error {
	f, err := os.Open(wavPath)
	if err != nil {
		return err
	}
	defer f.Close()

	opts := c.options()
	frames, err := generate.FromWAV(f, opts)
	if err != nil {
		return fmt.Errorf("%s: %w", wavPath, err)
	}

	list := haptic.NewEventList()
	if envelope {
		ev, err := generate.Envelope(frames, opts)
		if err != nil {
			return err
		}
		list.Add(ev)
	} else {
		for _, t := range generate.Onsets(frames, opts) {
			list.Add(t)
		}
	}

	name := strings.TrimSuffix(filepath.Base(wavPath), filepath.Ext(wavPath))
	return c.write(list, haptic.Metadata{ProjectName: name}, out)
}

func isMIDI(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mid", ".midi", ".smf":
		return true
	}
	return false
}

func (c *converter) convertMIDI(in, out string) error {
	if isMIDI(in) {
		return c.convert(in, out)
	}

	list := haptic.NewEventList()
	if _, err := c.importer().Import(in, list); err != nil {
		return err
	}
	notes := midi.TransientsToNotes(list.Transients())

	var buf bytes.Buffer
	if err := midi.WriteNotes(&buf, notes); err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}
	if err := os.WriteFile(out, buf.Bytes(), 0644); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "wrote %d notes to %s\n", len(notes), out)
	return nil
}
