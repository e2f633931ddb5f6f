package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"hapticedit/analysis"
	"hapticedit/config"
	"hapticedit/debug"
	"hapticedit/theme"
	"hapticedit/tui"
)

func main() {
	// HAPTICEDIT_DEBUG=1 logs everything, HAPTICEDIT_DEBUG=gesture,import only those
	if err := debug.Setup(os.Getenv("HAPTICEDIT_DEBUG")); err != nil {
		fmt.Fprintf(os.Stderr, "debug log: %v\n", err)
	}
	defer debug.Disable()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v, using defaults\n", err)
		cfg = config.DefaultConfig()
	}

	palette, err := theme.LoadOrDefault(cfg.UI.Palette)
	if err != nil {
		debug.Log("main", "palette: %v", err)
	}
	th := theme.New(palette)

	// Playback is left to the host; the terminal editor has none
	m := tui.NewModel(cfg, th, analysis.NopPreview{})
	if len(os.Args) > 1 {
		m = m.Open(os.Args[1])
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
