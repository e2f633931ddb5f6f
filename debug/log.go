// Package debug writes category-tagged lines to a log file. Logging is off
// until Enable is called, and every call is a no-op while it is off.
package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mitchellh/go-homedir"
)

var (
	mu       sync.Mutex
	file     *os.File
	enabled  bool
	only     map[string]bool // nil logs every category
	counters = make(map[string]int)
)

// Dir returns ~/.config/hapticedit
func Dir() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "hapticedit"), nil
}

// Setup interprets the HAPTICEDIT_DEBUG value: "" or "0" leaves logging
// off, "1" logs everything, anything else is a comma separated list of
// categories to log.
func Setup(value string) error {
	value = strings.TrimSpace(value)
	if value == "" || value == "0" {
		return nil
	}
	if value != "1" {
		Only(strings.Split(value, ",")...)
	}
	return Enable()
}

// Enable starts debug logging to ~/.config/hapticedit/debug.log
func Enable() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return EnableAt(filepath.Join(dir, "debug.log"))
}

// EnableAt starts debug logging to logPath, truncating it
func EnableAt(logPath string) error {
	mu.Lock()
	defer mu.Unlock()

	if enabled {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	file, enabled = f, true
	clear(counters)
	write("debug", "=== hapticedit debug log ===")
	return nil
}

// Only restricts logging to the given categories. No arguments logs all.
func Only(categories ...string) {
	mu.Lock()
	defer mu.Unlock()

	only = nil
	for _, c := range categories {
		if c = strings.TrimSpace(c); c == "" {
			continue
		}
		if only == nil {
			only = make(map[string]bool)
		}
		only[c] = true
	}
}

// Enabled reports whether Log writes anywhere
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// Disable stops debug logging and clears the category filter
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		file.Close()
		file = nil
	}
	enabled = false
	only = nil
}

// Log writes a message to the debug log
func Log(category, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if !enabled || (only != nil && !only[category]) {
		return
	}
	write(category, fmt.Sprintf(format, args...))
}

// LogEvery logs only every nth call with the same category and format.
// Use it for pointer motion.
func LogEvery(n int, category, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if !enabled || n <= 0 || (only != nil && !only[category]) {
		return
	}
	key := category + "\x00" + format
	counters[key]++
	if count := counters[key]; count%n == 0 {
		write(category, fmt.Sprintf(format, args...)+fmt.Sprintf(" (every %d, count=%d)", n, count))
	}
}

// write needs mu held
func write(category, msg string) {
	ts := time.Now().Format("15:04:05.000")
	fmt.Fprintf(file, "[%s] %-10s %s\n", ts, category, msg)
	file.Sync() // flush so the log survives a crash
}
