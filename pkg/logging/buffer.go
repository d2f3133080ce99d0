package logging

import (
	"strings"
	"sync"
)

// ringSize is how many recent log lines the capture keeps for the dashboard.
const ringSize = 50

// LogCaptureWriter is a thread-safe writer that keeps the most recent log
// lines in a fixed-size ring.
type LogCaptureWriter struct {
	mu    sync.RWMutex
	lines []string
	next  int
	full  bool
}

// GlobalLogCapture is the singleton instance for capturing logs.
var GlobalLogCapture = &LogCaptureWriter{lines: make([]string, ringSize)}

// Write implements io.Writer. Each write is treated as one log line.
func (w *LogCaptureWriter) Write(p []byte) (n int, err error) {
	line := strings.TrimRight(string(p), "\n")
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lines[w.next] = line
	w.next = (w.next + 1) % len(w.lines)
	if w.next == 0 {
		w.full = true
	}
	return len(p), nil
}

// Recent returns the captured lines, oldest first.
func (w *LogCaptureWriter) Recent() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var out []string
	if w.full {
		out = append(out, w.lines[w.next:]...)
	}
	out = append(out, w.lines[:w.next]...)

	// Drop empty slots from a ring that never filled
	filtered := out[:0]
	for _, l := range out {
		if l != "" {
			filtered = append(filtered, l)
		}
	}
	return filtered
}

// GetLastLine returns the most recent log line.
func (w *LogCaptureWriter) GetLastLine() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	idx := (w.next - 1 + len(w.lines)) % len(w.lines)
	return w.lines[idx]
}
