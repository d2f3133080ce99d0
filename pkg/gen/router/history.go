package router

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/textproc"
)

// logRequest appends a generation exchange to the history file. Failed
// requests log only the fact and the reason; successful ones log the prompt
// and the (wrapped) response so sessions can be replayed by eye.
func (r *Router) logRequest(provider, capability, prompt, response string, err error) {
	if r.cfg.HistoryPath == "" || !r.cfg.HistoryEnabled {
		return
	}

	if mkErr := os.MkdirAll(filepath.Dir(r.cfg.HistoryPath), 0o755); mkErr != nil {
		return
	}

	file, fErr := os.OpenFile(r.cfg.HistoryPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if fErr != nil {
		return
	}
	defer file.Close()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	var entry string

	if err != nil {
		entry = fmt.Sprintf("[%s][%s] ERROR: %s - %v\n%s\n",
			timestamp, strings.ToUpper(provider), capability, err, strings.Repeat("-", 80))
	} else {
		wrapped := textproc.WordWrap(response, 80)
		entry = fmt.Sprintf("[%s][%s] %s\nPROMPT:\n%s\n\nRESPONSE:\n%s\n%s\n",
			timestamp, strings.ToUpper(provider), capability, textproc.WordWrap(prompt, 80), wrapped, strings.Repeat("-", 80))
	}

	_, _ = file.WriteString(entry)
}
