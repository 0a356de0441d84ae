package cache

import (
	"fmt"
	"io"
	"os"
)

// HistoryEntry is one line of the exported usage history.
type HistoryEntry struct {
	Text  string
	Count int
}

// WriteHistory writes the cache's usage history to w as plain text, one
// entry per line, most used first.
func WriteHistory(w io.Writer, c *FrequencyCache) error {
	for _, he := range c.History() {
		if _, err := fmt.Fprintf(w, "%d\t%s\n", he.Count, he.Text); err != nil {
			return fmt.Errorf("writing history: %w", err)
		}
	}
	return nil
}

// ExportHistoryToFile writes the usage history to path.
// The path is provided by the caller and is intentionally user-controlled.
func ExportHistoryToFile(path string, c *FrequencyCache) error {
	f, err := os.Create(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return fmt.Errorf("creating history file: %w", err)
	}
	defer f.Close()

	return WriteHistory(f, c)
}
