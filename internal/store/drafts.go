package store

import (
	"fmt"
	"sync"
	"time"

	"draftdesk/internal/models"
)

// Drafts is the append-only history of one review run. The active pointer
// tracks what is displayed and never affects the history itself.
type Drafts struct {
	mu       sync.RWMutex
	versions []models.DraftVersion
	active   int
}

func NewDrafts() *Drafts {
	return &Drafts{active: -1}
}

// Reset clears the history for a fresh review run.
func (d *Drafts) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.versions = nil
	d.active = -1
}

// Append stores a new version, makes it active, and returns its index.
func (d *Drafts) Append(text string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	v := models.DraftVersion{Index: len(d.versions), Text: text, CreatedAt: time.Now()}
	d.versions = append(d.versions, v)
	d.active = v.Index
	return v.Index
}

// Select changes the active pointer only. Selecting an already-active
// version is a no-op.
func (d *Drafts) Select(i int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i < 0 || i >= len(d.versions) {
		return fmt.Errorf("draft version %d does not exist", i)
	}
	d.active = i
	return nil
}

func (d *Drafts) Active() (models.DraftVersion, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.active < 0 || d.active >= len(d.versions) {
		return models.DraftVersion{}, false
	}
	return d.versions[d.active], true
}

func (d *Drafts) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.versions)
}

// List renders the history with display labels: the first snapshot is the
// outline/start, the last is "Final", everything between is its step number.
func (d *Drafts) List() []models.DraftVersionView {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]models.DraftVersionView, 0, len(d.versions))
	for _, v := range d.versions {
		out = append(out, models.DraftVersionView{
			Index:  v.Index,
			Label:  label(v.Index, len(d.versions)),
			Text:   v.Text,
			Active: v.Index == d.active,
		})
	}
	return out
}

func label(i, total int) string {
	switch {
	case i == total-1:
		return "Final"
	case i == 0:
		return "Outline"
	default:
		return fmt.Sprintf("Step %d", i)
	}
}
