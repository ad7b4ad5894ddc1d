package store

import (
	"sync"
	"time"

	"draftdesk/internal/models"
)

// Knowledge holds every ingested document for the lifetime of the process.
// Names are unique: adding a duplicate is a skip, never an overwrite.
type Knowledge struct {
	mu    sync.RWMutex
	docs  []models.Document
	index map[string]int
}

func NewKnowledge() *Knowledge {
	return &Knowledge{index: make(map[string]int)}
}

// Add appends doc and reports whether it was stored. A document whose name
// is already present leaves the store untouched.
func (k *Knowledge) Add(doc models.Document) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, exists := k.index[doc.Name]; exists {
		return false
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}
	k.index[doc.Name] = len(k.docs)
	k.docs = append(k.docs, doc)
	return true
}

func (k *Knowledge) Has(name string) bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	_, ok := k.index[name]
	return ok
}

func (k *Knowledge) Get(name string) (models.Document, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	i, ok := k.index[name]
	if !ok {
		return models.Document{}, false
	}
	return k.docs[i], true
}

// List returns the documents in store order.
func (k *Knowledge) List() []models.Document {
	k.mu.RLock()
	defer k.mu.RUnlock()
	out := make([]models.Document, len(k.docs))
	copy(out, k.docs)
	return out
}

func (k *Knowledge) Len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.docs)
}
