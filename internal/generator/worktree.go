package generator

import (
	"path/filepath"
	"slices"
	"sync"
)

// WorkingTree is the generated output directory plus the files changed in it by
// the post-generation steps, in first-change order.
type WorkingTree struct {
	Root string

	mu      sync.Mutex
	changed []string
}

// NewWorkingTree creates a tree rooted at dir.
func NewWorkingTree(dir string) *WorkingTree { return &WorkingTree{Root: dir} }

// Path joins rel onto the tree root.
func (w *WorkingTree) Path(rel string) string { return filepath.Join(w.Root, rel) }

// Mark records rel as changed. Safe for concurrent use by parallel steps.
func (w *WorkingTree) Mark(rel string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !slices.Contains(w.changed, rel) {
		w.changed = append(w.changed, rel)
	}
}

// Changed returns the recorded relative paths.
func (w *WorkingTree) Changed() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.changed)
}
