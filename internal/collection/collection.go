// Package collection holds the ordered, user-arranged list of files a tool
// will process. Order is meaningful: it is the merge order.
package collection

import (
	"sync"

	"github.com/Lllllllleong/pdfworkbench/internal/models"
)

// Collection is safe for concurrent use. IDs are unique within it.
type Collection struct {
	mu    sync.RWMutex
	files []models.UploadedFile
}

// New returns a collection seeded with files, in order.
func New(files ...models.UploadedFile) *Collection {
	c := &Collection{}
	c.Append(files...)
	return c
}

// Append adds files at the end, preserving their relative order. A file whose
// ID is already present is skipped.
func (c *Collection) Append(files ...models.UploadedFile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, f := range files {
		if c.indexOf(f.ID) >= 0 {
			continue
		}
		c.files = append(c.files, f)
	}
}

// RemoveByID drops the file with the given ID. Absent IDs are ignored.
func (c *Collection) RemoveByID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(id)
	if i < 0 {
		return
	}
	c.files = append(c.files[:i], c.files[i+1:]...)
}

// Move takes the file at from and reinserts it at to. Out-of-range indexes
// leave the collection unchanged.
func (c *Collection) Move(from, to int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.files)
	if from < 0 || from >= n || to < 0 || to >= n || from == to {
		return
	}
	moved := c.files[from]
	if from < to {
		copy(c.files[from:to], c.files[from+1:to+1])
	} else {
		copy(c.files[to+1:from+1], c.files[to:from])
	}
	c.files[to] = moved
}

// Len returns the number of files.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.files)
}

// Get returns the file at index i.
func (c *Collection) Get(i int) (models.UploadedFile, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i < 0 || i >= len(c.files) {
		return models.UploadedFile{}, false
	}
	return c.files[i], true
}

// Snapshot returns an independent copy of the current order. Operations that
// read the collection take one at invocation time.
func (c *Collection) Snapshot() []models.UploadedFile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.UploadedFile, len(c.files))
	copy(out, c.files)
	return out
}

// IDs lists the file IDs in order.
func (c *Collection) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, len(c.files))
	for i, f := range c.files {
		ids[i] = f.ID
	}
	return ids
}

func (c *Collection) indexOf(id string) int {
	for i, f := range c.files {
		if f.ID == id {
			return i
		}
	}
	return -1
}
