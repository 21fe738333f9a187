// inlinedoc/inlinedoc_document.go
// Contains the Document type: one open buffer plus its change-notification stream.
package inlinedoc

import (
	"fmt"
	"sync"
)

// ChangeListener is invoked after every edit with the byte range the edit
// touched in the pre-edit text. Insertions report Start == End.
type ChangeListener func(start, end int)

// Document holds the text of one open buffer. Edits go through Apply or
// SetText so that the version counter advances and change listeners fire;
// everything else reads snapshots.
type Document struct {
	mu        sync.RWMutex
	text      []byte
	version   int
	listeners []ChangeListener
}

// NewDocument creates a document with the given initial text at version 1.
func NewDocument(text string) *Document {
	return &Document{text: []byte(text), version: 1}
}

// Subscribe registers a listener for subsequent edits. Listeners run
// synchronously, in registration order, after the text has been replaced.
func (d *Document) Subscribe(l ChangeListener) {
	if l == nil {
		return
	}
	d.mu.Lock()
	d.listeners = append(d.listeners, l)
	d.mu.Unlock()
}

// Version returns the current document version. It starts at 1 and increments
// on every edit.
func (d *Document) Version() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

// Len returns the current text length in bytes.
func (d *Document) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.text)
}

// Snapshot returns a copy of the current text together with its version.
func (d *Document) Snapshot() ([]byte, int) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]byte, len(d.text))
	copy(out, d.text)
	return out, d.version
}

// Slice returns the text in region r, or false when r exceeds the buffer.
func (d *Document) Slice(r Region) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !r.Valid() || r.End > len(d.text) {
		return "", false
	}
	return string(d.text[r.Start:r.End]), true
}

// Apply replaces [start,end) with replacement, bumps the version and notifies
// listeners with the edited range of the pre-edit text.
func (d *Document) Apply(start, end int, replacement string) error {
	d.mu.Lock()
	if start < 0 || end < start || end > len(d.text) {
		d.mu.Unlock()
		return fmt.Errorf("%w: edit [%d,%d) on %d bytes", ErrPositionOutOfRange, start, end, len(d.text))
	}
	next := make([]byte, 0, len(d.text)-(end-start)+len(replacement))
	next = append(next, d.text[:start]...)
	next = append(next, replacement...)
	next = append(next, d.text[end:]...)
	d.text = next
	d.version++
	listeners := d.listeners
	d.mu.Unlock()

	for _, l := range listeners {
		l(start, end)
	}
	return nil
}

// SetText replaces the whole document content. Listeners observe it as one
// edit covering the entire previous text.
func (d *Document) SetText(text string) {
	d.mu.Lock()
	prevLen := len(d.text)
	d.text = []byte(text)
	d.version++
	listeners := d.listeners
	d.mu.Unlock()

	for _, l := range listeners {
		l(0, prevLen)
	}
}
