package toctree

import "sync"

// docList is a mutual-exclusion scratch accumulator for the referencedFiles
// and referencedTocs lists built up while loading one TOC file. Each
// sibling task in loadTocNodes owns its own docList and merges it into the
// parent's under lock once it completes (§4.5: "merged into the parent's
// scratch lists under mutual exclusion"), so ordering across siblings is
// whatever completion order produces — the lists are unordered sets in
// all other respects.
type docList struct {
	mu    sync.Mutex
	items []*Document
}

func newDocList() *docList {
	return &docList{}
}

// Append adds a single document, ignoring nil.
func (d *docList) Append(doc *Document) {
	if doc == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.items = append(d.items, doc)
}

// AppendAll merges another docList's contents in, under lock on both.
func (d *docList) AppendAll(other *docList) {
	if other == nil {
		return
	}
	other.mu.Lock()
	items := append([]*Document(nil), other.items...)
	other.mu.Unlock()

	if len(items) == 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.items = append(d.items, items...)
}

// Snapshot returns a copy of the accumulated documents.
func (d *docList) Snapshot() []*Document {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Document(nil), d.items...)
}
