// Package moniker implements MonikerList (§3 of the loader spec): an
// immutable set of version identifiers, plus the empty "default" value,
// with equality and union.
//
// Membership is backed by a roaring bitmap over interned moniker IDs
// rather than a map[string]struct{}: moniker sets are small, dense, and
// unioned repeatedly during MonikerAggregator's bottom-up pass (one union
// per node, for every node in the tree), which is exactly the access
// pattern roaring bitmaps are built for.
package moniker

import (
	"sort"
	"sync"

	"github.com/RoaringBitmap/roaring"
)

// Interner assigns stable bit positions to moniker strings, in first-seen
// order, so that two Lists built from the same underlying strings compare
// equal via their bitmaps without a string-level comparison.
type Interner struct {
	mu   sync.Mutex
	ids  map[string]uint32
	strs []string
}

// NewInterner returns an empty Interner. Each TocLoader owns exactly one,
// so moniker identity is stable for the lifetime of a single load session.
func NewInterner() *Interner {
	return &Interner{ids: make(map[string]uint32)}
}

func (in *Interner) id(s string) uint32 {
	in.mu.Lock()
	defer in.mu.Unlock()
	if id, ok := in.ids[s]; ok {
		return id
	}
	id := uint32(len(in.strs))
	in.ids[s] = id
	in.strs = append(in.strs, s)
	return id
}

func (in *Interner) name(id uint32) string {
	in.mu.Lock()
	defer in.mu.Unlock()
	if int(id) >= len(in.strs) {
		return ""
	}
	return in.strs[id]
}

// List is an immutable moniker set. The zero value is Default, the empty
// set every node starts from and every uninformative child collapses to.
type List struct {
	in  *Interner
	bmp *roaring.Bitmap // nil means empty/default
}

// Default is the empty moniker set.
var Default = List{}

// New builds a List containing the given moniker names, interned against
// in. A nil or empty names slice produces Default.
func New(in *Interner, names ...string) List {
	if len(names) == 0 {
		return Default
	}
	bmp := roaring.New()
	for _, n := range names {
		bmp.Add(in.id(n))
	}
	if bmp.IsEmpty() {
		return Default
	}
	return List{in: in, bmp: bmp}
}

// IsDefault reports whether this is the empty moniker set.
func (l List) IsDefault() bool {
	return l.bmp == nil || l.bmp.IsEmpty()
}

// Equal reports whether l and other contain the same monikers.
func (l List) Equal(other List) bool {
	if l.IsDefault() || other.IsDefault() {
		return l.IsDefault() == other.IsDefault()
	}
	return l.bmp.Equals(other.bmp)
}

// Union returns the set union of l and all others, deduplicated. The
// result is interned against the same Interner as its non-default
// operands (all operands in a single aggregation pass share one
// Interner, by construction of MonikerAggregator).
func Union(lists ...List) List {
	var in *Interner
	bmp := roaring.New()
	for _, l := range lists {
		if l.IsDefault() {
			continue
		}
		in = l.in
		bmp.Or(l.bmp)
	}
	if bmp.IsEmpty() {
		return Default
	}
	return List{in: in, bmp: bmp}
}

// Names returns the member monikers in lexical order. Intended for
// diagnostics and tests; the hot path never needs string names.
func (l List) Names() []string {
	if l.IsDefault() {
		return nil
	}
	names := make([]string, 0, l.bmp.GetCardinality())
	it := l.bmp.Iterator()
	for it.HasNext() {
		names = append(names, l.in.name(it.Next()))
	}
	sort.Strings(names)
	return names
}
