package toctree

import "github.com/opendocs/toctree/diag"

// Guard is an immutable snapshot of the files currently in flight on one
// load chain, ancestors first. §9's design note calls for a recursion
// guard that is "ambient" to a single chain but never shared across
// sibling fan-out; threading it as a plain value, extended with Push,
// gives exactly that: a child goroutine receives its launcher's stack by
// value and can extend it, but nothing it does is visible to a sibling
// or back to the parent. There is no corresponding Pop — a frame's guard
// simply goes out of scope when that frame returns.
type Guard []FilePath

// Push returns the guard extended with file, or a CircularReferenceError
// if file already appears on the chain (§4.4, §8 property 2).
func (g Guard) Push(loc SourceLocation, file FilePath) (Guard, error) {
	for _, f := range g {
		if f == file {
			stack := make([]string, len(g))
			for i, a := range g {
				stack[i] = a.String()
			}
			return nil, diag.NewCircularReference(loc.String(), file.String(), stack)
		}
	}
	next := make(Guard, len(g)+1)
	copy(next, g)
	next[len(g)] = file
	return next, nil
}
