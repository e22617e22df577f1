package span

import "strconv"

// IDs allocates document-local record ids. Ids are decimal strings handed out
// in emission order, so the same source document always yields the same ids.
// Source identifiers are remembered only to resolve cross references.
type IDs struct {
	next     int
	bySource map[string]string
}

// NewIDs returns an allocator whose first id is "1".
func NewIDs() *IDs {
	return &IDs{next: 1, bySource: make(map[string]string)}
}

// Next returns a fresh id that is not bound to any source id.
func (a *IDs) Next() string {
	id := strconv.Itoa(a.next)
	a.next++
	return id
}

// Assign returns a fresh id and binds sourceID to it. Assigning the same
// source id twice rebinds it.
func (a *IDs) Assign(sourceID string) string {
	id := a.Next()
	a.bySource[sourceID] = id
	return id
}

// Lookup resolves a source id to its local id.
func (a *IDs) Lookup(sourceID string) (string, bool) {
	id, ok := a.bySource[sourceID]
	return id, ok
}

// Forget drops a binding, used when an annotation is skipped after its id was
// assigned so that later references to it are reported as unresolved.
func (a *IDs) Forget(sourceID string) {
	delete(a.bySource, sourceID)
}
