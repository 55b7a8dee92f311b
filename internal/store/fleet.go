package store

// Fleet is the fixed-size collection of selectable databases a connection
// can SELECT between. Its size is set once at startup and never changes.
type Fleet struct {
	dbs []*Map
}

// NewFleet allocates count empty Maps.
func NewFleet(count int) *Fleet {
	dbs := make([]*Map, count)
	for i := range dbs {
		dbs[i] = NewMap()
	}
	return &Fleet{dbs: dbs}
}

// Len reports how many databases this Fleet holds.
func (f *Fleet) Len() int {
	return len(f.dbs)
}

// Get returns the Map at index, or false if index is out of range.
func (f *Fleet) Get(index int) (*Map, bool) {
	if index < 0 || index >= len(f.dbs) {
		return nil, false
	}
	return f.dbs[index], true
}

// Swap exchanges the Maps at two indices in place, so existing references
// to a db index now see the other database's contents. Returns false if
// either index is out of range.
func (f *Fleet) Swap(i, j int) bool {
	if i < 0 || i >= len(f.dbs) || j < 0 || j >= len(f.dbs) {
		return false
	}
	f.dbs[i], f.dbs[j] = f.dbs[j], f.dbs[i]
	return true
}

// FlushAll clears every database in the fleet.
func (f *Fleet) FlushAll() {
	for _, m := range f.dbs {
		m.FlushDB()
	}
}
