package filter

// Where is a single field predicate pushed down to the store.
type Where struct {
	Path  string
	Op    string
	Value interface{}
}
