package effect

// ID identifies one logical unit of cancellable work.
//
// IDs are comparable values. A child reducer's IDs are scoped under the path
// of the slot it is mounted in, so two instances of the same feature never
// share an ID. The zero ID means "not cancellable".
type ID struct {
	path string
}

// NewID returns an ID with the given name.
func NewID(name string) ID {
	return ID{path: name}
}

// Scoped returns id nested under prefix.
func (id ID) Scoped(prefix string) ID {
	if id.path == "" || prefix == "" {
		return id
	}
	return ID{path: prefix + "/" + id.path}
}

// IsZero reports whether id is the zero ID.
func (id ID) IsZero() bool {
	return id.path == ""
}

// String returns the scoped path of id.
func (id ID) String() string {
	return id.path
}
