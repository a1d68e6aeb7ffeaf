package permission

// Source exposes the current flattened permission-name list. The session
// manager satisfies this interface.
type Source interface {
	Permissions() []string
}

// Facade is a read-only membership check over the source's permission list.
// It carries no state of its own, so it always reflects the latest successful
// login or refresh.
type Facade struct {
	source Source
}

// NewFacade creates a facade over the given source.
func NewFacade(source Source) *Facade {
	return &Facade{source: source}
}

// Has reports whether the permission is held. Exact, case-sensitive match.
func (f *Facade) Has(name string) bool {
	if f == nil || f.source == nil {
		return false
	}
	for _, p := range f.source.Permissions() {
		if p == name {
			return true
		}
	}
	return false
}

// HasAny reports whether at least one of the permissions is held.
func (f *Facade) HasAny(names ...string) bool {
	for _, name := range names {
		if f.Has(name) {
			return true
		}
	}
	return false
}

// HasAll reports whether every one of the permissions is held.
func (f *Facade) HasAll(names ...string) bool {
	for _, name := range names {
		if !f.Has(name) {
			return false
		}
	}
	return true
}
