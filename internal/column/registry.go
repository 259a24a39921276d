package column

// Registry holds the fixed definition list of one grid.
//
// Visible memoizes its result on the identity of the Visibility passed in.
// Because Visibility values are immutable, the same pointer always derives
// the same projection, and a toggle always produces a new pointer.
type Registry struct {
	defs  []Definition
	index map[string]int

	lastVis     *Visibility
	lastVisible []Definition
	cached      bool
	derivations int
}

// NewRegistry creates a registry. The slice is copied.
func NewRegistry(defs []Definition) (*Registry, error) {
	if err := validate(defs); err != nil {
		return nil, err
	}
	cp := make([]Definition, len(defs))
	copy(cp, defs)

	index := make(map[string]int, len(cp))
	for i, d := range cp {
		index[d.Key] = i
	}
	return &Registry{defs: cp, index: index}, nil
}

// All returns every definition in order. The result must not be modified.
func (r *Registry) All() []Definition {
	return r.defs
}

// Len returns the number of definitions.
func (r *Registry) Len() int {
	return len(r.defs)
}

// Lookup returns the definition for key.
func (r *Registry) Lookup(key string) (Definition, bool) {
	i, ok := r.index[key]
	if !ok {
		return Definition{}, false
	}
	return r.defs[i], true
}

// IsEditable reports whether key names an editable column.
// Unknown keys are not editable.
func (r *Registry) IsEditable(key string) bool {
	d, ok := r.Lookup(key)
	return ok && d.Editable
}

// Keys returns the field keys in definition order.
func (r *Registry) Keys() []string {
	keys := make([]string, len(r.defs))
	for i, d := range r.defs {
		keys[i] = d.Key
	}
	return keys
}

// DefaultVisibility returns a map with every column shown.
func (r *Registry) DefaultVisibility() *Visibility {
	return NewVisibility(r.defs)
}

// Visible returns the visible projection for v.
func (r *Registry) Visible(v *Visibility) []Definition {
	if r.cached && r.lastVis == v {
		return r.lastVisible
	}
	r.lastVis = v
	r.lastVisible = DeriveVisible(r.defs, v)
	r.cached = true
	r.derivations++
	return r.lastVisible
}
