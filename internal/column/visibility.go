package column

// Visibility maps field keys to a shown/hidden flag.
//
// A Visibility is immutable. Keys without an entry are visible. The zero
// value and nil are valid and show every column.
type Visibility struct {
	flags map[string]bool
}

// NewVisibility returns a visibility map with one true entry per definition.
func NewVisibility(defs []Definition) *Visibility {
	flags := make(map[string]bool, len(defs))
	for _, d := range defs {
		flags[d.Key] = true
	}
	return &Visibility{flags: flags}
}

// VisibilityFrom builds a visibility map from explicit flags.
func VisibilityFrom(flags map[string]bool) *Visibility {
	cp := make(map[string]bool, len(flags))
	for k, v := range flags {
		cp[k] = v
	}
	return &Visibility{flags: cp}
}

// IsVisible reports whether key is shown. Keys without an entry are shown.
func (v *Visibility) IsVisible(key string) bool {
	if v == nil {
		return true
	}
	shown, ok := v.flags[key]
	return !ok || shown
}

// Lookup returns the stored flag for key and whether an entry exists.
func (v *Visibility) Lookup(key string) (shown, ok bool) {
	if v == nil {
		return false, false
	}
	shown, ok = v.flags[key]
	return shown, ok
}

// Len returns the number of entries.
func (v *Visibility) Len() int {
	if v == nil {
		return 0
	}
	return len(v.flags)
}

// Flags returns a copy of the entries.
func (v *Visibility) Flags() map[string]bool {
	out := make(map[string]bool, v.Len())
	if v == nil {
		return out
	}
	for k, shown := range v.flags {
		out[k] = shown
	}
	return out
}

// Equal reports whether both maps hold the same entries.
func (v *Visibility) Equal(other *Visibility) bool {
	if v.Len() != other.Len() {
		return false
	}
	if v == nil {
		return true
	}
	for k, shown := range v.flags {
		o, ok := other.flags[k]
		if !ok || o != shown {
			return false
		}
	}
	return true
}

// Toggle returns a new visibility map with key flipped.
// A key without an entry counts as visible, so its first toggle hides it.
// All other entries are carried over unchanged.
func Toggle(v *Visibility, key string) *Visibility {
	next := make(map[string]bool, v.Len()+1)
	if v != nil {
		for k, shown := range v.flags {
			next[k] = shown
		}
	}
	next[key] = !v.IsVisible(key)
	return &Visibility{flags: next}
}

// DeriveVisible returns the definitions whose key is visible, in definition
// order. It never reorders and never modifies all.
func DeriveVisible(all []Definition, v *Visibility) []Definition {
	out := make([]Definition, 0, len(all))
	for _, d := range all {
		if v.IsVisible(d.Key) {
			out = append(out, d)
		}
	}
	return out
}
