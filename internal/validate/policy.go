package validate

// Policy holds validator chains keyed by field.
// Validators run in registration order; the first failure wins.
type Policy struct {
	chains map[string][]Validator
}

// NewPolicy returns an empty policy that accepts everything.
func NewPolicy() *Policy {
	return &Policy{chains: make(map[string][]Validator)}
}

// Register appends validators to the chain for field.
func (p *Policy) Register(field string, vs ...Validator) *Policy {
	for _, v := range vs {
		if v != nil {
			p.chains[field] = append(p.chains[field], v)
		}
	}
	return p
}

// Has reports whether field has at least one validator.
func (p *Policy) Has(field string) bool {
	return len(p.chains[field]) > 0
}

// Check validates value for field. It returns nil or an *Error.
func (p *Policy) Check(field, value string) error {
	for _, v := range p.chains[field] {
		if err := v.Validate(value); err != nil {
			return &Error{Field: field, Value: value, Message: err.Error()}
		}
	}
	return nil
}

// Close releases resources held by validators that need it, such as
// Lua states. The policy must not be used afterwards.
func (p *Policy) Close() {
	for _, chain := range p.chains {
		for _, v := range chain {
			if c, ok := v.(interface{ Close() }); ok {
				c.Close()
			}
		}
	}
}
