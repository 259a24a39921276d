// Package validate decides whether a committed cell value is acceptable.
//
// A Policy maps field keys to validator chains. Fields without validators
// accept every value. Adding a validator never requires changes to the
// grid store or the cell edit controller; both are unaware of validation.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrUnknownValidator indicates a validator spec that names no built-in.
var ErrUnknownValidator = errors.New("unknown validator")

// Validator checks a single raw input value.
type Validator interface {
	Validate(value string) error
}

// Func adapts a function to the Validator interface.
type Func func(value string) error

// Validate calls f.
func (f Func) Validate(value string) error {
	return f(value)
}

// Error is returned by Policy.Check when a value is rejected.
type Error struct {
	Field   string
	Value   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Message)
}

// EnumValidator accepts only the members of a closed enumeration.
type EnumValidator struct {
	members []string
	set     map[string]struct{}
}

// Enum returns a validator for the given members. Matching is exact.
func Enum(members ...string) *EnumValidator {
	set := make(map[string]struct{}, len(members))
	for _, m := range members {
		set[m] = struct{}{}
	}
	cp := make([]string, len(members))
	copy(cp, members)
	return &EnumValidator{members: cp, set: set}
}

// Members returns the accepted values in declaration order.
func (v *EnumValidator) Members() []string {
	return v.members
}

// Validate implements Validator.
func (v *EnumValidator) Validate(value string) error {
	if _, ok := v.set[value]; ok {
		return nil
	}
	return fmt.Errorf("must be one of %s", quoteList(v.members))
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = strconv.Quote(s)
	}
	switch len(quoted) {
	case 0:
		return "nothing"
	case 1:
		return quoted[0]
	default:
		return strings.Join(quoted[:len(quoted)-1], ", ") + " or " + quoted[len(quoted)-1]
	}
}

// Required rejects blank values.
var Required = Func(func(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("required")
	}
	return nil
})

// Email rejects values that don't look like email addresses.
var Email = Func(func(s string) error {
	at := strings.LastIndex(s, "@")
	if at <= 0 || at == len(s)-1 {
		return errors.New("invalid email")
	}
	domain := s[at+1:]
	if !strings.Contains(domain, ".") || strings.HasSuffix(domain, ".") || strings.HasPrefix(domain, ".") {
		return errors.New("invalid email")
	}
	return nil
})

// MaxLen rejects values longer than n runes.
func MaxLen(n int) Validator {
	return Func(func(s string) error {
		if len([]rune(s)) > n {
			return fmt.Errorf("max %d characters", n)
		}
		return nil
	})
}

// Match rejects non-empty values that don't match pattern.
func Match(pattern string) (Validator, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile pattern %q: %w", pattern, err)
	}
	return Func(func(s string) error {
		if s == "" || re.MatchString(s) {
			return nil
		}
		return errors.New("invalid format")
	}), nil
}

// Parse builds a validator from a short spec as found in dataset files:
// "required", "email", "maxlen:N" or "match:PATTERN".
func Parse(spec string) (Validator, error) {
	name, arg, _ := strings.Cut(strings.TrimSpace(spec), ":")
	switch strings.ToLower(name) {
	case "required":
		return Required, nil
	case "email":
		return Email, nil
	case "maxlen":
		n, err := strconv.Atoi(arg)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: bad length in %q", ErrUnknownValidator, spec)
		}
		return MaxLen(n), nil
	case "match":
		return Match(arg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownValidator, spec)
	}
}
