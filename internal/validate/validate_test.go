package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnum(t *testing.T) {
	v := Enum("Admin", "Editor", "Viewer")

	tests := []struct {
		value string
		ok    bool
	}{
		{"Admin", true},
		{"Editor", true},
		{"Viewer", true},
		{"admin", false},
		{"Superuser", false},
		{"", false},
		{" Admin", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			err := v.Validate(tt.value)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, `must be one of "Admin", "Editor" or "Viewer"`)
			}
		})
	}
	assert.Equal(t, []string{"Admin", "Editor", "Viewer"}, v.Members())
}

func TestBuiltins(t *testing.T) {
	assert.Error(t, Required.Validate("  "))
	assert.NoError(t, Required.Validate("x"))

	assert.NoError(t, Email.Validate("alice@example.com"))
	for _, bad := range []string{"alice", "@example.com", "alice@", "alice@example", "alice@example."} {
		assert.Error(t, Email.Validate(bad), bad)
	}

	assert.NoError(t, MaxLen(3).Validate("héé"))
	assert.Error(t, MaxLen(3).Validate("abcd"))
}

func TestMatch(t *testing.T) {
	v, err := Match(`^[A-Z][a-z]+$`)
	require.NoError(t, err)

	assert.NoError(t, v.Validate("Alice"))
	assert.NoError(t, v.Validate(""))
	assert.Error(t, v.Validate("alice"))

	_, err = Match(`(`)
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	v, err := Parse("maxlen:2")
	require.NoError(t, err)
	assert.Error(t, v.Validate("abc"))

	v, err = Parse(" Required ")
	require.NoError(t, err)
	assert.Error(t, v.Validate(""))

	v, err = Parse("match:^x")
	require.NoError(t, err)
	assert.Error(t, v.Validate("y"))

	_, err = Parse("maxlen:abc")
	assert.ErrorIs(t, err, ErrUnknownValidator)

	_, err = Parse("shiny")
	assert.ErrorIs(t, err, ErrUnknownValidator)
}

func TestPolicyCheck(t *testing.T) {
	p := NewPolicy().
		Register("role", Enum("Admin", "Editor", "Viewer")).
		Register("name", Required, MaxLen(5))

	assert.NoError(t, p.Check("role", "Admin"))
	assert.NoError(t, p.Check("email", "anything"), "fields without validators accept all values")

	err := p.Check("role", "Superuser")
	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "role", verr.Field)
	assert.Equal(t, "Superuser", verr.Value)

	err = p.Check("name", "")
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "required", verr.Message, "first failing validator wins")

	assert.True(t, p.Has("name"))
	assert.False(t, p.Has("email"))
}

func TestPolicyRegisterSkipsNil(t *testing.T) {
	p := NewPolicy().Register("x", nil)
	assert.False(t, p.Has("x"))
}

func TestPolicyCustomValidator(t *testing.T) {
	p := NewPolicy().Register("status", Func(func(s string) error {
		if s == "Deleted" {
			return errors.New("cannot delete from the grid")
		}
		return nil
	}))

	assert.NoError(t, p.Check("status", "Active"))
	assert.EqualError(t, p.Check("status", "Deleted"), `invalid status "Deleted": cannot delete from the grid`)
}
