package validation_test

import (
	"strings"
	"testing"

	"github.com/SirapobM/Api-test/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fields(violations validation.Violations) []string {
	var out []string
	for _, v := range violations {
		out = append(out, v.Field)
	}

	return out
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name     string
		userName string
		email    string
		password string
		wantBad  []string
	}{
		{
			name:     "all valid",
			userName: "Alice",
			email:    "a@x.com",
			password: "secret1",
		},
		{
			name:     "empty name",
			userName: "   ",
			email:    "a@x.com",
			password: "secret1",
			wantBad:  []string{"name"},
		},
		{
			name:     "name too long",
			userName: strings.Repeat("a", validation.MaxNameLength+1),
			email:    "a@x.com",
			password: "secret1",
			wantBad:  []string{"name"},
		},
		{
			name:     "malformed email",
			userName: "Alice",
			email:    "not-an-email",
			password: "secret1",
			wantBad:  []string{"email"},
		},
		{
			name:     "email with display name",
			userName: "Alice",
			email:    "Alice <a@x.com>",
			password: "secret1",
			wantBad:  []string{"email"},
		},
		{
			name:     "short password",
			userName: "Alice",
			email:    "a@x.com",
			password: "five5",
			wantBad:  []string{"password"},
		},
		{
			name:     "everything wrong",
			userName: "",
			email:    "nope",
			password: "x",
			wantBad:  []string{"name", "email", "password"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations := validation.Register(tt.userName, tt.email, tt.password)
			assert.Equal(t, tt.wantBad, fields(violations))
		})
	}
}

func TestUpdate(t *testing.T) {
	ptr := func(s string) *string { return &s }

	t.Run("nil fields are not checked", func(t *testing.T) {
		assert.Empty(t, validation.Update(nil, nil, nil, nil))
	})

	t.Run("provided fields are checked", func(t *testing.T) {
		violations := validation.Update(ptr(""), ptr("bad"), nil, nil)
		assert.Equal(t, []string{"name", "email"}, fields(violations))
	})

	t.Run("password requires matching confirmation", func(t *testing.T) {
		violations := validation.Update(nil, nil, ptr("secret1"), ptr("secret2"))
		assert.Equal(t, []string{"password_confirmation"}, fields(violations))

		violations = validation.Update(nil, nil, ptr("secret1"), nil)
		assert.Equal(t, []string{"password_confirmation"}, fields(violations))

		assert.Empty(t, validation.Update(nil, nil, ptr("secret1"), ptr("secret1")))
	})

	t.Run("short password rejected even with confirmation", func(t *testing.T) {
		violations := validation.Update(nil, nil, ptr("abc"), ptr("abc"))
		assert.Equal(t, []string{"password"}, fields(violations))
	})
}

func TestViolationsError(t *testing.T) {
	violations := validation.Register("", "a@x.com", "secret1")
	require.Len(t, violations, 1)
	assert.Equal(t, "name: must not be empty", violations.Error())
}
