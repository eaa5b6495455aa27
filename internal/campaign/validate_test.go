package campaign

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateNotConfirmed(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		groups   []GroupID
		composed bool
	}{
		{name: "composed", body: "hello", groups: []GroupID{"editor"}, composed: true},
		{name: "empty body", body: "", groups: []GroupID{"editor"}, composed: false},
		{name: "no groups", body: "hello", groups: nil, composed: false},
		{name: "nothing composed", body: "", groups: nil, composed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(false, "Weekly Update", tt.body, tt.groups)
			var nc *NotConfirmedError
			require.True(t, errors.As(err, &nc), "want NotConfirmedError, got %v", err)
			assert.Equal(t, tt.composed, nc.Composed)
		})
	}
}

func TestValidateSubjectRules(t *testing.T) {
	groups := []GroupID{"editor"}

	err := Validate(true, "", "hello", groups)
	assert.Equal(t, ErrSubjectMissing, err)

	// Boundaries of the [5, 78] window.
	for _, n := range []int{1, 4, 79, 200} {
		err := Validate(true, strings.Repeat("s", n), "hello", groups)
		assert.Equal(t, ErrSubjectLength, err, "length %d", n)
	}
	for _, n := range []int{5, 6, 42, 77, 78} {
		err := Validate(true, strings.Repeat("s", n), "hello", groups)
		assert.NoError(t, err, "length %d", n)
	}
}

func TestValidateBodyAndGroups(t *testing.T) {
	err := Validate(true, "Weekly Update", "", []GroupID{"editor"})
	assert.Equal(t, ErrBodyMissing, err)

	err = Validate(true, "Weekly Update", "hello", nil)
	assert.Equal(t, ErrNoGroups, err)
}

func TestValidateOrderShortCircuits(t *testing.T) {
	// Everything is wrong; the subject check must win.
	err := Validate(true, "", "", nil)
	assert.Equal(t, ErrSubjectMissing, err)

	// Subject fine, body empty, groups empty; body check must win.
	err = Validate(true, "Weekly Update", "", nil)
	assert.Equal(t, ErrBodyMissing, err)
}
