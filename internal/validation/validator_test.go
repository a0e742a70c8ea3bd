package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name" validate:"required,max=5"`
	Size  int    `json:"size,omitempty" validate:"min=10,max=32"`
	Theme string `json:"theme" validate:"oneof=light dark"`
}

func TestValidator(t *testing.T) {
	v := New()

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, v.Validate(sample{Name: "ann", Size: 16, Theme: "dark"}))
	})

	t.Run("reports fields by json name", func(t *testing.T) {
		err := v.Validate(sample{Name: "", Size: 40, Theme: "neon"})
		require.ErrorIs(t, err, ErrInvalid)

		var verr *Error
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "is required", verr.Fields["name"])
		assert.Equal(t, "must not exceed 32", verr.Fields["size"])
		assert.Equal(t, "must be one of: light dark", verr.Fields["theme"])
		assert.True(t, verr.Has("theme"))
		assert.Equal(t, "validation failed: name is required; size must not exceed 32; theme must be one of: light dark", err.Error())
	})

	t.Run("string length messages", func(t *testing.T) {
		err := v.Validate(sample{Name: "toolong", Size: 16, Theme: "light"})
		var verr *Error
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "must not exceed 5 characters", verr.Fields["name"])
	})
}
