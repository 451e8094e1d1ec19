package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldsCoercion(t *testing.T) {
	f := Fields{"s": "x", "n": 12, "b": "true", "nil": nil}

	s, ok := f.String("n")
	assert.True(t, ok)
	assert.Equal(t, "12", s)

	_, ok = f.String("nil")
	assert.False(t, ok)
	_, ok = f.String("missing")
	assert.False(t, ok)

	assert.True(t, f.Bool("b"))
	assert.False(t, f.Bool("missing"))
	assert.True(t, f.Has("s"))
	assert.False(t, f.Has("nil"))
}
