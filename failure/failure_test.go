package failure

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCache_IncrementAndReset(t *testing.T) {
	c := New(10)

	assert.Equal(t, 0, c.GetCount("a"))
	assert.Equal(t, 1, c.Increment("a"))
	assert.Equal(t, 2, c.Increment("a"))
	assert.Equal(t, 2, c.GetCount("a"))

	c.Reset("a")
	assert.Equal(t, 0, c.GetCount("a"))
}

func TestCache_BoundedByCapacity(t *testing.T) {
	c := New(4)

	for i := 0; i < 10; i++ {
		c.Increment(string(rune('a' + i)))
	}

	assert.LessOrEqual(t, c.Len(), 4)
}

func TestCache_DefaultsWhenMaxSizeNotPositive(t *testing.T) {
	c := New(0)
	assert.NotNil(t, c)
}
