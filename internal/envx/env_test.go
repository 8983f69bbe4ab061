package envx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	t.Setenv("ENVX_S", "  value ")
	assert.Equal(t, "value", String("ENVX_S", "def"))

	t.Setenv("ENVX_S", "   ")
	assert.Equal(t, "def", String("ENVX_S", "def"))
	assert.Equal(t, "def", String("ENVX_UNSET_S", "def"))
}

func TestBool(t *testing.T) {
	t.Setenv("ENVX_B", "false")
	assert.False(t, Bool("ENVX_B", true))

	t.Setenv("ENVX_B", "nope")
	assert.True(t, Bool("ENVX_B", true))
}

func TestInt(t *testing.T) {
	tests := []struct {
		val  string
		want int
	}{
		{"25", 25},
		{"0", 10},
		{"-3", 10},
		{"x", 10},
		{"", 10},
	}
	for _, tt := range tests {
		t.Setenv("ENVX_I", tt.val)
		assert.Equal(t, tt.want, Int("ENVX_I", 10), tt.val)
	}
}

func TestDuration(t *testing.T) {
	t.Setenv("ENVX_D", "2m")
	assert.Equal(t, 2*time.Minute, Duration("ENVX_D", time.Second))

	t.Setenv("ENVX_D", "-1s")
	assert.Equal(t, time.Second, Duration("ENVX_D", time.Second))

	t.Setenv("ENVX_D", "soon")
	assert.Equal(t, time.Second, Duration("ENVX_D", time.Second))
}
