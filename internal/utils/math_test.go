package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, ClampFloat(-5, 0, 100))
	assert.Equal(t, 100.0, ClampFloat(150, 0, 100))
	assert.Equal(t, 42.5, ClampFloat(42.5, 0, 100))

	assert.Equal(t, 0, ClampInt(-1, 0, 504))
	assert.Equal(t, 504, ClampInt(900, 0, 504))
	assert.Equal(t, 24, ClampInt(24, 0, 504))
}
