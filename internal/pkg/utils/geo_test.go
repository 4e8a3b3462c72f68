package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateHaversineDistance(t *testing.T) {
	// Seoul City Hall to Gangnam Station is roughly 8.8 km.
	d := CalculateHaversineDistance(37.5663, 126.9779, 37.4979, 127.0276)
	assert.InDelta(t, 8800, d, 300)

	assert.InDelta(t, 0, CalculateHaversineDistance(37.5, 127.0, 37.5, 127.0), 1e-9)
}

func TestWithinRadius(t *testing.T) {
	assert.True(t, WithinRadius(37.5664, 126.9780, 37.5663, 126.9779, 100))
	assert.False(t, WithinRadius(37.4979, 127.0276, 37.5663, 126.9779, 100))
	assert.False(t, WithinRadius(37.5663, 126.9779, 37.5663, 126.9779, 0))
}
