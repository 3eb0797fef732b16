package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequence(t *testing.T) {

	onsets := []float64{0.1, 0.3, 0.7}
	offsets := []float64{0.2, 0.5, 0.8}

	type test struct {
		f        SequenceFunc
		expected []float64
	}

	tests := map[string]test{
		"duration": {
			f:        Duration,
			expected: []float64{0.1, 0.2, 0.1},
		},
		"pre_duration": {
			f:        PreDuration,
			expected: []float64{0, 0.1, 0.2},
		},
		"foll_duration": {
			f:        FollDuration,
			expected: []float64{0.2, 0.1, 0},
		},
		"pre_gapdur": {
			f:        PreGapDuration,
			expected: []float64{0, 0.1, 0.2},
		},
		"foll_gapdur": {
			f:        FollGapDuration,
			expected: []float64{0.1, 0.2, 0},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			values := tt.f(onsets, offsets)
			assert.Equal(t, len(tt.expected), len(values))
			for i := range values {
				assert.InDelta(t, tt.expected[i], values[i], 1e-9)
			}
		})
	}
}

func TestSequence_Single(t *testing.T) {
	assert.Equal(t, []float64{0}, PreDuration([]float64{1}, []float64{2}))
	assert.Equal(t, []float64{0}, FollGapDuration([]float64{1}, []float64{2}))
	assert.Equal(t, []float64{}, Duration([]float64{}, []float64{}))
}

func TestOnly(t *testing.T) {
	assert.Equal(t, []float64{3, 1}, Only([]float64{1, 2, 3}, []int{2, 0}))
}
