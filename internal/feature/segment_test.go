package feature

import (
	"math"
	"math/rand"
	"testing"

	smath "github.com/drakos74/syllable/internal/math"
	"github.com/stretchr/testify/assert"
)

const fs = 16000

func spect() Spect {
	return Spect{
		NFFT:        256,
		Overlap:     0.5,
		FreqCutoffs: []float64{500, 8000},
		WindowMS:    32,
		SmoothMS:    2,
	}
}

func noise(seed int64, n int) []float64 {
	rng := rand.New(rand.NewSource(seed))
	xx := make([]float64, n)
	for i := range xx {
		xx[i] = rng.Float64()*2 - 1
	}
	return xx
}

func TestMeanAmpRMS(t *testing.T) {
	xx := smath.Tone(1000, 0.5, fs, 0.1)
	rms := MeanAmpRMS(NewSegment(xx, fs, spect()))
	assert.InDelta(t, 0.5/math.Sqrt2, rms, 1e-3)
	assert.Equal(t, 0.0, MeanAmpRMS(NewSegment([]float64{}, fs, spect())))
}

func TestMeanAmpSmoothRect(t *testing.T) {
	loud := MeanAmpSmoothRect(NewSegment(smath.Tone(1000, 0.8, fs, 0.1), fs, spect()))
	quiet := MeanAmpSmoothRect(NewSegment(smath.Tone(1000, 0.2, fs, 0.1), fs, spect()))
	// the mean of a rectified sine is 2/pi of its amplitude
	assert.InDelta(t, 0.8*2/math.Pi, loud, 0.02)
	assert.True(t, loud > quiet)

	// content below the cutoff is removed
	low := MeanAmpSmoothRect(NewSegment(smath.Tone(125, 0.8, fs, 0.128), fs, spect()))
	assert.InDelta(t, 0, low, 0.01)
}

func TestMeanSpectEntropy(t *testing.T) {
	tone := MeanSpectEntropy(NewSegment(smath.Tone(2000, 0.5, fs, 0.1), fs, spect()))
	white := MeanSpectEntropy(NewSegment(noise(1, 1600), fs, spect()))
	assert.True(t, tone < white, "tone %f noise %f", tone, white)
	// band of 120 bins
	assert.True(t, white < math.Log2(120))
	assert.Equal(t, 0.0, MeanSpectEntropy(NewSegment(smath.Silence(fs, 0.1), fs, spect())))
}

func TestMeanHiLoRatio(t *testing.T) {
	high := MeanHiLoRatio(NewSegment(smath.Tone(6000, 0.5, fs, 0.1), fs, spect()))
	low := MeanHiLoRatio(NewSegment(smath.Tone(1000, 0.5, fs, 0.1), fs, spect()))
	assert.True(t, high > 0, "high %f", high)
	assert.True(t, low < 0, "low %f", low)
}

func TestDelta(t *testing.T) {

	type test struct {
		f     SegmentFunc
		xx    []float64
		check func(v float64) bool
	}

	tests := map[string]test{
		"amp-rising": {
			f:  DeltaAmpSmoothRect,
			xx: smath.Ramp(1000, 0.1, 0.9, fs, 0.1),
			check: func(v float64) bool {
				return v > 0.1
			},
		},
		"amp-falling": {
			f:  DeltaAmpSmoothRect,
			xx: smath.Ramp(1000, 0.9, 0.1, fs, 0.1),
			check: func(v float64) bool {
				return v < -0.1
			},
		},
		"amp-constant": {
			f:  DeltaAmpSmoothRect,
			xx: smath.Tone(1000, 0.5, fs, 0.1),
			check: func(v float64) bool {
				return math.Abs(v) < 0.01
			},
		},
		"entropy-tone-to-noise": {
			f:  DeltaEntropy,
			xx: append(smath.Tone(2000, 0.5, fs, 0.05), noise(2, 800)...),
			check: func(v float64) bool {
				return v > 1
			},
		},
		"hi-lo-down-sweep": {
			f:  DeltaHiLoRatio,
			xx: append(smath.Tone(6000, 0.5, fs, 0.05), smath.Tone(1000, 0.5, fs, 0.05)...),
			check: func(v float64) bool {
				return v < 0
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			v := tt.f(NewSegment(tt.xx, fs, spect()))
			assert.True(t, tt.check(v), "value %f", v)
		})
	}
}

func TestDelta_Short(t *testing.T) {
	assert.Equal(t, 0.0, delta([]float64{1}))
	assert.Equal(t, 2.0, delta([]float64{1, 5, 3}))
}
