package math

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpectrogram(t *testing.T) {

	fs := 32000

	type test struct {
		freq float64
	}

	tests := map[string]test{
		"1kHz": {freq: 1000},
		"4kHz": {freq: 4000},
		"8kHz": {freq: 8000},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			xx := Tone(tt.freq, 1, fs, 0.1)
			spect := NewSpectrogram(xx, fs, 512, 0.5)
			assert.True(t, spect.Bins() > 1)
			assert.Equal(t, 257, len(spect.Freqs))
			for _, pp := range spect.Power {
				peak := 0
				for i, p := range pp {
					if p > pp[peak] {
						peak = i
					}
				}
				assert.InDelta(t, tt.freq, spect.Freqs[peak], float64(fs)/512)
			}
		})
	}
}

func TestSpectrogram_Padding(t *testing.T) {
	spect := NewSpectrogram([]float64{1, 2, 3}, 32000, 64, 0.5)
	assert.Equal(t, 1, spect.Bins())
}

func TestSpectrogram_Band(t *testing.T) {
	spect := NewSpectrogram(Tone(1000, 1, 16000, 0.05), 16000, 16, 0)
	// 1kHz resolution
	from, to := spect.Band(2000, 5000)
	assert.Equal(t, 2, from)
	assert.Equal(t, 5, to)
	from, to = spect.Band(0, 0)
	assert.Equal(t, 0, from)
	assert.Equal(t, 9, to)
}

func TestBandPass(t *testing.T) {
	fs := 16000
	low := Tone(250, 1, fs, 0.128)
	high := Tone(2000, 1, fs, 0.128)
	mixed := make([]float64, len(low))
	for i := range low {
		mixed[i] = low[i] + high[i]
	}

	filtered := BandPass(mixed, fs, 500, 8000)

	var diff float64
	for i := range filtered {
		diff = math.Max(diff, math.Abs(filtered[i]-high[i]))
	}
	assert.True(t, diff < 0.1, "diff %f", diff)
}

func TestSmooth(t *testing.T) {
	yy := Smooth([]float64{0, 0, 3, 0, 0}, 3)
	assert.Equal(t, []float64{0, 1, 1, 1, 0}, yy)

	assert.Equal(t, []float64{1, 2}, Smooth([]float64{1, 2}, 1))
	assert.Equal(t, []float64{1, 2}, Rectify([]float64{-1, 2}))
}
