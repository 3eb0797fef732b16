package feature

import (
	"math"

	smath "github.com/drakos74/syllable/internal/math"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	// hiLoSplit is the frequency that separates the high and low band of the hi-lo ratio.
	hiLoSplit = 5000.0
	eps       = 1e-12
)

// Segment is the audio of one syllable,
// the derived tracks are computed once and shared between features.
type Segment struct {
	Samples []float64
	FS      int
	spect   Spect
	amp     []float64
	power   *smath.Spectrogram
}

// NewSegment creates a new segment for the given samples.
func NewSegment(samples []float64, fs int, spect Spect) *Segment {
	return &Segment{
		Samples: samples,
		FS:      fs,
		spect:   spect,
	}
}

// Amplitude returns the band-passed, rectified and smoothed amplitude.
func (s *Segment) Amplitude() []float64 {
	if s.amp == nil {
		filtered := smath.BandPass(s.Samples, s.FS, s.spect.FreqCutoffs[0], s.spect.FreqCutoffs[1])
		size := int(s.spect.SmoothMS / 1000 * float64(s.FS))
		s.amp = smath.Smooth(smath.Rectify(filtered), size)
	}
	return s.amp
}

// Spectrogram returns the power spectrogram of the segment.
func (s *Segment) Spectrogram() *smath.Spectrogram {
	if s.power == nil {
		s.power = smath.NewSpectrogram(s.Samples, s.FS, s.spect.NFFT, s.spect.Overlap)
	}
	return s.power
}

// Entropy returns the spectral entropy in bits of every time bin within the frequency cutoffs.
func (s *Segment) Entropy() []float64 {
	spect := s.Spectrogram()
	from, to := spect.Band(s.spect.FreqCutoffs[0], s.spect.FreqCutoffs[1])
	hh := make([]float64, spect.Bins())
	for t, pp := range spect.Power {
		band := pp[from:to]
		total := floats.Sum(band)
		if total <= 0 {
			continue
		}
		var h float64
		for _, p := range band {
			if p > 0 {
				q := p / total
				h -= q * math.Log2(q)
			}
		}
		hh[t] = h
	}
	return hh
}

// HiLoRatio returns the power ratio in dB between the high and the low band of every time bin.
func (s *Segment) HiLoRatio() []float64 {
	spect := s.Spectrogram()
	from, to := spect.Band(s.spect.FreqCutoffs[0], s.spect.FreqCutoffs[1])
	rr := make([]float64, spect.Bins())
	for t, pp := range spect.Power {
		var hi, lo float64
		for i := from; i < to; i++ {
			if spect.Freqs[i] >= hiLoSplit {
				hi += pp[i]
			} else {
				lo += pp[i]
			}
		}
		rr[t] = 10 * math.Log10((hi+eps)/(lo+eps))
	}
	return rr
}

// MeanAmpSmoothRect is the mean of the smoothed rectified amplitude.
func MeanAmpSmoothRect(s *Segment) float64 {
	return mean(s.Amplitude())
}

// MeanAmpRMS is the root mean square amplitude of the raw segment.
func MeanAmpRMS(s *Segment) float64 {
	if len(s.Samples) == 0 {
		return 0
	}
	return floats.Norm(s.Samples, 2) / math.Sqrt(float64(len(s.Samples)))
}

// MeanSpectEntropy is the mean spectral entropy over the time bins.
func MeanSpectEntropy(s *Segment) float64 {
	return mean(s.Entropy())
}

// MeanHiLoRatio is the mean hi-lo ratio over the time bins.
func MeanHiLoRatio(s *Segment) float64 {
	return mean(s.HiLoRatio())
}

// DeltaAmpSmoothRect is the change of the smoothed rectified amplitude from the first to the second half.
func DeltaAmpSmoothRect(s *Segment) float64 {
	return delta(s.Amplitude())
}

// DeltaEntropy is the change of the spectral entropy from the first to the second half.
func DeltaEntropy(s *Segment) float64 {
	return delta(s.Entropy())
}

// DeltaHiLoRatio is the change of the hi-lo ratio from the first to the second half.
func DeltaHiLoRatio(s *Segment) float64 {
	return delta(s.HiLoRatio())
}

func mean(xx []float64) float64 {
	if len(xx) == 0 {
		return 0
	}
	return stat.Mean(xx, nil)
}

// delta is the mean of the second half minus the mean of the first half,
// the middle element of an odd track belongs to neither.
func delta(xx []float64) float64 {
	half := len(xx) / 2
	if half == 0 {
		return 0
	}
	return mean(xx[len(xx)-half:]) - mean(xx[:half])
}
