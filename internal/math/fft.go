package math

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// Spectrogram is a short-time power spectrum of a signal.
// Power is indexed by [time bin][frequency bin].
type Spectrogram struct {
	Power [][]float64
	Freqs []float64
	Times []float64
}

// Bins returns the number of time bins.
func (s *Spectrogram) Bins() int {
	return len(s.Power)
}

// Band returns the indices of the frequency bins within [lo, hi).
// A non-positive hi means no upper limit.
func (s *Spectrogram) Band(lo, hi float64) (int, int) {
	from, to := len(s.Freqs), len(s.Freqs)
	for i, f := range s.Freqs {
		if f >= lo && from == len(s.Freqs) {
			from = i
		}
		if hi > 0 && f >= hi {
			to = i
			break
		}
	}
	if from > to {
		from = to
	}
	return from, to
}

// NewSpectrogram computes the spectrogram of xx with a hann window of nfft samples
// and the given overlap fraction between consecutive windows.
// Signals shorter than one window are zero padded.
func NewSpectrogram(xx []float64, fs int, nfft int, overlap float64) *Spectrogram {
	step := int(float64(nfft) * (1 - overlap))
	if step < 1 {
		step = 1
	}

	if len(xx) < nfft {
		padded := make([]float64, nfft)
		copy(padded, xx)
		xx = padded
	}

	hann := window.Hann(nfft)
	numFreqs := nfft/2 + 1

	freqs := make([]float64, numFreqs)
	for i := range freqs {
		freqs[i] = float64(i) * float64(fs) / float64(nfft)
	}

	power := make([][]float64, 0)
	times := make([]float64, 0)
	frame := make([]float64, nfft)
	for start := 0; start+nfft <= len(xx); start += step {
		for i := 0; i < nfft; i++ {
			frame[i] = xx[start+i] * hann[i]
		}
		cc := fft.FFTReal(frame)
		pp := make([]float64, numFreqs)
		for i := 0; i < numFreqs; i++ {
			a := cmplx.Abs(cc[i])
			pp[i] = a * a
		}
		power = append(power, pp)
		times = append(times, (float64(start)+float64(nfft)/2)/float64(fs))
	}

	return &Spectrogram{
		Power: power,
		Freqs: freqs,
		Times: times,
	}
}

// BandPass removes the frequency content outside [lo, hi] by masking the fourier coefficients.
func BandPass(xx []float64, fs int, lo, hi float64) []float64 {
	n := len(xx)
	if n == 0 {
		return []float64{}
	}
	cc := fft.FFTReal(xx)
	for i := range cc {
		// mirror the negative frequencies
		k := i
		if k > n/2 {
			k = n - i
		}
		f := float64(k) * float64(fs) / float64(n)
		if f < lo || f > hi {
			cc[i] = 0
		}
	}
	out := fft.IFFT(cc)
	yy := make([]float64, n)
	for i, c := range out {
		yy[i] = real(c)
	}
	return yy
}

// Rectify returns the absolute values of the signal.
func Rectify(xx []float64) []float64 {
	yy := make([]float64, len(xx))
	for i, x := range xx {
		yy[i] = math.Abs(x)
	}
	return yy
}

// Smooth applies a centered moving average of the given window size,
// at the edges the window is truncated.
func Smooth(xx []float64, size int) []float64 {
	if size <= 1 {
		yy := make([]float64, len(xx))
		copy(yy, xx)
		return yy
	}
	// prefix sums keep this linear in the signal length
	sums := make([]float64, len(xx)+1)
	for i, x := range xx {
		sums[i+1] = sums[i] + x
	}
	half := size / 2
	yy := make([]float64, len(xx))
	for i := range xx {
		from := i - half
		to := from + size
		if from < 0 {
			from = 0
		}
		if to > len(xx) {
			to = len(xx)
		}
		yy[i] = (sums[to] - sums[from]) / float64(to-from)
	}
	return yy
}
