package math

import "math"

// Series generates a linear series of the given length.
func Series(factor float64, limit int) []float64 {
	xx := make([]float64, 0)
	for i := 0; i < limit; i++ {
		xx = append(xx, factor*float64(i))
	}
	return xx
}

// Tone generates a pure tone of the given frequency and amplitude, sampled at fs.
func Tone(freq float64, amplitude float64, fs int, seconds float64) []float64 {
	n := int(seconds * float64(fs))
	xx := make([]float64, n)
	for i := 0; i < n; i++ {
		xx[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(fs))
	}
	return xx
}

// Ramp generates a tone whose amplitude grows linearly from 'from' to 'to'.
func Ramp(freq float64, from, to float64, fs int, seconds float64) []float64 {
	xx := Tone(freq, 1, fs, seconds)
	for i := range xx {
		a := from + (to-from)*float64(i)/float64(len(xx))
		xx[i] *= a
	}
	return xx
}

// Silence generates a zero signal.
func Silence(fs int, seconds float64) []float64 {
	return make([]float64, int(seconds*float64(fs)))
}
