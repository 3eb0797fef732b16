package feature

// Duration returns the duration of every syllable.
func Duration(onsets, offsets []float64) []float64 {
	dd := make([]float64, len(onsets))
	for i := range onsets {
		dd[i] = offsets[i] - onsets[i]
	}
	return dd
}

// PreDuration returns the duration of the preceding syllable, 0 for the first one.
func PreDuration(onsets, offsets []float64) []float64 {
	return shift(Duration(onsets, offsets), 1)
}

// FollDuration returns the duration of the following syllable, 0 for the last one.
func FollDuration(onsets, offsets []float64) []float64 {
	return shift(Duration(onsets, offsets), -1)
}

// PreGapDuration returns the silent gap before every syllable, 0 for the first one.
func PreGapDuration(onsets, offsets []float64) []float64 {
	gg := make([]float64, len(onsets))
	for i := 1; i < len(onsets); i++ {
		gg[i] = onsets[i] - offsets[i-1]
	}
	return gg
}

// FollGapDuration returns the silent gap after every syllable, 0 for the last one.
func FollGapDuration(onsets, offsets []float64) []float64 {
	gg := make([]float64, len(onsets))
	for i := 0; i < len(onsets)-1; i++ {
		gg[i] = onsets[i+1] - offsets[i]
	}
	return gg
}

// Only keeps the values of the syllables to use.
func Only(values []float64, syllables []int) []float64 {
	vv := make([]float64, len(syllables))
	for i, s := range syllables {
		vv[i] = values[s]
	}
	return vv
}

// shift moves the values by the given offset, filling the gaps with 0.
func shift(values []float64, by int) []float64 {
	vv := make([]float64, len(values))
	for i := range vv {
		j := i - by
		if j >= 0 && j < len(values) {
			vv[i] = values[j]
		}
	}
	return vv
}
