package dataset

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Scaler standardizes every column to zero mean and unit variance.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// FitScaler computes the column statistics of xx.
// Columns without variance are only centered.
func FitScaler(xx [][]float64) *Scaler {
	if len(xx) == 0 || len(xx[0]) == 0 {
		return &Scaler{Mean: []float64{}, Scale: []float64{}}
	}
	m := dense(xx)
	_, cols := m.Dims()
	s := &Scaler{
		Mean:  make([]float64, cols),
		Scale: make([]float64, cols),
	}
	col := make([]float64, len(xx))
	for j := 0; j < cols; j++ {
		mat.Col(col, j, m)
		s.Mean[j], s.Scale[j] = popMeanStd(col)
	}
	return s
}

// Transform returns a standardized copy of xx.
func (s *Scaler) Transform(xx [][]float64) [][]float64 {
	out := make([][]float64, len(xx))
	for i, row := range xx {
		r := make([]float64, len(row))
		for j, v := range row {
			r[j] = (v - s.Mean[j]) / s.Scale[j]
		}
		out[i] = r
	}
	return out
}

// FitTransform fits the scaler on xx and returns it standardized.
func (s *Scaler) FitTransform(xx [][]float64) [][]float64 {
	*s = *FitScaler(xx)
	return s.Transform(xx)
}

// SpectScaler standardizes spectrogram windows per frequency bin,
// with the statistics of all time bins of all training windows.
type SpectScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// FitSpectScaler computes the frequency bin statistics of the windows (sample x freq x time).
func FitSpectScaler(windows [][][]float64) *SpectScaler {
	if len(windows) == 0 {
		return &SpectScaler{}
	}
	freqs := len(windows[0])
	s := &SpectScaler{
		Mean:  make([]float64, freqs),
		Scale: make([]float64, freqs),
	}
	for f := 0; f < freqs; f++ {
		values := make([]float64, 0, len(windows)*len(windows[0][f]))
		for _, w := range windows {
			values = append(values, w[f]...)
		}
		s.Mean[f], s.Scale[f] = popMeanStd(values)
	}
	return s
}

// Transform returns a standardized copy of the windows.
func (s *SpectScaler) Transform(windows [][][]float64) [][][]float64 {
	out := make([][][]float64, len(windows))
	for i, w := range windows {
		ww := make([][]float64, len(w))
		for f, row := range w {
			r := make([]float64, len(row))
			for t, v := range row {
				r[t] = (v - s.Mean[f]) / s.Scale[f]
			}
			ww[f] = r
		}
		out[i] = ww
	}
	return out
}

// popMeanStd returns the mean and the population standard deviation,
// a zero deviation is reported as 1.
func popMeanStd(xx []float64) (float64, float64) {
	switch len(xx) {
	case 0:
		return 0, 1
	case 1:
		return xx[0], 1
	}
	mean := stat.Mean(xx, nil)
	std := math.Sqrt(stat.Moment(2, xx, nil))
	if std == 0 || math.IsNaN(std) {
		std = 1
	}
	return mean, std
}

func dense(xx [][]float64) *mat.Dense {
	rows, cols := len(xx), len(xx[0])
	data := make([]float64, 0, rows*cols)
	for _, row := range xx {
		data = append(data, row...)
	}
	return mat.NewDense(rows, cols, data)
}
