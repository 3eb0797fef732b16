package selection

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/drakos74/syllable/internal/math/ml"
	"github.com/stretchr/testify/assert"
)

func newTestSummary(sizes []int, reps int) *Summary {
	s := NewSummary(Plan{
		Models:          []Model{{Model: ml.KNN}, {Model: ml.SVM}},
		NumTrainSamples: sizes,
		NumReplicates:   reps,
	})
	for i := range sizes {
		for r := 0; r < reps; r++ {
			s.Scores[i][r][0] = 0.5 + 0.1*float64(i) + 0.1*float64(r)
			s.Scores[i][r][1] = 0.8
			s.AvgAcc[i][r][0] = 0.4
			s.AvgAcc[i][r][1] = 0.2 * float64(r)
		}
	}
	return s
}

func TestSummary_Aggregate(t *testing.T) {

	s := newTestSummary([]int{10, 20}, 3)
	assert.NoError(t, s.Aggregate())
	assert.Equal(t, 4, len(s.Stats))

	type test struct {
		stat   int
		model  string
		size   int
		score  Aggregate
		avgAcc Aggregate
	}

	tests := map[string]test{
		"knn-10": {
			stat:   0,
			model:  ml.KNN,
			size:   10,
			score:  Aggregate{Mean: 0.6, Std: 0.0816496580927726, Min: 0.5, Max: 0.7},
			avgAcc: Aggregate{Mean: 0.4, Std: 0, Min: 0.4, Max: 0.4},
		},
		"svm-10": {
			stat:   1,
			model:  ml.SVM,
			size:   10,
			score:  Aggregate{Mean: 0.8, Std: 0, Min: 0.8, Max: 0.8},
			avgAcc: Aggregate{Mean: 0.2, Std: 0.1632993161855452, Min: 0, Max: 0.4},
		},
		"knn-20": {
			stat:   2,
			model:  ml.KNN,
			size:   20,
			score:  Aggregate{Mean: 0.7, Std: 0.0816496580927726, Min: 0.6, Max: 0.8},
			avgAcc: Aggregate{Mean: 0.4, Std: 0, Min: 0.4, Max: 0.4},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			st := s.Stats[tt.stat]
			assert.Equal(t, tt.model, st.Model)
			assert.Equal(t, tt.size, st.Samples)
			assert.InDelta(t, tt.score.Mean, st.Score.Mean, 1e-9)
			assert.InDelta(t, tt.score.Std, st.Score.Std, 1e-9)
			assert.InDelta(t, tt.score.Min, st.Score.Min, 1e-9)
			assert.InDelta(t, tt.score.Max, st.Score.Max, 1e-9)
			assert.InDelta(t, tt.avgAcc.Mean, st.AvgAcc.Mean, 1e-9)
			assert.InDelta(t, tt.avgAcc.Std, st.AvgAcc.Std, 1e-9)
			assert.InDelta(t, tt.avgAcc.Min, st.AvgAcc.Min, 1e-9)
			assert.InDelta(t, tt.avgAcc.Max, st.AvgAcc.Max, 1e-9)
		})
	}

	curve := s.Curve(ml.KNN)
	assert.Equal(t, 2, len(curve))
	assert.InDelta(t, 0.6, curve[0], 1e-9)
	assert.InDelta(t, 0.7, curve[1], 1e-9)
}

func TestSummary_Aggregate_NoReplicates(t *testing.T) {
	s := newTestSummary([]int{10}, 0)
	assert.Error(t, s.Aggregate())
}

func TestReport(t *testing.T) {

	dir := t.TempDir()

	s := newTestSummary([]int{10, 20, 40}, 2)
	assert.NoError(t, s.Aggregate())
	file := filepath.Join(dir, LearningCurveFile)
	assert.NoError(t, Report(s, file))

	b, err := os.ReadFile(file)
	assert.NoError(t, err)
	assert.True(t, len(b) > 8)
	assert.Equal(t, []byte("\x89PNG"), b[:4])

	single := newTestSummary([]int{10}, 2)
	assert.NoError(t, single.Aggregate())
	file = filepath.Join(dir, "single.png")
	assert.NoError(t, Report(single, file))
	_, err = os.Stat(file)
	assert.True(t, os.IsNotExist(err))
}
