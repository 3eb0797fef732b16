package dataset

import (
	"errors"
	"math/rand"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

// newTestSet creates a set of songs with 'perSong' syllables each.
func newTestSet(songs, perSong int) *Set {
	s := New([]string{"duration", "pre_duration", "foll_duration"}, []string{"a", "b"})
	for song := 0; song < songs; song++ {
		for i := 0; i < perSong; i++ {
			label := "a"
			if i%2 == 1 {
				label = "b"
			}
			s.Add(song, label, []float64{float64(song), float64(i), float64(song * i)})
			s.AddInput(FlatWindow, [][]float64{{float64(song)}, {float64(i)}})
		}
	}
	return s
}

func TestSet_Validate(t *testing.T) {

	type test struct {
		mutate func(s *Set)
		err    bool
	}

	tests := map[string]test{
		"valid": {
			mutate: func(s *Set) {},
		},
		"missing-label": {
			mutate: func(s *Set) {
				s.Labels = s.Labels[1:]
			},
			err: true,
		},
		"short-row": {
			mutate: func(s *Set) {
				s.Features[3] = s.Features[3][1:]
			},
			err: true,
		},
		"missing-window": {
			mutate: func(s *Set) {
				s.NeuralNetInputs[FlatWindow] = s.NeuralNetInputs[FlatWindow][1:]
			},
			err: true,
		},
		"column-out-of-range": {
			mutate: func(s *Set) {
				s.ColumnIDs[0] = 5
			},
			err: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			s := newTestSet(3, 4)
			tt.mutate(s)
			err := s.Validate()
			if tt.err {
				assert.True(t, errors.Is(err, MisalignedErr))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSet_Filter(t *testing.T) {
	s := newTestSet(2, 4)
	f := s.Filter([]string{"b"})
	assert.Equal(t, 4, f.Len())
	assert.Equal(t, []string{"b", "b", "b", "b"}, f.Labels)
	assert.Equal(t, []int{0, 0, 1, 1}, f.SongIDs)
	assert.Equal(t, 4, len(f.NeuralNetInputs[FlatWindow]))
	assert.NoError(t, f.Validate())
}

func TestSet_Columns(t *testing.T) {
	s := newTestSet(1, 3)

	mask, err := s.Columns(nil)
	assert.NoError(t, err)
	assert.Equal(t, []bool{true, true, true}, mask)

	mask, err = s.Columns([]int{0, 2})
	assert.NoError(t, err)
	assert.Equal(t, []bool{true, false, true}, mask)
	assert.Equal(t, []string{"duration", "foll_duration"}, s.FeatureNames([]int{0, 2}))

	rows := s.Rows([]int{2, 1}, mask)
	assert.Equal(t, [][]float64{{0, 0}, {0, 0}}, rows)
	assert.Equal(t, []string{"a", "b"}, s.LabelsAt([]int{2, 1}))

	_, err = s.Columns([]int{3})
	assert.Error(t, err)
	assert.Equal(t, []string{"duration", "foll_duration"}, s.FeatureNames([]int{2, 0, 2}))
}

func TestSet_Resolve(t *testing.T) {

	s := New([]string{"duration", "mn_amp_rms", "foll_duration"}, []string{"a"})
	s.Add(0, "a", []float64{1, 2, 3})
	s.Add(0, "a", []float64{4, 5, 6})

	type test struct {
		names []string
		cols  []int
		rows  [][]float64
		err   error
	}

	tests := map[string]test{
		"file-order": {
			names: []string{"duration", "foll_duration"},
			cols:  []int{0, 2},
			rows:  [][]float64{{4, 6}, {1, 3}},
		},
		"reordered": {
			names: []string{"foll_duration", "mn_amp_rms", "duration"},
			cols:  []int{2, 1, 0},
			rows:  [][]float64{{6, 5, 4}, {3, 2, 1}},
		},
		"unknown": {
			names: []string{"duration", "pitch"},
			err:   MisalignedErr,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cols, err := s.Resolve(tt.names)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.cols, cols)
			assert.Equal(t, tt.rows, s.Pick([]int{1, 0}, cols))
		})
	}
}

func TestGrabBySong(t *testing.T) {

	s := newTestSet(10, 5)
	rng := rand.New(rand.NewSource(1))

	test, remaining, err := GrabBySong(rng, s.SongIDs, 12, nil)
	assert.NoError(t, err)
	assert.Equal(t, 12, len(test))
	// 12 samples need 3 songs of 5 syllables
	assert.Equal(t, 7, len(remaining))

	testSongs := make(map[int]bool)
	for _, id := range test {
		testSongs[s.SongIDs[id]] = true
	}
	for _, song := range remaining {
		assert.False(t, testSongs[song])
	}

	train, left, err := GrabBySong(rng, s.SongIDs, 10, remaining)
	assert.NoError(t, err)
	assert.Equal(t, 10, len(train))
	assert.Equal(t, 5, len(left))
	// the song list given is not mutated
	assert.Equal(t, 7, len(remaining))
	for _, id := range train {
		assert.False(t, testSongs[s.SongIDs[id]])
	}

	_, _, err = GrabBySong(rng, s.SongIDs, 40, remaining)
	assert.True(t, errors.Is(err, NotEnoughSongsErr))

	_, _, err = GrabBySong(rng, s.SongIDs, 0, remaining)
	assert.Error(t, err)
}

func TestGrabBySong_Deterministic(t *testing.T) {
	s := newTestSet(10, 3)
	a, _, err := GrabBySong(rand.New(rand.NewSource(42)), s.SongIDs, 9, nil)
	assert.NoError(t, err)
	b, _, err := GrabBySong(rand.New(rand.NewSource(42)), s.SongIDs, 9, nil)
	assert.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestScaler(t *testing.T) {
	xx := [][]float64{
		{1, 10, 5},
		{3, 20, 5},
		{5, 30, 5},
	}
	s := FitScaler(xx)
	yy := s.Transform(xx)

	// the constant column is only centered
	assert.Equal(t, 5.0, s.Mean[2])
	assert.Equal(t, 1.0, s.Scale[2])

	for j := 0; j < 2; j++ {
		var sum, sq float64
		for i := range yy {
			sum += yy[i][j]
			sq += yy[i][j] * yy[i][j]
		}
		assert.InDelta(t, 0, sum/3, 1e-9)
		assert.InDelta(t, 1, sq/3, 1e-9)
	}

	test := s.Transform([][]float64{{3, 40, 6}})
	assert.InDelta(t, 0, test[0][0], 1e-9)
	assert.InDelta(t, 1, test[0][2], 1e-9)

	empty := FitScaler([][]float64{{}, {}})
	assert.Equal(t, [][]float64{{}}, empty.Transform([][]float64{{}}))
}

func TestSpectScaler(t *testing.T) {
	windows := [][][]float64{
		{{1, 3}, {0, 0}},
		{{1, 3}, {2, 2}},
	}
	s := FitSpectScaler(windows)
	assert.Equal(t, []float64{2, 1}, s.Mean)
	assert.Equal(t, []float64{1, 1}, s.Scale)

	out := s.Transform(windows)
	assert.Equal(t, []float64{-1, 1}, out[0][0])
	assert.Equal(t, []float64{-1, -1}, out[0][1])
	assert.Equal(t, []float64{1, 1}, out[1][1])
}

func TestSaveLoad(t *testing.T) {
	s := newTestSet(2, 2)
	p := filepath.Join(t.TempDir(), "features.json")
	assert.NoError(t, Save(p, s))

	l, err := Load(p)
	assert.NoError(t, err)
	assert.Equal(t, s.Labels, l.Labels)
	assert.Equal(t, s.Features, l.Features)
	assert.Equal(t, s.NeuralNetInputs, l.NeuralNetInputs)

	songs := Songs([]int{3, 1, 3, 2})
	assert.True(t, sort.IntsAreSorted(songs))
	assert.Equal(t, []int{1, 2, 3}, songs)
}

func TestFlatten(t *testing.T) {
	rows := Flatten([][][]float64{
		{{1, 2, 3}, {4, 5, 6}},
		{{0, 0, 0}, {1, 1, 1}},
	})
	assert.Equal(t, [][]float64{{1, 2, 3, 4, 5, 6}, {0, 0, 0, 1, 1, 1}}, rows)
}
