package dataset

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/drakos74/syllable/internal/storage/file/json"
)

const (
	// FlatWindow is the neural net input key for the fixed size spectrogram windows.
	FlatWindow = "flatwindow"
	// All selects every feature column.
	All = "all"
)

var (
	MisalignedErr = errors.New("misaligned data set")
)

// Set is the persisted feature file.
// Row i of Features corresponds to row i of Labels and SongIDs,
// and to window i of every neural net input.
type Set struct {
	Features        [][]float64              `json:"features"`
	Labels          []string                 `json:"labels"`
	SongIDs         []int                    `json:"song_IDs"`
	FeatureList     []string                 `json:"feature_list"`
	ColumnIDs       []int                    `json:"features_arr_column_IDs"`
	Labelset        []string                 `json:"labelset"`
	Songs           []string                 `json:"songs"`
	NeuralNetInputs map[string][][][]float64 `json:"neuralnet_inputs,omitempty"`
}

// New creates an empty set for the given features and labels.
func New(featureList []string, labelset []string) *Set {
	columns := make([]int, len(featureList))
	for i := range columns {
		columns[i] = i
	}
	return &Set{
		Features:        make([][]float64, 0),
		Labels:          make([]string, 0),
		SongIDs:         make([]int, 0),
		FeatureList:     featureList,
		ColumnIDs:       columns,
		Labelset:        labelset,
		Songs:           make([]string, 0),
		NeuralNetInputs: make(map[string][][][]float64),
	}
}

// Add appends one sample.
func (s *Set) Add(songID int, label string, features []float64) {
	s.Features = append(s.Features, features)
	s.Labels = append(s.Labels, label)
	s.SongIDs = append(s.SongIDs, songID)
}

// AddInput appends one neural net input sample under the given key.
func (s *Set) AddInput(key string, window [][]float64) {
	if s.NeuralNetInputs == nil {
		s.NeuralNetInputs = make(map[string][][][]float64)
	}
	s.NeuralNetInputs[key] = append(s.NeuralNetInputs[key], window)
}

// Len returns the number of samples.
func (s *Set) Len() int {
	return len(s.Labels)
}

// Validate checks the index alignment of all the sample vectors.
func (s *Set) Validate() error {
	n := len(s.Labels)
	if len(s.Features) != n || len(s.SongIDs) != n {
		return fmt.Errorf("features %d, labels %d, song IDs %d: %w",
			len(s.Features), n, len(s.SongIDs), MisalignedErr)
	}
	for i, row := range s.Features {
		if len(row) != len(s.ColumnIDs) {
			return fmt.Errorf("row %d has %d columns instead of %d: %w", i, len(row), len(s.ColumnIDs), MisalignedErr)
		}
	}
	for _, c := range s.ColumnIDs {
		if c < 0 || c >= len(s.FeatureList) {
			return fmt.Errorf("column ID %d out of feature list range %d: %w", c, len(s.FeatureList), MisalignedErr)
		}
	}
	for key, inputs := range s.NeuralNetInputs {
		if len(inputs) != n {
			return fmt.Errorf("neural net input '%s' has %d samples instead of %d: %w", key, len(inputs), n, MisalignedErr)
		}
	}
	return nil
}

// Filter keeps only the samples whose label is in the labelset.
func (s *Set) Filter(labelset []string) *Set {
	keep := make(map[string]bool, len(labelset))
	for _, l := range labelset {
		keep[l] = true
	}
	ids := make([]int, 0, s.Len())
	for i, l := range s.Labels {
		if keep[l] {
			ids = append(ids, i)
		}
	}
	filtered := &Set{
		Features:        make([][]float64, len(ids)),
		Labels:          make([]string, len(ids)),
		SongIDs:         make([]int, len(ids)),
		FeatureList:     s.FeatureList,
		ColumnIDs:       s.ColumnIDs,
		Labelset:        labelset,
		Songs:           s.Songs,
		NeuralNetInputs: make(map[string][][][]float64, len(s.NeuralNetInputs)),
	}
	for j, i := range ids {
		filtered.Features[j] = s.Features[i]
		filtered.Labels[j] = s.Labels[i]
		filtered.SongIDs[j] = s.SongIDs[i]
	}
	for key, inputs := range s.NeuralNetInputs {
		ff := make([][][]float64, len(ids))
		for j, i := range ids {
			ff[j] = inputs[i]
		}
		filtered.NeuralNetInputs[key] = ff
	}
	return filtered
}

// Columns returns the mask of the columns that belong to the given feature indices.
// A nil slice of indices selects all the columns.
func (s *Set) Columns(indices []int) ([]bool, error) {
	mask := make([]bool, len(s.ColumnIDs))
	if indices == nil {
		for i := range mask {
			mask[i] = true
		}
		return mask, nil
	}
	selected := make(map[int]bool, len(indices))
	for _, ind := range indices {
		if ind < 0 || ind >= len(s.FeatureList) {
			return nil, fmt.Errorf("feature index %d out of range [0,%d)", ind, len(s.FeatureList))
		}
		selected[ind] = true
	}
	for i, c := range s.ColumnIDs {
		mask[i] = selected[c]
	}
	return mask, nil
}

// FeatureNames returns the names of the given feature indices in feature file order,
// or all of them for nil.
func (s *Set) FeatureNames(indices []int) []string {
	if indices == nil {
		return s.FeatureList
	}
	selected := make(map[int]bool, len(indices))
	for _, ind := range indices {
		selected[ind] = true
	}
	names := make([]string, 0, len(selected))
	for i, name := range s.FeatureList {
		if selected[i] {
			names = append(names, name)
		}
	}
	return names
}

// Resolve returns the feature array columns of the named features, in the order of the names.
func (s *Set) Resolve(names []string) ([]int, error) {
	features := make(map[string]int, len(s.FeatureList))
	for i, name := range s.FeatureList {
		features[name] = i
	}
	cols := make([]int, 0, len(names))
	for _, name := range names {
		f, ok := features[name]
		if !ok {
			return nil, fmt.Errorf("feature '%s' not in %v: %w", name, s.FeatureList, MisalignedErr)
		}
		for c, id := range s.ColumnIDs {
			if id == f {
				cols = append(cols, c)
			}
		}
	}
	return cols, nil
}

// Pick returns the given columns of the given rows, in the order of cols.
func (s *Set) Pick(ids []int, cols []int) [][]float64 {
	out := make([][]float64, len(ids))
	for i, id := range ids {
		row := make([]float64, len(cols))
		for j, c := range cols {
			row[j] = s.Features[id][c]
		}
		out[i] = row
	}
	return out
}

func (s *Set) Rows(ids []int, mask []bool) [][]float64 {
	return Select(s.Features, ids, mask)
}

// LabelsAt returns the labels of the given rows.
func (s *Set) LabelsAt(ids []int) []string {
	ll := make([]string, len(ids))
	for i, id := range ids {
		ll[i] = s.Labels[id]
	}
	return ll
}

// Inputs returns the neural net inputs of the given rows.
func (s *Set) Inputs(key string, ids []int) ([][][]float64, error) {
	inputs, ok := s.NeuralNetInputs[key]
	if !ok || len(inputs) == 0 {
		return nil, fmt.Errorf("no neural net inputs for '%s' in the feature file", key)
	}
	ww := make([][][]float64, len(ids))
	for i, id := range ids {
		ww[i] = inputs[id]
	}
	return ww, nil
}

// Select returns the sub-matrix of the given rows and masked columns.
// A nil mask keeps all the columns.
func Select(xx [][]float64, ids []int, mask []bool) [][]float64 {
	out := make([][]float64, len(ids))
	for i, id := range ids {
		row := xx[id]
		if mask == nil {
			out[i] = append([]float64{}, row...)
			continue
		}
		r := make([]float64, 0, len(row))
		for j, v := range row {
			if mask[j] {
				r = append(r, v)
			}
		}
		out[i] = r
	}
	return out
}

// Flatten returns every freq x time window as a single row in frequency major order.
func Flatten(windows [][][]float64) [][]float64 {
	rows := make([][]float64, len(windows))
	for i, w := range windows {
		row := make([]float64, 0, len(w)*len(w[0]))
		for _, f := range w {
			row = append(row, f...)
		}
		rows[i] = row
	}
	return rows
}

// Songs returns the sorted unique song IDs.
func Songs(songIDs []int) []int {
	seen := make(map[int]bool)
	ids := make([]int, 0)
	for _, id := range songIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}

// Load loads the feature file from the given path.
func Load(path string) (*Set, error) {
	var s Set
	if err := json.File(path, &s); err != nil {
		return nil, fmt.Errorf("could not load feature file: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid feature file '%s': %w", path, err)
	}
	return &s, nil
}

// Save saves the feature file to the given path.
func Save(path string, s *Set) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("will not save invalid feature file: %w", err)
	}
	return json.Save(filepath.Dir(path), filepath.Base(path), s)
}
