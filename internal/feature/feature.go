package feature

import (
	"fmt"
	"sort"

	"github.com/drakos74/syllable/internal/song"
)

// SequenceFunc computes one value per syllable from the syllable timing of a whole song.
type SequenceFunc func(onsets, offsets []float64) []float64

// SegmentFunc computes one value from the audio of a single syllable.
type SegmentFunc func(s *Segment) float64

// Feature is a named scalar measurement, either a sequence or a segment feature.
type Feature struct {
	Name     string
	Sequence SequenceFunc
	Segment  SegmentFunc
}

var registry = map[string]Feature{
	"duration":              {Name: "duration", Sequence: Duration},
	"pre_duration":          {Name: "pre_duration", Sequence: PreDuration},
	"foll_duration":         {Name: "foll_duration", Sequence: FollDuration},
	"pre_gapdur":            {Name: "pre_gapdur", Sequence: PreGapDuration},
	"foll_gapdur":           {Name: "foll_gapdur", Sequence: FollGapDuration},
	"mn_amp_smooth_rect":    {Name: "mn_amp_smooth_rect", Segment: MeanAmpSmoothRect},
	"mn_amp_rms":            {Name: "mn_amp_rms", Segment: MeanAmpRMS},
	"mean_spect_entropy":    {Name: "mean_spect_entropy", Segment: MeanSpectEntropy},
	"mean_hi_lo_ratio":      {Name: "mean_hi_lo_ratio", Segment: MeanHiLoRatio},
	"delta_amp_smooth_rect": {Name: "delta_amp_smooth_rect", Segment: DeltaAmpSmoothRect},
	"delta_entropy":         {Name: "delta_entropy", Segment: DeltaEntropy},
	"delta_hi_lo_ratio":     {Name: "delta_hi_lo_ratio", Segment: DeltaHiLoRatio},
}

// Get returns the feature for the given name.
func Get(name string) (Feature, error) {
	f, ok := registry[name]
	if !ok {
		return Feature{}, fmt.Errorf("unknown feature '%s'", name)
	}
	return f, nil
}

// Names returns the names of all the known features.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Compute returns the feature matrix for the given syllables of the song,
// with one column per feature in the order of the names.
func Compute(s *song.Song, names []string, spect Spect, syllables []int) ([][]float64, error) {
	features := make([]Feature, len(names))
	for i, name := range names {
		f, err := Get(name)
		if err != nil {
			return nil, err
		}
		features[i] = f
	}

	rows := make([][]float64, len(syllables))
	for i := range rows {
		rows[i] = make([]float64, len(names))
	}

	onsets, offsets := s.Onsets(), s.Offsets()
	segments := make([]*Segment, len(syllables))
	for j, f := range features {
		if f.Sequence != nil {
			values := Only(f.Sequence(onsets, offsets), syllables)
			for i, v := range values {
				rows[i][j] = v
			}
			continue
		}
		for i, syl := range syllables {
			if segments[i] == nil {
				segments[i] = NewSegment(s.Segment(s.Syllables[syl]), s.SampleRate, spect)
			}
			rows[i][j] = f.Segment(segments[i])
		}
	}
	return rows, nil
}
