package feature

import (
	"fmt"
	"math"

	"github.com/drakos74/syllable/internal/dataset"
	smath "github.com/drakos74/syllable/internal/math"
	"github.com/drakos74/syllable/internal/song"
	"github.com/rs/zerolog/log"
)

// Run extracts the features for every todo item and saves the feature files.
func Run(cfg Config) error {
	for i, todo := range cfg.Todo {
		log.Info().
			Int("item", i+1).
			Int("of", len(cfg.Todo)).
			Strs("dirs", todo.DataDirs).
			Msg("extracting features")
		set, err := Extract(cfg, todo)
		if err != nil {
			return fmt.Errorf("could not extract features for todo item %d: %w", i+1, err)
		}
		if err := dataset.Save(todo.Output, set); err != nil {
			return fmt.Errorf("could not save feature file for todo item %d: %w", i+1, err)
		}
		log.Info().
			Str("output", todo.Output).
			Int("samples", set.Len()).
			Int("songs", len(set.Songs)).
			Msg("saved feature file")
	}
	return nil
}

// Extract computes the feature file for the recordings of the todo item.
// Song IDs are the indices of the recordings in sorted file order.
func Extract(cfg Config, todo Todo) (*dataset.Set, error) {
	labelset := Labels(cfg.labelset(todo))
	names := cfg.featureList(todo)

	files, err := song.Find(todo.DataDirs...)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no annotated recordings in %v", todo.DataDirs)
	}

	keep := make(map[string]bool, len(labelset))
	for _, l := range labelset {
		keep[l] = true
	}

	set := dataset.New(names, labelset)
	for id, file := range files {
		s, err := song.Load(id, file)
		if err != nil {
			return nil, err
		}
		set.Songs = append(set.Songs, file)

		syllables := make([]int, 0, len(s.Syllables))
		for i, syl := range s.Syllables {
			if keep[syl.Label] {
				syllables = append(syllables, i)
			}
		}
		if len(syllables) == 0 {
			log.Warn().Str("file", file).Msg("no syllables from the labelset")
			continue
		}

		rows, err := Compute(s, names, cfg.Spect, syllables)
		if err != nil {
			return nil, err
		}
		for i, syl := range syllables {
			set.Add(id, s.Syllables[syl].Label, rows[i])
			if cfg.Spect.WindowMS > 0 {
				set.AddInput(dataset.FlatWindow, Window(s, s.Syllables[syl], cfg.Spect))
			}
		}
		log.Debug().
			Str("file", file).
			Int("syllables", len(syllables)).
			Msg("extracted song")
	}
	return set, set.Validate()
}

// Window returns the log power spectrogram (freq x time) of a fixed duration window
// centered on the syllable, restricted to the frequency cutoffs.
// The parts of the window outside the recording are zero.
func Window(s *song.Song, syl song.Syllable, spect Spect) [][]float64 {
	n := int(spect.WindowMS / 1000 * float64(s.SampleRate))
	center := int((syl.Onset + syl.Offset) / 2 * float64(s.SampleRate))
	start := center - n/2

	samples := make([]float64, n)
	for i := range samples {
		j := start + i
		if j >= 0 && j < len(s.Samples) {
			samples[i] = s.Samples[j]
		}
	}

	power := smath.NewSpectrogram(samples, s.SampleRate, spect.NFFT, spect.Overlap)
	from, to := power.Band(spect.FreqCutoffs[0], spect.FreqCutoffs[1])

	window := make([][]float64, to-from)
	for f := range window {
		row := make([]float64, power.Bins())
		for t, pp := range power.Power {
			row[t] = 10 * math.Log10(pp[from+f]+eps)
		}
		window[f] = row
	}
	return window
}
