package song

import (
	"fmt"
	"os"
	"sort"

	"github.com/gocarina/gocsv"
)

// Syllable is one annotated segment of a song, times are in seconds.
type Syllable struct {
	Onset  float64 `csv:"onset"`
	Offset float64 `csv:"offset"`
	Label  string  `csv:"label"`
}

// Duration returns the length of the syllable.
func (s Syllable) Duration() float64 {
	return s.Offset - s.Onset
}

// LoadAnnotation reads the syllables from a csv file with an 'onset,offset,label' header.
func LoadAnnotation(path string) ([]Syllable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open annotation '%s': %w", path, err)
	}
	defer f.Close()

	syllables := make([]Syllable, 0)
	if err := gocsv.UnmarshalFile(f, &syllables); err != nil {
		return nil, fmt.Errorf("could not parse annotation '%s': %w", path, err)
	}

	sort.SliceStable(syllables, func(i, j int) bool {
		return syllables[i].Onset < syllables[j].Onset
	})
	for i, syl := range syllables {
		if syl.Offset < syl.Onset {
			return nil, fmt.Errorf("syllable %d in '%s' ends before it starts [%f,%f]", i, path, syl.Onset, syl.Offset)
		}
	}
	return syllables, nil
}

// SaveAnnotation writes the syllables in the format read by LoadAnnotation.
func SaveAnnotation(path string, syllables []Syllable) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create annotation '%s': %w", path, err)
	}
	defer f.Close()
	if err := gocsv.MarshalFile(&syllables, f); err != nil {
		return fmt.Errorf("could not write annotation '%s': %w", path, err)
	}
	return nil
}
