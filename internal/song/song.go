package song

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/rs/zerolog/log"
)

const (
	// AnnotationExt is appended to the audio file name to find its annotation.
	AnnotationExt = ".csv"
	wavExt        = ".wav"
)

// Song is a mono recording with its annotated syllables.
type Song struct {
	ID         int
	Path       string
	SampleRate int
	Samples    []float64
	Syllables  []Syllable
}

// Onsets returns the onsets of all syllables in seconds.
func (s *Song) Onsets() []float64 {
	oo := make([]float64, len(s.Syllables))
	for i, syl := range s.Syllables {
		oo[i] = syl.Onset
	}
	return oo
}

// Offsets returns the offsets of all syllables in seconds.
func (s *Song) Offsets() []float64 {
	oo := make([]float64, len(s.Syllables))
	for i, syl := range s.Syllables {
		oo[i] = syl.Offset
	}
	return oo
}

// Segment returns the samples that belong to the given syllable.
func (s *Song) Segment(syl Syllable) []float64 {
	return s.Window(syl.Onset, syl.Offset)
}

// Window returns the samples between the given times, clamped to the recording.
func (s *Song) Window(from, to float64) []float64 {
	start := int(from * float64(s.SampleRate))
	end := int(to * float64(s.SampleRate))
	if start < 0 {
		start = 0
	}
	if end > len(s.Samples) {
		end = len(s.Samples)
	}
	if start >= end {
		return []float64{}
	}
	return s.Samples[start:end]
}

// Load loads the recording and its annotation.
func Load(id int, path string) (*Song, error) {
	song, err := LoadWav(path)
	if err != nil {
		return nil, err
	}
	syllables, err := LoadAnnotation(path + AnnotationExt)
	if err != nil {
		return nil, err
	}
	song.ID = id
	song.Syllables = syllables
	return song, nil
}

// LoadWav decodes a pcm wav file into mono samples within [-1, 1].
func LoadWav(path string) (*Song, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open '%s': %w", path, err)
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("not a valid wav file: %s", path)
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("could not decode '%s': %w", path, err)
	}

	return &Song{
		Path:       path,
		SampleRate: int(d.SampleRate),
		Samples:    mono(buf, int(d.BitDepth)),
	}, nil
}

// mono averages the channels and scales by the bit depth.
func mono(buf *audio.IntBuffer, depth int) []float64 {
	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}
	scale := float64(int64(1) << uint(depth-1))
	xx := make([]float64, len(buf.Data)/channels)
	for i := range xx {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(buf.Data[i*channels+c])
		}
		xx[i] = sum / float64(channels) / scale
	}
	return xx
}

// Find lists the wav files in the given directories that come with an annotation.
func Find(dirs ...string) ([]string, error) {
	files := make([]string, 0)
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("could not read directory '%s': %w", dir, err)
		}
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || !strings.EqualFold(filepath.Ext(name), wavExt) {
				continue
			}
			p := filepath.Join(dir, name)
			if _, err := os.Stat(p + AnnotationExt); err != nil {
				log.Warn().Str("file", p).Msg("no annotation for recording")
				continue
			}
			files = append(files, p)
		}
	}
	sort.Strings(files)
	return files, nil
}

// SaveWav encodes mono samples within [-1, 1] as a 16 bit pcm wav file.
func SaveWav(path string, samples []float64, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create '%s': %w", path, err)
	}
	defer f.Close()

	data := make([]int, len(samples))
	for i, x := range samples {
		data[i] = int(x * 32767)
	}

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  sampleRate,
		},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("could not encode '%s': %w", path, err)
	}
	return enc.Close()
}
