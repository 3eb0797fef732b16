package feature

import (
	"github.com/drakos74/syllable/infra/config"
)

const (
	// Section is the config file section for feature extraction.
	Section = "extract"
)

// Config defines the feature extraction.
type Config struct {
	// Labelset is the string of single character labels to keep
	Labelset string `yaml:"labelset"`
	// FeatureList defines the features and the column order of the feature matrix
	FeatureList []string `yaml:"feature_list"`
	// Spect defines the spectrogram parameters for the spectral features and the neural net inputs
	Spect Spect  `yaml:"spect"`
	Todo  []Todo `yaml:"todo_list"`
}

// Spect defines the spectrogram and amplitude parameters.
// NFFT is the window length in samples, Overlap the fraction of overlap between windows.
// FreqCutoffs are the band limits in Hz for the amplitude and spectral features.
// WindowMS is the duration of the fixed size neural net window, 0 skips the windows.
// SmoothMS is the boxcar length of the amplitude smoothing.
type Spect struct {
	NFFT        int       `yaml:"nfft"`
	Overlap     float64   `yaml:"overlap"`
	FreqCutoffs []float64 `yaml:"freq_cutoffs"`
	WindowMS    float64   `yaml:"window_ms"`
	SmoothMS    float64   `yaml:"smooth_ms"`
}

// Todo is one extraction item.
// Labelset and FeatureList override the global ones when given.
type Todo struct {
	DataDirs    []string `yaml:"data_dirs"`
	Output      string   `yaml:"output"`
	Labelset    string   `yaml:"labelset"`
	FeatureList []string `yaml:"feature_list"`
}

// DefaultSpect returns the default spectrogram parameters.
func DefaultSpect() Spect {
	return Spect{
		NFFT:        512,
		Overlap:     0.5,
		FreqCutoffs: []float64{500, 10000},
		WindowMS:    32,
		SmoothMS:    2,
	}
}

// Load parses the extract section of the given config file, filling in the defaults.
func Load(file string) (Config, error) {
	cfg := Config{Spect: DefaultSpect()}
	if err := config.Load(file, Section, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Validate checks the config for values that cannot be used.
func (c Config) Validate() error {
	if c.Spect.NFFT < 2 {
		return config.Invalid("nfft must be at least 2, got %d", c.Spect.NFFT)
	}
	if c.Spect.Overlap < 0 || c.Spect.Overlap >= 1 {
		return config.Invalid("overlap must be within [0,1), got %f", c.Spect.Overlap)
	}
	if len(c.Spect.FreqCutoffs) != 2 || c.Spect.FreqCutoffs[0] >= c.Spect.FreqCutoffs[1] {
		return config.Invalid("freq_cutoffs must be an increasing pair, got %v", c.Spect.FreqCutoffs)
	}
	if len(c.Todo) == 0 {
		return config.Invalid("empty todo_list")
	}
	for i, todo := range c.Todo {
		if len(todo.DataDirs) == 0 {
			return config.Invalid("no data_dirs for todo item %d", i)
		}
		if todo.Output == "" {
			return config.Invalid("no output for todo item %d", i)
		}
		if c.labelset(todo) == "" {
			return config.Missing("labelset")
		}
		list := c.featureList(todo)
		if len(list) == 0 {
			return config.Missing("feature_list")
		}
		for _, name := range list {
			if _, ok := registry[name]; !ok {
				return config.Invalid("unknown feature '%s'", name)
			}
		}
	}
	return nil
}

func (c Config) labelset(todo Todo) string {
	if todo.Labelset != "" {
		return todo.Labelset
	}
	return c.Labelset
}

func (c Config) featureList(todo Todo) []string {
	if len(todo.FeatureList) > 0 {
		return todo.FeatureList
	}
	return c.FeatureList
}

// Labels splits the labelset string into single character labels.
func Labels(labelset string) []string {
	ll := make([]string, 0, len(labelset))
	for _, r := range labelset {
		ll = append(ll, string(r))
	}
	return ll
}
