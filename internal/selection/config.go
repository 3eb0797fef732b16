package selection

import (
	"encoding/json"
	"fmt"

	"github.com/drakos74/syllable/infra/config"
	"github.com/drakos74/syllable/internal/dataset"
	"github.com/drakos74/syllable/internal/math/ml"
	"gopkg.in/yaml.v3"
)

const (
	// Section is the config file section for model selection.
	Section = "select"
)

// Columns are the feature indices a model is trained on, nil for all of them.
// In the config they are either a list of indices or 'all'.
type Columns []int

func (c *Columns) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		if node.Value != dataset.All {
			return config.Invalid("feature_list_indices must be a list or '%s', got '%s'", dataset.All, node.Value)
		}
		*c = nil
		return nil
	}
	var indices []int
	if err := node.Decode(&indices); err != nil {
		return fmt.Errorf("could not decode feature_list_indices: %w", err)
	}
	*c = indices
	return nil
}

func (c Columns) MarshalJSON() ([]byte, error) {
	if c == nil {
		return json.Marshal(dataset.All)
	}
	return json.Marshal([]int(c))
}

func (c *Columns) UnmarshalJSON(b []byte) error {
	var all string
	if err := json.Unmarshal(b, &all); err == nil {
		if all != dataset.All {
			return config.Invalid("unknown feature_list_indices '%s'", all)
		}
		*c = nil
		return nil
	}
	var indices []int
	if err := json.Unmarshal(b, &indices); err != nil {
		return err
	}
	*c = indices
	return nil
}

// Model is one model of the selection and its parameters.
type Model struct {
	Model              string             `yaml:"model" json:"model"`
	Hyperparameters    ml.Hyperparameters `yaml:"hyperparameters" json:"hyperparameters"`
	FeatureListIndices Columns            `yaml:"feature_list_indices" json:"feature_list_indices"`
}

// Config defines the model selection.
// The models and sample sizes of a todo item override the global ones.
type Config struct {
	Models          []Model `yaml:"models"`
	NumTestSamples  int     `yaml:"num_test_samples"`
	NumTrainSamples []int   `yaml:"num_train_samples"`
	NumReplicates   int     `yaml:"num_replicates"`
	// RandomSeed fixes the sampling and the model initialisation, the current time is used if missing.
	RandomSeed *int64 `yaml:"random_seed"`
	Todo       []Todo `yaml:"todo_list"`
	// File is the config file the config was loaded from.
	File string `yaml:"-"`
}

// Todo is one model selection experiment on a feature file.
type Todo struct {
	FeatureFile     string  `yaml:"feature_file"`
	OutputDir       string  `yaml:"output_dir"`
	Models          []Model `yaml:"models"`
	NumTestSamples  int     `yaml:"num_test_samples"`
	NumTrainSamples []int   `yaml:"num_train_samples"`
	NumReplicates   int     `yaml:"num_replicates"`
}

// Plan is a todo item with every parameter resolved.
type Plan struct {
	FeatureFile     string
	OutputDir       string
	Models          []Model
	NumTestSamples  int
	NumTrainSamples []int
	NumReplicates   int
}

// Load parses and validates the select section of the given config file.
func Load(file string) (Config, error) {
	var cfg Config
	if err := config.Load(file, Section, &cfg); err != nil {
		return cfg, err
	}
	cfg.File = file
	return cfg, cfg.Validate()
}

// Validate resolves every todo item.
func (c Config) Validate() error {
	if len(c.Todo) == 0 {
		return config.Invalid("empty todo_list")
	}
	for i, todo := range c.Todo {
		if _, err := c.Resolve(todo); err != nil {
			return fmt.Errorf("todo item %d: %w", i+1, err)
		}
	}
	return nil
}

// Resolve takes every parameter from the todo item if given, or else from the global config.
func (c Config) Resolve(todo Todo) (Plan, error) {
	plan := Plan{
		FeatureFile:     todo.FeatureFile,
		OutputDir:       todo.OutputDir,
		Models:          todo.Models,
		NumTestSamples:  todo.NumTestSamples,
		NumTrainSamples: todo.NumTrainSamples,
		NumReplicates:   todo.NumReplicates,
	}
	if plan.FeatureFile == "" {
		return plan, config.Missing("feature_file")
	}
	if plan.OutputDir == "" {
		return plan, config.Missing("output_dir")
	}
	if len(plan.Models) == 0 {
		plan.Models = c.Models
	}
	if len(plan.Models) == 0 {
		return plan, config.Missing("models")
	}
	if plan.NumTestSamples == 0 {
		plan.NumTestSamples = c.NumTestSamples
	}
	if plan.NumTestSamples == 0 {
		return plan, config.Missing("num_test_samples")
	}
	if len(plan.NumTrainSamples) == 0 {
		plan.NumTrainSamples = c.NumTrainSamples
	}
	if len(plan.NumTrainSamples) == 0 {
		return plan, config.Missing("num_train_samples")
	}
	if plan.NumReplicates == 0 {
		plan.NumReplicates = c.NumReplicates
	}
	if plan.NumReplicates == 0 {
		return plan, config.Missing("num_replicates")
	}

	if plan.NumTestSamples < 0 || plan.NumReplicates < 0 {
		return plan, config.Invalid("negative sample count")
	}
	for _, n := range plan.NumTrainSamples {
		if n <= 0 {
			return plan, config.Invalid("non-positive number of training samples %d", n)
		}
	}
	known := make(map[string]bool)
	for _, m := range ml.Models() {
		known[m] = true
	}
	for _, m := range plan.Models {
		if !known[m.Model] {
			return plan, config.Invalid("unknown model '%s'", m.Model)
		}
	}
	return plan, nil
}

// Names returns the artifact name of every model,
// with the model position appended for models that appear more than once.
func (p Plan) Names() []string {
	count := make(map[string]int)
	for _, m := range p.Models {
		count[m.Model]++
	}
	names := make([]string, len(p.Models))
	for i, m := range p.Models {
		names[i] = m.Model
		if count[m.Model] > 1 {
			names[i] = fmt.Sprintf("%s_%d", m.Model, i)
		}
	}
	return names
}
