package selection

import (
	"encoding/json"
	"errors"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/drakos74/syllable/infra/config"
	"github.com/drakos74/syllable/internal/math/ml"
	"github.com/stretchr/testify/assert"
)

const testConfig = `
select:
  models:
    - model: svm
      hyperparameters: {C: 10, gamma: 0.1}
      feature_list_indices: all
    - model: knn
      hyperparameters: {k: 4}
      feature_list_indices: [0, 1, 2]
  num_test_samples: 400
  num_train_samples: [100, 200]
  num_replicates: 5
  random_seed: 42
  todo_list:
    - feature_file: ./bird_1.json
      output_dir: ./output
    - feature_file: ./bird_2.json
      output_dir: ./output
      num_replicates: 2
      models:
        - model: knn
          hyperparameters: {k: 1}
`

func TestLoad(t *testing.T) {

	file := filepath.Join(t.TempDir(), "config.yaml")
	assert.NoError(t, ioutil.WriteFile(file, []byte(testConfig), 0644))

	cfg, err := Load(file)
	assert.NoError(t, err)
	assert.Equal(t, file, cfg.File)
	assert.Equal(t, 2, len(cfg.Models))
	assert.Equal(t, ml.SVM, cfg.Models[0].Model)
	assert.Equal(t, 10.0, cfg.Models[0].Hyperparameters["C"])
	assert.Nil(t, cfg.Models[0].FeatureListIndices)
	assert.Equal(t, Columns{0, 1, 2}, cfg.Models[1].FeatureListIndices)
	assert.Equal(t, int64(42), *cfg.RandomSeed)

	plan, err := cfg.Resolve(cfg.Todo[0])
	assert.NoError(t, err)
	assert.Equal(t, 5, plan.NumReplicates)
	assert.Equal(t, 400, plan.NumTestSamples)
	assert.Equal(t, []int{100, 200}, plan.NumTrainSamples)
	assert.Equal(t, []string{ml.SVM, ml.KNN}, plan.Names())

	plan, err = cfg.Resolve(cfg.Todo[1])
	assert.NoError(t, err)
	assert.Equal(t, 2, plan.NumReplicates)
	assert.Equal(t, 1, len(plan.Models))
	assert.Equal(t, 1.0, plan.Models[0].Hyperparameters["k"])
	assert.Equal(t, "./bird_2.json", plan.FeatureFile)
}

func TestConfig_Resolve(t *testing.T) {

	type test struct {
		cfg  Config
		todo Todo
		err  error
	}

	models := []Model{{Model: ml.KNN}}

	tests := map[string]test{
		"global": {
			cfg: Config{
				Models:          models,
				NumTestSamples:  10,
				NumTrainSamples: []int{5},
				NumReplicates:   1,
			},
			todo: Todo{FeatureFile: "f.json", OutputDir: "out"},
		},
		"local": {
			todo: Todo{
				FeatureFile:     "f.json",
				OutputDir:       "out",
				Models:          models,
				NumTestSamples:  10,
				NumTrainSamples: []int{5},
				NumReplicates:   1,
			},
		},
		"no-models": {
			cfg: Config{
				NumTestSamples:  10,
				NumTrainSamples: []int{5},
				NumReplicates:   1,
			},
			todo: Todo{FeatureFile: "f.json", OutputDir: "out"},
			err:  config.MissingKeyErr,
		},
		"no-replicates": {
			cfg: Config{
				Models:          models,
				NumTestSamples:  10,
				NumTrainSamples: []int{5},
			},
			todo: Todo{FeatureFile: "f.json", OutputDir: "out"},
			err:  config.MissingKeyErr,
		},
		"no-output": {
			cfg: Config{
				Models:          models,
				NumTestSamples:  10,
				NumTrainSamples: []int{5},
				NumReplicates:   1,
			},
			todo: Todo{FeatureFile: "f.json"},
			err:  config.MissingKeyErr,
		},
		"negative-size": {
			cfg: Config{
				Models:          models,
				NumTestSamples:  10,
				NumTrainSamples: []int{5, -5},
				NumReplicates:   1,
			},
			todo: Todo{FeatureFile: "f.json", OutputDir: "out"},
			err:  config.InvalidErr,
		},
		"unknown-model": {
			cfg: Config{
				Models:          []Model{{Model: "lstm"}},
				NumTestSamples:  10,
				NumTrainSamples: []int{5},
				NumReplicates:   1,
			},
			todo: Todo{FeatureFile: "f.json", OutputDir: "out"},
			err:  config.InvalidErr,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			plan, err := tt.cfg.Resolve(tt.todo)
			if tt.err != nil {
				assert.True(t, errors.Is(err, tt.err), "%v", err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, models, plan.Models)
			assert.Equal(t, 10, plan.NumTestSamples)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	err := Config{}.Validate()
	assert.True(t, errors.Is(err, config.InvalidErr))
}

func TestColumns(t *testing.T) {

	file := filepath.Join(t.TempDir(), "config.yaml")
	assert.NoError(t, ioutil.WriteFile(file, []byte(`
select:
  models:
    - model: knn
      feature_list_indices: some
`), 0644))
	_, err := Load(file)
	assert.True(t, errors.Is(err, config.InvalidErr), "%v", err)

	b, err := json.Marshal(Columns(nil))
	assert.NoError(t, err)
	assert.Equal(t, `"all"`, string(b))

	var c Columns
	assert.NoError(t, json.Unmarshal([]byte(`"all"`), &c))
	assert.Nil(t, c)
	assert.NoError(t, json.Unmarshal([]byte(`[3,1]`), &c))
	assert.Equal(t, Columns{3, 1}, c)
	assert.Error(t, json.Unmarshal([]byte(`"none"`), &c))
}

func TestPlan_Names(t *testing.T) {
	plan := Plan{
		Models: []Model{
			{Model: ml.KNN},
			{Model: ml.SVM},
			{Model: ml.KNN},
		},
	}
	assert.Equal(t, []string{"knn_0", ml.SVM, "knn_2"}, plan.Names())
}
