package selection

import (
	"encoding/json"
	"fmt"

	"github.com/drakos74/syllable/internal/dataset"
	"github.com/drakos74/syllable/internal/math/ml"
	"github.com/drakos74/syllable/internal/storage"
	jsonstore "github.com/drakos74/syllable/internal/storage/file/json"
)

// Artifact is a persisted fitted model with everything needed to apply it again.
type Artifact struct {
	Model              string               `json:"model"`
	Hyperparameters    ml.Hyperparameters   `json:"hyperparameters"`
	FeatureList        []string             `json:"model_feature_list"`
	FeatureListIndices Columns              `json:"feature_list_indices"`
	Labelset           []string             `json:"labelset"`
	State              json.RawMessage      `json:"model_state"`
	Scaler             *dataset.Scaler      `json:"scaler,omitempty"`
	SpectScaler        *dataset.SpectScaler `json:"spect_scaler,omitempty"`
	ConfigFile         string               `json:"config_file"`
	FeatureFile        string               `json:"feature_file"`
	TestIDs            []int                `json:"test_IDs"`
	TrainIDs           []int                `json:"train_IDs"`
	Score              float64              `json:"score"`
	AvgAcc             float64              `json:"avg_acc"`
	FeatureImportance  []float64            `json:"feature_importance,omitempty"`
}

// ArtifactKey returns the storage key of a model trained on n samples in the given zero based replicate,
// relative to the output directory.
func ArtifactKey(name string, n, replicate int) storage.Key {
	return storage.NewKey(fmt.Sprintf("%s_%dsamples_replicate%d", name, n, replicate), name)
}

// LoadArtifact loads the model file.
func LoadArtifact(path string) (*Artifact, error) {
	var a Artifact
	if err := jsonstore.File(path, &a); err != nil {
		return nil, fmt.Errorf("could not load model file: %w", err)
	}
	return &a, nil
}

// Classifier restores the fitted classifier of the artifact.
func (a *Artifact) Classifier() (ml.Classifier, error) {
	return ml.Restore(a.Model, a.State)
}

// Transform selects and scales the inputs of the model from the feature file rows.
func (a *Artifact) Transform(set *dataset.Set, ids []int) ([][]float64, error) {
	if a.Model == ml.FlatWindow {
		windows, err := set.Inputs(dataset.FlatWindow, ids)
		if err != nil {
			return nil, err
		}
		if a.SpectScaler != nil {
			windows = a.SpectScaler.Transform(windows)
		}
		return dataset.Flatten(windows), nil
	}
	// columns are matched by name, so the feature file may order them differently
	cols, err := set.Resolve(a.FeatureList)
	if err != nil {
		return nil, err
	}
	x := set.Pick(ids, cols)
	if a.Scaler != nil {
		if len(x) > 0 && len(x[0]) != len(a.Scaler.Mean) {
			return nil, fmt.Errorf("feature file has %d columns for a model of %d", len(x[0]), len(a.Scaler.Mean))
		}
		x = a.Scaler.Transform(x)
	}
	return x, nil
}
