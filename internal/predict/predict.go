package predict

import (
	"fmt"
	"path/filepath"

	"github.com/drakos74/syllable/internal/dataset"
	"github.com/drakos74/syllable/internal/selection"
	jsonstore "github.com/drakos74/syllable/internal/storage/file/json"
	"github.com/rs/zerolog/log"
)

// Labels are the predicted labels of a feature file.
type Labels struct {
	ModelFile   string   `json:"model_file"`
	FeatureFile string   `json:"feature_file"`
	Model       string   `json:"model"`
	Labels      []string `json:"pred_labels"`
	SongIDs     []int    `json:"song_IDs"`
	Songs       []string `json:"songs"`
}

// Predict applies the saved model to every row of the feature file.
func Predict(modelFile, featureFile string) (*Labels, error) {
	a, err := selection.LoadArtifact(modelFile)
	if err != nil {
		return nil, err
	}
	set, err := dataset.Load(featureFile)
	if err != nil {
		return nil, err
	}

	ids := make([]int, set.Len())
	for i := range ids {
		ids[i] = i
	}
	x, err := a.Transform(set, ids)
	if err != nil {
		return nil, fmt.Errorf("could not select the model inputs: %w", err)
	}

	clf, err := a.Classifier()
	if err != nil {
		return nil, err
	}
	pred, err := clf.Predict(x)
	if err != nil {
		return nil, fmt.Errorf("could not predict labels: %w", err)
	}

	log.Info().
		Str("model", a.Model).
		Str("features", featureFile).
		Int("samples", len(pred)).
		Msg("predicted labels")

	return &Labels{
		ModelFile:   modelFile,
		FeatureFile: featureFile,
		Model:       a.Model,
		Labels:      pred,
		SongIDs:     set.SongIDs,
		Songs:       set.Songs,
	}, nil
}

// Save writes the predicted labels as json.
func Save(file string, labels *Labels) error {
	return jsonstore.Save(filepath.Dir(file), filepath.Base(file), labels)
}
