package selection

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/drakos74/syllable/internal/dataset"
	"github.com/drakos74/syllable/internal/math/ml"
	"github.com/drakos74/syllable/internal/metrics"
	"github.com/drakos74/syllable/internal/storage"
	jsonstore "github.com/drakos74/syllable/internal/storage/file/json"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	// TimestampFormat names the output directory of every todo item.
	TimestampFormat = "060102_1504"
	outputPrefix    = "select_output_"
)

var now = time.Now

// Select loads the config file and runs the model selection for every todo item.
func Select(configFile string) ([]*Summary, error) {
	cfg, err := Load(configFile)
	if err != nil {
		return nil, err
	}
	return Run(cfg)
}

// Run trains and scores every model for every training size and replicate of every todo item.
func Run(cfg Config) ([]*Summary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	seed := now().UnixNano()
	if cfg.RandomSeed != nil {
		seed = *cfg.RandomSeed
	}

	summaries := make([]*Summary, 0, len(cfg.Todo))
	for i, todo := range cfg.Todo {
		log.Info().
			Int("item", i+1).
			Int("of", len(cfg.Todo)).
			Str("features", todo.FeatureFile).
			Msg("completing todo")
		plan, err := cfg.Resolve(todo)
		if err != nil {
			return nil, fmt.Errorf("todo item %d: %w", i+1, err)
		}
		s, err := run(cfg.File, plan, seed)
		if err != nil {
			return nil, fmt.Errorf("todo item %d: %w", i+1, err)
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

// sweep is the model selection of one todo item.
type sweep struct {
	plan       Plan
	configFile string
	seed       int64
	ts         string
	// out is the output directory, store persists the summary and the artifacts under it.
	out   string
	store storage.Persistence

	set     *dataset.Set
	rng     *rand.Rand
	testIDs []int
	names   []string
}

func run(configFile string, plan Plan, seed int64) (*Summary, error) {
	ts := now().Format(TimestampFormat)
	out := filepath.Join(plan.OutputDir, outputPrefix+ts)
	sw := &sweep{
		plan:       plan,
		configFile: configFile,
		seed:       seed,
		ts:         ts,
		out:        out,
		store:      jsonstore.NewJsonBlob(out),
	}
	return sw.run()
}

func (sw *sweep) run() (*Summary, error) {
	plan := sw.plan
	set, err := dataset.Load(plan.FeatureFile)
	if err != nil {
		return nil, err
	}
	sw.set = set
	sw.rng = rand.New(rand.NewSource(sw.seed))
	sw.names = plan.Names()

	testIDs, songs, err := dataset.GrabBySong(sw.rng, set.SongIDs, plan.NumTestSamples, nil)
	if err != nil {
		return nil, fmt.Errorf("could not draw test samples: %w", err)
	}
	sw.testIDs = testIDs

	summary := NewSummary(plan)
	summary.RunID = uuid.New().String()
	summary.Timestamp = sw.ts
	summary.RandomSeed = sw.seed
	summary.ConfigFile = sw.configFile
	summary.OutputDir = sw.out
	summary.TestIDs = testIDs

	for i, n := range plan.NumTrainSamples {
		for r := 0; r < plan.NumReplicates; r++ {
			log.Info().
				Int("samples", n).
				Int("replicate", r+1).
				Int("of", plan.NumReplicates).
				Msg("training models")
			trainIDs, _, err := dataset.GrabBySong(sw.rng, set.SongIDs, n, songs)
			if err != nil {
				return nil, fmt.Errorf("could not draw %d training samples: %w", n, err)
			}
			summary.TrainIDs[i][r] = trainIDs
			for m := range plan.Models {
				a, acc, pred, err := sw.fit(m, n, r, trainIDs)
				if err != nil {
					return nil, fmt.Errorf("could not fit %s on %d samples: %w", sw.names[m], n, err)
				}
				summary.Scores[i][r][m] = a.Score
				summary.AvgAcc[i][r][m] = a.AvgAcc
				summary.AccByLabel[i][r][m] = acc
				summary.PredLabels[i][r][m] = pred
			}
		}
	}

	if err := summary.Aggregate(); err != nil {
		return nil, err
	}
	key := storage.NewKey(outputPrefix + sw.ts)
	if err := sw.store.Store(key, summary); err != nil {
		return nil, fmt.Errorf("could not save summary: %w", err)
	}
	log.Info().
		Str("run", summary.RunID).
		Str("summary", filepath.Join(sw.out, key.Path())).
		Msg("saved summary")

	if err := Report(summary, filepath.Join(sw.out, LearningCurveFile)); err != nil {
		return nil, err
	}
	return summary, nil
}

// fit trains model m on the training rows, scores it on the test rows and saves the artifact.
func (sw *sweep) fit(m, n, replicate int, trainIDs []int) (*Artifact, map[string]float64, []string, error) {
	model := sw.plan.Models[m]
	name := sw.names[m]
	key := ArtifactKey(name, n, replicate)

	a := &Artifact{
		Model:              model.Model,
		Hyperparameters:    model.Hyperparameters.Copy(),
		FeatureListIndices: model.FeatureListIndices,
		Labelset:           sw.set.Labelset,
		ConfigFile:         sw.configFile,
		FeatureFile:        sw.plan.FeatureFile,
		TestIDs:            sw.testIDs,
		TrainIDs:           trainIDs,
	}

	var trainX [][]float64
	if model.Model == ml.FlatWindow {
		train, err := sw.set.Inputs(dataset.FlatWindow, trainIDs)
		if err != nil {
			return nil, nil, nil, err
		}
		a.SpectScaler = dataset.FitSpectScaler(train)
		a.Hyperparameters["freq_bins"] = float64(len(train[0]))
		a.Hyperparameters["time_bins"] = float64(len(train[0][0]))
		a.FeatureList = []string{dataset.FlatWindow}
		trainX = dataset.Flatten(a.SpectScaler.Transform(train))
	} else {
		mask, err := sw.set.Columns(model.FeatureListIndices)
		if err != nil {
			return nil, nil, nil, err
		}
		a.FeatureList = sw.set.FeatureNames(model.FeatureListIndices)
		a.Scaler = &dataset.Scaler{}
		trainX = a.Scaler.FitTransform(sw.set.Rows(trainIDs, mask))
	}
	testX, err := a.Transform(sw.set, sw.testIDs)
	if err != nil {
		return nil, nil, nil, err
	}

	clf, err := ml.New(model.Model, a.Hyperparameters, sw.rng.Int63())
	if err != nil {
		return nil, nil, nil, err
	}
	if l, ok := clf.(interface{ LogTo(file string) }); ok {
		l.LogTo(filepath.Join(sw.out, key.Dir, key.Name+"_epochs.csv"))
	}

	start := time.Now()
	if err := clf.Fit(trainX, sw.set.LabelsAt(trainIDs)); err != nil {
		return nil, nil, nil, err
	}
	metrics.Observer.Fitted(name, time.Since(start))
	if f, ok := clf.(interface{ Importance() []float64 }); ok {
		a.FeatureImportance = f.Importance()
	}

	score, pred, err := ml.Score(clf, testX, sw.set.LabelsAt(sw.testIDs))
	if err != nil {
		return nil, nil, nil, err
	}
	a.Score = score
	acc, avg := ml.AccByLabel(sw.set.LabelsAt(sw.testIDs), pred, sw.set.Labelset)
	a.AvgAcc = avg
	metrics.Observer.Scored(name, n, score)

	if a.State, err = clf.State(); err != nil {
		return nil, nil, nil, err
	}
	if err := sw.store.Store(key, a); err != nil {
		return nil, nil, nil, fmt.Errorf("could not save model: %w", err)
	}

	log.Info().
		Str("model", name).
		Int("samples", n).
		Int("replicate", replicate).
		Float64("score", score).
		Float64("avg_acc", a.AvgAcc).
		Floats64("importance", a.FeatureImportance).
		Msg("model scored")
	return a, acc, pred, nil
}
