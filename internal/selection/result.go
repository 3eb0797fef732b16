package selection

import (
	"fmt"

	"github.com/montanaflynn/stats"
)

// Summary is the persisted outcome of one todo item.
// Results are indexed by training size, replicate and model.
type Summary struct {
	RunID           string                   `json:"run_id"`
	Timestamp       string                   `json:"timestamp"`
	RandomSeed      int64                    `json:"random_seed"`
	ConfigFile      string                   `json:"config_file"`
	FeatureFile     string                   `json:"feature_file"`
	OutputDir       string                   `json:"output_dir"`
	NumTrainSamples []int                    `json:"num_train_samples_list"`
	NumReplicates   int                      `json:"num_replicates"`
	Models          []Model                  `json:"model_dict"`
	ModelNames      []string                 `json:"model_names"`
	TestIDs         []int                    `json:"test_IDs"`
	TrainIDs        [][][]int                `json:"train_IDs_arr"`
	Scores          [][][]float64            `json:"score_arr"`
	AvgAcc          [][][]float64            `json:"avg_acc_arr"`
	AccByLabel      [][][]map[string]float64 `json:"acc_by_label_arr"`
	PredLabels      [][][][]string           `json:"pred_labels_arr"`
	Stats           []Stat                   `json:"stats"`
}

// Stat aggregates the replicates of one model and training size.
type Stat struct {
	Model   string    `json:"model"`
	Samples int       `json:"num_train_samples"`
	Score   Aggregate `json:"score"`
	AvgAcc  Aggregate `json:"avg_acc_by_label"`
}

// Aggregate are the summary statistics over the replicates.
type Aggregate struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// NewSummary allocates the result arrays for the given sizes, replicates and models.
func NewSummary(plan Plan) *Summary {
	sizes := len(plan.NumTrainSamples)
	reps := plan.NumReplicates
	models := len(plan.Models)
	s := &Summary{
		FeatureFile:     plan.FeatureFile,
		NumTrainSamples: plan.NumTrainSamples,
		NumReplicates:   reps,
		Models:          plan.Models,
		ModelNames:      plan.Names(),
		TrainIDs:        make([][][]int, sizes),
		Scores:          make([][][]float64, sizes),
		AvgAcc:          make([][][]float64, sizes),
		AccByLabel:      make([][][]map[string]float64, sizes),
		PredLabels:      make([][][][]string, sizes),
	}
	for i := 0; i < sizes; i++ {
		s.TrainIDs[i] = make([][]int, reps)
		s.Scores[i] = make([][]float64, reps)
		s.AvgAcc[i] = make([][]float64, reps)
		s.AccByLabel[i] = make([][]map[string]float64, reps)
		s.PredLabels[i] = make([][][]string, reps)
		for j := 0; j < reps; j++ {
			s.Scores[i][j] = make([]float64, models)
			s.AvgAcc[i][j] = make([]float64, models)
			s.AccByLabel[i][j] = make([]map[string]float64, models)
			s.PredLabels[i][j] = make([][]string, models)
		}
	}
	return s
}

// Aggregate computes the statistics over the replicates for every size and model.
func (s *Summary) Aggregate() error {
	s.Stats = make([]Stat, 0, len(s.NumTrainSamples)*len(s.ModelNames))
	for i, n := range s.NumTrainSamples {
		for m, name := range s.ModelNames {
			scores := make([]float64, s.NumReplicates)
			accs := make([]float64, s.NumReplicates)
			for r := 0; r < s.NumReplicates; r++ {
				scores[r] = s.Scores[i][r][m]
				accs[r] = s.AvgAcc[i][r][m]
			}
			score, err := aggregate(scores)
			if err != nil {
				return fmt.Errorf("could not aggregate scores of %s for %d samples: %w", name, n, err)
			}
			acc, err := aggregate(accs)
			if err != nil {
				return fmt.Errorf("could not aggregate accuracy of %s for %d samples: %w", name, n, err)
			}
			s.Stats = append(s.Stats, Stat{
				Model:   name,
				Samples: n,
				Score:   score,
				AvgAcc:  acc,
			})
		}
	}
	return nil
}

// Curve returns the mean score per training size for the given model.
func (s *Summary) Curve(name string) []float64 {
	curve := make([]float64, 0, len(s.NumTrainSamples))
	for _, st := range s.Stats {
		if st.Model == name {
			curve = append(curve, st.Score.Mean)
		}
	}
	return curve
}

func aggregate(data []float64) (Aggregate, error) {
	var a Aggregate
	var err error
	if a.Mean, err = stats.Mean(data); err != nil {
		return a, err
	}
	if a.Std, err = stats.StandardDeviationPopulation(data); err != nil {
		return a, err
	}
	if a.Min, err = stats.Min(data); err != nil {
		return a, err
	}
	if a.Max, err = stats.Max(data); err != nil {
		return a, err
	}
	return a, nil
}
