package ml

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"

	randomforest "github.com/malaschitz/randomForest"
	"github.com/rs/zerolog/log"
)

var growMutex = new(sync.Mutex)

// RandomForest is a random forest classifier.
// The state keeps the training set and the forest is re-grown on restore.
type RandomForest struct {
	Trees   int         `json:"trees"`
	Seed    int64       `json:"seed"`
	Classes []string    `json:"classes"`
	X       [][]float64 `json:"x"`
	Y       []string    `json:"y"`

	forest *randomforest.Forest
}

// NewForest creates a new forest of n trees.
func NewForest(n int, seed int64) *RandomForest {
	return &RandomForest{
		Trees: n,
		Seed:  seed,
	}
}

func (rf *RandomForest) Type() string {
	return Forest
}

// Fit grows the forest.
func (rf *RandomForest) Fit(x [][]float64, y []string) error {
	if err := checkFit(x, y); err != nil {
		return err
	}
	if rf.Trees < 1 {
		return fmt.Errorf("invalid number of trees: %d", rf.Trees)
	}
	rf.X = x
	rf.Y = y
	rf.Classes = Classes(y)
	idx := index(rf.Classes)
	class := make([]int, len(y))
	for i, l := range y {
		class[i] = idx[l]
	}
	forest := &randomforest.Forest{}
	forest.Data = randomforest.ForestData{X: x, Class: class}
	grow(forest, rf.Trees, rf.Seed)
	rf.forest = forest
	log.Debug().
		Int("trees", rf.Trees).
		Floats64("importance", forest.FeatureImportance).
		Msg("forest trained")
	return nil
}

// grow trains the forest one tree at a time from the seeded global source.
func grow(forest *randomforest.Forest, trees int, seed int64) {
	growMutex.Lock()
	defer growMutex.Unlock()
	workers := randomforest.NumWorkers
	randomforest.NumWorkers = 1
	defer func() {
		randomforest.NumWorkers = workers
	}()
	rand.Seed(seed)
	forest.Train(trees)
}

// Predict returns the class with the most votes.
func (rf *RandomForest) Predict(x [][]float64) ([]string, error) {
	if rf.forest == nil {
		return nil, NotFittedErr
	}
	labels := make([]string, len(x))
	for i, row := range x {
		votes := rf.forest.Vote(row)
		labels[i] = rf.Classes[argmax(votes)]
	}
	return labels, nil
}

// Importance returns the feature importance of the fitted forest.
func (rf *RandomForest) Importance() []float64 {
	if rf.forest == nil {
		return nil
	}
	return rf.forest.FeatureImportance
}

func (rf *RandomForest) State() (json.RawMessage, error) {
	if rf.forest == nil {
		return nil, NotFittedErr
	}
	return json.Marshal(rf)
}

func (rf *RandomForest) restore(state json.RawMessage) error {
	if err := json.Unmarshal(state, rf); err != nil {
		return err
	}
	return rf.Fit(rf.X, rf.Y)
}
