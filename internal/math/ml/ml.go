package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

const (
	KNN        = "knn"
	SVM        = "svm"
	Forest     = "forest"
	FlatWindow = "flatwindow"
)

var (
	UnknownModelErr = errors.New("unknown model")
	NotFittedErr    = errors.New("model not fitted")
)

// Classifier is a supervised model over feature rows and string labels.
type Classifier interface {
	Fit(x [][]float64, y []string) error
	Predict(x [][]float64) ([]string, error)
	// Type returns the model name the classifier was created with.
	Type() string
	// State returns the fitted parameters needed to restore the classifier.
	State() (json.RawMessage, error)
}

// Hyperparameters are the numeric model settings as given in the config.
type Hyperparameters map[string]float64

// Get returns the value for the key or the default if missing.
func (h Hyperparameters) Get(key string, def float64) float64 {
	if v, ok := h[key]; ok {
		return v
	}
	return def
}

// Int returns the value for the key as an int or the default if missing.
func (h Hyperparameters) Int(key string, def int) int {
	return int(h.Get(key, float64(def)))
}

// Copy returns a copy of the hyperparameters.
func (h Hyperparameters) Copy() Hyperparameters {
	c := make(Hyperparameters, len(h))
	for k, v := range h {
		c[k] = v
	}
	return c
}

// Models returns the known model names.
func Models() []string {
	return []string{FlatWindow, Forest, KNN, SVM}
}

// New creates an unfitted classifier for the model name.
func New(model string, hyperparameters Hyperparameters, seed int64) (Classifier, error) {
	if hyperparameters == nil {
		hyperparameters = Hyperparameters{}
	}
	switch model {
	case KNN:
		return NewKNN(hyperparameters.Int("k", 4)), nil
	case SVM:
		return NewSVM(hyperparameters, seed), nil
	case Forest:
		return NewForest(hyperparameters.Int("trees", 100), seed), nil
	case FlatWindow:
		fw, err := NewFlatWindow(hyperparameters, seed)
		if err != nil {
			return nil, err
		}
		return fw, nil
	}
	return nil, fmt.Errorf("'%s': %w", model, UnknownModelErr)
}

// Restore re-creates a fitted classifier from its persisted state.
func Restore(model string, state json.RawMessage) (Classifier, error) {
	var clf Classifier
	switch model {
	case KNN:
		clf = &KNNClassifier{}
	case SVM:
		clf = &SVMClassifier{}
	case Forest:
		clf = &RandomForest{}
	case FlatWindow:
		clf = &FlatWindowNet{}
	default:
		return nil, fmt.Errorf("'%s': %w", model, UnknownModelErr)
	}
	r, ok := clf.(interface {
		restore(state json.RawMessage) error
	})
	if !ok {
		return nil, fmt.Errorf("'%s' cannot be restored: %w", model, UnknownModelErr)
	}
	if err := r.restore(state); err != nil {
		return nil, fmt.Errorf("could not restore '%s': %w", model, err)
	}
	return clf, nil
}

// Score returns the mean accuracy of the classifier on the given samples,
// together with the predicted labels.
func Score(clf Classifier, x [][]float64, y []string) (float64, []string, error) {
	pred, err := clf.Predict(x)
	if err != nil {
		return 0, nil, err
	}
	return Accuracy(y, pred), pred, nil
}

// Classes returns the sorted unique labels.
func Classes(y []string) []string {
	set := make(map[string]struct{})
	for _, l := range y {
		set[l] = struct{}{}
	}
	classes := make([]string, 0, len(set))
	for l := range set {
		classes = append(classes, l)
	}
	sort.Strings(classes)
	return classes
}

func index(classes []string) map[string]int {
	idx := make(map[string]int, len(classes))
	for i, c := range classes {
		idx[c] = i
	}
	return idx
}

func argmax(vv []float64) int {
	m := 0
	for i, v := range vv {
		if v > vv[m] {
			m = i
		}
	}
	return m
}

func checkFit(x [][]float64, y []string) error {
	if len(x) == 0 {
		return fmt.Errorf("no training samples")
	}
	if len(x) != len(y) {
		return fmt.Errorf("%d samples for %d labels", len(x), len(y))
	}
	if len(x[0]) == 0 {
		return fmt.Errorf("no features")
	}
	return nil
}
