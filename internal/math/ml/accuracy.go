package ml

import (
	"github.com/sjwhitworth/golearn/evaluation"
)

// Accuracy returns the fraction of predictions matching the labels.
func Accuracy(y, pred []string) float64 {
	if len(y) == 0 {
		return 0
	}
	var hits int
	for i := range y {
		if i < len(pred) && y[i] == pred[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(y))
}

// Confusion builds the confusion matrix of reference to predicted labels.
func Confusion(y, pred []string) evaluation.ConfusionMatrix {
	cm := make(evaluation.ConfusionMatrix)
	for i, ref := range y {
		if _, ok := cm[ref]; !ok {
			cm[ref] = make(map[string]int)
		}
		if i < len(pred) {
			cm[ref][pred[i]]++
		}
	}
	return cm
}

// AccByLabel returns the recall of every label of the labelset that is present in y,
// and the unweighted mean over those labels.
// Labels of the labelset missing from y have no accuracy and are left out of the mean.
func AccByLabel(y, pred []string, labelset []string) (map[string]float64, float64) {
	cm := Confusion(y, pred)
	acc := make(map[string]float64)
	var sum float64
	for _, l := range labelset {
		if _, ok := cm[l]; !ok {
			continue
		}
		acc[l] = evaluation.GetRecall(l, cm)
		sum += acc[l]
	}
	if len(acc) == 0 {
		return acc, 0
	}
	return acc, sum / float64(len(acc))
}
