package ml

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/sjwhitworth/golearn/base"
	"github.com/sjwhitworth/golearn/knn"
)

const classAttribute = "label"

// KNNClassifier applies a distance weighted k nearest neighbours vote with euclidean distance.
// It keeps the training samples, so its state is the training set itself.
type KNNClassifier struct {
	K int         `json:"k"`
	X [][]float64 `json:"x"`
	Y []string    `json:"y"`

	cls   *knn.KNNClassifier
	attrs []base.Attribute
	class *base.CategoricalAttribute
}

// NewKNN creates a new knn classifier for k neighbours.
func NewKNN(k int) *KNNClassifier {
	return &KNNClassifier{K: k}
}

func (c *KNNClassifier) Type() string {
	return KNN
}

// Fit keeps the training samples.
func (c *KNNClassifier) Fit(x [][]float64, y []string) error {
	if err := checkFit(x, y); err != nil {
		return err
	}
	if c.K < 1 {
		return fmt.Errorf("invalid number of neighbours: %d", c.K)
	}
	if c.K > len(x) {
		return fmt.Errorf("%d neighbours for %d training samples", c.K, len(x))
	}
	c.X = x
	c.Y = y

	c.attrs = make([]base.Attribute, len(x[0]))
	for i := range c.attrs {
		c.attrs[i] = base.NewFloatAttribute(fmt.Sprintf("f%d", i))
	}
	c.class = base.NewCategoricalAttribute()
	c.class.SetName(classAttribute)

	train, err := c.instances(x, y)
	if err != nil {
		return fmt.Errorf("could not create training instances: %w", err)
	}

	cls := knn.NewKnnClassifier("euclidean", "linear", c.K)
	cls.Weighted = true
	// the optimised euclidean path ignores the weights
	cls.AllowOptimisations = false
	err = cls.Fit(train)
	if err != nil {
		log.Error().Err(err).Msg("could not train knn model")
		return err
	}
	c.cls = cls
	return nil
}

// Predict returns the label of the weighted majority of the k nearest training samples.
func (c *KNNClassifier) Predict(x [][]float64) ([]string, error) {
	if c.cls == nil {
		return nil, NotFittedErr
	}
	labels := make([]string, len(x))
	// one sample at a time, the golearn classifier reports its progress on stdout for larger grids
	for i, row := range x {
		// the class column of the test instance is ignored by the classifier
		test, err := c.instances([][]float64{row}, c.Y[:1])
		if err != nil {
			return nil, fmt.Errorf("could not create test instance %d: %w", i, err)
		}
		prediction, err := c.cls.Predict(test)
		if err != nil {
			log.Error().Err(err).Int("sample", i).Msg("could not predict on knn model")
			return nil, err
		}
		labels[i] = base.GetClass(prediction, 0)
	}
	return labels, nil
}

// State returns the training set and k.
func (c *KNNClassifier) State() (json.RawMessage, error) {
	if c.cls == nil {
		return nil, NotFittedErr
	}
	return json.Marshal(c)
}

func (c *KNNClassifier) restore(state json.RawMessage) error {
	if err := json.Unmarshal(state, c); err != nil {
		return err
	}
	return c.Fit(c.X, c.Y)
}

// instances creates the golearn grid for the samples.
// All the grids share the attributes of the classifier so that they are compatible.
func (c *KNNClassifier) instances(x [][]float64, y []string) (*base.DenseInstances, error) {
	inst := base.NewDenseInstances()
	specs := make([]base.AttributeSpec, len(c.attrs))
	for i, a := range c.attrs {
		specs[i] = inst.AddAttribute(a)
	}
	classSpec := inst.AddAttribute(c.class)
	if err := inst.AddClassAttribute(c.class); err != nil {
		return nil, err
	}
	if err := inst.Extend(len(x)); err != nil {
		return nil, err
	}
	for i, row := range x {
		if len(row) != len(specs) {
			return nil, fmt.Errorf("sample %d has %d features instead of %d", i, len(row), len(specs))
		}
		for j, v := range row {
			inst.Set(specs[j], i, base.PackFloatToBytes(v))
		}
		inst.Set(classSpec, i, c.class.GetSysValFromString(y[i]))
	}
	return inst, nil
}
