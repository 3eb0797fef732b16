package ml

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// SVMClassifier is a one-vs-rest support vector machine with an rbf kernel.
// The kernel is approximated by random fourier features,
// z(x) = sqrt(2/D) * cos(W x + b) with W ~ N(0, 2*gamma) and b ~ U[0, 2pi),
// and every class gets a linear hinge loss machine on z(x) trained with pegasos.
type SVMClassifier struct {
	C          float64 `json:"C"`
	Gamma      float64 `json:"gamma"`
	Components int     `json:"components"`
	Epochs     int     `json:"epochs"`
	Seed       int64   `json:"seed"`

	Classes []string    `json:"classes"`
	Omega   [][]float64 `json:"omega"`
	Offset  []float64   `json:"offset"`
	Weights [][]float64 `json:"weights"`
}

// NewSVM creates a new svm for the hyperparameters C, gamma, components and epochs.
func NewSVM(hyperparameters Hyperparameters, seed int64) *SVMClassifier {
	return &SVMClassifier{
		C:          hyperparameters.Get("C", 1),
		Gamma:      hyperparameters.Get("gamma", 0.1),
		Components: hyperparameters.Int("components", 300),
		Epochs:     hyperparameters.Int("epochs", 50),
		Seed:       seed,
	}
}

func (s *SVMClassifier) Type() string {
	return SVM
}

// Fit draws the feature map and trains one machine per class.
func (s *SVMClassifier) Fit(x [][]float64, y []string) error {
	if err := checkFit(x, y); err != nil {
		return err
	}
	if s.C <= 0 || s.Gamma <= 0 || s.Components < 1 || s.Epochs < 1 {
		return fmt.Errorf("invalid svm parameters C=%v gamma=%v components=%d epochs=%d",
			s.C, s.Gamma, s.Components, s.Epochs)
	}

	rng := rand.New(rand.NewSource(s.Seed))
	d := len(x[0])
	std := math.Sqrt(2 * s.Gamma)
	s.Omega = make([][]float64, d)
	for i := range s.Omega {
		s.Omega[i] = make([]float64, s.Components)
		for j := range s.Omega[i] {
			s.Omega[i][j] = rng.NormFloat64() * std
		}
	}
	s.Offset = make([]float64, s.Components)
	for j := range s.Offset {
		s.Offset[j] = rng.Float64() * 2 * math.Pi
	}

	z, err := s.transform(x)
	if err != nil {
		return err
	}

	s.Classes = Classes(y)
	idx := index(s.Classes)
	n := len(z)
	lambda := 1 / (s.C * float64(n))
	s.Weights = make([][]float64, len(s.Classes))
	for c := range s.Classes {
		w := make([]float64, s.Components+1)
		order := rng.Perm(n)
		t := 0
		for e := 0; e < s.Epochs; e++ {
			rng.Shuffle(len(order), func(i, j int) {
				order[i], order[j] = order[j], order[i]
			})
			for _, i := range order {
				t++
				eta := 1 / (lambda * float64(t))
				target := -1.0
				if idx[y[i]] == c {
					target = 1
				}
				margin := target * floats.Dot(w, z[i])
				floats.Scale(1-eta*lambda, w)
				if margin < 1 {
					floats.AddScaled(w, eta*target, z[i])
				}
			}
		}
		s.Weights[c] = w
	}
	log.Debug().
		Int("samples", n).
		Int("classes", len(s.Classes)).
		Int("components", s.Components).
		Msg("svm fitted")
	return nil
}

// Predict returns the class with the largest decision value.
func (s *SVMClassifier) Predict(x [][]float64) ([]string, error) {
	if len(s.Weights) == 0 {
		return nil, NotFittedErr
	}
	values, err := s.Decision(x)
	if err != nil {
		return nil, err
	}
	labels := make([]string, len(values))
	for i, v := range values {
		labels[i] = s.Classes[argmax(v)]
	}
	return labels, nil
}

// Decision returns the one-vs-rest decision values, one column per class.
func (s *SVMClassifier) Decision(x [][]float64) ([][]float64, error) {
	z, err := s.transform(x)
	if err != nil {
		return nil, err
	}
	values := make([][]float64, len(z))
	for i, zz := range z {
		values[i] = make([]float64, len(s.Weights))
		for c, w := range s.Weights {
			values[i][c] = floats.Dot(w, zz)
		}
	}
	return values, nil
}

// transform maps the samples to the random features, with a trailing constant for the bias.
func (s *SVMClassifier) transform(x [][]float64) ([][]float64, error) {
	if len(x) == 0 {
		return [][]float64{}, nil
	}
	d := len(s.Omega)
	data := make([]float64, 0, len(x)*d)
	for i, row := range x {
		if len(row) != d {
			return nil, fmt.Errorf("sample %d has %d features instead of %d", i, len(row), d)
		}
		data = append(data, row...)
	}
	omega := make([]float64, 0, d*s.Components)
	for _, row := range s.Omega {
		omega = append(omega, row...)
	}

	var proj mat.Dense
	proj.Mul(mat.NewDense(len(x), d, data), mat.NewDense(d, s.Components, omega))

	scale := math.Sqrt(2 / float64(s.Components))
	z := make([][]float64, len(x))
	for i := range z {
		z[i] = make([]float64, s.Components+1)
		for j := 0; j < s.Components; j++ {
			z[i][j] = scale * math.Cos(proj.At(i, j)+s.Offset[j])
		}
		z[i][s.Components] = 1
	}
	return z, nil
}

func (s *SVMClassifier) State() (json.RawMessage, error) {
	if len(s.Weights) == 0 {
		return nil, NotFittedErr
	}
	return json.Marshal(s)
}

func (s *SVMClassifier) restore(state json.RawMessage) error {
	if err := json.Unmarshal(state, s); err != nil {
		return err
	}
	if len(s.Weights) != len(s.Classes) || len(s.Offset) != s.Components {
		return fmt.Errorf("inconsistent svm state: %d weights for %d classes", len(s.Weights), len(s.Classes))
	}
	return nil
}
