package ml

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"

	xmachina "github.com/drakos74/go-ex-machina/xmachina/ml"
	"github.com/drakos74/go-ex-machina/xmachina/net"
	"github.com/drakos74/go-ex-machina/xmachina/net/ff"
	"github.com/drakos74/go-ex-machina/xmath"
	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
)

// Epoch is one line of the training log.
type Epoch struct {
	Epoch  int     `csv:"epoch"`
	Loss   float64 `csv:"loss"`
	ValAcc float64 `csv:"val_acc"`
}

// FlatWindowNet is a small convolutional network over fixed size spectrogram windows.
// Samples are the flattened freq x time windows.
// conv (relu) -> max-pool -> dense (tanh) -> dense (tanh) -> softmax
type FlatWindowNet struct {
	Geometry     Geometry `json:"geometry"`
	Hidden       int      `json:"hidden"`
	LearningRate float64  `json:"learning_rate"`
	Epochs       int      `json:"epochs"`
	Patience     int      `json:"patience"`
	Validation   float64  `json:"validation_fraction"`
	Seed         int64    `json:"seed"`

	Classes   []string      `json:"classes"`
	Layers    []net.Weights `json:"layers"`
	BestEpoch int           `json:"best_epoch"`
	History   []Epoch       `json:"-"`

	logFile string
	network *ff.Network
	neurons []net.Neuron
}

// NewFlatWindow creates the network for windows of freq_bins x time_bins.
// The other hyperparameters are filters, kernel, pool, hidden,
// learning_rate, epochs, patience and validation_fraction.
func NewFlatWindow(hyperparameters Hyperparameters, seed int64) (*FlatWindowNet, error) {
	freq := hyperparameters.Int("freq_bins", 0)
	time := hyperparameters.Int("time_bins", 0)
	if freq == 0 || time == 0 {
		return nil, fmt.Errorf("flatwindow needs the window shape, got %d x %d", freq, time)
	}
	g, err := NewGeometry(freq, time,
		hyperparameters.Int("filters", 8),
		hyperparameters.Int("kernel", 5),
		hyperparameters.Int("pool", 2))
	if err != nil {
		return nil, err
	}
	fw := &FlatWindowNet{
		Geometry:     g,
		Hidden:       hyperparameters.Int("hidden", 32),
		LearningRate: hyperparameters.Get("learning_rate", 0.05),
		Epochs:       hyperparameters.Int("epochs", 30),
		Patience:     hyperparameters.Int("patience", 5),
		Validation:   hyperparameters.Get("validation_fraction", 0.1),
		Seed:         seed,
	}
	if fw.Hidden < 1 || fw.LearningRate <= 0 || fw.Epochs < 1 || fw.Patience < 1 ||
		fw.Validation < 0 || fw.Validation >= 1 {
		return nil, fmt.Errorf("invalid flatwindow parameters %+v", fw)
	}
	return fw, nil
}

func (fw *FlatWindowNet) Type() string {
	return FlatWindow
}

// LogTo sets the csv file for the training log.
func (fw *FlatWindowNet) LogTo(file string) {
	fw.logFile = file
}

// Fit trains the network on a random split of the samples,
// keeping the weights of the epoch with the best validation accuracy.
// Training stops when the validation accuracy has not improved for patience epochs.
func (fw *FlatWindowNet) Fit(x [][]float64, y []string) error {
	if err := checkFit(x, y); err != nil {
		return err
	}
	for i, row := range x {
		if len(row) != fw.Geometry.In() {
			return fmt.Errorf("sample %d has size %d instead of %d", i, len(row), fw.Geometry.In())
		}
	}

	rng := rand.New(rand.NewSource(fw.Seed))
	fw.Classes = Classes(y)
	fw.build(rng)

	idx := index(fw.Classes)
	targets := make([]xmath.Vector, len(y))
	for i, l := range y {
		targets[i] = xmath.Vec(len(fw.Classes))
		targets[i][idx[l]] = 1
	}

	order := rng.Perm(len(x))
	nVal := int(fw.Validation * float64(len(x)))
	if fw.Validation > 0 && nVal == 0 && len(x) > 1 {
		nVal = 1
	}
	val, train := order[:nVal], order[nVal:]
	if nVal == 0 {
		// nothing to hold out, monitor the training set
		val = train
	}
	valX := make([][]float64, len(val))
	valY := make([]string, len(val))
	for i, v := range val {
		valX[i] = x[v]
		valY[i] = y[v]
	}

	fw.History = make([]Epoch, 0, fw.Epochs)
	best := -1.0
	var checkpoint []net.Weights
	wait := 0
	for e := 0; e < fw.Epochs; e++ {
		rng.Shuffle(len(train), func(i, j int) {
			train[i], train[j] = train[j], train[i]
		})
		var loss float64
		for _, i := range train {
			l, _ := fw.network.Train(xmath.Vec(len(x[i])).With(x[i]...), targets[i])
			loss += l.Sum()
		}
		loss /= float64(len(train))

		pred := fw.predict(valX)
		acc := Accuracy(valY, pred)
		fw.History = append(fw.History, Epoch{Epoch: e, Loss: loss, ValAcc: acc})
		log.Debug().
			Int("epoch", e).
			Float64("loss", loss).
			Float64("val_acc", acc).
			Msg("flatwindow epoch")

		if acc > best {
			best = acc
			fw.BestEpoch = e
			checkpoint = fw.weights()
			wait = 0
			continue
		}
		wait++
		if wait >= fw.Patience {
			log.Debug().
				Int("epoch", e).
				Int("best", fw.BestEpoch).
				Float64("val_acc", best).
				Msg("early stopping")
			break
		}
	}

	if err := fw.setWeights(checkpoint); err != nil {
		return err
	}
	fw.Layers = checkpoint

	if fw.logFile != "" {
		if err := fw.writeLog(); err != nil {
			return err
		}
	}
	return nil
}

// Predict returns the class with the largest output probability.
func (fw *FlatWindowNet) Predict(x [][]float64) ([]string, error) {
	if fw.network == nil {
		return nil, NotFittedErr
	}
	for i, row := range x {
		if len(row) != fw.Geometry.In() {
			return nil, fmt.Errorf("sample %d has size %d instead of %d", i, len(row), fw.Geometry.In())
		}
	}
	return fw.predict(x), nil
}

func (fw *FlatWindowNet) predict(x [][]float64) []string {
	labels := make([]string, len(x))
	for i, row := range x {
		out := fw.network.Predict(xmath.Vec(len(row)).With(row...))
		labels[i] = fw.Classes[argmax(out)]
	}
	return labels
}

func (fw *FlatWindowNet) State() (json.RawMessage, error) {
	if fw.network == nil {
		return nil, NotFittedErr
	}
	return json.Marshal(fw)
}

func (fw *FlatWindowNet) restore(state json.RawMessage) error {
	if err := json.Unmarshal(state, fw); err != nil {
		return err
	}
	if len(fw.Classes) == 0 {
		return fmt.Errorf("no classes in flatwindow state")
	}
	fw.build(rand.New(rand.NewSource(fw.Seed)))
	return fw.setWeights(fw.Layers)
}

// build creates the network, keeping a reference to every neuron with weights.
func (fw *FlatWindowNet) build(rng *rand.Rand) {
	g := fw.Geometry
	classes := len(fw.Classes)
	rate := xmachina.Learn(fw.LearningRate, fw.LearningRate)
	init := uniform(rng)

	fw.neurons = make([]net.Neuron, 0, 3)
	capture := func(factory net.NeuronFactory) net.NeuronFactory {
		return func(n, m int, meta net.Meta) net.Neuron {
			neuron := factory(n, m, meta)
			fw.neurons = append(fw.neurons, neuron)
			return neuron
		}
	}

	network := ff.New(g.In(), classes).
		Add(g.Out(), capture(ConvFactory(g,
			xmachina.Base().WithRate(rate),
			init, xmath.Const(0.1)))).
		Add(fw.Hidden, capture(net.NewBuilder().
			WithModule(xmachina.Base().
				WithRate(rate).
				WithActivation(xmachina.TanH)).
			WithWeights(init, xmath.Const(0)).
			Factory(net.NewActivationCell))).
		Add(classes, capture(net.NewBuilder().
			WithModule(xmachina.Base().
				WithRate(rate).
				WithActivation(xmachina.TanH)).
			WithWeights(init, xmath.Const(0)).
			Factory(net.NewActivationCell))).
		Add(classes, net.NewBuilder().CellFactory(net.NewSoftCell))
	network.Loss(xmachina.Pow)
	fw.network = network
}

// weights copies the current weights of the network.
func (fw *FlatWindowNet) weights() []net.Weights {
	ww := make([]net.Weights, len(fw.neurons))
	for i, n := range fw.neurons {
		w := n.Weights()
		ww[i] = net.Weights{W: w.W.Copy(), B: w.B.Copy()}
	}
	return ww
}

func (fw *FlatWindowNet) setWeights(ww []net.Weights) error {
	if len(ww) != len(fw.neurons) {
		return fmt.Errorf("%d layers of weights for %d layers", len(ww), len(fw.neurons))
	}
	for i, n := range fw.neurons {
		w := n.Weights()
		if len(ww[i].W) != len(w.W) || len(ww[i].B) != len(w.B) {
			return fmt.Errorf("layer %d has weights %dx%d instead of %dx%d",
				i, len(ww[i].W), len(ww[i].B), len(w.W), len(w.B))
		}
		w.W = ww[i].W.Copy()
		w.B = ww[i].B.Copy()
	}
	return nil
}

func (fw *FlatWindowNet) writeLog() error {
	if err := os.MkdirAll(filepath.Dir(fw.logFile), os.ModePerm); err != nil {
		return fmt.Errorf("could not make dir for '%s': %w", fw.logFile, err)
	}
	f, err := os.Create(fw.logFile)
	if err != nil {
		return fmt.Errorf("could not create training log '%s': %w", fw.logFile, err)
	}
	defer f.Close()
	if err := gocsv.MarshalFile(&fw.History, f); err != nil {
		return fmt.Errorf("could not write training log '%s': %w", fw.logFile, err)
	}
	return nil
}

// uniform draws weights within +-sqrt(3/fan-in) from the given source.
func uniform(rng *rand.Rand) xmath.VectorGenerator {
	return func(p, index int) xmath.Vector {
		w := xmath.Vec(p)
		scale := math.Sqrt(3 / float64(p))
		for i := range w {
			w[i] = (rng.Float64()*2 - 1) * scale
		}
		return w
	}
}
