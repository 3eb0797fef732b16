package ml

import (
	"fmt"

	xmachina "github.com/drakos74/go-ex-machina/xmachina/ml"
	"github.com/drakos74/go-ex-machina/xmachina/net"
	"github.com/drakos74/go-ex-machina/xmath"
)

// Geometry describes a convolution layer over a freq x time window,
// with valid (unpadded) convolution, relu activation and max pooling along frequency.
type Geometry struct {
	Freq    int `json:"freq"`
	Time    int `json:"time"`
	Filters int `json:"filters"`
	KFreq   int `json:"k_freq"`
	KTime   int `json:"k_time"`
	Pool    int `json:"pool"`
}

// NewGeometry creates the layer geometry, shrinking the kernel to fit the window.
func NewGeometry(freq, time, filters, kernel, pool int) (Geometry, error) {
	g := Geometry{
		Freq:    freq,
		Time:    time,
		Filters: filters,
		KFreq:   min(kernel, freq),
		KTime:   min(kernel, time),
		Pool:    pool,
	}
	if freq < 1 || time < 1 || filters < 1 || kernel < 1 || pool < 1 {
		return g, fmt.Errorf("invalid convolution geometry %+v", g)
	}
	if g.convFreq() < pool {
		return g, fmt.Errorf("pool %d is larger than the convolution output %d", pool, g.convFreq())
	}
	return g, nil
}

func (g Geometry) convFreq() int {
	return g.Freq - g.KFreq + 1
}

func (g Geometry) convTime() int {
	return g.Time - g.KTime + 1
}

func (g Geometry) poolFreq() int {
	return g.convFreq() / g.Pool
}

// In returns the size of the flattened input.
func (g Geometry) In() int {
	return g.Freq * g.Time
}

// Out returns the size of the flattened output.
func (g Geometry) Out() int {
	return g.Filters * g.poolFreq() * g.convTime()
}

// ConvCell is a convolution neuron for the feed forward network.
// The kernels are the rows of the weight matrix, one bias per filter.
type ConvCell struct {
	geometry Geometry
	learning xmachina.Module
	weights  *net.Weights
	meta     net.Meta
	input    xmath.Vector
	// active marks the positive convolution outputs
	active []bool
	// argmax keeps the convolution output index that won each pooled output
	argmax []int
}

// ConvFactory returns the neuron factory for the given geometry.
func ConvFactory(g Geometry, module *xmachina.Module, weights, bias xmath.VectorGenerator) net.NeuronFactory {
	return func(n, m int, meta net.Meta) net.Neuron {
		if n != g.In() || m != g.Out() {
			panic(fmt.Sprintf("convolution of %+v cannot map %d to %d", g, n, m))
		}
		return &ConvCell{
			geometry: g,
			learning: *module,
			weights: &net.Weights{
				W: xmath.Mat(g.Filters).Generate(g.KFreq*g.KTime, weights),
				B: xmath.Vec(g.Filters).Generate(bias),
			},
			meta:   meta,
			input:  xmath.Vec(n),
			active: make([]bool, g.Filters*g.convFreq()*g.convTime()),
			argmax: make([]int, m),
		}
	}
}

// Fwd convolves, rectifies and pools the flattened freq x time input.
func (c *ConvCell) Fwd(v xmath.Vector) xmath.Vector {
	xmath.MustHaveSameSize(v, c.input)
	c.input = v
	g := c.geometry
	cf, ct := g.convFreq(), g.convTime()

	conv := make([]float64, g.Filters*cf*ct)
	for k := 0; k < g.Filters; k++ {
		kernel := c.weights.W[k]
		for i := 0; i < cf; i++ {
			for j := 0; j < ct; j++ {
				z := c.weights.B[k]
				for a := 0; a < g.KFreq; a++ {
					for b := 0; b < g.KTime; b++ {
						z += kernel[a*g.KTime+b] * v[(i+a)*g.Time+j+b]
					}
				}
				o := (k*cf+i)*ct + j
				c.active[o] = z > 0
				if z > 0 {
					conv[o] = z
				} else {
					conv[o] = 0
				}
			}
		}
	}

	pf := g.poolFreq()
	out := xmath.Vec(g.Out())
	for k := 0; k < g.Filters; k++ {
		for p := 0; p < pf; p++ {
			for j := 0; j < ct; j++ {
				best := (k*cf+p*g.Pool)*ct + j
				for i := p*g.Pool + 1; i < (p+1)*g.Pool; i++ {
					o := (k*cf+i)*ct + j
					if conv[o] > conv[best] {
						best = o
					}
				}
				q := (k*pf+p)*ct + j
				out[q] = conv[best]
				c.argmax[q] = best
			}
		}
	}
	return out
}

// Bwd routes the diff through the pooling and the activation,
// updates the kernels and returns the diff for the input.
func (c *ConvCell) Bwd(diff xmath.Vector) xmath.Vector {
	g := c.geometry
	cf, ct := g.convFreq(), g.convTime()

	grad := make([]float64, g.Filters*cf*ct)
	for q, o := range c.argmax {
		if c.active[o] {
			grad[o] += diff[q]
		}
	}

	loss := xmath.Vec(len(c.input))
	dW := xmath.Mat(g.Filters).Of(g.KFreq * g.KTime)
	dB := xmath.Vec(g.Filters)
	for k := 0; k < g.Filters; k++ {
		kernel := c.weights.W[k]
		for i := 0; i < cf; i++ {
			for j := 0; j < ct; j++ {
				d := grad[(k*cf+i)*ct+j]
				if d == 0 {
					continue
				}
				dB[k] += d
				for a := 0; a < g.KFreq; a++ {
					for b := 0; b < g.KTime; b++ {
						x := (i+a)*g.Time + j + b
						dW[k][a*g.KTime+b] += d * c.input[x]
						loss[x] += d * kernel[a*g.KTime+b]
					}
				}
			}
		}
	}
	c.weights.W = c.weights.W.Add(dW.Mult(c.learning.WRate()))
	c.weights.B = c.weights.B.Add(dB.Mult(c.learning.BRate()))
	return loss
}

// Meta returns the metadata for the neuron.
func (c *ConvCell) Meta() net.Meta {
	return c.meta
}

// Weights returns the kernels and biases.
func (c *ConvCell) Weights() *net.Weights {
	return c.weights
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
