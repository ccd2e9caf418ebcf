// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

package classify

import (
	"fmt"
	"math"
	"os"

	"github.com/goccy/go-json"
)

// Layer types understood by Network. Weight layouts follow the channels-last
// convention: conv kernels are [kh][kw][in][out] and dense kernels are
// [in][out], both flattened row-major.
const (
	LayerConv2D    = "conv2d"
	LayerMaxPool2D = "maxpool2d"
	LayerBatchNorm = "batchnorm"
	LayerDense     = "dense"
	LayerFlatten   = "flatten"
	LayerReLU      = "relu"
	LayerSoftmax   = "softmax"
	LayerDropout   = "dropout"
)

// LayerSpec is one layer of a sequential network.
type LayerSpec struct {
	Type string `json:"type"`

	// conv2d
	Filters int    `json:"filters,omitempty"`
	Kernel  [2]int `json:"kernel,omitempty"`
	Stride  int    `json:"stride,omitempty"`
	Padding string `json:"padding,omitempty"` // "valid" (default) or "same"

	// maxpool2d
	Pool [2]int `json:"pool,omitempty"`

	// dense
	Units int `json:"units,omitempty"`

	// conv2d, dense
	Weights    []float32 `json:"weights,omitempty"`
	Bias       []float32 `json:"bias,omitempty"`
	Activation string    `json:"activation,omitempty"`

	// batchnorm
	Gamma    []float32 `json:"gamma,omitempty"`
	Beta     []float32 `json:"beta,omitempty"`
	Mean     []float32 `json:"mean,omitempty"`
	Variance []float32 `json:"variance,omitempty"`
	Epsilon  float32   `json:"epsilon,omitempty"`
}

// Network is a pretrained sequential image classifier. The input is a
// single-channel CropSize x CropSize image with a batch size of one.
type Network struct {
	Layers []LayerSpec `json:"layers"`

	outputLen int
}

// tensor is an HWC activation map.
type tensor struct {
	h, w, c int
	data    []float32
}

func (t *tensor) at(y, x, ch int) float32 { return t.data[(y*t.w+x)*t.c+ch] }

// LoadNetwork reads a network description and checks its shapes.
func LoadNetwork(path string) (*Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read network: %w", err)
	}
	var n Network
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("parse network: %w", err)
	}
	if err := n.Compile(); err != nil {
		return nil, err
	}
	return &n, nil
}

// Compile validates layer parameters by propagating shapes from the input.
func (n *Network) Compile() error {
	if len(n.Layers) == 0 {
		return fmt.Errorf("network has no layers")
	}
	h, w, c := CropSize, CropSize, 1
	for i := range n.Layers {
		l := &n.Layers[i]
		var err error
		h, w, c, err = l.outputShape(h, w, c)
		if err != nil {
			return fmt.Errorf("layer %d (%s): %w", i, l.Type, err)
		}
	}
	if h != 1 || w != 1 {
		return fmt.Errorf("network output is %dx%dx%d, want a flat score vector", h, w, c)
	}
	n.outputLen = c
	return nil
}

// OutputLen is the number of scores the network produces.
func (n *Network) OutputLen() int { return n.outputLen }

func (l *LayerSpec) outputShape(h, w, c int) (int, int, int, error) {
	switch l.Type {
	case LayerConv2D:
		if l.Filters <= 0 || l.Kernel[0] <= 0 || l.Kernel[1] <= 0 {
			return 0, 0, 0, fmt.Errorf("filters and kernel must be positive")
		}
		if want := l.Kernel[0] * l.Kernel[1] * c * l.Filters; len(l.Weights) != want {
			return 0, 0, 0, fmt.Errorf("got %d weights, want %d", len(l.Weights), want)
		}
		if len(l.Bias) != 0 && len(l.Bias) != l.Filters {
			return 0, 0, 0, fmt.Errorf("got %d biases, want %d", len(l.Bias), l.Filters)
		}
		oh, ow := convOut(h, l.Kernel[0], l.stride(), l.Padding), convOut(w, l.Kernel[1], l.stride(), l.Padding)
		if oh <= 0 || ow <= 0 {
			return 0, 0, 0, fmt.Errorf("kernel larger than input")
		}
		return oh, ow, l.Filters, nil
	case LayerMaxPool2D:
		if l.Pool[0] <= 0 || l.Pool[1] <= 0 {
			return 0, 0, 0, fmt.Errorf("pool size must be positive")
		}
		oh, ow := h/l.Pool[0], w/l.Pool[1]
		if oh == 0 || ow == 0 {
			return 0, 0, 0, fmt.Errorf("pool larger than input")
		}
		return oh, ow, c, nil
	case LayerBatchNorm:
		for _, p := range [][]float32{l.Gamma, l.Beta, l.Mean, l.Variance} {
			if len(p) != c {
				return 0, 0, 0, fmt.Errorf("parameters must have %d channels", c)
			}
		}
		return h, w, c, nil
	case LayerDense:
		in := h * w * c
		if h != 1 || w != 1 {
			return 0, 0, 0, fmt.Errorf("dense input must be flattened")
		}
		if l.Units <= 0 || len(l.Weights) != in*l.Units {
			return 0, 0, 0, fmt.Errorf("got %d weights for %d->%d", len(l.Weights), in, l.Units)
		}
		if len(l.Bias) != 0 && len(l.Bias) != l.Units {
			return 0, 0, 0, fmt.Errorf("got %d biases, want %d", len(l.Bias), l.Units)
		}
		return 1, 1, l.Units, nil
	case LayerFlatten:
		return 1, 1, h * w * c, nil
	case LayerReLU, LayerSoftmax, LayerDropout:
		return h, w, c, nil
	default:
		return 0, 0, 0, fmt.Errorf("unsupported layer type")
	}
}

func (l *LayerSpec) stride() int {
	if l.Stride <= 0 {
		return 1
	}
	return l.Stride
}

func convOut(in, k, stride int, padding string) int {
	if padding == "same" {
		return (in + stride - 1) / stride
	}
	return (in-k)/stride + 1
}

// Forward runs the network on pixels already scaled to [0,1] and returns
// the output scores.
func (n *Network) Forward(input []float32) []float32 {
	t := &tensor{h: CropSize, w: CropSize, c: 1, data: input}
	for i := range n.Layers {
		t = n.Layers[i].apply(t)
	}
	return t.data
}

func (l *LayerSpec) apply(t *tensor) *tensor {
	var out *tensor
	switch l.Type {
	case LayerConv2D:
		out = conv2d(t, l)
	case LayerMaxPool2D:
		out = maxPool(t, l.Pool[0], l.Pool[1])
	case LayerBatchNorm:
		out = batchNorm(t, l)
	case LayerDense:
		out = dense(t, l)
	case LayerFlatten:
		out = &tensor{h: 1, w: 1, c: len(t.data), data: t.data}
	case LayerReLU:
		relu(t.data)
		out = t
	case LayerSoftmax:
		softmax(t.data)
		out = t
	default: // dropout is the identity at inference
		out = t
	}

	switch l.Activation {
	case LayerReLU:
		relu(out.data)
	case LayerSoftmax:
		softmax(out.data)
	}
	return out
}

func conv2d(t *tensor, l *LayerSpec) *tensor {
	kh, kw, s := l.Kernel[0], l.Kernel[1], l.stride()
	oh, ow := convOut(t.h, kh, s, l.Padding), convOut(t.w, kw, s, l.Padding)
	var padTop, padLeft int
	if l.Padding == "same" {
		padTop = max(0, ((oh-1)*s+kh-t.h)/2)
		padLeft = max(0, ((ow-1)*s+kw-t.w)/2)
	}

	out := &tensor{h: oh, w: ow, c: l.Filters, data: make([]float32, oh*ow*l.Filters)}
	for oy := 0; oy < oh; oy++ {
		for ox := 0; ox < ow; ox++ {
			base := (oy*ow + ox) * l.Filters
			if len(l.Bias) > 0 {
				copy(out.data[base:base+l.Filters], l.Bias)
			}
			for ky := 0; ky < kh; ky++ {
				iy := oy*s + ky - padTop
				if iy < 0 || iy >= t.h {
					continue
				}
				for kx := 0; kx < kw; kx++ {
					ix := ox*s + kx - padLeft
					if ix < 0 || ix >= t.w {
						continue
					}
					for ci := 0; ci < t.c; ci++ {
						v := t.at(iy, ix, ci)
						if v == 0 {
							continue
						}
						wOff := ((ky*kw+kx)*t.c + ci) * l.Filters
						for f := 0; f < l.Filters; f++ {
							out.data[base+f] += v * l.Weights[wOff+f]
						}
					}
				}
			}
		}
	}
	return out
}

func maxPool(t *tensor, ph, pw int) *tensor {
	oh, ow := t.h/ph, t.w/pw
	out := &tensor{h: oh, w: ow, c: t.c, data: make([]float32, oh*ow*t.c)}
	for oy := 0; oy < oh; oy++ {
		for ox := 0; ox < ow; ox++ {
			for ch := 0; ch < t.c; ch++ {
				m := float32(math.Inf(-1))
				for y := oy * ph; y < (oy+1)*ph; y++ {
					for x := ox * pw; x < (ox+1)*pw; x++ {
						if v := t.at(y, x, ch); v > m {
							m = v
						}
					}
				}
				out.data[(oy*ow+ox)*t.c+ch] = m
			}
		}
	}
	return out
}

func batchNorm(t *tensor, l *LayerSpec) *tensor {
	eps := l.Epsilon
	if eps == 0 {
		eps = 1e-3
	}
	for i := range t.data {
		ch := i % t.c
		scale := l.Gamma[ch] / float32(math.Sqrt(float64(l.Variance[ch]+eps)))
		t.data[i] = (t.data[i]-l.Mean[ch])*scale + l.Beta[ch]
	}
	return t
}

func dense(t *tensor, l *LayerSpec) *tensor {
	out := make([]float32, l.Units)
	if len(l.Bias) > 0 {
		copy(out, l.Bias)
	}
	for i, v := range t.data {
		if v == 0 {
			continue
		}
		row := l.Weights[i*l.Units : (i+1)*l.Units]
		for u := range out {
			out[u] += v * row[u]
		}
	}
	return &tensor{h: 1, w: 1, c: l.Units, data: out}
}

func relu(v []float32) {
	for i := range v {
		if v[i] < 0 {
			v[i] = 0
		}
	}
}

func softmax(v []float32) {
	if len(v) == 0 {
		return
	}
	m := v[0]
	for _, x := range v[1:] {
		if x > m {
			m = x
		}
	}
	var sum float64
	for i, x := range v {
		e := math.Exp(float64(x - m))
		v[i] = float32(e)
		sum += e
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / sum)
	}
}
