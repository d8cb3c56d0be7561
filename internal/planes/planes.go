// Package planes provides the fixed-shape layered tensor used as neural
// network input. Each layer is a height x width gonum matrix; all layers
// share one contiguous backing slice in (layer, row, col) order.
package planes

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Tensor is a stack of equally sized 2D layers.
type Tensor struct {
	layers int
	height int
	width  int
	data   []float64
	views  []*mat.Dense
}

// New allocates a zeroed tensor. All dimensions must be positive.
func New(layers, height, width int) *Tensor {
	t := &Tensor{
		layers: layers,
		height: height,
		width:  width,
		data:   make([]float64, layers*height*width),
		views:  make([]*mat.Dense, layers),
	}
	n := height * width
	for i := range t.views {
		t.views[i] = mat.NewDense(height, width, t.data[i*n:(i+1)*n])
	}
	return t
}

// Shape returns (layers, height, width).
func (t *Tensor) Shape() (layers, height, width int) {
	return t.layers, t.height, t.width
}

// Layer returns layer i as a matrix sharing the tensor's storage.
func (t *Tensor) Layer(i int) *mat.Dense {
	return t.views[i]
}

// At returns the value at (layer, row, col).
func (t *Tensor) At(layer, row, col int) float64 {
	return t.data[t.offset(layer, row, col)]
}

// Set stores v at (layer, row, col).
func (t *Tensor) Set(layer, row, col int, v float64) {
	t.data[t.offset(layer, row, col)] = v
}

// Fill sets every cell of a layer to v.
func (t *Tensor) Fill(layer int, v float64) {
	plane := t.plane(layer)
	for i := range plane {
		plane[i] = v
	}
}

// FlipRows reverses the row axis of every layer in place.
func (t *Tensor) FlipRows() {
	tmp := make([]float64, t.width)
	for l := 0; l < t.layers; l++ {
		for top, bottom := 0, t.height-1; top < bottom; top, bottom = top+1, bottom-1 {
			a := t.row(l, top)
			b := t.row(l, bottom)
			copy(tmp, a)
			copy(a, b)
			copy(b, tmp)
		}
	}
}

// LayerSum returns the sum of all cells of a layer.
func (t *Tensor) LayerSum(layer int) float64 {
	return floats.Sum(t.plane(layer))
}

// Float32 returns the tensor flattened in (layer, row, col) order.
func (t *Tensor) Float32() []float32 {
	out := make([]float32, len(t.data))
	for i, v := range t.data {
		out[i] = float32(v)
	}
	return out
}

// Nested returns a [layer][row][col] copy of the tensor, for JSON encoding.
func (t *Tensor) Nested() [][][]float64 {
	out := make([][][]float64, t.layers)
	for l := range out {
		out[l] = make([][]float64, t.height)
		for r := range out[l] {
			out[l][r] = append([]float64(nil), t.row(l, r)...)
		}
	}
	return out
}

func (t *Tensor) offset(layer, row, col int) int {
	return (layer*t.height+row)*t.width + col
}

func (t *Tensor) plane(layer int) []float64 {
	n := t.height * t.width
	return t.data[layer*n : (layer+1)*n]
}

func (t *Tensor) row(layer, row int) []float64 {
	start := t.offset(layer, row, 0)
	return t.data[start : start+t.width]
}
