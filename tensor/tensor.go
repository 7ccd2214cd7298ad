// Package tensor holds the small fixed-size tensors used by the mapping layer.
// Every slot of a tensor is a two dimensional vector index set (a types.Basis)
// so a rank-k tensor carries 2^k components stored row major.
package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gopolar/types"
)

const MaxRank = 4

type Tensor struct {
	sets [MaxRank]types.Basis
	rank int
	data [1 << MaxRank]float64
}

// New returns a zero tensor with one slot per index set
func New(sets ...types.Basis) (t Tensor) {
	if len(sets) > MaxRank {
		panic(fmt.Errorf("tensor rank %d exceeds %d", len(sets), MaxRank))
	}
	t.rank = len(sets)
	copy(t.sets[:], sets)
	return
}

func Scalar(v float64) (t Tensor) {
	t.data[0] = v
	return
}

func Vector(b types.Basis, v0, v1 float64) (t Tensor) {
	t = New(b)
	t.data[0], t.data[1] = v0, v1
	return
}

// Matrix builds a rank-2 tensor with rows indexed by rows and columns by cols
func Matrix(rows, cols types.Basis, m [2][2]float64) (t Tensor) {
	t = New(rows, cols)
	t.data[0], t.data[1], t.data[2], t.data[3] = m[0][0], m[0][1], m[1][0], m[1][1]
	return
}

func (t Tensor) Rank() int { return t.rank }

func (t Tensor) Sets() []types.Basis { return t.sets[:t.rank] }

func (t Tensor) Set(slot int) types.Basis { return t.sets[slot] }

func (t Tensor) Len() int { return 1 << t.rank }

func (t Tensor) offset(idx []int) (off int) {
	if len(idx) != t.rank {
		panic(fmt.Errorf("rank %d tensor addressed with %d indices", t.rank, len(idx)))
	}
	for _, i := range idx {
		if i < 0 || i > 1 {
			panic(fmt.Errorf("tensor index %d out of range", i))
		}
		off = off<<1 | i
	}
	return
}

func (t Tensor) At(idx ...int) float64 { return t.data[t.offset(idx)] }

func (t *Tensor) SetAt(v float64, idx ...int) { t.data[t.offset(idx)] = v }

func (t Tensor) dimOffset(dims []types.Dim) (off int) {
	if len(dims) != t.rank {
		panic(fmt.Errorf("rank %d tensor addressed with %d dimensions", t.rank, len(dims)))
	}
	for k, d := range dims {
		p := t.sets[k].Sys.Pos(d)
		if p < 0 {
			panic(fmt.Errorf("dimension %s not in index set %s", d, t.sets[k]))
		}
		off = off<<1 | p
	}
	return
}

// Get addresses a component by its dimension tags, e.g. J.Get(X, R) for ∂x/∂r
func (t Tensor) Get(dims ...types.Dim) float64 { return t.data[t.dimOffset(dims)] }

func (t *Tensor) Put(v float64, dims ...types.Dim) { t.data[t.dimOffset(dims)] = v }

// Value returns the single component of a rank-0 tensor
func (t Tensor) Value() float64 {
	if t.rank != 0 {
		panic(fmt.Errorf("value requested from rank %d tensor", t.rank))
	}
	return t.data[0]
}

// Components returns the two components of a vector
func (t Tensor) Components() (v [2]float64) {
	if t.rank != 1 {
		panic(fmt.Errorf("components requested from rank %d tensor", t.rank))
	}
	v[0], v[1] = t.data[0], t.data[1]
	return
}

func (t Tensor) Array() (m [2][2]float64) {
	if t.rank != 2 {
		panic(fmt.Errorf("matrix requested from rank %d tensor", t.rank))
	}
	m[0][0], m[0][1], m[1][0], m[1][1] = t.data[0], t.data[1], t.data[2], t.data[3]
	return
}

// Dense exports a rank-2 tensor for use with gonum
func (t Tensor) Dense() *mat.Dense {
	m := t.Array()
	return mat.NewDense(2, 2, []float64{m[0][0], m[0][1], m[1][0], m[1][1]})
}

// Det is the determinant of a rank-2 tensor
func (t Tensor) Det() float64 {
	m := t.Array()
	return m[0][0]*m[1][1] - m[0][1]*m[1][0]
}

// Inverse inverts a rank-2 tensor; the slots become the duals of the
// original slots in swapped order
func (t Tensor) Inverse() (inv Tensor) {
	var (
		m   = t.Array()
		det = m[0][0]*m[1][1] - m[0][1]*m[1][0]
	)
	inv = Matrix(t.sets[1].Dual(), t.sets[0].Dual(), [2][2]float64{
		{m[1][1] / det, -m[0][1] / det},
		{-m[1][0] / det, m[0][0] / det},
	})
	return
}

func (t Tensor) sameShape(o Tensor) {
	if t.rank != o.rank {
		panic(fmt.Errorf("rank mismatch %d vs %d", t.rank, o.rank))
	}
	for k := 0; k < t.rank; k++ {
		if !t.sets[k].Equivalent(o.sets[k]) {
			panic(fmt.Errorf("index set mismatch in slot %d: %s vs %s", k, t.sets[k], o.sets[k]))
		}
	}
}

func (t Tensor) Add(o Tensor) Tensor {
	t.sameShape(o)
	for i := 0; i < t.Len(); i++ {
		t.data[i] += o.data[i]
	}
	return t
}

func (t Tensor) Sub(o Tensor) Tensor {
	t.sameShape(o)
	for i := 0; i < t.Len(); i++ {
		t.data[i] -= o.data[i]
	}
	return t
}

func (t Tensor) Scale(a float64) Tensor {
	for i := 0; i < t.Len(); i++ {
		t.data[i] *= a
	}
	return t
}

// Lerp returns (1-s)·t + s·o
func (t Tensor) Lerp(o Tensor, s float64) Tensor {
	return t.Scale(1 - s).Add(o.Scale(s))
}

func (t Tensor) String() string {
	return fmt.Sprintf("Tensor%v%v", t.Sets(), t.data[:t.Len()])
}
