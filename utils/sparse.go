package utils

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// DOK is a write-once sparse assembly buffer. Once converted with ToCSR it is
// no longer written to.
type DOK struct {
	M        *sparse.DOK
	readOnly bool
	name     string
}

func NewDOK(nr, nc int) (R DOK) {
	R = DOK{
		sparse.NewDOK(nr, nc),
		false,
		"unnamed - hint: pass a variable name to SetReadOnly()",
	}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m DOK) Dims() (r, c int)    { return m.M.Dims() }
func (m DOK) At(i, j int) float64 { return m.M.At(i, j) }
func (m DOK) T() mat.Matrix       { return m.M.T() }

func (m *DOK) SetReadOnly(name ...string) {
	if len(name) != 0 {
		m.name = name[0]
	}
	m.readOnly = true
}

func (m DOK) Set(i, j int, val float64) {
	m.checkWritable()
	m.M.Set(i, j, val)
}

// Add accumulates val into entry (i,j)
func (m DOK) Add(i, j int, val float64) {
	m.checkWritable()
	m.M.Set(i, j, m.M.At(i, j)+val)
}

func (m DOK) checkWritable() {
	if m.readOnly {
		err := fmt.Errorf("attempt to write to a read only matrix named: \"%v\"", m.name)
		panic(err)
	}
}

func (m DOK) ToCSR() CSR {
	return CSR{
		M:    m.M.ToCSR(),
		name: m.name,
	}
}

type CSR struct {
	M    *sparse.CSR
	name string
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m CSR) Dims() (r, c int)    { return m.M.Dims() }
func (m CSR) At(i, j int) float64 { return m.M.At(i, j) }
func (m CSR) T() mat.Matrix       { return m.M.T() }

func (m CSR) NNZ() int { return m.M.NNZ() }

// MulVec returns A·x
func (m CSR) MulVec(x []float64) []float64 {
	var (
		nr, _ = m.Dims()
		y     = mat.NewVecDense(nr, nil)
	)
	y.MulVec(m.M, mat.NewVecDense(len(x), x))
	return y.RawVector().Data
}

// Band extracts the sub, main and super diagonals of a tridiagonal matrix
func (m CSR) Band() (sub, diag, sup []float64) {
	nr, nc := m.Dims()
	if nr != nc {
		panic(fmt.Errorf("band extraction needs a square matrix, have %dx%d", nr, nc))
	}
	sub, diag, sup = make([]float64, nr), make([]float64, nr), make([]float64, nr)
	for i := 0; i < nr; i++ {
		diag[i] = m.At(i, i)
		if i > 0 {
			sub[i] = m.At(i, i-1)
		}
		if i < nr-1 {
			sup[i] = m.At(i, i+1)
		}
	}
	return
}
