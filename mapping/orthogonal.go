package mapping

import (
	"fmt"

	"github.com/notargets/gopolar/tensor"
	"github.com/notargets/gopolar/types"
)

// Mapping1D transforms a single dimension
type Mapping1D interface {
	In() types.Dim
	Out() types.Dim
	Map1(v float64) float64
	Derivative(v float64) float64
	Inverse1() Mapping1D
}

// Linear maps From to To with To = A·From + B
type Linear struct {
	From, To types.Dim
	A, B     float64
}

func (l Linear) In() types.Dim                { return l.From }
func (l Linear) Out() types.Dim               { return l.To }
func (l Linear) Map1(v float64) float64       { return l.A*v + l.B }
func (l Linear) Derivative(v float64) float64 { return l.A }

func (l Linear) Inverse1() Mapping1D {
	if l.A == 0 {
		panic(fmt.Errorf("linear mapping %s -> %s has zero slope", l.From, l.To))
	}
	return Linear{From: l.To, To: l.From, A: 1 / l.A, B: -l.B / l.A}
}

// Orthogonal combines independent 1-D mappings into a 2-D mapping with a
// block diagonal Jacobian. The blocks must partition both the input and the
// output dimensions.
type Orthogonal struct {
	in, out types.System
	blocks  []Mapping1D
	// slot[k] is the output slot fed by input slot k
	slot [2]int
}

func NewOrthogonal(in, out types.System, blocks ...Mapping1D) (m *Orthogonal) {
	if len(blocks) != 2 {
		panic(fmt.Errorf("orthogonal mapping over 2 dimensions needs 2 blocks, have %d", len(blocks)))
	}
	m = &Orthogonal{in: in, out: out, blocks: make([]Mapping1D, 2)}
	var seenIn, seenOut [2]bool
	for _, b := range blocks {
		pi, po := in.Pos(b.In()), out.Pos(b.Out())
		if pi < 0 || po < 0 {
			panic(fmt.Errorf("block %s -> %s does not fit %s -> %s", b.In(), b.Out(), in, out))
		}
		if seenIn[pi] || seenOut[po] {
			panic(fmt.Errorf("blocks overlap on %s or %s", b.In(), b.Out()))
		}
		seenIn[pi], seenOut[po] = true, true
		m.blocks[pi] = b
		m.slot[pi] = po
	}
	return
}

func (m *Orthogonal) Domain() types.System   { return m.in }
func (m *Orthogonal) Codomain() types.System { return m.out }

func (m *Orthogonal) Map(c types.Coord) types.Coord {
	mustDomain(m, c)
	var v [2]float64
	for k, b := range m.blocks {
		v[m.slot[k]] = b.Map1(c.V[k])
	}
	return types.NewCoord(m.out, v[0], v[1])
}

func (m *Orthogonal) JacobianMatrix(c types.Coord) tensor.Tensor {
	mustDomain(m, c)
	var a [2][2]float64
	for k, b := range m.blocks {
		a[m.slot[k]][k] = b.Derivative(c.V[k])
	}
	return jacobianTensor(m, a)
}

// Jacobian is the product of the block derivatives times the sign of the
// dimension permutation
func (m *Orthogonal) Jacobian(c types.Coord) float64 {
	mustDomain(m, c)
	det := m.blocks[0].Derivative(c.V[0]) * m.blocks[1].Derivative(c.V[1])
	if m.slot[0] != 0 {
		det = -det
	}
	return det
}

// JacobianComponent is zero for any pair not joined by a single block
func (m *Orthogonal) JacobianComponent(out, in types.Dim, c types.Coord) float64 {
	mustDomain(m, c)
	k := m.in.Pos(in)
	if k < 0 || m.out.Pos(out) < 0 {
		panic(fmt.Errorf("no jacobian component d%s/d%s for a mapping %s -> %s", out, in, m.in, m.out))
	}
	if m.blocks[k].Out() != out {
		return 0
	}
	return m.blocks[k].Derivative(c.V[k])
}

func (m *Orthogonal) Inverse() Mapping {
	inv := make([]Mapping1D, len(m.blocks))
	for k, b := range m.blocks {
		inv[k] = b.Inverse1()
	}
	return NewOrthogonal(m.out, m.in, inv...)
}
