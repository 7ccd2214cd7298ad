// Package transport re-expresses vectors in another basis using the Jacobian
// and metric of a coordinate mapping.
package transport

import (
	"fmt"

	"github.com/notargets/gopolar/field"
	"github.com/notargets/gopolar/mapping"
	"github.com/notargets/gopolar/tensor"
	"github.com/notargets/gopolar/types"
	"github.com/notargets/gopolar/utils"
)

// ToVectorSpace returns v expressed in the target basis. m relates the two
// coordinate systems (in either direction) and at is where its Jacobian is
// evaluated, in a system m accepts.
//
// Cartesian bases are their own duals, so their variance is adopted from the
// other side. What is left is resolved as: identical bases are returned as
// is; a variance flip within one system contracts with the metric; a change
// of system applies J or its inverse; both at once flips variance first.
func ToVectorSpace(v tensor.Tensor, target types.Basis, at types.Coord, m mapping.Mapping) tensor.Tensor {
	if v.Rank() != 1 {
		panic(fmt.Errorf("vector transport of a rank %d tensor", v.Rank()))
	}
	var (
		src  = v.Set(0)
		want = target
	)
	switch {
	case src.Equivalent(target):
		return relabel(v, target)
	case src.Sys.Cartesian():
		src.Var = target.Var
		v = relabel(v, src)
	case target.Sys.Cartesian():
		want.Var = src.Var
	}
	switch {
	case src.Sys == want.Sys:
		v = lower(v, want, at, m)
	case src.Var == want.Var:
		v = changeSystem(v, want, at, m)
	default:
		v = lower(v, src.Dual(), at, m)
		v = changeSystem(v, want, at, m)
	}
	return relabel(v, target)
}

func relabel(v tensor.Tensor, b types.Basis) tensor.Tensor {
	c := v.Components()
	return tensor.Vector(b, c[0], c[1])
}

// lower flips the variance of v within its own system with the metric of
// whichever direction of m leaves that system for a Cartesian one
func lower(v tensor.Tensor, target types.Basis, at types.Coord, m mapping.Mapping) tensor.Tensor {
	sys := target.Sys
	fwd := m
	if m.Domain() != sys {
		inv, ok := mapping.Invert(m)
		if !ok || inv.Domain() != sys {
			panic(fmt.Errorf("no metric for %s available from a mapping %s -> %s", sys, m.Domain(), m.Codomain()))
		}
		fwd = inv
	}
	switch at.Sys {
	case sys:
	case fwd.Codomain():
		inv, ok := mapping.Invert(fwd)
		if !ok {
			panic(fmt.Errorf("cannot locate %s in %s without an inverse mapping", at, sys))
		}
		at = inv.Map(at)
	default:
		at = m.Map(at)
	}
	g := tensor.NewMetricTensor(fwd)
	if target.Var == types.Covariant {
		return tensor.Mul(tensor.Index("ij", g.At(at)), tensor.Index("j", v))
	}
	return tensor.Mul(tensor.Index("ij", g.Inverse(at)), tensor.Index("j", v))
}

func changeSystem(v tensor.Tensor, target types.Basis, at types.Coord, m mapping.Mapping) tensor.Tensor {
	var (
		src     = v.Set(0)
		forward = src.Sys == m.Domain() && target.Sys == m.Codomain()
		reverse = src.Sys == m.Codomain() && target.Sys == m.Domain()
	)
	switch {
	case forward && src.Var == types.Contravariant:
		return tensor.Mul(tensor.Index("ij", m.JacobianMatrix(at)), tensor.Index("j", v))
	case forward:
		return tensor.Mul(tensor.Index("ik", mapping.InverseJacobianMatrix(m, at)), tensor.Index("i", v))
	case reverse && src.Var == types.Contravariant:
		return tensor.Mul(tensor.Index("ij", mapping.InverseJacobianMatrix(m, at)), tensor.Index("j", v))
	case reverse:
		return tensor.Mul(tensor.Index("ik", m.JacobianMatrix(at)), tensor.Index("i", v))
	}
	panic(fmt.Errorf("mapping %s -> %s cannot carry %s to %s", m.Domain(), m.Codomain(), src, target))
}

// CopyToVectorSpace writes src, re-expressed in dst.Basis, into dst at every
// grid node. The Jacobian is evaluated at the logical node coordinate.
func CopyToVectorSpace(dst, src *field.Vector, m mapping.Mapping) {
	CopyRange(dst, src, m, 0, src.G.Len())
}

// CopyRange is CopyToVectorSpace restricted to the flat node range [lo, hi)
func CopyRange(dst, src *field.Vector, m mapping.Mapping, lo, hi int) {
	dst.G.MustMatch(src.G)
	g := src.G
	utils.ParallelFor(hi-lo, func(k int) {
		i := lo + k
		dst.SetAt(i, ToVectorSpace(src.At(i), dst.Basis, g.Coord(i), m))
	})
}
