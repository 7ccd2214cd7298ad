package types

import (
	"fmt"
	"math"
)

// Dim tags one continuous dimension of a coordinate system
type Dim uint8

const (
	DimNone Dim = iota
	R           // radial logical dimension
	Theta       // periodic angular logical dimension
	X           // physical Cartesian
	Y
	Xpc // pseudo-Cartesian, the space in which characteristics are traced
	Ypc
	Z // axial, used by the 1-D linear transforms
	Zeta
)

var dimNames = [...]string{"none", "r", "theta", "x", "y", "xpc", "ypc", "z", "zeta"}

func (d Dim) String() string {
	if int(d) < len(dimNames) {
		return dimNames[d]
	}
	return fmt.Sprintf("Dim(%d)", uint8(d))
}

// Periodic reports whether coordinates along d wrap onto [0, 2π)
func (d Dim) Periodic() bool { return d == Theta }

// Cartesian dimensions carry identical covariant and contravariant components
func (d Dim) Cartesian() bool {
	switch d {
	case X, Y, Xpc, Ypc, Z:
		return true
	}
	return false
}

type Variance uint8

const (
	Contravariant Variance = iota
	Covariant
)

func (v Variance) String() string {
	if v == Covariant {
		return "cov"
	}
	return "contra"
}

// System is an ordered pair of dimensions spanning a 2-D coordinate system
type System [2]Dim

var (
	RThetaSys   = System{R, Theta}
	XYSys       = System{X, Y}
	PseudoXYSys = System{Xpc, Ypc}
)

func (s System) String() string { return "(" + s[0].String() + "," + s[1].String() + ")" }

func (s System) Cartesian() bool { return s[0].Cartesian() && s[1].Cartesian() }

// MustMatch panics unless o is the same system
func (s System) MustMatch(o System) {
	if s != o {
		panic(fmt.Errorf("coordinate system mismatch: %s vs %s", s, o))
	}
}

// Pos returns the slot holding d, or -1
func (s System) Pos(d Dim) int {
	for i, sd := range s {
		if sd == d {
			return i
		}
	}
	return -1
}

// Basis is a vector index set: a coordinate system plus the variance of its components
type Basis struct {
	Sys System
	Var Variance
}

var (
	RThetaContra = Basis{RThetaSys, Contravariant}
	RThetaCov    = Basis{RThetaSys, Covariant}
	XYBasis      = Basis{XYSys, Contravariant}
	PseudoBasis  = Basis{PseudoXYSys, Contravariant}
)

func (b Basis) String() string { return b.Sys.String() + "_" + b.Var.String() }

func (b Basis) Dual() Basis {
	d := b
	if b.Var == Covariant {
		d.Var = Contravariant
	} else {
		d.Var = Covariant
	}
	return d
}

// Equivalent treats Cartesian bases as their own duals
func (b Basis) Equivalent(o Basis) bool {
	if b.Sys != o.Sys {
		return false
	}
	return b.Var == o.Var || b.Sys.Cartesian()
}

// WrapAngle maps th onto [0, 2π)
func WrapAngle(th float64) float64 {
	th = math.Mod(th, 2*math.Pi)
	if th < 0 {
		th += 2 * math.Pi
	}
	if th >= 2*math.Pi {
		th -= 2 * math.Pi
	}
	return th
}
