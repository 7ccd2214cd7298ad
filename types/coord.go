package types

import "fmt"

// Coord is an immutable point tagged by the system it lives in. Points in
// different systems only meet through a mapping.
type Coord struct {
	Sys System
	V   [2]float64
}

func NewCoord(sys System, a, b float64) Coord { return Coord{Sys: sys, V: [2]float64{a, b}} }

func RThetaCoord(r, theta float64) Coord { return NewCoord(RThetaSys, r, theta) }

func XYCoord(x, y float64) Coord { return NewCoord(XYSys, x, y) }

func PseudoCoord(x, y float64) Coord { return NewCoord(PseudoXYSys, x, y) }

// Get returns the component along d, panicking when d is not part of the system
func (c Coord) Get(d Dim) float64 {
	p := c.Sys.Pos(d)
	if p < 0 {
		panic(fmt.Errorf("dimension %s is not part of coordinate system %s", d, c.Sys))
	}
	return c.V[p]
}

func (c Coord) In(sys System) bool { return c.Sys == sys }

// MustBeIn panics unless c lives in sys
func (c Coord) MustBeIn(sys System) {
	if c.Sys != sys {
		panic(fmt.Errorf("coordinate in %s used where %s is required", c.Sys, sys))
	}
}

// Wrapped returns c with every periodic component folded onto its canonical range
func (c Coord) Wrapped() Coord {
	for i, d := range c.Sys {
		if d.Periodic() {
			c.V[i] = WrapAngle(c.V[i])
		}
	}
	return c
}

func (c Coord) String() string {
	return fmt.Sprintf("%s=%g, %s=%g", c.Sys[0], c.V[0], c.Sys[1], c.V[1])
}
