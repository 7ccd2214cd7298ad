// Package timestepper advances a state by one step of an ODE dy/dt = f(y).
// Steppers are stateless between calls and allocate their stage buffers per
// Update. The state update is injectable so that "y += dt·dy" can be a
// geometric operation, such as moving a point along a manifold.
package timestepper

import (
	"fmt"
	"strings"
)

// State is what is advanced
type State[S any] interface {
	Clone() S
	CopyFrom(o S)
	// Distance and Norm drive the convergence test of implicit schemes
	Distance(o S) float64
	Norm() float64
}

// Derivative is a state that can be combined linearly
type Derivative[D any] interface {
	State[D]
	Scale(a float64)
	AddScaled(a float64, o D)
}

// DerivFunc writes dy/dt evaluated at y into dy
type DerivFunc[S, D any] func(dy D, y S)

// UpdateFunc applies y += dt·dy
type UpdateFunc[S, D any] func(y S, dy D, dt float64)

// Result reports how an update went; explicit schemes always converge in
// their fixed number of stages
type Result struct {
	Iterations int
	Converged  bool
	Residual   float64
}

type TimeStepper[S State[S], D Derivative[D]] interface {
	Update(y S, dt float64, deriv DerivFunc[S, D], update UpdateFunc[S, D]) Result
	Name() string
}

// New returns the stepper called name; proto is cloned for every stage buffer
func New[S State[S], D Derivative[D]](name string, proto D) (ts TimeStepper[S, D], err error) {
	switch strings.ToLower(name) {
	case "euler":
		ts = NewEuler[S](proto)
	case "rk2":
		ts = NewRK2[S](proto)
	case "rk3":
		ts = NewRK3[S](proto)
	case "rk4":
		ts = NewRK4[S](proto)
	case "cn", "crank-nicolson", "cranknicolson":
		ts = NewCrankNicolson[S](proto)
	default:
		err = fmt.Errorf("unknown time stepper %q", name)
	}
	return
}

func resolveUpdate[S State[S], D Derivative[D]](update UpdateFunc[S, D]) UpdateFunc[S, D] {
	if update != nil {
		return update
	}
	return func(y S, dy D, dt float64) {
		a, ok := any(y).(interface{ AddScaled(float64, D) })
		if !ok {
			panic(fmt.Errorf("state %T has no default update with a %T derivative", y, dy))
		}
		a.AddScaled(dt, dy)
	}
}
