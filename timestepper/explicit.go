package timestepper

// Euler is the forward Euler method
type Euler[S State[S], D Derivative[D]] struct {
	proto D
}

func NewEuler[S State[S], D Derivative[D]](proto D) *Euler[S, D] { return &Euler[S, D]{proto: proto} }

func (ts *Euler[S, D]) Name() string { return "euler" }

func (ts *Euler[S, D]) Update(y S, dt float64, deriv DerivFunc[S, D], update UpdateFunc[S, D]) Result {
	update = resolveUpdate(update)
	k := ts.proto.Clone()
	deriv(k, y)
	update(y, k, dt)
	return Result{Iterations: 1, Converged: true}
}

// RK2 is the explicit midpoint rule
type RK2[S State[S], D Derivative[D]] struct {
	proto D
}

func NewRK2[S State[S], D Derivative[D]](proto D) *RK2[S, D] { return &RK2[S, D]{proto: proto} }

func (ts *RK2[S, D]) Name() string { return "rk2" }

func (ts *RK2[S, D]) Update(y S, dt float64, deriv DerivFunc[S, D], update UpdateFunc[S, D]) Result {
	update = resolveUpdate(update)
	var (
		k1, k2 = ts.proto.Clone(), ts.proto.Clone()
	)
	deriv(k1, y)
	ym := y.Clone()
	update(ym, k1, 0.5*dt)
	deriv(k2, ym)
	update(y, k2, dt)
	return Result{Iterations: 2, Converged: true}
}

// RK3 is Kutta's third order method:
// y += dt/6·(k1 + 4k2 + k3), k2 at y + dt/2·k1, k3 at y + dt·(2k2 - k1)
type RK3[S State[S], D Derivative[D]] struct {
	proto D
}

func NewRK3[S State[S], D Derivative[D]](proto D) *RK3[S, D] { return &RK3[S, D]{proto: proto} }

func (ts *RK3[S, D]) Name() string { return "rk3" }

func (ts *RK3[S, D]) Update(y S, dt float64, deriv DerivFunc[S, D], update UpdateFunc[S, D]) Result {
	update = resolveUpdate(update)
	var (
		k1, k2, k3 = ts.proto.Clone(), ts.proto.Clone(), ts.proto.Clone()
	)
	deriv(k1, y)

	ys := y.Clone()
	update(ys, k1, 0.5*dt)
	deriv(k2, ys)

	// k3 stage direction 2k2 - k1
	kc := k2.Clone()
	kc.Scale(2)
	kc.AddScaled(-1, k1)
	ys.CopyFrom(y)
	update(ys, kc, dt)
	deriv(k3, ys)

	k1.AddScaled(4, k2)
	k1.AddScaled(1, k3)
	update(y, k1, dt/6)
	return Result{Iterations: 3, Converged: true}
}

// RK4 is the classical fourth order Runge-Kutta method
type RK4[S State[S], D Derivative[D]] struct {
	proto D
}

func NewRK4[S State[S], D Derivative[D]](proto D) *RK4[S, D] { return &RK4[S, D]{proto: proto} }

func (ts *RK4[S, D]) Name() string { return "rk4" }

func (ts *RK4[S, D]) Update(y S, dt float64, deriv DerivFunc[S, D], update UpdateFunc[S, D]) Result {
	update = resolveUpdate(update)
	var (
		k1, k2 = ts.proto.Clone(), ts.proto.Clone()
		k3, k4 = ts.proto.Clone(), ts.proto.Clone()
		ys     = y.Clone()
	)
	deriv(k1, y)

	update(ys, k1, 0.5*dt)
	deriv(k2, ys)

	ys.CopyFrom(y)
	update(ys, k2, 0.5*dt)
	deriv(k3, ys)

	ys.CopyFrom(y)
	update(ys, k3, dt)
	deriv(k4, ys)

	k1.AddScaled(2, k2)
	k1.AddScaled(2, k3)
	k1.AddScaled(1, k4)
	update(y, k1, dt/6)
	return Result{Iterations: 4, Converged: true}
}
