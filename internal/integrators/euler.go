package integrators

import "github.com/san-kum/coilsim/internal/dynamo"

// Euler is the first-order scheme used by every run: acceleration is taken at
// the pre-step position, velocity is updated first and the new velocity
// moves the position.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys dynamo.System, x dynamo.State, dt float64) (dynamo.State, dynamo.Eval) {
	ev := sys.Evaluate(x.Time, x.Position)
	v := x.Velocity + ev.Acceleration*dt
	return dynamo.State{
		Time:     x.Time + dt,
		Position: x.Position + v*dt,
		Velocity: v,
	}, ev
}
