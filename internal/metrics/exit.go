package metrics

import "github.com/san-kum/coilsim/internal/dynamo"

// crossing records the first sample whose position reaches a plane.
type crossing struct {
	plane   float64
	crossed bool
	at      dynamo.Sample
}

func (c *crossing) observe(s dynamo.Sample) {
	if !c.crossed && s.Position >= c.plane {
		c.crossed = true
		c.at = s
	}
}

func (c *crossing) reset() {
	c.crossed = false
	c.at = dynamo.Sample{}
}

// ExitVelocity is the velocity at the first step that puts the projectile
// on or past the exit plane, or 0 if it never gets there.
type ExitVelocity struct {
	crossing
}

func NewExitVelocity(plane float64) *ExitVelocity {
	return &ExitVelocity{crossing{plane: plane}}
}

func (e *ExitVelocity) Name() string            { return "exit_velocity" }
func (e *ExitVelocity) Observe(s dynamo.Sample) { e.observe(s) }
func (e *ExitVelocity) Reset()                  { e.reset() }
func (e *ExitVelocity) Crossed() bool           { return e.crossed }

func (e *ExitVelocity) Value() float64 {
	if !e.crossed {
		return 0
	}
	return e.at.Velocity
}

// ExitTime is the sample time of that same step, or -1 if the plane is never
// reached.
type ExitTime struct {
	crossing
}

func NewExitTime(plane float64) *ExitTime {
	return &ExitTime{crossing{plane: plane}}
}

func (e *ExitTime) Name() string            { return "exit_time" }
func (e *ExitTime) Observe(s dynamo.Sample) { e.observe(s) }
func (e *ExitTime) Reset()                  { e.reset() }

func (e *ExitTime) Value() float64 {
	if !e.crossed {
		return -1
	}
	return e.at.Time
}
