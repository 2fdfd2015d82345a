package metrics

import (
	"github.com/san-kum/coilsim/internal/dynamo"
)

// Efficiency is the kinetic energy of the projectile at the last observed
// sample divided by the energy initially stored in the capacitor bank.
type Efficiency struct {
	name     string
	kinetic  func(v float64) float64
	stored   float64
	velocity float64
	samples  int
}

// NewEfficiency takes the projectile's kinetic energy as a function of
// velocity, usually coil.Params.KineticEnergy.
func NewEfficiency(kinetic func(v float64) float64, storedEnergy float64) *Efficiency {
	return &Efficiency{
		name:    "efficiency",
		kinetic: kinetic,
		stored:  storedEnergy,
	}
}

func (e *Efficiency) Name() string { return e.name }

func (e *Efficiency) Observe(s dynamo.Sample) {
	e.velocity = s.Velocity
	e.samples++
}

func (e *Efficiency) KineticEnergy() float64 {
	return e.kinetic(e.velocity)
}

func (e *Efficiency) Value() float64 {
	if e.samples == 0 || e.stored == 0 {
		return 0
	}
	return e.KineticEnergy() / e.stored
}

func (e *Efficiency) Reset() {
	e.velocity = 0
	e.samples = 0
}
