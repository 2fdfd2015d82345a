package coil

import (
	"fmt"
	"math"

	"github.com/san-kum/coilsim/internal/dynamo"
)

// Drive selects how the discharge produces the coil current.
type Drive string

const (
	// DriveVoltage uses I(t) = U0*exp(-t/RC) directly.
	DriveVoltage Drive = "voltage"
	// DriveOhmic divides the capacitor voltage by the discharge resistance,
	// I(t) = U0*exp(-t/RC)/R.
	DriveOhmic Drive = "ohmic"
)

// Params is the immutable parameter set of one run. Resistance belongs to the
// discharge circuit and Radius to the winding; they are independent.
type Params struct {
	Mu0           float64
	Turns         float64
	Length        float64
	Radius        float64
	Voltage       float64
	Capacitance   float64
	Resistance    float64
	Magnetization float64
	Volume        float64
	Mass          float64
	Drive         Drive
}

// Reference is the 500-turn, 5 cm coil on a 25 V, 0.11 F bank.
func Reference() Params {
	return Params{
		Mu0:           1.2566e-6,
		Turns:         500,
		Length:        0.05,
		Radius:        0.01,
		Voltage:       25,
		Capacitance:   0.11,
		Resistance:    0.01,
		Magnetization: 1e6,
		Volume:        7e-6,
		Mass:          0.05,
		Drive:         DriveVoltage,
	}
}

func (p Params) Validate() error {
	switch {
	case p.Resistance == 0:
		return fmt.Errorf("%w: resistance must be non-zero", dynamo.ErrInvalidConfig)
	case p.Capacitance == 0:
		return fmt.Errorf("%w: capacitance must be non-zero", dynamo.ErrInvalidConfig)
	case p.Length == 0:
		return fmt.Errorf("%w: coil length must be non-zero", dynamo.ErrInvalidConfig)
	case p.Radius < 0:
		return fmt.Errorf("%w: coil radius must be non-negative, got %g", dynamo.ErrInvalidConfig, p.Radius)
	case p.Mass == 0:
		return fmt.Errorf("%w: mass must be non-zero", dynamo.ErrInvalidConfig)
	}
	switch p.Drive {
	case "", DriveVoltage, DriveOhmic:
	default:
		return fmt.Errorf("%w: unknown drive %q", dynamo.ErrInvalidConfig, p.Drive)
	}
	return nil
}

// DipoleMoment is M*V.
func (p Params) DipoleMoment() float64 { return p.Magnetization * p.Volume }

// TimeConstant is the RC constant of the discharge.
func (p Params) TimeConstant() float64 { return p.Resistance * p.Capacitance }

// EntryPosition is the near face of the coil, -l/2.
func (p Params) EntryPosition() float64 { return -p.Length / 2 }

// ExitPosition is the far face of the coil, +l/2.
func (p Params) ExitPosition() float64 { return p.Length / 2 }

// Current depends on t only, never on the projectile state.
func (p Params) Current(t float64) float64 {
	u := p.Voltage * math.Exp(-t/(p.Resistance*p.Capacitance))
	if p.Drive == DriveOhmic {
		return u / p.Resistance
	}
	return u
}

// Field is the on-axis flux density at z for coil current i.
func (p Params) Field(z, i float64) float64 {
	l := p.Length
	r2 := p.Radius * p.Radius
	zp := z + l/2
	zn := z - l/2

	return p.Mu0 * p.Turns * i / 2 * (zp/(l*math.Sqrt(r2+zp*zp)) -
		zn/(l*math.Sqrt(r2+zn*zn)))
}

// FieldGradient is dB/dz at z for coil current i. It is linear in i.
func (p Params) FieldGradient(z, i float64) float64 {
	l := p.Length
	r2 := p.Radius * p.Radius
	zpos := (z + l/2) * (z + l/2)
	zneg := (z - l/2) * (z - l/2)
	dpos := r2 + zpos
	dneg := r2 + zneg

	return p.Mu0 * p.Turns * i / 2 * (zneg/(l*(dneg*math.Sqrt(dneg))) -
		1/(l*math.Sqrt(dneg)) +
		1/(l*math.Sqrt(dpos)) -
		zpos/(l*(dpos*math.Sqrt(dpos))))
}

// Evaluate computes current, field, gradient, force and acceleration for a
// projectile at z at time t.
func (p Params) Evaluate(t, z float64) dynamo.Eval {
	i := p.Current(t)
	grad := p.FieldGradient(z, i)
	force := p.DipoleMoment() * grad

	return dynamo.Eval{
		Current:      i,
		Field:        p.Field(z, i),
		Gradient:     grad,
		Force:        force,
		Acceleration: force / p.Mass,
	}
}

// Singular reports whether the field is undefined at z: a zero-radius coil
// evaluated exactly on one of its faces.
func (p Params) Singular(z float64) bool {
	return p.Radius == 0 && (z == p.Length/2 || z == -p.Length/2)
}

// StoredEnergy is the initial energy of the capacitor bank, C*U0²/2.
func (p Params) StoredEnergy() float64 {
	return 0.5 * p.Capacitance * p.Voltage * p.Voltage
}

// KineticEnergy of the projectile moving at v.
func (p Params) KineticEnergy(v float64) float64 {
	return 0.5 * p.Mass * v * v
}

func (p Params) GetParams() map[string]float64 {
	return map[string]float64{
		"mu0":           p.Mu0,
		"turns":         p.Turns,
		"length":        p.Length,
		"radius":        p.Radius,
		"voltage":       p.Voltage,
		"capacitance":   p.Capacitance,
		"resistance":    p.Resistance,
		"magnetization": p.Magnetization,
		"volume":        p.Volume,
		"mass":          p.Mass,
	}
}

func (p *Params) SetParam(name string, value float64) error {
	switch name {
	case "mu0":
		p.Mu0 = value
	case "turns":
		p.Turns = value
	case "length":
		p.Length = value
	case "radius":
		p.Radius = value
	case "voltage":
		p.Voltage = value
	case "capacitance":
		p.Capacitance = value
	case "resistance":
		p.Resistance = value
	case "magnetization":
		p.Magnetization = value
	case "volume":
		p.Volume = value
	case "mass":
		p.Mass = value
	default:
		return fmt.Errorf("unknown parameter: %s", name)
	}
	return nil
}
