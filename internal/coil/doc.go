// Package coil models a magnetized projectile accelerated along the axis of
// a finite solenoid driven by a capacitor discharge.
//
// The projectile is a point dipole of moment m = M*V. The coil field on its
// axis is the superposition of two semi-infinite solenoid terms,
//
//	B(z) = mu0*N*I/2 * [ (z+l/2)/(l*sqrt(R²+(z+l/2)²)) - (z-l/2)/(l*sqrt(R²+(z-l/2)²)) ]
//
// and the axial force is F = m * dB/dz, with dB/dz taken in closed form.
// The drive current decays as I(t) = U0*exp(-t/(R_d*C)).
//
// [Params] implements [dynamo.System].
package coil
