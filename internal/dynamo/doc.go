// Package dynamo provides the fixed-step simulation core for a driven
// projectile moving along one axis.
//
// The package defines the primitives shared by every run:
//
//   - [State]: time, position and velocity between steps
//   - [Sample]: the record emitted by one step
//   - [System]: the physical model, evaluated at (time, position)
//   - [Integrator]: advances a [State] by one timestep
//   - [Simulator]: the step function plus the bounded run loop
//
// # Example
//
//	s := dynamo.New(coil.Reference(), integrators.NewEuler(), dynamo.DefaultConfig())
//	for sample, err := range s.Run(ctx) {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(sample.Time, sample.Position)
//	}
//
// # Thread Safety
//
// A Simulator is single-threaded: each step depends on the previous one.
// Independent runs can be executed concurrently with [Ensemble].
package dynamo
