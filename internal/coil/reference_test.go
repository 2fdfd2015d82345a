package coil_test

import (
	"context"
	"math"
	"reflect"
	"testing"

	"github.com/san-kum/coilsim/internal/coil"
	"github.com/san-kum/coilsim/internal/dynamo"
	"github.com/san-kum/coilsim/internal/integrators"
)

func shortRun(t *testing.T, stop float64) *dynamo.Result {
	t.Helper()
	cfg := dynamo.DefaultConfig()
	cfg.StopTime = stop
	sim := dynamo.New(coil.Reference(), integrators.NewEuler(), cfg)
	result, err := sim.Collect(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	return result
}

func TestReferenceInitialSample(t *testing.T) {
	result := shortRun(t, 0.01)
	if len(result.Samples) != 10 {
		t.Fatalf("expected 10 samples, got %d", len(result.Samples))
	}

	first := result.Samples[0]
	if first.Time != 0 {
		t.Errorf("time = %v, want 0", first.Time)
	}
	if first.Current != 25.0 {
		t.Errorf("current = %v, want 25", first.Current)
	}

	const wantAccel = 2182.4627235778607
	if rel := math.Abs(first.Acceleration-wantAccel) / wantAccel; rel > 1e-9 {
		t.Errorf("acceleration = %v, want %v (rel err %g)", first.Acceleration, wantAccel, rel)
	}
	if math.Abs(first.Velocity-2.182462723577861) > 1e-12 {
		t.Errorf("velocity = %v, want 2.182462723577861", first.Velocity)
	}
	if math.Abs(first.Position-(-0.02281753727642214)) > 1e-12 {
		t.Errorf("position = %v, want -0.02281753727642214", first.Position)
	}
}

func TestReferenceSecondSample(t *testing.T) {
	result := shortRun(t, 0.002)
	if len(result.Samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(result.Samples))
	}

	s := result.Samples[1]
	if s.Time != 0.001 {
		t.Errorf("time = %v, want 0.001", s.Time)
	}
	if rel := math.Abs(s.Acceleration-818.646266082421) / 818.646266082421; rel > 1e-9 {
		t.Errorf("acceleration = %v, want 818.646266082421", s.Acceleration)
	}
	if math.Abs(s.Velocity-3.001108989660282) > 1e-9 {
		t.Errorf("velocity = %v, want 3.001108989660282", s.Velocity)
	}
}

func TestCurrentIsPureFunctionOfTime(t *testing.T) {
	p := coil.Reference()
	result := shortRun(t, 0.05)

	for i, s := range result.Samples {
		want := p.Voltage * math.Exp(-s.Time/(p.Resistance*p.Capacitance))
		if s.Current != want {
			t.Fatalf("sample %d: current %v, want %v", i, s.Current, want)
		}
	}
}

func TestReferenceDeterminism(t *testing.T) {
	a := shortRun(t, 0.05)
	b := shortRun(t, 0.05)
	if !reflect.DeepEqual(a.Samples, b.Samples) {
		t.Error("identical runs diverged")
	}
}

func TestProjectileLeavesCoil(t *testing.T) {
	p := coil.Reference()
	result := shortRun(t, 0.05)

	final := result.Final()
	if final.Position <= p.ExitPosition() {
		t.Errorf("projectile still inside the coil at z=%v", final.Position)
	}
	if final.Velocity <= 0 {
		t.Errorf("expected forward velocity, got %v", final.Velocity)
	}
}
