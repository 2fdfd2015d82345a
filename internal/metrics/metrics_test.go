package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/coilsim/internal/dynamo"
)

func samples(vs ...float64) []dynamo.Sample {
	out := make([]dynamo.Sample, len(vs))
	for i, v := range vs {
		out[i] = dynamo.Sample{
			Time:         float64(i) * 0.1,
			Position:     -0.5 + float64(i)*0.25,
			Velocity:     v,
			Acceleration: -v * 10,
			Current:      -v,
		}
	}
	return out
}

func feed(m dynamo.Metric, ss []dynamo.Sample) {
	for _, s := range ss {
		m.Observe(s)
	}
}

func TestPeak(t *testing.T) {
	ss := samples(1, 3, 2, -5)

	tests := []struct {
		metric *Peak
		want   float64
	}{
		{NewPeakVelocity(), 3},
		{NewPeakCurrent(), 5},
		{NewMaxAcceleration(), 50},
	}

	for _, tt := range tests {
		t.Run(tt.metric.Name(), func(t *testing.T) {
			feed(tt.metric, ss)
			if got := tt.metric.Value(); got != tt.want {
				t.Errorf("Value() = %v, want %v", got, tt.want)
			}
			tt.metric.Reset()
			if tt.metric.Value() != 0 {
				t.Error("expected zero after reset")
			}
		})
	}
}

func TestPeakNegativeOnly(t *testing.T) {
	m := NewPeakVelocity()
	feed(m, samples(-3, -1, -2))
	if m.Value() != -1 {
		t.Errorf("Value() = %v, want -1", m.Value())
	}
}

func TestExitCrossing(t *testing.T) {
	// positions: -0.5, -0.25, 0, 0.25, 0.5
	ss := samples(1, 2, 3, 4, 5)

	v := NewExitVelocity(0.2)
	tm := NewExitTime(0.2)
	feed(v, ss)
	feed(tm, ss)

	if !v.Crossed() {
		t.Fatal("expected crossing")
	}
	if v.Value() != 4 {
		t.Errorf("exit velocity = %v, want 4", v.Value())
	}
	if math.Abs(tm.Value()-0.3) > 1e-12 {
		t.Errorf("exit time = %v, want 0.3", tm.Value())
	}
}

func TestExitNeverReached(t *testing.T) {
	ss := samples(1, 2)

	v := NewExitVelocity(10)
	tm := NewExitTime(10)
	feed(v, ss)
	feed(tm, ss)

	if v.Value() != 0 {
		t.Errorf("exit velocity = %v, want 0", v.Value())
	}
	if tm.Value() != -1 {
		t.Errorf("exit time = %v, want -1", tm.Value())
	}
}

func TestEfficiency(t *testing.T) {
	m := NewEfficiency(func(v float64) float64 { return 0.5 * 2 * v * v }, 100.0)
	if m.Value() != 0 {
		t.Error("expected zero before any sample")
	}

	feed(m, samples(1, 4, 5))

	// 0.5 * 2 * 5² / 100
	if got := m.Value(); math.Abs(got-0.25) > 1e-12 {
		t.Errorf("efficiency = %v, want 0.25", got)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}
