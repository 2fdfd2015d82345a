package storage

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/san-kum/coilsim/internal/dynamo"
)

// Number is a float64 whose JSON form survives NaN and Inf. Finite values
// are plain numbers; non-finite values are the strings "NaN", "+Inf" and
// "-Inf", which an unguarded run can produce.
type Number float64

func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	switch {
	case math.IsNaN(f):
		return []byte(`"NaN"`), nil
	case math.IsInf(f, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(f, -1):
		return []byte(`"-Inf"`), nil
	}
	return strconv.AppendFloat(nil, f, 'g', -1, 64), nil
}

func (n *Number) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = Number(math.NaN())
		return nil
	}

	var s string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	} else {
		s = string(data)
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("storage: invalid number %s", data)
	}
	*n = Number(f)
	return nil
}

func Numbers(m map[string]float64) map[string]Number {
	if m == nil {
		return nil
	}
	out := make(map[string]Number, len(m))
	for k, v := range m {
		out[k] = Number(v)
	}
	return out
}

func Floats(m map[string]Number) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = float64(v)
	}
	return out
}

type metadataJSON struct {
	ID        string            `json:"id"`
	Preset    string            `json:"preset"`
	Timestamp time.Time         `json:"timestamp"`
	Dt        Number            `json:"dt"`
	StopTime  Number            `json:"stop_time"`
	Drive     string            `json:"drive"`
	Params    map[string]Number `json:"params"`
	Metrics   map[string]Number `json:"metrics"`
	Steps     int               `json:"steps"`
}

func (m RunMetadata) wire() metadataJSON {
	return metadataJSON{
		ID:        m.ID,
		Preset:    m.Preset,
		Timestamp: m.Timestamp,
		Dt:        Number(m.Dt),
		StopTime:  Number(m.StopTime),
		Drive:     m.Drive,
		Params:    Numbers(m.Params),
		Metrics:   Numbers(m.Metrics),
		Steps:     m.Steps,
	}
}

func (w metadataJSON) metadata() RunMetadata {
	return RunMetadata{
		ID:        w.ID,
		Preset:    w.Preset,
		Timestamp: w.Timestamp,
		Dt:        float64(w.Dt),
		StopTime:  float64(w.StopTime),
		Drive:     w.Drive,
		Params:    Floats(w.Params),
		Metrics:   Floats(w.Metrics),
		Steps:     w.Steps,
	}
}

func (m RunMetadata) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.wire())
}

func (m *RunMetadata) UnmarshalJSON(data []byte) error {
	var w metadataJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*m = w.metadata()
	return nil
}

type sampleJSON struct {
	Time         Number `json:"time"`
	Position     Number `json:"position"`
	Velocity     Number `json:"velocity"`
	Acceleration Number `json:"acceleration"`
	Current      Number `json:"current"`
	Field        Number `json:"field"`
	Gradient     Number `json:"gradient"`
	Force        Number `json:"force"`
}

type exportJSON struct {
	metadataJSON
	Samples []sampleJSON `json:"samples"`
}

func (d ExportData) MarshalJSON() ([]byte, error) {
	out := exportJSON{metadataJSON: d.RunMetadata.wire(), Samples: make([]sampleJSON, len(d.Samples))}
	for i, s := range d.Samples {
		out.Samples[i] = sampleJSON{
			Time:         Number(s.Time),
			Position:     Number(s.Position),
			Velocity:     Number(s.Velocity),
			Acceleration: Number(s.Acceleration),
			Current:      Number(s.Current),
			Field:        Number(s.Field),
			Gradient:     Number(s.Gradient),
			Force:        Number(s.Force),
		}
	}
	return json.Marshal(out)
}

func (d *ExportData) UnmarshalJSON(data []byte) error {
	var in exportJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	d.RunMetadata = in.metadataJSON.metadata()
	d.Samples = make([]dynamo.Sample, len(in.Samples))
	for i, s := range in.Samples {
		d.Samples[i] = dynamo.Sample{
			Time:         float64(s.Time),
			Position:     float64(s.Position),
			Velocity:     float64(s.Velocity),
			Acceleration: float64(s.Acceleration),
			Current:      float64(s.Current),
			Field:        float64(s.Field),
			Gradient:     float64(s.Gradient),
			Force:        float64(s.Force),
		}
	}
	return nil
}
