package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/san-kum/coilsim/internal/dynamo"
)

var ErrRunNotFound = errors.New("storage: run not found")

// Backend persists finished runs.
type Backend interface {
	Init() error
	Save(meta RunMetadata, samples []dynamo.Sample) (string, error)
	List() ([]RunMetadata, error)
	Load(runID string) (*RunMetadata, error)
	LoadSamples(runID string) ([]dynamo.Sample, error)
	Close() error
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Preset    string             `json:"preset"`
	Timestamp time.Time          `json:"timestamp"`
	Dt        float64            `json:"dt"`
	StopTime  float64            `json:"stop_time"`
	Drive     string             `json:"drive"`
	Params    map[string]float64 `json:"params"`
	Metrics   map[string]float64 `json:"metrics"`
	Steps     int                `json:"steps"`
}

// Prepare fills in the id, timestamp and step count of a run about to be
// saved. Existing values are kept.
func (m *RunMetadata) Prepare(samples []dynamo.Sample) {
	now := time.Now()
	if m.Timestamp.IsZero() {
		m.Timestamp = now
	}
	if m.ID == "" {
		name := m.Preset
		if name == "" {
			name = "run"
		}
		m.ID = fmt.Sprintf("%s_%d", name, now.UnixNano())
	}
	m.Steps = len(samples)
}

type ExportData struct {
	RunMetadata
	Samples []dynamo.Sample `json:"samples"`
}

func ExportJSON(w io.Writer, meta RunMetadata, samples []dynamo.Sample) error {
	data := ExportData{RunMetadata: meta, Samples: samples}
	if data.Samples == nil {
		data.Samples = []dynamo.Sample{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
