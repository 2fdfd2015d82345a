// Package sqlite stores runs in a single SQLite database file through gorm.
package sqlite

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/san-kum/coilsim/internal/dynamo"
	"github.com/san-kum/coilsim/internal/storage"
)

type Run struct {
	ID        string    `gorm:"primaryKey;size:127"`
	Preset    string    `gorm:"size:64;index"`
	Timestamp time.Time `gorm:"index"`
	Dt        float64
	StopTime  float64
	Drive     string                    `gorm:"size:16"`
	Params    map[string]storage.Number `gorm:"serializer:json"`
	Metrics   map[string]storage.Number `gorm:"serializer:json"`
	Steps     int
}

type SampleRow struct {
	RunID        string `gorm:"primaryKey;size:127"`
	Step         int    `gorm:"primaryKey;autoIncrement:false"`
	Time         Real
	Position     Real
	Velocity     Real
	Acceleration Real
	Current      Real
	Field        Real
	Gradient     Real
	Force        Real
}

// Real is a sample column. SQLite turns NaN into NULL, so NULL reads back
// as NaN.
type Real float64

func (Real) GormDataType() string { return "real" }

func (r Real) Value() (driver.Value, error) {
	if math.IsNaN(float64(r)) {
		return nil, nil
	}
	return float64(r), nil
}

func (r *Real) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*r = Real(math.NaN())
	case float64:
		*r = Real(v)
	case int64:
		*r = Real(v)
	case []byte:
		return r.parse(string(v))
	case string:
		return r.parse(v)
	default:
		return fmt.Errorf("sqlite: cannot scan %T into a sample column", src)
	}
	return nil
}

func (r *Real) parse(s string) error {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("sqlite: sample column: %w", err)
	}
	*r = Real(f)
	return nil
}

const batchSize = 2000

type Store struct {
	path string
	db   *gorm.DB
}

var _ storage.Backend = (*Store)(nil)

func New(path string) *Store {
	return &Store{path: path}
}

// Init opens the database and migrates the schema.
func (s *Store) Init() error {
	db, err := gorm.Open(sqlite.Open(s.path), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		CreateBatchSize:        batchSize,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("sqlite: open %s: %w", s.path, err)
	}

	if err := db.AutoMigrate(&Run{}, &SampleRow{}); err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}

	s.db = db
	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Save(meta storage.RunMetadata, samples []dynamo.Sample) (string, error) {
	meta.Prepare(samples)

	run := Run{
		ID:        meta.ID,
		Preset:    meta.Preset,
		Timestamp: meta.Timestamp,
		Dt:        meta.Dt,
		StopTime:  meta.StopTime,
		Drive:     meta.Drive,
		Params:    storage.Numbers(meta.Params),
		Metrics:   storage.Numbers(meta.Metrics),
		Steps:     meta.Steps,
	}

	rows := make([]SampleRow, len(samples))
	for i, sm := range samples {
		rows[i] = SampleRow{
			RunID:        meta.ID,
			Step:         i,
			Time:         Real(sm.Time),
			Position:     Real(sm.Position),
			Velocity:     Real(sm.Velocity),
			Acceleration: Real(sm.Acceleration),
			Current:      Real(sm.Current),
			Field:        Real(sm.Field),
			Gradient:     Real(sm.Gradient),
			Force:        Real(sm.Force),
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&run).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, batchSize).Error
	})
	if err != nil {
		return "", fmt.Errorf("sqlite: save %s: %w", meta.ID, err)
	}

	return meta.ID, nil
}

func (s *Store) List() ([]storage.RunMetadata, error) {
	var runs []Run
	if err := s.db.Order("timestamp").Find(&runs).Error; err != nil {
		return nil, err
	}

	out := make([]storage.RunMetadata, len(runs))
	for i := range runs {
		out[i] = runs[i].metadata()
	}
	return out, nil
}

func (s *Store) Load(runID string) (*storage.RunMetadata, error) {
	var run Run
	err := s.db.Where("id = ?", runID).First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", storage.ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, err
	}

	meta := run.metadata()
	return &meta, nil
}

func (s *Store) LoadSamples(runID string) ([]dynamo.Sample, error) {
	if _, err := s.Load(runID); err != nil {
		return nil, err
	}

	var rows []SampleRow
	if err := s.db.Where("run_id = ?", runID).Order("step").Find(&rows).Error; err != nil {
		return nil, err
	}

	samples := make([]dynamo.Sample, len(rows))
	for i, r := range rows {
		samples[i] = dynamo.Sample{
			Time:         float64(r.Time),
			Position:     float64(r.Position),
			Velocity:     float64(r.Velocity),
			Acceleration: float64(r.Acceleration),
			Current:      float64(r.Current),
			Field:        float64(r.Field),
			Gradient:     float64(r.Gradient),
			Force:        float64(r.Force),
		}
	}
	return samples, nil
}

func (r *Run) metadata() storage.RunMetadata {
	return storage.RunMetadata{
		ID:        r.ID,
		Preset:    r.Preset,
		Timestamp: r.Timestamp,
		Dt:        r.Dt,
		StopTime:  r.StopTime,
		Drive:     r.Drive,
		Params:    storage.Floats(r.Params),
		Metrics:   storage.Floats(r.Metrics),
		Steps:     r.Steps,
	}
}
