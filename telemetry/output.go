package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gekko3d/sparks/config"
	"github.com/gocarina/gocsv"
)

// OutputManager writes samples to pools.csv in an output directory.
// A nil *OutputManager is valid and discards everything.
type OutputManager struct {
	dir       string
	poolsFile *os.File

	poolsHeaderWritten bool
}

// NewOutputManager creates dir and pools.csv inside it.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, "pools.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating pools.csv: %w", err)
	}
	return &OutputManager{dir: dir, poolsFile: f}, nil
}

func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// WriteConfig saves the effective configuration next to the CSV.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteSamples appends rows to pools.csv, writing the header once.
func (om *OutputManager) WriteSamples(samples []PoolSample) error {
	if om == nil || len(samples) == 0 {
		return nil
	}

	if !om.poolsHeaderWritten {
		if err := gocsv.Marshal(samples, om.poolsFile); err != nil {
			return fmt.Errorf("writing pools: %w", err)
		}
		om.poolsHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(samples, om.poolsFile); err != nil {
			return fmt.Errorf("writing pools: %w", err)
		}
	}
	return nil
}

func (om *OutputManager) Close() error {
	if om == nil || om.poolsFile == nil {
		return nil
	}
	err := om.poolsFile.Close()
	om.poolsFile = nil
	return err
}
