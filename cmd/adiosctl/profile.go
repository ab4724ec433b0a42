package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/go-adios/adios/internal/scheduler"
)

// profileFile is the on-disk shape of a knob profile, kept separate
// from scheduler.LatencyTargetProfile so the YAML field names and
// comments are free to evolve without touching the scheduler package.
type profileFile struct {
	GlobalLatencyWindowNs uint64 `yaml:"global_latency_window_ns"`
	RefillBelowRatio      uint32 `yaml:"bq_refill_below_ratio"`
	BatchLimitRead        uint32 `yaml:"batch_limit_read"`
	BatchLimitWrite       uint32 `yaml:"batch_limit_write"`
	BatchLimitDiscard     uint32 `yaml:"batch_limit_discard"`
	LatencyTargetReadMs   uint64 `yaml:"lat_target_read_ms"`
	LatencyTargetWriteMs  uint64 `yaml:"lat_target_write_ms"`
	LatencyTargetDiscardMs uint64 `yaml:"lat_target_discard_ms"`
}

func loadProfileFile(path string) (*profileFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile %s: %w", path, err)
	}
	var p profileFile
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	return &p, nil
}

func (p *profileFile) toLatencyTargetProfile() *scheduler.LatencyTargetProfile {
	const msToNs = uint64(1_000_000)
	return &scheduler.LatencyTargetProfile{
		GlobalLatencyWindow: p.GlobalLatencyWindowNs,
		RefillBelowRatio:    p.RefillBelowRatio,
		BatchLimitRead:      p.BatchLimitRead,
		BatchLimitWrite:     p.BatchLimitWrite,
		BatchLimitDiscard:   p.BatchLimitDiscard,
		LatencyTargetRead:    p.LatencyTargetReadMs * msToNs,
		LatencyTargetWrite:   p.LatencyTargetWriteMs * msToNs,
		LatencyTargetDiscard: p.LatencyTargetDiscardMs * msToNs,
	}
}
