// Package run models one generation batch: the manifest summarizing every
// attempted contract and the determinism fingerprint that makes a batch
// replayable.
package run

import (
	"fmt"

	"planforge/domain/catalog"
	"planforge/domain/core"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"
)

// GeneratorVersion is stamped into every manifest.
const GeneratorVersion = "4.0.0"

// NewRunID creates a time-ordered run identifier. Falls back to a random
// UUID if v7 generation fails.
func NewRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return id.String()
}

// Entry is one attempted contract's summary record. Every (question,
// sector) pair of the batch gets exactly one entry, emitted or not.
type Entry struct {
	ContractID      core.ContractID      `json:"contract_id"`
	QuestionID      core.QuestionID      `json:"question_id"`
	PolicyAreaID    core.PolicyAreaID    `json:"policy_area_id"`
	ContractType    catalog.ContractType `json:"contract_type"`
	MethodCount     int                  `json:"method_count"`
	EfficiencyScore float64              `json:"efficiency_score"`
	PassRate        float64              `json:"pass_rate"`
	IsValid         bool                 `json:"is_valid"`
	Emitted         bool                 `json:"emitted"`
	File            string               `json:"file,omitempty"`
	Error           string               `json:"error,omitempty"`
}

// Summary aggregates the batch outcome.
type Summary struct {
	TotalContracts   int     `json:"total_contracts"`
	ValidContracts   int     `json:"valid_contracts"`
	InvalidContracts int     `json:"invalid_contracts"`
	EmittedContracts int     `json:"emitted_contracts"`
	MeanPassRate     float64 `json:"mean_pass_rate"`
	MedianPassRate   float64 `json:"median_pass_rate"`
	MeanEfficiency   float64 `json:"mean_efficiency"`
	EfficiencyStdDev float64 `json:"efficiency_stddev"`
}

// Manifest is the generation_manifest.json document, written once at the
// end of every batch.
type Manifest struct {
	RunID            string              `json:"run_id"`
	GeneratedAt      core.Timestamp      `json:"generated_at"`
	GeneratorVersion string              `json:"generator_version"`
	InputHashes      catalog.InputHashes `json:"input_hashes"`
	Summary          Summary             `json:"summary"`
	Contracts        []Entry             `json:"contracts"`
	Fingerprint      core.SourceHash     `json:"fingerprint"`
}

// NewManifest assembles the manifest for a finished batch and computes its
// summary and fingerprint.
func NewManifest(runID string, generatedAt core.Timestamp, hashes catalog.InputHashes, entries []Entry) (*Manifest, error) {
	m := &Manifest{
		RunID:            runID,
		GeneratedAt:      generatedAt,
		GeneratorVersion: GeneratorVersion,
		InputHashes:      hashes,
		Summary:          summarize(entries),
		Contracts:        entries,
	}

	fingerprint, err := m.computeFingerprint()
	if err != nil {
		return nil, fmt.Errorf("manifest fingerprint: %w", err)
	}
	m.Fingerprint = fingerprint
	return m, nil
}

// computeFingerprint hashes the batch outcome minus run id and timestamps,
// so byte-identical inputs and outcomes fingerprint identically across
// runs.
func (m *Manifest) computeFingerprint() (core.SourceHash, error) {
	return core.HashCanonical(map[string]interface{}{
		"generator_version": m.GeneratorVersion,
		"input_hashes":      m.InputHashes,
		"contracts":         m.Contracts,
	})
}

func summarize(entries []Entry) Summary {
	s := Summary{TotalContracts: len(entries)}

	var passRates, efficiencies []float64
	for _, e := range entries {
		if e.IsValid {
			s.ValidContracts++
		} else {
			s.InvalidContracts++
		}
		if e.Emitted {
			s.EmittedContracts++
		}
		passRates = append(passRates, e.PassRate)
		efficiencies = append(efficiencies, e.EfficiencyScore)
	}
	if len(entries) == 0 {
		return s
	}

	// stats errors only on empty input, which is handled above.
	s.MeanPassRate, _ = stats.Mean(passRates)
	s.MedianPassRate, _ = stats.Median(passRates)
	s.MeanEfficiency, _ = stats.Mean(efficiencies)
	s.EfficiencyStdDev, _ = stats.StandardDeviation(efficiencies)
	return s
}
