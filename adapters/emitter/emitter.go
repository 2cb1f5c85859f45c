// Package emitter writes generated contracts and the run manifest to disk.
// It is the only component allowed to touch the output directory, and it
// refuses to write any contract that failed validation.
package emitter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"planforge/domain/contract"
	"planforge/domain/core"
	"planforge/domain/run"
	"planforge/domain/validation"
	"planforge/internal"
)

// ManifestFileName is the fixed name of the batch manifest.
const ManifestFileName = "generation_manifest.json"

// JSONEmitter writes pretty-printed JSON artifacts under outputDir.
type JSONEmitter struct {
	outputDir string
	log       *internal.Logger
}

// NewJSONEmitter creates an emitter rooted at outputDir, creating the
// directory if needed.
func NewJSONEmitter(outputDir string, log *internal.Logger) (*JSONEmitter, error) {
	if log == nil {
		log = internal.DefaultLogger
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", outputDir, err)
	}
	return &JSONEmitter{outputDir: outputDir, log: log}, nil
}

// EmitContract writes one validated contract and returns the file name.
// Contracts with a failing report are refused, never written partially.
func (e *JSONEmitter) EmitContract(doc *contract.GeneratedContract, report *validation.Report) (string, error) {
	if !report.IsValid() {
		return "", fmt.Errorf("%w: %s has %d critical failure(s)",
			core.ErrContractInvalid, doc.Identity.ContractID, report.FailureCount(validation.SeverityCritical))
	}

	// The checklist is stamped at emission time from the report, so the
	// file records what was actually checked.
	doc.AuditAnnotations.AuditChecklist = validation.ChecklistFor(report)

	name := fmt.Sprintf("%s_%s_contract_v4.json", doc.Identity.QuestionID, doc.Identity.PolicyAreaID)
	if err := e.writeJSON(name, doc); err != nil {
		return "", err
	}
	e.log.Debug("emitted %s", name)
	return name, nil
}

// EmitManifest writes the batch manifest and returns its file name.
func (e *JSONEmitter) EmitManifest(m *run.Manifest) (string, error) {
	if err := e.writeJSON(ManifestFileName, m); err != nil {
		return "", err
	}
	e.log.Info("manifest written: run %s, %d contracts", m.RunID, m.Summary.TotalContracts)
	return ManifestFileName, nil
}

func (e *JSONEmitter) writeJSON(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	data = append(data, '\n')

	path := filepath.Join(e.outputDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
