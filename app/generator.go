// Package app orchestrates a full generation batch: load the registry,
// compose one chain per question, assemble and validate one contract per
// (question, sector) pair, emit the survivors and finish with the manifest.
package app

import (
	"fmt"
	"sort"

	"planforge/domain/catalog"
	"planforge/domain/chain"
	"planforge/domain/contract"
	"planforge/domain/core"
	"planforge/domain/run"
	"planforge/domain/validation"
	"planforge/internal"
	"planforge/ports"
)

// GenerationStats is what a finished (or strict-aborted) batch reports back
// to the caller.
type GenerationStats struct {
	Total       int
	Valid       int
	Invalid     int
	Emitted     int
	InputHashes catalog.InputHashes
	Manifest    *run.Manifest
	Failures    []string
}

// ContractGenerator drives the batch. Strict mode re-raises the first
// per-item exception; permissive mode records everything and keeps going.
type ContractGenerator struct {
	loader  ports.RegistryLoader
	emitter ports.ContractEmitter
	clock   ports.Clock
	strict  bool
	log     *internal.Logger
}

// NewContractGenerator wires a generator from its ports.
func NewContractGenerator(loader ports.RegistryLoader, emitter ports.ContractEmitter, clock ports.Clock, strict bool, log *internal.Logger) *ContractGenerator {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &ContractGenerator{
		loader:  loader,
		emitter: emitter,
		clock:   clock,
		strict:  strict,
		log:     log.WithComponent("generator"),
	}
}

// Generate runs one full batch against assetsDir. Invalid contracts are
// recorded in the manifest and counted, never fatal per item; the manifest
// lists every attempted contract. Only registry loading and, in strict
// mode, the first per-item exception (compose, assemble or emit error)
// abort the batch.
func (g *ContractGenerator) Generate(assetsDir string) (*GenerationStats, error) {
	reg, err := g.loader.Load(assetsDir)
	if err != nil {
		return nil, err
	}

	batchTime := g.clock.Now()
	composer := chain.NewComposer(batchTime)
	assembler := contract.NewAssembler(reg.InputHashes, batchTime)
	validator := validation.NewValidator()

	questions := reg.QuestionIDs()
	sectors := core.AllPolicyAreas()
	stats := &GenerationStats{InputHashes: reg.InputHashes}
	entries := make([]run.Entry, 0, len(questions)*len(sectors))

	contractNumber := 0
	for _, questionID := range questions {
		set, _ := reg.MethodSet(questionID)
		cls, _ := reg.Classification(questionID)

		// One chain per question, shared across all ten sectors.
		epistemicChain, composeErr := composer.Compose(set, cls)

		for _, sector := range sectors {
			contractNumber++
			entry, entryErr := g.generateOne(epistemicChain, composeErr, cls, sector, contractNumber, assembler, validator)
			entries = append(entries, entry)

			if entryErr != nil {
				stats.Failures = append(stats.Failures, fmt.Sprintf("%s/%s: %v", questionID, sector, entryErr))
				if g.strict && IsAbortWorthy(entryErr) {
					return stats, entryErr
				}
			}
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].ContractID < entries[j].ContractID })
	for _, e := range entries {
		stats.Total++
		if e.IsValid {
			stats.Valid++
		} else {
			stats.Invalid++
		}
		if e.Emitted {
			stats.Emitted++
		}
	}

	manifest, err := run.NewManifest(run.NewRunID(), core.NewTimestamp(g.clock.Now()), reg.InputHashes, entries)
	if err != nil {
		return stats, err
	}
	if _, err := g.emitter.EmitManifest(manifest); err != nil {
		return stats, err
	}
	stats.Manifest = manifest

	g.log.Info("batch complete: %d total, %d valid, %d emitted", stats.Total, stats.Valid, stats.Emitted)
	return stats, nil
}

// generateOne produces the manifest entry for a single (question, sector)
// pair. The returned error is nil exactly when the contract was emitted.
func (g *ContractGenerator) generateOne(
	epistemicChain *chain.EpistemicChain,
	composeErr error,
	cls catalog.ContractClassification,
	sector core.PolicyAreaID,
	contractNumber int,
	assembler *contract.Assembler,
	validator *validation.Validator,
) (run.Entry, error) {
	contractID, idErr := core.NewContractID(contractNumber)
	entry := run.Entry{
		ContractID:   contractID,
		QuestionID:   cls.QuestionID,
		PolicyAreaID: sector,
		ContractType: cls.Type,
	}
	if idErr != nil {
		entry.Error = idErr.Error()
		return entry, idErr
	}
	if composeErr != nil {
		entry.Error = composeErr.Error()
		return entry, composeErr
	}

	entry.MethodCount = epistemicChain.MethodCount()
	entry.EfficiencyScore = epistemicChain.EfficiencyScore

	doc, err := assembler.Assemble(epistemicChain, cls, sector, contractNumber)
	if err != nil {
		entry.Error = err.Error()
		return entry, err
	}

	report := validator.Validate(doc)
	entry.PassRate = report.PassRate()
	entry.IsValid = report.IsValid()
	if !entry.IsValid {
		err := fmt.Errorf("%w: %s failed validation", core.ErrContractInvalid, doc.Identity.ContractID)
		entry.Error = describeFailures(report)
		return entry, err
	}

	file, err := g.emitter.EmitContract(doc, report)
	if err != nil {
		entry.Error = err.Error()
		return entry, err
	}
	entry.Emitted = true
	entry.File = file
	g.log.Debug("generated %s (%s, %s)", doc.Identity.ContractID, cls.QuestionID, sector)
	return entry, nil
}

func describeFailures(report *validation.Report) string {
	failures := report.Failures()
	if len(failures) == 0 {
		return ""
	}
	msg := fmt.Sprintf("%d check(s) failed, first: %s %s", len(failures), failures[0].CheckID, failures[0].Message)
	return msg
}

// IsAbortWorthy reports whether a per-item error is an exception that stops
// a strict batch. A critical validation failure is a batch outcome, not an
// exception: its entry stays in the manifest and the run keeps going.
func IsAbortWorthy(err error) bool {
	return err != nil && !core.IsEmissionRefusal(err)
}
