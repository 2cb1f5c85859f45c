// Package registry loads the three JSON knowledge bases into the immutable
// typed registry. Any defect in the inputs is a hard failure: the loader
// never repairs, guesses, or returns a partial registry.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"planforge/domain/catalog"
	"planforge/domain/core"
	"planforge/internal"
)

// Loader reads an assets directory into a catalog.Registry.
type Loader struct {
	log *internal.Logger
}

// NewLoader creates a loader.
func NewLoader(log *internal.Logger) *Loader {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &Loader{log: log}
}

// Raw file shapes. Key names under taxonomias_aplicadas/contratos follow
// the canonical input format.
type classifiedMethodsFile struct {
	Version        string                                `json:"version"`
	MethodsByLevel map[string][]catalog.MethodDefinition `json:"methods_by_level"`
}

type contractsFile struct {
	Taxonomies taxonomiesSection                       `json:"taxonomias_aplicadas"`
	Contracts  map[string]map[string]rawClassification `json:"contratos"`
}

type taxonomiesSection struct {
	ContractTypes map[string]json.RawMessage `json:"tipos_contrato"`
}

type rawClassification struct {
	Type               string            `json:"type"`
	RequiredLevels     []string          `json:"required_levels"`
	FusionByLevel      map[string]string `json:"fusion_by_level"`
	ArgumentativeRoles []string          `json:"argumentative_roles"`
	Question           string            `json:"question"`
	ExpectedElements   []string          `json:"expected_elements"`
}

type methodSetsFile struct {
	MethodSets map[string]rawMethodSet `json:"method_sets"`
}

type rawMethodSet struct {
	PhaseAN1         []methodRef `json:"phase_a_N1"`
	PhaseBN2         []methodRef `json:"phase_b_N2"`
	PhaseCN3         []methodRef `json:"phase_c_N3"`
	EfficiencyScore  float64     `json:"efficiency_score"`
	EvidenceCoverage string      `json:"evidence_coverage"`
}

type methodRef struct {
	Class  string `json:"class"`
	Method string `json:"method"`
}

// Load reads, hashes, indexes and cross-validates the three input files.
func (l *Loader) Load(assetsDir string) (*catalog.Registry, error) {
	methodsFile, methodsHash, err := loadFile[classifiedMethodsFile](assetsDir, catalog.FileClassifiedMethods)
	if err != nil {
		return nil, err
	}
	contracts, contractsHash, err := loadFile[contractsFile](assetsDir, catalog.FileContractClassifications)
	if err != nil {
		return nil, err
	}
	sets, setsHash, err := loadFile[methodSetsFile](assetsDir, catalog.FileMethodSets)
	if err != nil {
		return nil, err
	}

	reg := &catalog.Registry{
		Methods:               map[core.MethodID]catalog.MethodDefinition{},
		MethodsByLevel:        map[string][]catalog.MethodDefinition{},
		MethodsByClass:        map[string][]catalog.MethodDefinition{},
		Classifications:       map[core.QuestionID]catalog.ContractClassification{},
		ClassificationsByType: map[catalog.ContractType][]core.QuestionID{},
		MethodSets:            map[core.QuestionID]catalog.QuestionMethodSet{},
		InputHashes: catalog.InputHashes{
			ClassifiedMethods:       methodsHash,
			ContractClassifications: contractsHash,
			MethodSets:              setsHash,
		},
		LoadedAt: core.Now(),
	}

	if err := l.indexMethods(methodsFile, reg); err != nil {
		return nil, err
	}
	if err := l.indexClassifications(contracts, reg); err != nil {
		return nil, err
	}
	if err := l.indexMethodSets(sets, reg); err != nil {
		return nil, err
	}
	if err := l.crossValidateCoherence(reg); err != nil {
		return nil, err
	}

	l.log.Info("registry loaded: %d methods, %d classifications, %d method sets",
		len(reg.Methods), len(reg.Classifications), len(reg.MethodSets))
	return reg, nil
}

// loadFile reads one input file, decodes it into T and computes its
// canonical content hash over the decoded document.
func loadFile[T any](assetsDir, name string) (*T, core.SourceHash, error) {
	path := filepath.Join(assetsDir, name)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", fmt.Errorf("%w: %s", core.ErrInputMissing, path)
		}
		return nil, "", core.NewLoadError(name, err)
	}

	var typed T
	if err := json.Unmarshal(raw, &typed); err != nil {
		return nil, "", core.NewLoadError(name, err)
	}

	// Hash the decoded tree, not the bytes: formatting and key order of
	// the source file must not change the hash.
	var tree interface{}
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, "", core.NewLoadError(name, err)
	}
	hash, err := core.HashCanonical(tree)
	if err != nil {
		return nil, "", core.NewLoadError(name, err)
	}
	return &typed, hash, nil
}

func (l *Loader) indexMethods(file *classifiedMethodsFile, reg *catalog.Registry) error {
	if file.MethodsByLevel == nil {
		return fmt.Errorf("%w: %s lacks methods_by_level", core.ErrInputMalformed, catalog.FileClassifiedMethods)
	}

	// All five epistemic levels must be represented, matched by prefix so
	// full level names stay a data concern.
	present := map[string]bool{}
	for level := range file.MethodsByLevel {
		if p := catalog.LevelPrefix(level); p != "" {
			present[p] = true
		}
	}
	var missing []string
	for _, p := range catalog.LevelPrefixes {
		if !present[p] {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: methods_by_level missing level(s) %s",
			core.ErrRegistryIncomplete, strings.Join(missing, ", "))
	}

	levels := make([]string, 0, len(file.MethodsByLevel))
	for level := range file.MethodsByLevel {
		levels = append(levels, level)
	}
	sort.Strings(levels)

	for _, level := range levels {
		for _, def := range file.MethodsByLevel[level] {
			if def.Level == "" {
				def.Level = level
			}
			if err := def.Validate(); err != nil {
				return fmt.Errorf("%w: %v", core.ErrInputMalformed, err)
			}
			id := def.FullID()
			if _, dup := reg.Methods[id]; dup {
				return fmt.Errorf("%w: duplicate method %s", core.ErrInputMalformed, id)
			}
			reg.Methods[id] = def
			reg.MethodsByLevel[def.Level] = append(reg.MethodsByLevel[def.Level], def)
			reg.MethodsByClass[def.Class] = append(reg.MethodsByClass[def.Class], def)
		}
	}
	return nil
}

func (l *Loader) indexClassifications(file *contractsFile, reg *catalog.Registry) error {
	if file.Taxonomies.ContractTypes == nil {
		return fmt.Errorf("%w: %s lacks taxonomias_aplicadas.tipos_contrato",
			core.ErrInputMalformed, catalog.FileContractClassifications)
	}
	if file.Contracts == nil {
		return fmt.Errorf("%w: %s lacks contratos", core.ErrInputMalformed, catalog.FileContractClassifications)
	}

	total := 0
	for dimension, byQuestion := range file.Contracts {
		for rawID, rawCls := range byQuestion {
			questionID, err := core.ParseQuestionID(rawID)
			if err != nil {
				return fmt.Errorf("contratos.%s: %w", dimension, err)
			}
			contractType, err := catalog.ParseContractType(rawCls.Type)
			if err != nil {
				return fmt.Errorf("contratos.%s.%s: %w", dimension, rawID, err)
			}

			cls := catalog.ContractClassification{
				QuestionID:         questionID,
				Type:               contractType,
				RequiredLevels:     rawCls.RequiredLevels,
				FusionByLevel:      rawCls.FusionByLevel,
				ArgumentativeRoles: rawCls.ArgumentativeRoles,
				Question:           rawCls.Question,
				ExpectedElements:   rawCls.ExpectedElements,
			}
			if err := cls.Validate(); err != nil {
				return fmt.Errorf("%w: %v", core.ErrInputMalformed, err)
			}
			reg.Classifications[questionID] = cls
			reg.ClassificationsByType[contractType] = append(reg.ClassificationsByType[contractType], questionID)
			total++
		}
	}
	if total != catalog.ExpectedQuestionCount {
		return fmt.Errorf("%w: contratos has %d leaf entries, want exactly %d",
			core.ErrRegistryIncomplete, total, catalog.ExpectedQuestionCount)
	}

	for _, ids := range reg.ClassificationsByType {
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}
	return nil
}

func (l *Loader) indexMethodSets(file *methodSetsFile, reg *catalog.Registry) error {
	if file.MethodSets == nil {
		return fmt.Errorf("%w: %s lacks method_sets", core.ErrInputMalformed, catalog.FileMethodSets)
	}
	if len(file.MethodSets) != catalog.ExpectedQuestionCount {
		return fmt.Errorf("%w: method_sets has %d entries, want exactly %d",
			core.ErrRegistryIncomplete, len(file.MethodSets), catalog.ExpectedQuestionCount)
	}

	for rawID, rawSet := range file.MethodSets {
		questionID, err := core.ParseQuestionID(rawID)
		if err != nil {
			return fmt.Errorf("method_sets: %w", err)
		}
		if _, ok := reg.Classifications[questionID]; !ok {
			return fmt.Errorf("%w: method set %s has no classification", core.ErrRegistryIncomplete, questionID)
		}

		// All three phase arrays must be present. An empty array counts as
		// present; a missing key does not.
		if rawSet.PhaseAN1 == nil || rawSet.PhaseBN2 == nil || rawSet.PhaseCN3 == nil {
			return fmt.Errorf("%w: method set %s lacks one or more phase arrays",
				core.ErrInputMalformed, questionID)
		}

		set := catalog.QuestionMethodSet{
			QuestionID:       questionID,
			EfficiencyScore:  rawSet.EfficiencyScore,
			EvidenceCoverage: rawSet.EvidenceCoverage,
		}
		if set.PhaseAN1, err = l.resolveRefs(reg, questionID, catalog.PhaseA, rawSet.PhaseAN1); err != nil {
			return err
		}
		if set.PhaseBN2, err = l.resolveRefs(reg, questionID, catalog.PhaseB, rawSet.PhaseBN2); err != nil {
			return err
		}
		if set.PhaseCN3, err = l.resolveRefs(reg, questionID, catalog.PhaseC, rawSet.PhaseCN3); err != nil {
			return err
		}
		reg.MethodSets[questionID] = set
	}
	return nil
}

// resolveRefs turns method references into assignments, preserving input
// order exactly.
func (l *Loader) resolveRefs(reg *catalog.Registry, questionID core.QuestionID, phase catalog.Phase, refs []methodRef) ([]catalog.MethodAssignment, error) {
	assignments := make([]catalog.MethodAssignment, 0, len(refs))
	for _, ref := range refs {
		id := core.NewMethodID(ref.Class, ref.Method)
		def, ok := reg.Methods[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s referenced by %s %s", core.ErrMethodNotFound, id, questionID, phase)
		}
		assignments = append(assignments, catalog.MethodAssignment{
			Definition: def,
			QuestionID: questionID,
			Phase:      phase,
		})
	}
	return assignments, nil
}

// crossValidateCoherence checks phase/level coherence across all 30 sets,
// collecting every violation before failing so none is masked by an
// earlier one.
func (l *Loader) crossValidateCoherence(reg *catalog.Registry) error {
	var all []catalog.CoherenceViolation
	for _, id := range reg.QuestionIDs() {
		all = append(all, reg.MethodSets[id].CoherenceViolations()...)
	}
	if len(all) == 0 {
		return nil
	}

	lines := make([]string, 0, len(all))
	for _, v := range all {
		lines = append(lines, v.String())
	}
	return fmt.Errorf("%w: %d violation(s) across the registry:\n%s",
		core.ErrCoherenceViolation, len(all), strings.Join(lines, "\n"))
}
