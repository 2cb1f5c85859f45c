// Package testkit provides fixtures shared by the package tests: in-memory
// catalog entries for domain tests and complete asset directories for
// loader and end-to-end tests.
package testkit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"planforge/domain/catalog"
	"planforge/domain/core"
)

// FixtureTime is the pinned batch timestamp used across tests.
var FixtureTime = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// Fixture method definitions. One per epistemic level, wired so that a
// composed chain carries exactly one method per execution phase.
func MethodN0() catalog.MethodDefinition {
	return catalog.MethodDefinition{
		Class:           "PlanSanitizer",
		Method:          "normalize_segments",
		Provides:        "normalized_segments",
		Level:           "N0-INFRA",
		OutputType:      catalog.OutputFact,
		FusionBehavior:  catalog.FusionAggregate,
		ConfidenceScore: 0.99,
		Returns:         "List[Segment]",
	}
}

func MethodN1() catalog.MethodDefinition {
	return catalog.MethodDefinition{
		Class:           "IndicatorExtractor",
		Method:          "extract_baselines",
		Provides:        "raw_facts",
		Level:           "N1-EMP",
		OutputType:      catalog.OutputFact,
		FusionBehavior:  catalog.FusionAggregate,
		ConfidenceScore: 0.85,
		Parameters:      map[string]interface{}{"min_confidence": 0.6},
		Returns:         "List[Fact]",
		Rationale:       "Baselines are read directly from plan tables.",
	}
}

func MethodN2() catalog.MethodDefinition {
	return catalog.MethodDefinition{
		Class:           "BayesianScorer",
		Method:          "estimate_posterior",
		Provides:        "posterior",
		Level:           "N2-INF",
		OutputType:      catalog.OutputParameter,
		FusionBehavior:  catalog.FusionWeighted,
		ConfidenceScore: 0.78,
		Returns:         "Posterior",
	}
}

func MethodN3() catalog.MethodDefinition {
	return catalog.MethodDefinition{
		Class:           "SignificanceAuditor",
		Method:          "test_significance",
		Provides:        "validated",
		Level:           "N3-AUD",
		OutputType:      catalog.OutputConstraint,
		FusionBehavior:  catalog.FusionGate,
		ConfidenceScore: 0.9,
		Returns:         "AuditVerdict",
	}
}

func MethodN4() catalog.MethodDefinition {
	return catalog.MethodDefinition{
		Class:           "AnswerSynthesizer",
		Method:          "compose_answer",
		Provides:        "human_answer",
		Level:           "N4-SYNTH",
		OutputType:      catalog.OutputNarrative,
		FusionBehavior:  catalog.FusionNarrative,
		ConfidenceScore: 0.7,
		Returns:         "HumanAnswer",
	}
}

// Classification returns a fixture classification for questionID with the
// given contract type.
func Classification(questionID core.QuestionID, contractType catalog.ContractType) catalog.ContractClassification {
	return catalog.ContractClassification{
		QuestionID:     questionID,
		Type:           contractType,
		RequiredLevels: []string{"N1-EMP", "N2-INF", "N3-AUD"},
		FusionByLevel: map[string]string{
			"N1-EMP": "union",
			"N2-INF": "weighted_merge",
			"N3-AUD": "restrictive_meet",
		},
		ArgumentativeRoles: []string{"empirical", "inferential", "audit"},
		Question:           fmt.Sprintf("Does the plan satisfy criterion %s?", questionID),
		ExpectedElements:   []string{"baseline", "target", "indicator"},
	}
}

// MethodSet returns a fixture method set for questionID holding exactly one
// method per phase.
func MethodSet(questionID core.QuestionID) catalog.QuestionMethodSet {
	return catalog.QuestionMethodSet{
		QuestionID: questionID,
		PhaseAN1: []catalog.MethodAssignment{
			{Definition: MethodN1(), QuestionID: questionID, Phase: catalog.PhaseA},
		},
		PhaseBN2: []catalog.MethodAssignment{
			{Definition: MethodN2(), QuestionID: questionID, Phase: catalog.PhaseB},
		},
		PhaseCN3: []catalog.MethodAssignment{
			{Definition: MethodN3(), QuestionID: questionID, Phase: catalog.PhaseC},
		},
		EfficiencyScore:  0.82,
		EvidenceCoverage: "full",
	}
}

// AllQuestionIDs returns the thirty canonical question identifiers in
// dimension-major order.
func AllQuestionIDs() []core.QuestionID {
	ids := make([]core.QuestionID, 0, catalog.ExpectedQuestionCount)
	for d := 1; d <= 6; d++ {
		for q := 1; q <= 5; q++ {
			ids = append(ids, core.QuestionID(fmt.Sprintf("D%d_Q%d", d, q)))
		}
	}
	return ids
}

// typeCycle assigns contract types round-robin so every type appears in
// the fixture corpus.
func typeCycle(i int) catalog.ContractType {
	types := catalog.AllContractTypes()
	return types[i%len(types)]
}

// Registry builds a complete in-memory registry over the fixture corpus,
// bypassing file loading. Input hashes are deterministic fakes.
func Registry() *catalog.Registry {
	reg := &catalog.Registry{
		Methods:               map[core.MethodID]catalog.MethodDefinition{},
		MethodsByLevel:        map[string][]catalog.MethodDefinition{},
		MethodsByClass:        map[string][]catalog.MethodDefinition{},
		Classifications:       map[core.QuestionID]catalog.ContractClassification{},
		ClassificationsByType: map[catalog.ContractType][]core.QuestionID{},
		MethodSets:            map[core.QuestionID]catalog.QuestionMethodSet{},
		InputHashes: catalog.InputHashes{
			ClassifiedMethods:       "aaaaaaaaaaaa",
			ContractClassifications: "bbbbbbbbbbbb",
			MethodSets:              "cccccccccccc",
		},
		LoadedAt: core.NewTimestamp(FixtureTime),
	}

	for _, def := range []catalog.MethodDefinition{MethodN0(), MethodN1(), MethodN2(), MethodN3(), MethodN4()} {
		reg.Methods[def.FullID()] = def
		reg.MethodsByLevel[def.Level] = append(reg.MethodsByLevel[def.Level], def)
		reg.MethodsByClass[def.Class] = append(reg.MethodsByClass[def.Class], def)
	}
	for i, id := range AllQuestionIDs() {
		cls := Classification(id, typeCycle(i))
		reg.Classifications[id] = cls
		reg.ClassificationsByType[cls.Type] = append(reg.ClassificationsByType[cls.Type], id)
		reg.MethodSets[id] = MethodSet(id)
	}
	return reg
}

// ClassifiedMethodsDoc builds the classified_methods.json fixture document.
func ClassifiedMethodsDoc() map[string]interface{} {
	return map[string]interface{}{
		"version": "4.0.0",
		"methods_by_level": map[string]interface{}{
			"N0-INFRA": []catalog.MethodDefinition{MethodN0()},
			"N1-EMP":   []catalog.MethodDefinition{MethodN1()},
			"N2-INF":   []catalog.MethodDefinition{MethodN2()},
			"N3-AUD":   []catalog.MethodDefinition{MethodN3()},
			"N4-SYNTH": []catalog.MethodDefinition{MethodN4()},
		},
	}
}

// ContractsDoc builds the contratos_clasificados.json fixture document.
func ContractsDoc() map[string]interface{} {
	contracts := map[string]map[string]interface{}{}
	for i, id := range AllQuestionIDs() {
		cls := Classification(id, typeCycle(i))
		n, _ := id.Dimension()
		dim := fmt.Sprintf("D%d", n)
		if contracts[dim] == nil {
			contracts[dim] = map[string]interface{}{}
		}
		contracts[dim][string(id)] = map[string]interface{}{
			"type":                string(cls.Type),
			"required_levels":     cls.RequiredLevels,
			"fusion_by_level":     cls.FusionByLevel,
			"argumentative_roles": cls.ArgumentativeRoles,
			"question":            cls.Question,
			"expected_elements":   cls.ExpectedElements,
		}
	}
	return map[string]interface{}{
		"taxonomias_aplicadas": map[string]interface{}{
			"tipos_contrato": map[string]interface{}{
				"TYPE_A":    map[string]string{"strategy": "evidence_weighted_union"},
				"TYPE_B":    map[string]string{"strategy": "threshold_gated_aggregation"},
				"TYPE_C":    map[string]string{"strategy": "causal_chain_composition"},
				"TYPE_D":    map[string]string{"strategy": "comparative_alignment"},
				"TYPE_E":    map[string]string{"strategy": "constraint_satisfaction"},
				"SUBTIPO_F": map[string]string{"strategy": "narrative_triangulation"},
			},
		},
		"contratos": contracts,
	}
}

// MethodSetsDoc builds the method_sets_by_question.json fixture document.
func MethodSetsDoc() map[string]interface{} {
	sets := map[string]interface{}{}
	for _, id := range AllQuestionIDs() {
		sets[string(id)] = map[string]interface{}{
			"phase_a_N1":        []map[string]string{{"class": MethodN1().Class, "method": MethodN1().Method}},
			"phase_b_N2":        []map[string]string{{"class": MethodN2().Class, "method": MethodN2().Method}},
			"phase_c_N3":        []map[string]string{{"class": MethodN3().Class, "method": MethodN3().Method}},
			"efficiency_score":  0.82,
			"evidence_coverage": "full",
		}
	}
	return map[string]interface{}{"method_sets": sets}
}

// WriteAssets writes the three input JSON files for the full fixture
// corpus into dir and returns dir.
func WriteAssets(t testingT, dir string) string {
	t.Helper()
	writeJSONFile(t, dir, catalog.FileClassifiedMethods, ClassifiedMethodsDoc())
	writeJSONFile(t, dir, catalog.FileContractClassifications, ContractsDoc())
	writeJSONFile(t, dir, catalog.FileMethodSets, MethodSetsDoc())
	return dir
}

// OverwriteAsset replaces one asset file with an arbitrary document, for
// malformed-input tests.
func OverwriteAsset(t testingT, dir, name string, doc interface{}) {
	t.Helper()
	writeJSONFile(t, dir, name, doc)
}

// CorruptAsset replaces one asset file with bytes that are not JSON.
func CorruptAsset(t testingT, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("corrupt asset %s: %v", name, err)
	}
}

func writeJSONFile(t testingT, dir, name string, doc interface{}) {
	t.Helper()
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		t.Fatalf("marshal fixture %s: %v", name, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
}

// testingT is the subset of *testing.T the kit needs. Keeps the package
// importable from both tests and benchmarks.
type testingT interface {
	Helper()
	Fatalf(format string, args ...interface{})
}
