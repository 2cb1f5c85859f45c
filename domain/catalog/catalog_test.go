package catalog_test

import (
	"errors"
	"testing"

	"planforge/domain/catalog"
	"planforge/domain/core"
	"planforge/internal/testkit"
)

func TestLevelPrefix(t *testing.T) {
	cases := map[string]string{
		"N0-INFRA": "N0",
		"N1-EMP":   "N1",
		"N2-INF":   "N2",
		"N3-AUD":   "N3",
		"N4-SYNTH": "N4",
		"N1":       "N1",
		"M1-EMP":   "",
		"":         "",
	}
	for level, want := range cases {
		if got := catalog.LevelPrefix(level); got != want {
			t.Errorf("LevelPrefix(%q) = %q, want %q", level, got, want)
		}
	}
}

func TestParseContractType(t *testing.T) {
	for _, s := range []string{"TYPE_A", "TYPE_B", "TYPE_C", "TYPE_D", "TYPE_E", "SUBTIPO_F"} {
		if _, err := catalog.ParseContractType(s); err != nil {
			t.Errorf("ParseContractType(%q) = %v, want nil", s, err)
		}
	}
	for _, s := range []string{"", "TYPE_F", "type_a", "TYPE_G"} {
		_, err := catalog.ParseContractType(s)
		if !errors.Is(err, core.ErrUnknownContractType) {
			t.Errorf("ParseContractType(%q) = %v, want ErrUnknownContractType", s, err)
		}
	}
}

func TestFusionSpecCoversEveryType(t *testing.T) {
	wantStrategies := map[catalog.ContractType]string{
		catalog.TypeA:    "evidence_weighted_union",
		catalog.TypeB:    "threshold_gated_aggregation",
		catalog.TypeC:    "causal_chain_composition",
		catalog.TypeD:    "comparative_alignment",
		catalog.TypeE:    "constraint_satisfaction",
		catalog.SubtypeF: "narrative_triangulation",
	}
	for _, ct := range catalog.AllContractTypes() {
		spec := ct.FusionSpec()
		if spec.PrimaryStrategy != wantStrategies[ct] {
			t.Errorf("%s primary strategy = %q, want %q", ct, spec.PrimaryStrategy, wantStrategies[ct])
		}
		if spec.R2.Target == "" {
			t.Errorf("%s has empty R2 target", ct)
		}
	}
}

func TestFusionSpecTypeAGates(t *testing.T) {
	spec := catalog.TypeA.FusionSpec()
	if !spec.R1DeduplicateByElementID {
		t.Error("TYPE_A must deduplicate R1 by element id")
	}
	if len(spec.GateLogic) == 0 {
		t.Fatal("TYPE_A has no gate conditions")
	}
	hasHard := false
	for _, g := range spec.GateLogic {
		if g.ConfidenceMultiplier == 0.0 {
			hasHard = true
		}
	}
	if !hasHard {
		t.Error("TYPE_A gate logic has no hard (0.0) condition")
	}
}

func TestCoherenceViolations(t *testing.T) {
	set := testkit.MethodSet("D1_Q1")
	if got := set.CoherenceViolations(); len(got) != 0 {
		t.Fatalf("coherent set reported %d violations", len(got))
	}

	// An N2 method assigned to the N1 phase must be flagged.
	set.PhaseAN1 = append(set.PhaseAN1, catalog.MethodAssignment{
		Definition: testkit.MethodN2(),
		QuestionID: "D1_Q1",
		Phase:      catalog.PhaseA,
	})
	violations := set.CoherenceViolations()
	if len(violations) != 1 {
		t.Fatalf("got %d violations, want 1", len(violations))
	}
	v := violations[0]
	if v.Phase != catalog.PhaseA || v.ExpectedPrefix != "N1" || v.DeclaredLevel != "N2-INF" {
		t.Errorf("violation = %+v", v)
	}
}

func TestPhaseBindings(t *testing.T) {
	if got := catalog.PhaseA.ExpectedLevelPrefix(); got != "N1" {
		t.Errorf("PhaseA prefix = %q", got)
	}
	if got := catalog.PhaseC.BindingSection(); got != "litigation_N3" {
		t.Errorf("PhaseC section = %q", got)
	}
}

func TestRegistryQuestionIDsSorted(t *testing.T) {
	reg := testkit.Registry()

	ids := reg.QuestionIDs()
	if len(ids) != catalog.ExpectedQuestionCount {
		t.Fatalf("QuestionIDs() has %d entries, want %d", len(ids), catalog.ExpectedQuestionCount)
	}
	for i := 1; i < len(ids); i++ {
		if !(ids[i-1] < ids[i]) {
			t.Fatalf("QuestionIDs() not sorted at %d: %s >= %s", i, ids[i-1], ids[i])
		}
	}

	if _, ok := reg.MethodSet("D6_Q5"); !ok {
		t.Error("MethodSet(D6_Q5) missing")
	}
	if _, ok := reg.Classification("D6_Q5"); !ok {
		t.Error("Classification(D6_Q5) missing")
	}
	if !reg.InputHashes.Complete() {
		t.Error("fixture input hashes incomplete")
	}
}

func TestMethodDefinitionValidate(t *testing.T) {
	def := testkit.MethodN1()
	if err := def.Validate(); err != nil {
		t.Fatalf("valid method rejected: %v", err)
	}

	broken := def
	broken.Provides = ""
	if err := broken.Validate(); err == nil {
		t.Error("method without provides accepted")
	}

	broken = def
	broken.Level = "L1-EMP"
	if err := broken.Validate(); err == nil {
		t.Error("method with unrecognized level accepted")
	}
}
