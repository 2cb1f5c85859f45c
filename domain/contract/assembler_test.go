package contract_test

import (
	"errors"
	"testing"

	"planforge/domain/catalog"
	"planforge/domain/chain"
	"planforge/domain/contract"
	"planforge/domain/core"
	"planforge/internal/testkit"
)

func fixtureHashes() catalog.InputHashes {
	return catalog.InputHashes{
		ClassifiedMethods:       "aaaaaaaaaaaa",
		ContractClassifications: "bbbbbbbbbbbb",
		MethodSets:              "cccccccccccc",
	}
}

func assembleFixture(t *testing.T, questionID core.QuestionID, contractType catalog.ContractType, sector core.PolicyAreaID, number int) *contract.GeneratedContract {
	t.Helper()
	composer := chain.NewComposer(testkit.FixtureTime)
	cls := testkit.Classification(questionID, contractType)
	ch, err := composer.Compose(testkit.MethodSet(questionID), cls)
	if err != nil {
		t.Fatalf("Compose() error: %v", err)
	}
	assembler := contract.NewAssembler(fixtureHashes(), testkit.FixtureTime)
	doc, err := assembler.Assemble(ch, cls, sector, number)
	if err != nil {
		t.Fatalf("Assemble() error: %v", err)
	}
	return doc
}

func TestAssembleIdentity(t *testing.T) {
	doc := assembleFixture(t, "D1_Q1", catalog.TypeA, "PA01", 1)
	id := doc.Identity

	if id.ContractID != "Q001" {
		t.Errorf("contract_id = %s, want Q001", id.ContractID)
	}
	if id.BaseSlot != "D1-Q1" {
		t.Errorf("base_slot = %s, want D1-Q1", id.BaseSlot)
	}
	if id.DimensionID != "DIM01" {
		t.Errorf("dimension_id = %s, want DIM01", id.DimensionID)
	}
	if id.SchemaVersion != "4.0.0" {
		t.Errorf("schema_version = %s", id.SchemaVersion)
	}
	if len(id.ContractsServed) != 1 || id.ContractsServed[0] != "Q001" {
		t.Errorf("contracts_served = %v", id.ContractsServed)
	}
	if len(id.PolicyAreaIDsServed) != 10 {
		t.Errorf("policy_area_ids_served has %d entries", len(id.PolicyAreaIDsServed))
	}
}

func TestAssembleExecutorBinding(t *testing.T) {
	doc := assembleFixture(t, "D4_Q2", catalog.TypeD, "PA05", 7)
	eb := doc.ExecutorBinding

	if eb.ExecutorClass != "D4Q2Executor" {
		t.Errorf("executor_class = %s", eb.ExecutorClass)
	}
	if eb.ExecutorModule != "executors.d4_q2" {
		t.Errorf("executor_module = %s", eb.ExecutorModule)
	}
	if eb.EntryPoint != "execute" || eb.BindingMode != "static" {
		t.Errorf("entry_point/binding_mode = %s/%s", eb.EntryPoint, eb.BindingMode)
	}
}

func TestAssembleMethodBindingCardinalities(t *testing.T) {
	doc := assembleFixture(t, "D1_Q1", catalog.TypeA, "PA01", 1)
	mb := doc.MethodBinding

	if mb.MethodCount != 3 {
		t.Errorf("method_count = %d, want 3", mb.MethodCount)
	}
	if len(mb.ExecutionPhases.ConstructionN1.Methods) != 1 ||
		len(mb.ExecutionPhases.ComputationN2.Methods) != 1 ||
		len(mb.ExecutionPhases.LitigationN3.Methods) != 1 {
		t.Error("each phase must carry exactly one fixture method")
	}

	n1 := mb.ExecutionPhases.ConstructionN1.Methods[0]
	if n1.Requires == nil || len(n1.Requires) != 0 {
		t.Errorf("N1 requires = %v, want present empty list", n1.Requires)
	}
	n2 := mb.ExecutionPhases.ComputationN2.Methods[0]
	if len(n2.Modifies) != 2 {
		t.Errorf("N2 modifies = %v", n2.Modifies)
	}
	n3 := mb.ExecutionPhases.LitigationN3.Methods[0]
	if len(n3.Modulates) != 2 {
		t.Errorf("N3 modulates = %v", n3.Modulates)
	}
}

func TestVetoDerivation(t *testing.T) {
	doc := assembleFixture(t, "D1_Q1", catalog.TypeA, "PA01", 1)
	n3 := doc.MethodBinding.ExecutionPhases.LitigationN3.Methods[0]

	// test_significance matches the significance keyword (soft, 0.3); the
	// synthetic hard veto must then be appended.
	if len(n3.VetoConditions) != 2 {
		t.Fatalf("veto conditions = %d, want 2", len(n3.VetoConditions))
	}
	first := n3.VetoConditions[0]
	if first.Condition != "statistical_significance_failed" || first.ConfidenceMultiplier != 0.3 {
		t.Errorf("first veto = %+v", first)
	}
	last := n3.VetoConditions[len(n3.VetoConditions)-1]
	if last.Condition != "critical_failure_veto" || last.ConfidenceMultiplier != 0.0 || last.Origin != "synthetic_injection" {
		t.Errorf("synthetic veto = %+v", last)
	}
}

func TestVetoNoSyntheticWhenHardVetoDerived(t *testing.T) {
	composer := chain.NewComposer(testkit.FixtureTime)
	cls := testkit.Classification("D1_Q1", catalog.TypeA)

	hardGate := testkit.MethodN3()
	hardGate.Method = "detect_contradiction_set"
	set := testkit.MethodSet("D1_Q1")
	set.PhaseCN3 = []catalog.MethodAssignment{
		{Definition: hardGate, QuestionID: "D1_Q1", Phase: catalog.PhaseC},
	}
	ch, err := composer.Compose(set, cls)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := contract.NewAssembler(fixtureHashes(), testkit.FixtureTime).Assemble(ch, cls, "PA01", 1)
	if err != nil {
		t.Fatal(err)
	}

	vetoes := doc.MethodBinding.ExecutionPhases.LitigationN3.Methods[0].VetoConditions
	if len(vetoes) != 1 {
		t.Fatalf("veto conditions = %d, want 1", len(vetoes))
	}
	if vetoes[0].Condition != "contradiction_detected" || vetoes[0].ConfidenceMultiplier != 0.0 {
		t.Errorf("veto = %+v", vetoes[0])
	}
}

func TestAssembleEvidenceRules(t *testing.T) {
	doc := assembleFixture(t, "D1_Q1", catalog.TypeA, "PA01", 1)
	ea := doc.EvidenceAssembly

	if len(ea.EvidenceTypes) != 4 {
		t.Errorf("evidence types = %d, want 4", len(ea.EvidenceTypes))
	}
	if len(ea.AssemblyRules) != 4 {
		t.Fatalf("assembly rules = %d, want 4", len(ea.AssemblyRules))
	}

	byID := map[string]contract.AssemblyRule{}
	for _, r := range ea.AssemblyRules {
		byID[r.RuleID] = r
	}

	r1 := byID["R1"]
	if r1.Target != "raw_facts" || r1.DeduplicateBy != "element_id" {
		t.Errorf("R1 = %+v", r1)
	}
	r3 := byID["R3"]
	if len(r3.Asymmetry) != 2 ||
		r3.Asymmetry[0] != "N1 CANNOT invalidate N3" ||
		r3.Asymmetry[1] != "N2 CANNOT invalidate N3" {
		t.Errorf("R3 asymmetry = %v", r3.Asymmetry)
	}
	r4 := byID["R4"]
	if !r4.Terminal || r4.Target != "human_answer" {
		t.Errorf("R4 = %+v", r4)
	}
	if r4.Sources == nil || len(r4.Sources) != 0 {
		t.Errorf("R4 sources = %v, want present empty list", r4.Sources)
	}
	if len(r4.DependsOn) != 3 {
		t.Errorf("R4 depends_on = %v", r4.DependsOn)
	}
}

func TestBlockingRulesAbsentWithSingleGate(t *testing.T) {
	doc := assembleFixture(t, "D1_Q1", catalog.TypeA, "PA01", 1)
	if doc.CrossLayerFusion.BlockingPropagationRules != nil {
		t.Errorf("blocking rules present with a single gate method: %v",
			doc.CrossLayerFusion.BlockingPropagationRules)
	}
}

func TestBlockingRulesWithTwoGates(t *testing.T) {
	composer := chain.NewComposer(testkit.FixtureTime)
	cls := testkit.Classification("D1_Q1", catalog.TypeA)

	strongGate := testkit.MethodN3() // confidence 0.9
	weakGate := testkit.MethodN3()
	weakGate.Method = "check_coherence"
	weakGate.ConfidenceScore = 0.7

	set := testkit.MethodSet("D1_Q1")
	set.PhaseCN3 = []catalog.MethodAssignment{
		{Definition: strongGate, QuestionID: "D1_Q1", Phase: catalog.PhaseC},
		{Definition: weakGate, QuestionID: "D1_Q1", Phase: catalog.PhaseC},
	}
	ch, err := composer.Compose(set, cls)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := contract.NewAssembler(fixtureHashes(), testkit.FixtureTime).Assemble(ch, cls, "PA01", 1)
	if err != nil {
		t.Fatal(err)
	}

	rules := doc.CrossLayerFusion.BlockingPropagationRules
	if len(rules) != 2 {
		t.Fatalf("blocking rules = %d, want 2", len(rules))
	}
	if rules[0].Scope != "entire_pipeline" {
		t.Errorf("high-confidence gate scope = %s", rules[0].Scope)
	}
	if rules[1].Scope != "affected_branch" {
		t.Errorf("low-confidence gate scope = %s", rules[1].Scope)
	}
	for _, r := range rules {
		if r.Trigger != "gate_veto" {
			t.Errorf("trigger = %s", r.Trigger)
		}
	}
}

func TestAssembleRejectsMismatchedQuestion(t *testing.T) {
	composer := chain.NewComposer(testkit.FixtureTime)
	ch, err := composer.Compose(testkit.MethodSet("D1_Q1"), testkit.Classification("D1_Q1", catalog.TypeA))
	if err != nil {
		t.Fatal(err)
	}

	otherCls := testkit.Classification("D2_Q1", catalog.TypeB)
	_, err = contract.NewAssembler(fixtureHashes(), testkit.FixtureTime).Assemble(ch, otherCls, "PA01", 1)
	if !errors.Is(err, core.ErrAssemblyFailed) {
		t.Errorf("Assemble() = %v, want ErrAssemblyFailed", err)
	}
}

func TestAssembleRejectsBadSector(t *testing.T) {
	composer := chain.NewComposer(testkit.FixtureTime)
	cls := testkit.Classification("D1_Q1", catalog.TypeA)
	ch, err := composer.Compose(testkit.MethodSet("D1_Q1"), cls)
	if err != nil {
		t.Fatal(err)
	}

	_, err = contract.NewAssembler(fixtureHashes(), testkit.FixtureTime).Assemble(ch, cls, "SECTOR1", 1)
	if !errors.Is(err, core.ErrAssemblyFailed) {
		t.Errorf("Assemble() = %v, want ErrAssemblyFailed", err)
	}
}

func TestAssembleAuditAnnotations(t *testing.T) {
	doc := assembleFixture(t, "D1_Q1", catalog.TypeA, "PA01", 42)
	aa := doc.AuditAnnotations

	if aa.GenerationMetadata.ContractNumber != 42 {
		t.Errorf("contract_number = %d", aa.GenerationMetadata.ContractNumber)
	}
	if !aa.GenerationMetadata.InputHashes.Complete() {
		t.Error("input hashes incomplete")
	}
	if aa.AuditChecklist.StructuralComplete || aa.AuditChecklist.PassRate != 0 {
		t.Error("audit checklist must start all-false; the emitter stamps it")
	}
	if _, ok := aa.ValidityConditions["temporal_validity"]; !ok {
		t.Error("validity_conditions missing temporal_validity")
	}
	if _, ok := aa.ValidityConditions["review_trigger"]; !ok {
		t.Error("validity_conditions missing review_trigger")
	}
}
