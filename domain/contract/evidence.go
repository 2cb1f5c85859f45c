package contract

import (
	"planforge/domain/catalog"
	"planforge/domain/chain"
)

// EvidenceAssembly declares the fixed four-type evidence system and the
// four assembly rules every contract carries regardless of TYPE.
type EvidenceAssembly struct {
	EvidenceTypes []EvidenceTypeSpec `json:"evidence_types"`
	AssemblyRules []AssemblyRule     `json:"assembly_rules"`
}

// EvidenceTypeSpec describes one of the four evidence types.
type EvidenceTypeSpec struct {
	Name            catalog.OutputType `json:"name"`
	OriginLevel     string             `json:"origin_level"`
	FusionOperation string             `json:"fusion_operation"`
	Symbol          string             `json:"symbol"`
}

// AssemblyRule is one of the four fixed pipeline stages R1..R4.
type AssemblyRule struct {
	RuleID               string                  `json:"rule_id"`
	Name                 string                  `json:"name"`
	RuleType             string                  `json:"rule_type"`
	Sources              []string                `json:"sources"`
	Target               string                  `json:"target"`
	MergeStrategy        string                  `json:"merge_strategy,omitempty"`
	OperationDescription string                  `json:"operation_description,omitempty"`
	DeduplicateBy        string                  `json:"deduplicate_by,omitempty"`
	GateLogic            []catalog.GateCondition `json:"gate_logic,omitempty"`
	Asymmetry            []string                `json:"asymmetry,omitempty"`
	DependsOn            []string                `json:"depends_on,omitempty"`
	Terminal             bool                    `json:"terminal,omitempty"`
}

// Rule and target names fixed across all TYPEs. R2's target is the one
// TYPE-dispatched name.
const (
	ruleR1Target = "raw_facts"
	ruleR3Target = "audited_findings"
	ruleR4Target = "human_answer"
)

// The fixed four-type evidence system table.
var evidenceTypeSystem = []EvidenceTypeSpec{
	{Name: catalog.OutputFact, OriginLevel: "N1", FusionOperation: "union", Symbol: "∪"},
	{Name: catalog.OutputParameter, OriginLevel: "N2", FusionOperation: "weighted_merge", Symbol: "⊕"},
	{Name: catalog.OutputConstraint, OriginLevel: "N3", FusionOperation: "restrictive_meet", Symbol: "⊓"},
	{Name: catalog.OutputNarrative, OriginLevel: "N4", FusionOperation: "synthesis", Symbol: "⊳"},
}

func buildEvidenceAssembly(ch *chain.EpistemicChain) EvidenceAssembly {
	spec := ch.Type.FusionSpec()

	r1 := AssemblyRule{
		RuleID:               "R1",
		Name:                 "empirical extraction",
		RuleType:             "empirical_extraction",
		Sources:              ch.Provides(catalog.PhaseA),
		Target:               ruleR1Target,
		MergeStrategy:        spec.R1MergeStrategy,
		OperationDescription: "collect every N1 output into the raw fact bundle",
	}
	if spec.R1DeduplicateByElementID {
		r1.DeduplicateBy = "element_id"
	}

	r2 := AssemblyRule{
		RuleID:               "R2",
		Name:                 "inferential processing",
		RuleType:             spec.R2.RuleType,
		Sources:              ch.Provides(catalog.PhaseB),
		Target:               spec.R2.Target,
		MergeStrategy:        spec.R2.MergeStrategy,
		OperationDescription: spec.R2.OperationDescription,
	}

	r3 := AssemblyRule{
		RuleID:               "R3",
		Name:                 "audit gate",
		RuleType:             "audit_gate",
		Sources:              ch.Provides(catalog.PhaseC),
		Target:               ruleR3Target,
		GateLogic:            spec.GateLogic,
		Asymmetry:            []string{asymmetryN1CannotInvalidateN3, asymmetryN2CannotInvalidateN3},
	}

	r4 := AssemblyRule{
		RuleID:               "R4",
		Name:                 "narrative synthesis",
		RuleType:             "narrative_synthesis",
		Sources:              []string{},
		Target:               ruleR4Target,
		DependsOn:            []string{ruleR1Target, spec.R2.Target, ruleR3Target},
		Terminal:             true,
		OperationDescription: "synthesize the human answer from the assembled targets",
	}

	return EvidenceAssembly{
		EvidenceTypes: evidenceTypeSystem,
		AssemblyRules: []AssemblyRule{r1, r2, r3, r4},
	}
}
