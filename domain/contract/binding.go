package contract

import (
	"strings"

	"planforge/domain/catalog"
	"planforge/domain/chain"
	"planforge/domain/core"
)

// MethodBinding lists every method the executor must invoke, phase by
// phase, at full verbosity. Nothing from the expanded units is compressed
// away: the downstream engine works from this section alone.
type MethodBinding struct {
	ContractType    catalog.ContractType `json:"contract_type"`
	MethodCount     int                  `json:"method_count"`
	ExecutionPhases ExecutionPhases      `json:"execution_phases"`
}

// ExecutionPhases holds the three phase subsections in execution order.
type ExecutionPhases struct {
	ConstructionN1 PhaseBinding `json:"construction_N1"`
	ComputationN2  PhaseBinding `json:"computation_N2"`
	LitigationN3   PhaseBinding `json:"litigation_N3"`
}

// PhaseBinding is one phase's ordered method list.
type PhaseBinding struct {
	Role                string        `json:"role"`
	ExpectedLevelPrefix string        `json:"expected_level_prefix"`
	Methods             []BoundMethod `json:"methods"`
}

// BoundMethod is one method's full binding record.
type BoundMethod struct {
	Class                string                 `json:"class"`
	Method               string                 `json:"method"`
	FullID               core.MethodID          `json:"full_id"`
	Provides             string                 `json:"provides"`
	Level                string                 `json:"level"`
	OutputType           catalog.OutputType     `json:"output_type"`
	FusionBehavior       catalog.FusionBehavior `json:"fusion_behavior"`
	ConfidenceScore      float64                `json:"confidence_score"`
	TechnicalSignature   TechnicalSignature     `json:"technical_signature"`
	EvidenceRequirements []string               `json:"evidence_requirements"`
	OutputClaims         []string               `json:"output_claims"`
	Constraints          map[string]bool        `json:"constraints"`
	FailureModes         []string               `json:"failure_modes"`
	InteractionNotes     string                 `json:"interaction_notes"`
	Rationale            string                 `json:"rationale"`
	Requires             []string               `json:"requires"`
	Modifies             []string               `json:"modifies,omitempty"`
	Modulates            []string               `json:"modulates,omitempty"`
	VetoConditions       []VetoCondition        `json:"veto_conditions,omitempty"`
}

// TechnicalSignature mirrors the catalog's declared call signature.
type TechnicalSignature struct {
	Parameters map[string]interface{} `json:"parameters"`
	Returns    string                 `json:"returns"`
}

// VetoCondition is one condition under which an N3 method invalidates
// lower-level findings.
type VetoCondition struct {
	Condition            string  `json:"condition"`
	Description          string  `json:"description"`
	ConfidenceMultiplier float64 `json:"confidence_multiplier"`
	Origin               string  `json:"origin"`
}

// Veto condition origins.
const (
	vetoOriginHeuristic = "method_name_heuristic"
	vetoOriginFallback  = "generic_fallback"
	vetoOriginSynthetic = "synthetic_injection"
)

// vetoTemplate maps a method-name keyword to a veto condition. The table is
// ordered; extending the heuristic means appending a row, never touching
// control flow.
type vetoTemplate struct {
	keyword     string
	condition   string
	description string
	multiplier  float64
}

var vetoTemplates = []vetoTemplate{
	{"significance", "statistical_significance_failed", "reported effect does not reach the declared significance level", 0.3},
	{"contradiction", "contradiction_detected", "audited evidence contains mutually exclusive claims", 0.0},
	{"coherence", "coherence_check_failed", "evidence bundle is internally incoherent", 0.4},
	{"acyclic", "causal_cycle_detected", "declared causal structure is not acyclic", 0.0},
	{"sufficiency", "evidence_sufficiency_failed", "evidence volume is below the sufficiency floor", 0.45},
}

// deriveVetoConditions matches the method name against the keyword table.
// If nothing matches, a generic validation_failed condition is emitted. If
// no derived condition carries multiplier 0.0, a synthetic
// critical_failure_veto is appended so every N3 method can produce a hard
// veto.
//
// The synthetic injection guarantees a structural invariant of the
// downstream engine but may overstate the audit semantics of methods whose
// natural conditions are all soft; known design debt, kept deliberately.
func deriveVetoConditions(def catalog.MethodDefinition) []VetoCondition {
	name := strings.ToLower(def.Method)

	var conditions []VetoCondition
	for _, tpl := range vetoTemplates {
		if strings.Contains(name, tpl.keyword) {
			conditions = append(conditions, VetoCondition{
				Condition:            tpl.condition,
				Description:          tpl.description,
				ConfidenceMultiplier: tpl.multiplier,
				Origin:               vetoOriginHeuristic,
			})
		}
	}
	if len(conditions) == 0 {
		conditions = append(conditions, VetoCondition{
			Condition:            "validation_failed",
			Description:          "method-level validation failed for reasons not covered by a named condition",
			ConfidenceMultiplier: 0.5,
			Origin:               vetoOriginFallback,
		})
	}

	hasHardVeto := false
	for _, c := range conditions {
		if c.ConfidenceMultiplier == 0.0 {
			hasHardVeto = true
			break
		}
	}
	if !hasHardVeto {
		conditions = append(conditions, VetoCondition{
			Condition:            "critical_failure_veto",
			Description:          "unconditional hard veto on critical method failure",
			ConfidenceMultiplier: 0.0,
			Origin:               vetoOriginSynthetic,
		})
	}
	return conditions
}

func buildBoundMethod(unit chain.ExpandedMethodUnit, phase catalog.Phase) BoundMethod {
	def := unit.Definition()

	bound := BoundMethod{
		Class:           def.Class,
		Method:          def.Method,
		FullID:          def.FullID(),
		Provides:        def.Provides,
		Level:           def.Level,
		OutputType:      def.OutputType,
		FusionBehavior:  def.FusionBehavior,
		ConfidenceScore: def.ConfidenceScore,
		TechnicalSignature: TechnicalSignature{
			Parameters: def.Parameters,
			Returns:    def.Returns,
		},
		EvidenceRequirements: unit.EvidenceRequirements,
		OutputClaims:         unit.OutputClaims,
		Constraints:          unit.Constraints,
		FailureModes:         unit.FailureModes,
		InteractionNotes:     unit.InteractionNotes,
		Rationale:            unit.Rationale,
	}

	switch phase {
	case catalog.PhaseA:
		bound.Requires = []string{}
	case catalog.PhaseB:
		bound.Requires = []string{"raw_facts"}
		bound.Modifies = []string{"confidence_scores", "inference_set"}
	case catalog.PhaseC:
		bound.Requires = []string{"raw_facts", "inferences"}
		bound.Modulates = []string{"final_confidence", "answer_admissibility"}
		bound.VetoConditions = deriveVetoConditions(def)
	}
	return bound
}

func buildPhaseBinding(ch *chain.EpistemicChain, phase catalog.Phase, role string) PhaseBinding {
	units := ch.Units(phase)
	methods := make([]BoundMethod, 0, len(units))
	for _, u := range units {
		methods = append(methods, buildBoundMethod(u, phase))
	}
	return PhaseBinding{
		Role:                role,
		ExpectedLevelPrefix: phase.ExpectedLevelPrefix(),
		Methods:             methods,
	}
}

func buildMethodBinding(ch *chain.EpistemicChain) MethodBinding {
	return MethodBinding{
		ContractType: ch.Type,
		MethodCount:  ch.MethodCount(),
		ExecutionPhases: ExecutionPhases{
			ConstructionN1: buildPhaseBinding(ch, catalog.PhaseA, "empirical construction"),
			ComputationN2:  buildPhaseBinding(ch, catalog.PhaseB, "inferential computation"),
			LitigationN3:   buildPhaseBinding(ch, catalog.PhaseC, "audit litigation"),
		},
	}
}
