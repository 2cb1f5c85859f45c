package catalog

import "fmt"

// GateCondition is one condition of a TYPE's audit gate (assembly rule R3).
type GateCondition struct {
	Condition            string  `json:"condition"`
	ConfidenceMultiplier float64 `json:"confidence_multiplier"`
	Description          string  `json:"description"`
}

// R2Spec is the TYPE-keyed specification of assembly rule R2 (inferential
// processing): where the fused inferences land and how they are merged.
type R2Spec struct {
	Target               string `json:"target"`
	RuleType             string `json:"rule_type"`
	MergeStrategy        string `json:"merge_strategy"`
	OperationDescription string `json:"operation_description"`
}

// TypeFusionSpec bundles every TYPE-dispatched table the assembler needs.
type TypeFusionSpec struct {
	PrimaryStrategy          string
	R1MergeStrategy          string
	R1DeduplicateByElementID bool
	R2                       R2Spec
	GateLogic                []GateCondition
}

// FusionSpec returns the fusion and gate tables for the TYPE. The switch is
// exhaustive over the closed taxonomy; hitting the panic means a TYPE was
// added to the enum without extending the tables.
func (t ContractType) FusionSpec() TypeFusionSpec {
	switch t {
	case TypeA:
		return TypeFusionSpec{
			PrimaryStrategy:          "evidence_weighted_union",
			R1MergeStrategy:          "union_with_provenance",
			R1DeduplicateByElementID: true,
			R2: R2Spec{
				Target:               "element_inferences",
				RuleType:             "bayesian_update",
				MergeStrategy:        "posterior_weighted",
				OperationDescription: "update element-level posteriors from deduplicated empirical facts",
			},
			GateLogic: []GateCondition{
				{Condition: "element_coverage_below_threshold", ConfidenceMultiplier: 0.4, Description: "less than the required share of expected elements is evidenced"},
				{Condition: "contradictory_element_evidence", ConfidenceMultiplier: 0.0, Description: "two sources assert incompatible values for the same element"},
			},
		}
	case TypeB:
		return TypeFusionSpec{
			PrimaryStrategy: "threshold_gated_aggregation",
			R1MergeStrategy: "ordered_concatenation",
			R2: R2Spec{
				Target:               "threshold_inferences",
				RuleType:             "threshold_comparison",
				MergeStrategy:        "conservative_min",
				OperationDescription: "compare aggregated magnitudes against declared thresholds",
			},
			GateLogic: []GateCondition{
				{Condition: "threshold_source_unverifiable", ConfidenceMultiplier: 0.3, Description: "declared threshold has no traceable normative source"},
				{Condition: "magnitude_out_of_admissible_range", ConfidenceMultiplier: 0.2, Description: "aggregated magnitude falls outside the admissible range"},
			},
		}
	case TypeC:
		return TypeFusionSpec{
			PrimaryStrategy: "causal_chain_composition",
			R1MergeStrategy: "union_with_provenance",
			R2: R2Spec{
				Target:               "causal_inferences",
				RuleType:             "dag_propagation",
				MergeStrategy:        "path_weighted",
				OperationDescription: "propagate evidence along the declared causal graph",
			},
			GateLogic: []GateCondition{
				{Condition: "causal_cycle_detected", ConfidenceMultiplier: 0.0, Description: "declared causal graph is not acyclic"},
				{Condition: "unsupported_causal_link", ConfidenceMultiplier: 0.4, Description: "a causal link has no supporting empirical fact"},
			},
		}
	case TypeD:
		return TypeFusionSpec{
			PrimaryStrategy: "comparative_alignment",
			R1MergeStrategy: "keyed_alignment",
			R2: R2Spec{
				Target:               "alignment_inferences",
				RuleType:             "pairwise_comparison",
				MergeStrategy:        "alignment_scored",
				OperationDescription: "score alignment between plan commitments and reference frameworks",
			},
			GateLogic: []GateCondition{
				{Condition: "reference_framework_missing", ConfidenceMultiplier: 0.3, Description: "no reference framework could be aligned against"},
				{Condition: "alignment_below_floor", ConfidenceMultiplier: 0.45, Description: "best alignment score is below the acceptance floor"},
			},
		}
	case TypeE:
		return TypeFusionSpec{
			PrimaryStrategy: "constraint_satisfaction",
			R1MergeStrategy: "union_with_provenance",
			R2: R2Spec{
				Target:               "constraint_inferences",
				RuleType:             "constraint_propagation",
				MergeStrategy:        "most_restrictive_wins",
				OperationDescription: "propagate declared constraints and detect violations",
			},
			GateLogic: []GateCondition{
				{Condition: "mandatory_constraint_violated", ConfidenceMultiplier: 0.0, Description: "a mandatory constraint is violated by the evidence"},
				{Condition: "constraint_set_incomplete", ConfidenceMultiplier: 0.4, Description: "the declared constraint set does not cover the question scope"},
			},
		}
	case SubtypeF:
		return TypeFusionSpec{
			PrimaryStrategy: "narrative_triangulation",
			R1MergeStrategy: "ordered_concatenation",
			R2: R2Spec{
				Target:               "triangulated_inferences",
				RuleType:             "source_triangulation",
				MergeStrategy:        "agreement_weighted",
				OperationDescription: "triangulate qualitative findings across independent sources",
			},
			GateLogic: []GateCondition{
				{Condition: "single_source_dependency", ConfidenceMultiplier: 0.35, Description: "finding rests on a single source"},
				{Condition: "source_disagreement_unresolved", ConfidenceMultiplier: 0.45, Description: "sources disagree and no resolution rule applies"},
			},
		}
	}
	panic(fmt.Sprintf("catalog: no fusion spec for contract type %q", string(t)))
}
