package contract

import (
	"planforge/domain/catalog"
	"planforge/domain/chain"
)

// The epistemic asymmetry invariant, declared verbatim in every contract.
// The validator compares against these strings character for character.
const (
	asymmetryN1CannotInvalidateN3 = "N1 CANNOT invalidate N3"
	asymmetryN2CannotInvalidateN3 = "N2 CANNOT invalidate N3"
	asymmetryN4CannotOverride     = "N4 synthesis CANNOT override audited N3 findings"
)

// FusionSpecification tells the executor how to fuse method outputs within
// and across epistemic levels.
type FusionSpecification struct {
	ContractType      catalog.ContractType `json:"contract_type"`
	PrimaryStrategy   string               `json:"primary_strategy"`
	LevelStrategies   LevelStrategies      `json:"level_strategies"`
	CrossLayerEffects CrossLayerEffects    `json:"cross_layer_effects"`
	Pipeline          []PipelineStep       `json:"pipeline"`
}

// LevelStrategies holds the per-level fusion strategy table.
type LevelStrategies struct {
	N1 LevelStrategy `json:"N1"`
	N2 LevelStrategy `json:"N2"`
	N3 LevelStrategy `json:"N3"`
}

// LevelStrategy is one level's fusion behavior.
type LevelStrategy struct {
	Strategy           string `json:"strategy"`
	Behavior           string `json:"behavior"`
	ConflictResolution string `json:"conflict_resolution"`
}

// CrossLayerEffects declares the five fixed cross-layer effects.
type CrossLayerEffects struct {
	N1ToN2  CrossLayerEffect `json:"N1_to_N2"`
	N2ToN1  CrossLayerEffect `json:"N2_to_N1"`
	N3ToN1  CrossLayerEffect `json:"N3_to_N1"`
	N3ToN2  CrossLayerEffect `json:"N3_to_N2"`
	AllToN4 CrossLayerEffect `json:"all_to_N4"`
}

// CrossLayerEffect describes how one layer acts on another.
type CrossLayerEffect struct {
	Effect    string `json:"effect"`
	Asymmetry string `json:"asymmetry,omitempty"`
}

// PipelineStep is one step of the ordered fusion pipeline.
type PipelineStep struct {
	Step        int    `json:"step"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CrossLayerFusion mirrors the five cross-layer effects and adds blocking
// propagation rules when the N3 phase carries two or more gate methods.
// When fewer than two gate methods exist the key is entirely absent:
// absence encodes "no additional blocking beyond the five standard
// effects".
type CrossLayerFusion struct {
	Effects                  CrossLayerEffects `json:"effects"`
	BlockingPropagationRules []BlockingRule    `json:"blocking_propagation_rules,omitempty"`
}

// BlockingRule is one gate method's pipeline-blocking rule.
type BlockingRule struct {
	MethodID        string  `json:"method_id"`
	Trigger         string  `json:"trigger"`
	Scope           string  `json:"scope"`
	ConfidenceScore float64 `json:"confidence_score"`
}

// Blocking rule scopes, chosen by the gate method's catalog confidence.
const (
	scopeEntirePipeline = "entire_pipeline"
	scopeAffectedBranch = "affected_branch"

	blockingScopeConfidenceFloor = 0.8
	minGateMethodsForBlocking    = 2
)

func buildCrossLayerEffects() CrossLayerEffects {
	return CrossLayerEffects{
		N1ToN2: CrossLayerEffect{
			Effect: "N1 facts are the only admissible inputs to N2 inference",
		},
		N2ToN1: CrossLayerEffect{
			Effect: "N2 inferences annotate N1 facts with derived confidence but never alter them",
		},
		N3ToN1: CrossLayerEffect{
			Effect:    "N3 audits may invalidate N1 facts",
			Asymmetry: asymmetryN1CannotInvalidateN3,
		},
		N3ToN2: CrossLayerEffect{
			Effect:    "N3 audits may invalidate N2 inferences",
			Asymmetry: asymmetryN2CannotInvalidateN3,
		},
		AllToN4: CrossLayerEffect{
			Effect:    "every surviving finding flows into N4 narrative synthesis",
			Asymmetry: asymmetryN4CannotOverride,
		},
	}
}

func buildFusionSpecification(ch *chain.EpistemicChain) FusionSpecification {
	spec := ch.Type.FusionSpec()

	return FusionSpecification{
		ContractType:    ch.Type,
		PrimaryStrategy: spec.PrimaryStrategy,
		LevelStrategies: LevelStrategies{
			N1: LevelStrategy{
				Strategy:           spec.R1MergeStrategy,
				Behavior:           "accumulate",
				ConflictResolution: "keep all facts, record provenance of each",
			},
			N2: LevelStrategy{
				Strategy:           spec.R2.MergeStrategy,
				Behavior:           "transform",
				ConflictResolution: "prefer the inference with higher derived confidence",
			},
			N3: LevelStrategy{
				Strategy:           "gate",
				Behavior:           "veto",
				ConflictResolution: "most restrictive audit outcome wins",
			},
		},
		CrossLayerEffects: buildCrossLayerEffects(),
		Pipeline: []PipelineStep{
			{Step: 1, Name: "collect_N1", Description: "run construction methods, assemble raw_facts"},
			{Step: 2, Name: "fuse_N2", Description: "run computation methods over raw_facts"},
			{Step: 3, Name: "apply_N3_gates", Description: "run litigation methods, apply vetoes"},
			{Step: 4, Name: "synthesize_N4", Description: "render the human answer from surviving findings"},
		},
	}
}

func buildCrossLayerFusion(ch *chain.EpistemicChain) CrossLayerFusion {
	fusion := CrossLayerFusion{Effects: buildCrossLayerEffects()}

	var gates []chain.ExpandedMethodUnit
	for _, u := range ch.Units(catalog.PhaseC) {
		if u.Definition().FusionBehavior == catalog.FusionGate {
			gates = append(gates, u)
		}
	}
	if len(gates) < minGateMethodsForBlocking {
		return fusion
	}

	rules := make([]BlockingRule, 0, len(gates))
	for _, g := range gates {
		def := g.Definition()
		scope := scopeAffectedBranch
		if def.ConfidenceScore >= blockingScopeConfidenceFloor {
			scope = scopeEntirePipeline
		}
		rules = append(rules, BlockingRule{
			MethodID:        string(def.FullID()),
			Trigger:         "gate_veto",
			Scope:           scope,
			ConfidenceScore: def.ConfidenceScore,
		})
	}
	fusion.BlockingPropagationRules = rules
	return fusion
}
