package contract

import (
	"planforge/domain/catalog"
	"planforge/domain/chain"
	"planforge/domain/core"
)

// Traceability records where the contract came from and what the generator
// is forbidden to do.
type Traceability struct {
	SourceFiles        []string       `json:"source_files"`
	GenerationMethod   string         `json:"generation_method"`
	GeneratorVersion   string         `json:"generator_version"`
	GeneratedAt        core.Timestamp `json:"generated_at"`
	RefactoringHistory []string       `json:"refactoring_history"`
	Prohibitions       []string       `json:"prohibitions"`
}

// OutputContract is the JSON-Schema the downstream engine validates its own
// result against.
type OutputContract struct {
	Schema JSONSchema `json:"schema"`
}

// JSONSchema is the subset of JSON-Schema the output contract uses.
type JSONSchema struct {
	Type                 string                    `json:"type"`
	Required             []string                  `json:"required"`
	Properties           map[string]SchemaProperty `json:"properties"`
	AdditionalProperties bool                      `json:"additionalProperties"`
}

// SchemaProperty describes one schema property.
type SchemaProperty struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// AuditAnnotations ties the contract back to its inputs and carries the
// audit checklist the validator fills in before emission.
type AuditAnnotations struct {
	GenerationMetadata GenerationMetadata `json:"generation_metadata"`
	SourceReferences   []string           `json:"source_references"`
	CompositionTrace   CompositionTrace   `json:"composition_trace"`
	ValidityConditions map[string]string  `json:"validity_conditions"`
	AuditChecklist     AuditChecklist     `json:"audit_checklist"`
}

// GenerationMetadata records the inputs and position of this contract in
// the batch.
type GenerationMetadata struct {
	InputHashes    catalog.InputHashes `json:"input_hashes"`
	ContractNumber int                 `json:"contract_number"`
	GeneratedAt    core.Timestamp      `json:"generated_at"`
}

// CompositionTrace summarizes the composed chain.
type CompositionTrace struct {
	ConstructionN1Methods int     `json:"construction_N1_methods"`
	ComputationN2Methods  int     `json:"computation_N2_methods"`
	LitigationN3Methods   int     `json:"litigation_N3_methods"`
	EfficiencyScore       float64 `json:"efficiency_score"`
}

// AuditChecklist is initialized all-false by the assembler; the emitter
// sets it from the validation report just before writing.
type AuditChecklist struct {
	StructuralComplete bool    `json:"structural_complete"`
	EpistemicCoherent  bool    `json:"epistemic_coherent"`
	TemporalBound      bool    `json:"temporal_bound"`
	ReferentiallySound bool    `json:"referentially_sound"`
	PassRate           float64 `json:"pass_rate"`
}

func buildTraceability(generatedAt core.Timestamp) Traceability {
	return Traceability{
		SourceFiles: []string{
			catalog.FileClassifiedMethods,
			catalog.FileContractClassifications,
			catalog.FileMethodSets,
		},
		GenerationMethod: "deterministic_compiler",
		GeneratorVersion: SchemaVersion,
		GeneratedAt:      generatedAt,
		RefactoringHistory: []string{
			"v2: handwritten contract documents, retired",
			"v3: template-driven generation, retired for non-determinism",
			"v4: deterministic compilation from classified knowledge bases",
		},
		Prohibitions: []string{
			"no_v3_recovery",
			"no_templating",
			"no_method_inference",
		},
	}
}

func buildOutputContract() OutputContract {
	return OutputContract{
		Schema: JSONSchema{
			Type:     "object",
			Required: []string{"base_slot", "question_id", "evidence", "score", "human_answer"},
			Properties: map[string]SchemaProperty{
				"base_slot":    {Type: "string", Description: "human-readable question identifier, e.g. D1-Q1"},
				"question_id":  {Type: "string", Description: "question identifier, e.g. D1_Q1"},
				"evidence":     {Type: "object", Description: "assembled evidence keyed by assembly rule target"},
				"score":        {Type: "number", Description: "final confidence in [0,100]"},
				"human_answer": {Type: "object", Description: "rendered sections S1..S4"},
			},
			AdditionalProperties: false,
		},
	}
}

func buildAuditAnnotations(ch *chain.EpistemicChain, hashes catalog.InputHashes, contractNumber int, generatedAt core.Timestamp) AuditAnnotations {
	return AuditAnnotations{
		GenerationMetadata: GenerationMetadata{
			InputHashes:    hashes,
			ContractNumber: contractNumber,
			GeneratedAt:    generatedAt,
		},
		SourceReferences: []string{
			catalog.FileClassifiedMethods + "#methods_by_level",
			catalog.FileContractClassifications + "#contratos",
			catalog.FileMethodSets + "#method_sets." + string(ch.QuestionID),
		},
		CompositionTrace: CompositionTrace{
			ConstructionN1Methods: len(ch.PhaseAN1),
			ComputationN2Methods:  len(ch.PhaseBN2),
			LitigationN3Methods:   len(ch.PhaseCN3),
			EfficiencyScore:       ch.EfficiencyScore,
		},
		ValidityConditions: map[string]string{
			"temporal_validity": "valid while the three source files keep the recorded input hashes",
			"review_trigger":    "any change to method classifications or question assignments",
		},
		// All-false until the validator has run; the emitter fills it in.
		AuditChecklist: AuditChecklist{},
	}
}
