// Package contract assembles the twelve-section executor contract document
// from a composed epistemic chain and a question classification.
package contract

import (
	"fmt"
	"strings"

	"planforge/domain/catalog"
	"planforge/domain/core"
)

// SchemaVersion is the contract document schema version.
const SchemaVersion = "4.0.0"

// GeneratedContract is the emitted twelve-section executor contract. Field
// order is emission order; the emitter never re-sorts keys.
type GeneratedContract struct {
	Identity             Identity             `json:"identity"`
	ExecutorBinding      ExecutorBinding      `json:"executor_binding"`
	MethodBinding        MethodBinding        `json:"method_binding"`
	QuestionContext      QuestionContext      `json:"question_context"`
	SignalRequirements   SignalRequirements   `json:"signal_requirements"`
	EvidenceAssembly     EvidenceAssembly     `json:"evidence_assembly"`
	FusionSpecification  FusionSpecification  `json:"fusion_specification"`
	CrossLayerFusion     CrossLayerFusion     `json:"cross_layer_fusion"`
	HumanAnswerStructure HumanAnswerStructure `json:"human_answer_structure"`
	Traceability         Traceability         `json:"traceability"`
	OutputContract       OutputContract       `json:"output_contract"`
	AuditAnnotations     AuditAnnotations     `json:"audit_annotations"`
}

// Identity names the contract and the question/sector pair it serves.
type Identity struct {
	ContractID          core.ContractID      `json:"contract_id"`
	BaseSlot            core.BaseSlot        `json:"base_slot"`
	QuestionID          core.QuestionID      `json:"question_id"`
	DimensionID         core.DimensionID     `json:"dimension_id"`
	PolicyAreaID        core.PolicyAreaID    `json:"policy_area_id"`
	ContractType        catalog.ContractType `json:"contract_type"`
	ContractsServed     []core.ContractID    `json:"contracts_served"`
	PolicyAreaIDsServed []core.PolicyAreaID  `json:"policy_area_ids_served"`
	SchemaVersion       string               `json:"schema_version"`
	CreatedAt           core.Timestamp       `json:"created_at"`
}

// Validate re-checks every identity format and cardinality after
// construction. Assembly fails rather than emit a malformed identity.
func (id Identity) Validate() error {
	if _, err := core.ParseContractID(string(id.ContractID)); err != nil {
		return err
	}
	if _, err := core.ParseQuestionID(string(id.QuestionID)); err != nil {
		return err
	}
	want, err := id.QuestionID.DimensionID()
	if err != nil {
		return err
	}
	if id.DimensionID != want {
		return core.NewValidationError("identity", fmt.Sprintf("dimension_id %q does not match question %s", id.DimensionID, id.QuestionID))
	}
	if id.BaseSlot != id.QuestionID.BaseSlot() {
		return core.NewValidationError("identity", fmt.Sprintf("base_slot %q does not match question %s", id.BaseSlot, id.QuestionID))
	}
	if _, err := core.ParsePolicyAreaID(string(id.PolicyAreaID)); err != nil {
		return err
	}
	if len(id.ContractsServed) != 1 {
		return core.NewValidationError("identity", fmt.Sprintf("contracts_served has %d entries, want exactly 1", len(id.ContractsServed)))
	}
	if id.ContractsServed[0] != id.ContractID {
		return core.NewValidationError("identity", "contracts_served must contain the contract's own id")
	}
	if len(id.PolicyAreaIDsServed) != 10 {
		return core.NewValidationError("identity", fmt.Sprintf("policy_area_ids_served has %d entries, want exactly 10", len(id.PolicyAreaIDsServed)))
	}
	for _, pa := range id.PolicyAreaIDsServed {
		if _, err := core.ParsePolicyAreaID(string(pa)); err != nil {
			return err
		}
	}
	return nil
}

// ExecutorBinding names the executor implementation the contract binds to.
// Names are derived mechanically from the question id.
type ExecutorBinding struct {
	ExecutorClass  string `json:"executor_class"`
	ExecutorModule string `json:"executor_module"`
	EntryPoint     string `json:"entry_point"`
	BindingMode    string `json:"binding_mode"`
}

func buildExecutorBinding(questionID core.QuestionID) ExecutorBinding {
	return ExecutorBinding{
		ExecutorClass:  strings.ReplaceAll(string(questionID), "_", "") + "Executor",
		ExecutorModule: "executors." + strings.ToLower(string(questionID)),
		EntryPoint:     "execute",
		BindingMode:    "static",
	}
}

// QuestionContext carries the question text and abort conditions.
type QuestionContext struct {
	MonolithReference string   `json:"monolith_reference"`
	Question          string   `json:"question"`
	AbortConditions   []string `json:"abort_conditions"`
}

// SignalRequirements tells the executor how to derive minimum signals from
// the question's expected elements.
type SignalRequirements struct {
	DerivationRule         string   `json:"derivation_rule"`
	ExpectedElements       []string `json:"expected_elements"`
	MinimumSignalThreshold float64  `json:"minimum_signal_threshold"`
}

// defaultSignalThreshold is the minimum signal strength required before the
// executor may report a non-empty answer.
const defaultSignalThreshold = 0.5

func buildQuestionContext(cls catalog.ContractClassification) QuestionContext {
	return QuestionContext{
		MonolithReference: fmt.Sprintf("decalogo_monolith.questions.%s", cls.QuestionID),
		Question:          cls.Question,
		AbortConditions: []string{
			"plan document unreadable or empty",
			"question classification missing at execution time",
			"all N1 extraction methods failed",
		},
	}
}

func buildSignalRequirements(cls catalog.ContractClassification) SignalRequirements {
	return SignalRequirements{
		DerivationRule:         "one signal per expected element; a signal counts when at least one N1 method evidences the element",
		ExpectedElements:       cls.ExpectedElements,
		MinimumSignalThreshold: defaultSignalThreshold,
	}
}
