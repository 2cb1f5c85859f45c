package catalog

import (
	"fmt"

	"planforge/domain/core"
)

// ContractType is the closed TYPE taxonomy assigned per question. Each arm
// owns its fusion and gate tables; an unhandled TYPE cannot slip through a
// default branch because ParseContractType is the only way in.
type ContractType string

const (
	TypeA    ContractType = "TYPE_A"
	TypeB    ContractType = "TYPE_B"
	TypeC    ContractType = "TYPE_C"
	TypeD    ContractType = "TYPE_D"
	TypeE    ContractType = "TYPE_E"
	SubtypeF ContractType = "SUBTIPO_F"
)

// AllContractTypes returns the closed taxonomy.
func AllContractTypes() []ContractType {
	return []ContractType{TypeA, TypeB, TypeC, TypeD, TypeE, SubtypeF}
}

// ParseContractType validates a TYPE code against the closed taxonomy.
func ParseContractType(s string) (ContractType, error) {
	switch ContractType(s) {
	case TypeA, TypeB, TypeC, TypeD, TypeE, SubtypeF:
		return ContractType(s), nil
	}
	return "", fmt.Errorf("%w: %q", core.ErrUnknownContractType, s)
}

// String returns the TYPE code.
func (t ContractType) String() string { return string(t) }

// ContractClassification carries one question's TYPE assignment and the
// classification metadata loaded from contratos_clasificados.json.
// Immutable after registry load.
type ContractClassification struct {
	QuestionID         core.QuestionID   `json:"question_id"`
	Type               ContractType      `json:"type"`
	RequiredLevels     []string          `json:"required_levels"`
	FusionByLevel      map[string]string `json:"fusion_by_level"`
	ArgumentativeRoles []string          `json:"argumentative_roles"`
	Question           string            `json:"question"`
	ExpectedElements   []string          `json:"expected_elements"`
}

// Validate checks the classification invariants.
func (c ContractClassification) Validate() error {
	if c.QuestionID.IsEmpty() {
		return core.NewValidationError("classification", "question_id is required")
	}
	if _, err := ParseContractType(string(c.Type)); err != nil {
		return core.NewValidationError("classification", fmt.Sprintf("%s: %v", c.QuestionID, err))
	}
	if c.Question == "" {
		return core.NewValidationError("classification", fmt.Sprintf("%s has no question text", c.QuestionID))
	}
	return nil
}
