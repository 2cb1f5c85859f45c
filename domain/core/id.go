package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Identifier shapes enforced at parse time. Everything downstream may assume
// a parsed ID is well-formed.
var (
	questionIDPattern   = regexp.MustCompile(`^D(\d+)_Q(\d+)$`)
	contractIDPattern   = regexp.MustCompile(`^Q\d{3}$`)
	policyAreaIDPattern = regexp.MustCompile(`^PA\d{2}$`)
)

// QuestionID identifies one of the 30 base questions, e.g. "D1_Q1".
type QuestionID string

// ContractID identifies one generated contract, e.g. "Q042".
type ContractID string

// PolicyAreaID identifies one of the 10 policy sectors, e.g. "PA03".
type PolicyAreaID string

// BaseSlot is the human-readable question identifier, e.g. "D1-Q1".
type BaseSlot string

// DimensionID is the zero-padded dimension identifier, e.g. "DIM01".
type DimensionID string

// MethodID is the fully qualified method identifier "Class.method".
type MethodID string

// ParseQuestionID validates the D<n>_Q<m> shape.
func ParseQuestionID(s string) (QuestionID, error) {
	if !questionIDPattern.MatchString(s) {
		return "", fmt.Errorf("%w: question id %q does not match D<n>_Q<m>", ErrInvalidQuestionID, s)
	}
	return QuestionID(s), nil
}

// BaseSlot derives the human-readable slot from a question id: D1_Q1 -> D1-Q1.
func (q QuestionID) BaseSlot() BaseSlot {
	return BaseSlot(strings.ReplaceAll(string(q), "_", "-"))
}

// Dimension returns the numeric dimension of the question id.
func (q QuestionID) Dimension() (int, error) {
	m := questionIDPattern.FindStringSubmatch(string(q))
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidQuestionID, q)
	}
	return strconv.Atoi(m[1])
}

// DimensionID derives DIM<nn> from the question id. Only dimensions 1..6
// exist in the question catalog; anything else is a hard failure.
func (q QuestionID) DimensionID() (DimensionID, error) {
	n, err := q.Dimension()
	if err != nil {
		return "", err
	}
	if n < 1 || n > 6 {
		return "", fmt.Errorf("%w: dimension %d of %q outside [1,6]", ErrDimensionOutOfRange, n, q)
	}
	return DimensionID(fmt.Sprintf("DIM%02d", n)), nil
}

// String returns the string representation.
func (q QuestionID) String() string { return string(q) }

// IsEmpty checks if the question id is empty.
func (q QuestionID) IsEmpty() bool { return q == "" }

// NewContractID builds the Q<nnn> contract id for a 1-based contract number.
func NewContractID(number int) (ContractID, error) {
	if number < 1 || number > 999 {
		return "", fmt.Errorf("%w: contract number %d outside [1,999]", ErrInvalidContractID, number)
	}
	return ContractID(fmt.Sprintf("Q%03d", number)), nil
}

// ParseContractID validates the Q<nnn> shape.
func ParseContractID(s string) (ContractID, error) {
	if !contractIDPattern.MatchString(s) {
		return "", fmt.Errorf("%w: %q does not match Q<nnn>", ErrInvalidContractID, s)
	}
	return ContractID(s), nil
}

// String returns the string representation.
func (c ContractID) String() string { return string(c) }

// IsEmpty checks if the contract id is empty.
func (c ContractID) IsEmpty() bool { return c == "" }

// ParsePolicyAreaID validates the PA<nn> shape.
func ParsePolicyAreaID(s string) (PolicyAreaID, error) {
	if !policyAreaIDPattern.MatchString(s) {
		return "", fmt.Errorf("invalid policy area id %q: does not match PA<nn>", s)
	}
	return PolicyAreaID(s), nil
}

// String returns the string representation.
func (p PolicyAreaID) String() string { return string(p) }

// AllPolicyAreas returns the fixed sector catalog PA01..PA10 in sorted order.
func AllPolicyAreas() []PolicyAreaID {
	areas := make([]PolicyAreaID, 0, 10)
	for i := 1; i <= 10; i++ {
		areas = append(areas, PolicyAreaID(fmt.Sprintf("PA%02d", i)))
	}
	return areas
}

// NewMethodID builds the fully qualified method id.
func NewMethodID(class, method string) MethodID {
	return MethodID(class + "." + method)
}

// String returns the string representation.
func (m MethodID) String() string { return string(m) }
