package catalog

import (
	"fmt"
	"strings"

	"planforge/domain/core"
)

// OutputType classifies what kind of claim a method's output represents.
type OutputType string

const (
	OutputFact       OutputType = "FACT"
	OutputParameter  OutputType = "PARAMETER"
	OutputConstraint OutputType = "CONSTRAINT"
	OutputNarrative  OutputType = "NARRATIVE"
)

// ParseOutputType validates an output type string.
func ParseOutputType(s string) (OutputType, error) {
	switch OutputType(s) {
	case OutputFact, OutputParameter, OutputConstraint, OutputNarrative:
		return OutputType(s), nil
	}
	return "", fmt.Errorf("invalid output type %q", s)
}

// FusionBehavior describes how a method's output participates in fusion.
type FusionBehavior string

const (
	FusionAggregate FusionBehavior = "aggregate"
	FusionWeighted  FusionBehavior = "weighted"
	FusionGate      FusionBehavior = "gate"
	FusionNarrative FusionBehavior = "narrative"
)

// The five epistemic level prefixes. Input levels are full names such as
// "N1-EMP" or "N3-AUD"; all invariants operate on the N<digit> prefix.
var LevelPrefixes = []string{"N0", "N1", "N2", "N3", "N4"}

// LevelPrefix extracts the N<digit> prefix of a full level name, or "" if
// the name does not carry one.
func LevelPrefix(level string) string {
	for _, p := range LevelPrefixes {
		if strings.HasPrefix(level, p) {
			return p
		}
	}
	return ""
}

// MethodDefinition is an immutable catalog entry for one method. Created
// once at registry load, never mutated afterwards.
type MethodDefinition struct {
	Class           string                 `json:"class"`
	Method          string                 `json:"method"`
	Provides        string                 `json:"provides"`
	Level           string                 `json:"level"`
	OutputType      OutputType             `json:"output_type"`
	FusionBehavior  FusionBehavior         `json:"fusion_behavior"`
	ConfidenceScore float64                `json:"confidence_score"`
	Parameters      map[string]interface{} `json:"parameters,omitempty"`
	Returns         string                 `json:"returns,omitempty"`
	Rationale       string                 `json:"rationale,omitempty"`
}

// FullID returns the fully qualified "Class.method" identifier.
func (m MethodDefinition) FullID() core.MethodID {
	return core.NewMethodID(m.Class, m.Method)
}

// HasLevelPrefix reports whether the method's level starts with prefix.
func (m MethodDefinition) HasLevelPrefix(prefix string) bool {
	return strings.HasPrefix(m.Level, prefix)
}

// Validate checks the fields the rest of the compiler relies on.
func (m MethodDefinition) Validate() error {
	if m.Class == "" || m.Method == "" {
		return core.NewValidationError("method", "class and method are required")
	}
	if m.Provides == "" {
		return core.NewValidationError("method", fmt.Sprintf("%s has no provides key", m.FullID()))
	}
	if LevelPrefix(m.Level) == "" {
		return core.NewValidationError("method", fmt.Sprintf("%s has unrecognized level %q", m.FullID(), m.Level))
	}
	if _, err := ParseOutputType(string(m.OutputType)); err != nil {
		return core.NewValidationError("method", fmt.Sprintf("%s: %v", m.FullID(), err))
	}
	return nil
}
