package catalog

import (
	"fmt"

	"planforge/domain/core"
)

// Phase is one of the three ordered method buckets of a question.
type Phase string

const (
	PhaseA Phase = "phase_a_N1"
	PhaseB Phase = "phase_b_N2"
	PhaseC Phase = "phase_c_N3"
)

// AllPhases returns the phases in execution order.
func AllPhases() []Phase {
	return []Phase{PhaseA, PhaseB, PhaseC}
}

// ExpectedLevelPrefix returns the level prefix every method assigned to the
// phase must carry (the phase/level coherence invariant).
func (p Phase) ExpectedLevelPrefix() string {
	switch p {
	case PhaseA:
		return "N1"
	case PhaseB:
		return "N2"
	case PhaseC:
		return "N3"
	}
	return ""
}

// BindingSection returns the method_binding section name for the phase.
func (p Phase) BindingSection() string {
	switch p {
	case PhaseA:
		return "construction_N1"
	case PhaseB:
		return "computation_N2"
	case PhaseC:
		return "litigation_N3"
	}
	return ""
}

// MethodAssignment binds a catalog method to one question and one phase.
// Assignments are ordered and the order is semantically significant.
type MethodAssignment struct {
	Definition MethodDefinition `json:"definition"`
	QuestionID core.QuestionID  `json:"question_id"`
	Phase      Phase            `json:"phase"`
}

// CoherenceViolation records one method whose level does not match its
// phase bucket.
type CoherenceViolation struct {
	QuestionID     core.QuestionID
	Phase          Phase
	MethodID       core.MethodID
	DeclaredLevel  string
	ExpectedPrefix string
}

// String renders the itemized violation line used in aggregated reports.
func (v CoherenceViolation) String() string {
	return fmt.Sprintf("%s %s: method %s declares level %q, expected prefix %q",
		v.QuestionID, v.Phase, v.MethodID, v.DeclaredLevel, v.ExpectedPrefix)
}

// QuestionMethodSet is one question's three ordered phase lists plus the
// efficiency and evidence metadata carried through to the contract.
type QuestionMethodSet struct {
	QuestionID       core.QuestionID    `json:"question_id"`
	PhaseAN1         []MethodAssignment `json:"phase_a_N1"`
	PhaseBN2         []MethodAssignment `json:"phase_b_N2"`
	PhaseCN3         []MethodAssignment `json:"phase_c_N3"`
	EfficiencyScore  float64            `json:"efficiency_score"`
	EvidenceCoverage string             `json:"evidence_coverage"`
}

// Assignments returns the ordered assignments of one phase.
func (s QuestionMethodSet) Assignments(p Phase) []MethodAssignment {
	switch p {
	case PhaseA:
		return s.PhaseAN1
	case PhaseB:
		return s.PhaseBN2
	case PhaseC:
		return s.PhaseCN3
	}
	return nil
}

// MethodCount returns the total number of assigned methods.
func (s QuestionMethodSet) MethodCount() int {
	return len(s.PhaseAN1) + len(s.PhaseBN2) + len(s.PhaseCN3)
}

// CoherenceViolations returns every phase/level mismatch in the set, in
// phase order then assignment order. An empty result means the set honors
// the coherence invariant.
func (s QuestionMethodSet) CoherenceViolations() []CoherenceViolation {
	var violations []CoherenceViolation
	for _, phase := range AllPhases() {
		prefix := phase.ExpectedLevelPrefix()
		for _, a := range s.Assignments(phase) {
			if !a.Definition.HasLevelPrefix(prefix) {
				violations = append(violations, CoherenceViolation{
					QuestionID:     s.QuestionID,
					Phase:          phase,
					MethodID:       a.Definition.FullID(),
					DeclaredLevel:  a.Definition.Level,
					ExpectedPrefix: prefix,
				})
			}
		}
	}
	return violations
}
