package chain

import (
	"fmt"
	"strings"
	"time"

	"planforge/domain/catalog"
	"planforge/domain/core"
)

// EpistemicChain is one question's three ordered expanded phase lists plus
// composition metadata. Immutable once composed.
type EpistemicChain struct {
	QuestionID       core.QuestionID      `json:"question_id"`
	Type             catalog.ContractType `json:"contract_type"`
	PhaseAN1         []ExpandedMethodUnit `json:"phase_a_N1"`
	PhaseBN2         []ExpandedMethodUnit `json:"phase_b_N2"`
	PhaseCN3         []ExpandedMethodUnit `json:"phase_c_N3"`
	EfficiencyScore  float64              `json:"efficiency_score"`
	EvidenceCoverage string               `json:"evidence_coverage"`
	ComposedAt       core.Timestamp       `json:"composed_at"`
}

// Units returns the expanded units of one phase in execution order.
func (c *EpistemicChain) Units(p catalog.Phase) []ExpandedMethodUnit {
	switch p {
	case catalog.PhaseA:
		return c.PhaseAN1
	case catalog.PhaseB:
		return c.PhaseBN2
	case catalog.PhaseC:
		return c.PhaseCN3
	}
	return nil
}

// MethodCount returns the total number of expanded methods.
func (c *EpistemicChain) MethodCount() int {
	return len(c.PhaseAN1) + len(c.PhaseBN2) + len(c.PhaseCN3)
}

// Provides collects the provides keys of one phase, preserving order.
func (c *EpistemicChain) Provides(p catalog.Phase) []string {
	units := c.Units(p)
	keys := make([]string, 0, len(units))
	for _, u := range units {
		keys = append(keys, u.Definition().Provides)
	}
	return keys
}

// Composer validates phase/level coherence and composes per-question
// ordered method chains.
type Composer struct {
	expander   *Expander
	composedAt core.Timestamp
}

// NewComposer creates a composer; all chains composed by it share one
// composition timestamp.
func NewComposer(now time.Time) *Composer {
	return &Composer{
		expander:   NewExpander(now),
		composedAt: core.NewTimestamp(now.UTC()),
	}
}

// Compose validates the set's coherence and expands its three phases in
// strict input order. Composition never sorts, groups, or deduplicates.
//
// The coherence check repeats what the registry load already validated
// globally; a chain must hold on its own even if handed a set that never
// went through the loader.
func (c *Composer) Compose(set catalog.QuestionMethodSet, cls catalog.ContractClassification) (*EpistemicChain, error) {
	if violations := set.CoherenceViolations(); len(violations) > 0 {
		lines := make([]string, 0, len(violations))
		for _, v := range violations {
			lines = append(lines, v.String())
		}
		return nil, fmt.Errorf("%w: question %s has %d violation(s):\n%s",
			core.ErrCoherenceViolation, set.QuestionID, len(violations), strings.Join(lines, "\n"))
	}

	expand := func(assignments []catalog.MethodAssignment) []ExpandedMethodUnit {
		units := make([]ExpandedMethodUnit, 0, len(assignments))
		for _, a := range assignments {
			units = append(units, c.expander.Expand(a, cls))
		}
		return units
	}

	return &EpistemicChain{
		QuestionID:       set.QuestionID,
		Type:             cls.Type,
		PhaseAN1:         expand(set.PhaseAN1),
		PhaseBN2:         expand(set.PhaseBN2),
		PhaseCN3:         expand(set.PhaseCN3),
		EfficiencyScore:  set.EfficiencyScore,
		EvidenceCoverage: set.EvidenceCoverage,
		ComposedAt:       c.composedAt,
	}, nil
}
