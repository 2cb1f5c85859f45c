package chain

import (
	"time"

	"planforge/domain/catalog"
	"planforge/domain/core"
)

// citationSuffix is appended verbatim to every expanded rationale so a
// reader of the emitted contract can tell derived text from source text.
const citationSuffix = " [derived from static expansion tables, generator v4]"

// lowConfidenceThreshold flags methods whose catalog confidence is too low
// to stand alone.
const lowConfidenceThreshold = 0.7

// Fixed derivation tables. Expansion only ever reads these tables; it never
// invents or infers fields beyond them.
var evidenceRequirementsByLevel = map[string][]string{
	"N1": {
		"raw source segments with document and page references",
		"literal extraction traces for every reported value",
		"source identifiers for every cited plan section",
	},
	"N2": {
		"complete upstream N1 fact bundle",
		"model or rule parameters used in the inference",
		"derivation record linking each inference to its inputs",
	},
	"N3": {
		"full N1/N2 evidence bundle under audit",
		"audit rule definitions with thresholds",
		"violation and veto records with triggering evidence",
	},
}

var outputClaimsByType = map[catalog.OutputType][]string{
	catalog.OutputFact: {
		"claims are literal restatements of source content",
		"claims carry provenance back to a source segment",
		"claims never extrapolate beyond the extracted text",
	},
	catalog.OutputParameter: {
		"claims are computed quantities with stated uncertainty",
		"claims are reproducible from the recorded inputs",
		"claims declare the model or rule that produced them",
	},
	catalog.OutputConstraint: {
		"claims bound or invalidate other claims",
		"claims cite the rule whose violation they assert",
		"claims propagate asymmetrically (downward only)",
	},
}

var failureModesByLevel = map[string][]string{
	"N1": {"source segment missing", "extraction ambiguity", "unparseable source value"},
	"N2": {"insufficient upstream facts", "parameter out of admissible range", "non-convergent inference"},
	"N3": {"audit rule inapplicable", "evidence bundle incomplete", "veto trigger unverifiable"},
}

var interactionNotesByLevel = map[string]string{
	"N1": "outputs feed N2 inference and are subject to N3 audit",
	"N2": "consumes N1 facts; outputs are subject to N3 audit",
	"N3": "may veto N1/N2 findings; never modified by lower levels",
}

// ExpandedMethodUnit is a MethodAssignment enriched with the derived fields
// the executor needs. Input fields are carried through unmodified and in
// their original order.
type ExpandedMethodUnit struct {
	Assignment           catalog.MethodAssignment `json:"assignment"`
	EvidenceRequirements []string                 `json:"evidence_requirements"`
	OutputClaims         []string                 `json:"output_claims"`
	Constraints          map[string]bool          `json:"constraints"`
	FailureModes         []string                 `json:"failure_modes"`
	InteractionNotes     string                   `json:"interaction_notes"`
	Rationale            string                   `json:"rationale"`
	ExpandedAt           core.Timestamp           `json:"expanded_at"`
}

// Definition is a convenience accessor for the underlying catalog entry.
func (u ExpandedMethodUnit) Definition() catalog.MethodDefinition {
	return u.Assignment.Definition
}

// Expander turns bare method assignments into fully specified semantic
// units. Stateless and pure apart from the shared expansion timestamp.
type Expander struct {
	expandedAt core.Timestamp
}

// NewExpander creates an expander whose units all share one timestamp.
func NewExpander(now time.Time) *Expander {
	return &Expander{expandedAt: core.NewTimestamp(now.UTC())}
}

// Expand enriches one assignment using the fixed derivation tables, keyed
// by the method's level prefix and output type.
func (e *Expander) Expand(assignment catalog.MethodAssignment, cls catalog.ContractClassification) ExpandedMethodUnit {
	def := assignment.Definition
	prefix := catalog.LevelPrefix(def.Level)

	constraints := map[string]bool{}
	switch prefix {
	case "N1":
		constraints["output_must_be_literal"] = true
	case "N3":
		constraints["can_veto_lower_levels"] = true
		constraints["asymmetric_authority"] = true
	}
	if def.ConfidenceScore < lowConfidenceThreshold {
		constraints["low_confidence_method"] = true
	}

	return ExpandedMethodUnit{
		Assignment:           assignment,
		EvidenceRequirements: evidenceRequirementsByLevel[prefix],
		OutputClaims:         outputClaimsByType[def.OutputType],
		Constraints:          constraints,
		FailureModes:         failureModesByLevel[prefix],
		InteractionNotes:     interactionNotesByLevel[prefix],
		Rationale:            def.Rationale + citationSuffix,
		ExpandedAt:           e.expandedAt,
	}
}
