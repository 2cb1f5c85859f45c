package contract

import (
	"planforge/domain/catalog"
)

// HumanAnswerStructure fixes the four narrative sections of the rendered
// answer, the argumentative role catalog, and the confidence bands.
type HumanAnswerStructure struct {
	Sections        []AnswerSection   `json:"sections"`
	RolesByLevel    map[string]string `json:"argumentative_roles_by_level"`
	ConfidenceBands []ConfidenceBand  `json:"confidence_bands"`
}

// AnswerSection is one fixed narrative section.
type AnswerSection struct {
	SectionID         string       `json:"section_id"`
	Title             string       `json:"title"`
	Level             string       `json:"level"`
	ArgumentativeRole string       `json:"argumentative_role"`
	ContentTemplate   string       `json:"content_template"`
	TypeNotes         string       `json:"type_notes,omitempty"`
	VetoDisplay       *VetoDisplay `json:"veto_display,omitempty"`
}

// VetoDisplay is the sub-template used when the robustness section has to
// render applied vetoes.
type VetoDisplay struct {
	Template  string `json:"template"`
	EmptyText string `json:"empty_text"`
}

// ConfidenceBand is one row of the confidence interpretation table.
type ConfidenceBand struct {
	Band           string `json:"band"`
	Min            int    `json:"min"`
	Max            int    `json:"max"`
	Interpretation string `json:"interpretation"`
}

var confidenceBands = []ConfidenceBand{
	{Band: "critical", Min: 0, Max: 19, Interpretation: "finding cannot be relied on; audit vetoed or evidence absent"},
	{Band: "low", Min: 20, Max: 49, Interpretation: "weak evidence; answer requires manual review"},
	{Band: "medium", Min: 50, Max: 79, Interpretation: "adequate evidence with known gaps"},
	{Band: "high", Min: 80, Max: 100, Interpretation: "strong, audited evidence"},
}

var rolesByLevel = map[string]string{
	"N1":      "EMPIRICAL_BASIS",
	"N2":      "INFERENTIAL_SUPPORT",
	"N3":      "ROBUSTNESS_QUALIFIER",
	"N4":      "SYNTHESIS",
	"N4-META": "META_TRACEABILITY",
}

// typeNotesS3 carries the TYPE-specific robustness notes. Only TYPE_C,
// TYPE_D and TYPE_E have them.
var typeNotesS3 = map[catalog.ContractType]string{
	catalog.TypeC: "causal contracts must state whether the causal graph survived the acyclicity audit",
	catalog.TypeD: "comparative contracts must name the reference framework used for alignment",
	catalog.TypeE: "constraint contracts must list every mandatory constraint checked, violated or not",
}

func buildHumanAnswerStructure(contractType catalog.ContractType) HumanAnswerStructure {
	s3 := AnswerSection{
		SectionID:         "S3",
		Title:             "Robustness audit",
		Level:             "N3",
		ArgumentativeRole: "ROBUSTNESS_QUALIFIER",
		ContentTemplate:   "state which audits ran, which passed, and how surviving findings were qualified",
		VetoDisplay: &VetoDisplay{
			Template:  "VETO [{condition}]: {description} (confidence multiplier {confidence_multiplier})",
			EmptyText: "no vetoes were applied",
		},
	}
	if notes, ok := typeNotesS3[contractType]; ok {
		s3.TypeNotes = notes
	}

	return HumanAnswerStructure{
		Sections: []AnswerSection{
			{
				SectionID:         "S1",
				Title:             "Verdict",
				Level:             "N4",
				ArgumentativeRole: "SYNTHESIS",
				ContentTemplate:   "answer the question directly, then qualify with the final confidence band",
			},
			{
				SectionID:         "S2",
				Title:             "Empirical base",
				Level:             "N1",
				ArgumentativeRole: "EMPIRICAL_BASIS",
				ContentTemplate:   "cite the extracted facts with their plan-document provenance",
			},
			s3,
			{
				SectionID:         "S4",
				Title:             "Gaps and traceability",
				Level:             "N4-META",
				ArgumentativeRole: "META_TRACEABILITY",
				ContentTemplate:   "list expected elements without evidence and reference the generation metadata",
			},
		},
		RolesByLevel:    rolesByLevel,
		ConfidenceBands: confidenceBands,
	}
}
