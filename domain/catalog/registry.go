package catalog

import (
	"sort"

	"planforge/domain/core"
)

// Canonical input file names, also recorded verbatim in every contract's
// traceability section.
const (
	FileClassifiedMethods       = "classified_methods.json"
	FileContractClassifications = "contratos_clasificados.json"
	FileMethodSets              = "method_sets_by_question.json"
)

// ExpectedQuestionCount is the fixed size of the question catalog.
const ExpectedQuestionCount = 30

// InputHashes carries the short content hash of each of the three input
// files, keyed for audit output.
type InputHashes struct {
	ClassifiedMethods       core.SourceHash `json:"classified_methods"`
	ContractClassifications core.SourceHash `json:"contratos_clasificados"`
	MethodSets              core.SourceHash `json:"method_sets_by_question"`
}

// Complete reports whether all three hashes are present.
func (h InputHashes) Complete() bool {
	return !h.ClassifiedMethods.IsEmpty() &&
		!h.ContractClassifications.IsEmpty() &&
		!h.MethodSets.IsEmpty()
}

// Registry is the immutable typed view over the three input files. Built
// once by the loader; every downstream component only reads from it.
type Registry struct {
	Methods               map[core.MethodID]MethodDefinition
	MethodsByLevel        map[string][]MethodDefinition
	MethodsByClass        map[string][]MethodDefinition
	Classifications       map[core.QuestionID]ContractClassification
	ClassificationsByType map[ContractType][]core.QuestionID
	MethodSets            map[core.QuestionID]QuestionMethodSet
	InputHashes           InputHashes
	LoadedAt              core.Timestamp
}

// QuestionIDs returns the 30 question ids in sorted order. Sorted iteration
// is part of the deterministic generation contract.
func (r *Registry) QuestionIDs() []core.QuestionID {
	ids := make([]core.QuestionID, 0, len(r.MethodSets))
	for id := range r.MethodSets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// MethodSet returns the method set for a question.
func (r *Registry) MethodSet(id core.QuestionID) (QuestionMethodSet, bool) {
	set, ok := r.MethodSets[id]
	return set, ok
}

// Classification returns the classification for a question.
func (r *Registry) Classification(id core.QuestionID) (ContractClassification, bool) {
	cls, ok := r.Classifications[id]
	return cls, ok
}
