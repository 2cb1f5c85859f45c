package validation_test

import (
	"strings"
	"testing"

	"planforge/domain/catalog"
	"planforge/domain/chain"
	"planforge/domain/contract"
	"planforge/domain/core"
	"planforge/domain/validation"
	"planforge/internal/testkit"
)

func assembleValid(t *testing.T) *contract.GeneratedContract {
	t.Helper()
	composer := chain.NewComposer(testkit.FixtureTime)
	cls := testkit.Classification("D1_Q1", catalog.TypeA)
	ch, err := composer.Compose(testkit.MethodSet("D1_Q1"), cls)
	if err != nil {
		t.Fatalf("Compose() error: %v", err)
	}
	hashes := catalog.InputHashes{
		ClassifiedMethods:       "aaaaaaaaaaaa",
		ContractClassifications: "bbbbbbbbbbbb",
		MethodSets:              "cccccccccccc",
	}
	doc, err := contract.NewAssembler(hashes, testkit.FixtureTime).Assemble(ch, cls, "PA01", 1)
	if err != nil {
		t.Fatalf("Assemble() error: %v", err)
	}
	return doc
}

func TestValidateCleanContract(t *testing.T) {
	doc := assembleValid(t)
	report := validation.NewValidator().Validate(doc)

	if !report.IsValid() {
		t.Fatalf("assembled contract invalid; failures: %+v", report.Failures())
	}
	if report.PassRate() != 1.0 {
		t.Errorf("pass rate = %v, want 1.0; failures: %+v", report.PassRate(), report.Failures())
	}
}

func TestValidateRunsEveryCheck(t *testing.T) {
	doc := assembleValid(t)
	doc.CrossLayerFusion.Effects.N3ToN1.Asymmetry = ""
	doc.Identity.CreatedAt = core.Timestamp{}

	report := validation.NewValidator().Validate(doc)

	// Both the critical epistemic failure and the high temporal failure
	// must be reported; nothing short-circuits.
	var sawAsymmetry, sawTemporal bool
	for _, f := range report.Failures() {
		if f.CheckID == "EPIST_ASYMMETRY_N3_N1" {
			sawAsymmetry = true
		}
		if f.CheckID == "TEMP_CREATED_AT" {
			sawTemporal = true
		}
	}
	if !sawAsymmetry || !sawTemporal {
		t.Errorf("failures missing expected checks: %+v", report.Failures())
	}
}

func TestCriticalFailureBlocksValidity(t *testing.T) {
	doc := assembleValid(t)
	doc.CrossLayerFusion.Effects.N3ToN2.Asymmetry = "N2 cannot invalidate N3"

	report := validation.NewValidator().Validate(doc)
	if report.IsValid() {
		t.Error("contract with altered asymmetry string accepted")
	}
	if report.FailureCount(validation.SeverityCritical) != 1 {
		t.Errorf("critical failures = %d, want 1", report.FailureCount(validation.SeverityCritical))
	}
}

func TestHighSeverityFailureDoesNotBlock(t *testing.T) {
	doc := assembleValid(t)
	doc.Identity.CreatedAt = core.Timestamp{}

	report := validation.NewValidator().Validate(doc)
	if !report.IsValid() {
		t.Error("HIGH-only failure must not block emission")
	}
	if report.FailureCount(validation.SeverityHigh) != 1 {
		t.Errorf("high failures = %d, want 1", report.FailureCount(validation.SeverityHigh))
	}
	if report.PassRate() >= 1.0 {
		t.Error("pass rate must reflect the HIGH failure")
	}
}

func TestTypeConsistencyCheck(t *testing.T) {
	doc := assembleValid(t)
	doc.FusionSpecification.ContractType = catalog.TypeB

	report := validation.NewValidator().Validate(doc)
	if report.IsValid() {
		t.Error("contract with divergent TYPE across sections accepted")
	}
	found := false
	for _, f := range report.Failures() {
		if f.CheckID == "EPIST_TYPE_CONSISTENT" && strings.Contains(f.Message, "TYPE_B") {
			found = true
		}
	}
	if !found {
		t.Errorf("EPIST_TYPE_CONSISTENT failure not reported: %+v", report.Failures())
	}
}

func TestMediumReferentialFailure(t *testing.T) {
	doc := assembleValid(t)
	doc.AuditAnnotations.GenerationMetadata.InputHashes.MethodSets = ""

	report := validation.NewValidator().Validate(doc)
	if !report.IsValid() {
		t.Error("MEDIUM-only failure must not block emission")
	}
	if report.FailureCount(validation.SeverityMedium) != 1 {
		t.Errorf("medium failures = %d, want 1", report.FailureCount(validation.SeverityMedium))
	}
}

func TestChecklistFor(t *testing.T) {
	doc := assembleValid(t)
	report := validation.NewValidator().Validate(doc)

	checklist := validation.ChecklistFor(report)
	if !checklist.StructuralComplete || !checklist.EpistemicCoherent ||
		!checklist.TemporalBound || !checklist.ReferentiallySound {
		t.Errorf("checklist = %+v", checklist)
	}
	if checklist.PassRate != report.PassRate() {
		t.Errorf("checklist pass rate = %v, report = %v", checklist.PassRate, report.PassRate())
	}
}
