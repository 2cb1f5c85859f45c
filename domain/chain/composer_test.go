package chain_test

import (
	"errors"
	"strings"
	"testing"

	"planforge/domain/catalog"
	"planforge/domain/chain"
	"planforge/domain/core"
	"planforge/internal/testkit"
)

func TestComposePreservesOrderAndCounts(t *testing.T) {
	composer := chain.NewComposer(testkit.FixtureTime)
	set := testkit.MethodSet("D2_Q3")
	cls := testkit.Classification("D2_Q3", catalog.TypeB)

	ch, err := composer.Compose(set, cls)
	if err != nil {
		t.Fatalf("Compose() error: %v", err)
	}

	if ch.MethodCount() != 3 {
		t.Errorf("MethodCount() = %d, want 3", ch.MethodCount())
	}
	if ch.Type != catalog.TypeB {
		t.Errorf("Type = %s, want TYPE_B", ch.Type)
	}
	if got := ch.Provides(catalog.PhaseA); len(got) != 1 || got[0] != "raw_facts" {
		t.Errorf("PhaseA provides = %v", got)
	}
	if got := ch.Provides(catalog.PhaseC); len(got) != 1 || got[0] != "validated" {
		t.Errorf("PhaseC provides = %v", got)
	}
}

func TestComposeRejectsIncoherentSet(t *testing.T) {
	composer := chain.NewComposer(testkit.FixtureTime)
	set := testkit.MethodSet("D1_Q1")
	set.PhaseAN1 = append(set.PhaseAN1, catalog.MethodAssignment{
		Definition: testkit.MethodN2(),
		QuestionID: "D1_Q1",
		Phase:      catalog.PhaseA,
	})

	_, err := composer.Compose(set, testkit.Classification("D1_Q1", catalog.TypeA))
	if !errors.Is(err, core.ErrCoherenceViolation) {
		t.Fatalf("Compose() = %v, want ErrCoherenceViolation", err)
	}
	if !strings.Contains(err.Error(), "BayesianScorer.estimate_posterior") {
		t.Errorf("error does not itemize the offending method: %v", err)
	}
}

func TestExpandDerivesConstraints(t *testing.T) {
	expander := chain.NewExpander(testkit.FixtureTime)
	cls := testkit.Classification("D1_Q1", catalog.TypeA)

	n1 := expander.Expand(catalog.MethodAssignment{
		Definition: testkit.MethodN1(), QuestionID: "D1_Q1", Phase: catalog.PhaseA,
	}, cls)
	if !n1.Constraints["output_must_be_literal"] {
		t.Error("N1 unit missing output_must_be_literal")
	}
	if len(n1.EvidenceRequirements) != 3 || len(n1.OutputClaims) != 3 || len(n1.FailureModes) != 3 {
		t.Errorf("N1 expansion cardinalities: ev=%d claims=%d failures=%d",
			len(n1.EvidenceRequirements), len(n1.OutputClaims), len(n1.FailureModes))
	}

	n3 := expander.Expand(catalog.MethodAssignment{
		Definition: testkit.MethodN3(), QuestionID: "D1_Q1", Phase: catalog.PhaseC,
	}, cls)
	if !n3.Constraints["can_veto_lower_levels"] || !n3.Constraints["asymmetric_authority"] {
		t.Errorf("N3 constraints = %v", n3.Constraints)
	}

	lowConf := testkit.MethodN2()
	lowConf.ConfidenceScore = 0.5
	unit := expander.Expand(catalog.MethodAssignment{
		Definition: lowConf, QuestionID: "D1_Q1", Phase: catalog.PhaseB,
	}, cls)
	if !unit.Constraints["low_confidence_method"] {
		t.Error("low-confidence method not flagged")
	}
}

func TestExpandCitesDerivedText(t *testing.T) {
	expander := chain.NewExpander(testkit.FixtureTime)
	unit := expander.Expand(catalog.MethodAssignment{
		Definition: testkit.MethodN1(), QuestionID: "D1_Q1", Phase: catalog.PhaseA,
	}, testkit.Classification("D1_Q1", catalog.TypeA))

	if !strings.HasSuffix(unit.Rationale, "[derived from static expansion tables, generator v4]") {
		t.Errorf("rationale lacks derivation citation: %q", unit.Rationale)
	}
}

func TestComposedChainsShareTimestamp(t *testing.T) {
	composer := chain.NewComposer(testkit.FixtureTime)
	ch1, err := composer.Compose(testkit.MethodSet("D1_Q1"), testkit.Classification("D1_Q1", catalog.TypeA))
	if err != nil {
		t.Fatal(err)
	}
	ch2, err := composer.Compose(testkit.MethodSet("D1_Q2"), testkit.Classification("D1_Q2", catalog.TypeB))
	if err != nil {
		t.Fatal(err)
	}
	if ch1.ComposedAt != ch2.ComposedAt {
		t.Error("chains of one batch carry different composition timestamps")
	}
}
