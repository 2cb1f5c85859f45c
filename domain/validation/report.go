// Package validation runs the four-layer contract verifier. Every check
// always runs so a report is exhaustive; nothing short-circuits.
package validation

import (
	"planforge/domain/core"
)

// Severity ranks a failed check. Only CRITICAL failures block emission.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// Result is one check's outcome.
type Result struct {
	CheckID  string   `json:"check_id"`
	Passed   bool     `json:"passed"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Report aggregates every check run against one contract.
type Report struct {
	ContractID core.ContractID `json:"contract_id"`
	Results    []Result        `json:"results"`
}

// add records one result. Passed results keep their message empty.
func (r *Report) add(checkID string, passed bool, severity Severity, message string) {
	if passed {
		message = ""
	}
	r.Results = append(r.Results, Result{
		CheckID:  checkID,
		Passed:   passed,
		Severity: severity,
		Message:  message,
	})
}

// IsValid reports whether the contract may be emitted: true iff zero
// CRITICAL failures. Lower severities are reported but never block.
func (r *Report) IsValid() bool {
	return r.FailureCount(SeverityCritical) == 0
}

// FailureCount counts failed checks at one severity.
func (r *Report) FailureCount(severity Severity) int {
	n := 0
	for _, res := range r.Results {
		if !res.Passed && res.Severity == severity {
			n++
		}
	}
	return n
}

// Failures returns every failed check, in check order.
func (r *Report) Failures() []Result {
	var failed []Result
	for _, res := range r.Results {
		if !res.Passed {
			failed = append(failed, res)
		}
	}
	return failed
}

// PassRate returns the fraction of checks that passed, in [0,1].
func (r *Report) PassRate() float64 {
	if len(r.Results) == 0 {
		return 0
	}
	passed := 0
	for _, res := range r.Results {
		if res.Passed {
			passed++
		}
	}
	return float64(passed) / float64(len(r.Results))
}
