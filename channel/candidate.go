// Package channel defines the records exchanged between the lineup
// pipeline stages: raw candidates from the source loaders, the final
// merged channels, and the audit rows produced along the way.
package channel

import "strings"

// Country codes the regional collapse rules care about. Anything else
// maps to CountryUnknown and is left alone by the collapser.
type Country string

const (
	CountryAU      Country = "AU"
	CountryUK      Country = "UK"
	CountryUS      Country = "US"
	CountryCA      Country = "CA"
	CountryUnknown Country = ""
)

// ParseCountry maps a free-form country column value onto a Country.
// "GB" is accepted as an alias for UK since several sources use it.
func ParseCountry(s string) Country {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "AU":
		return CountryAU
	case "UK", "GB":
		return CountryUK
	case "US":
		return CountryUS
	case "CA":
		return CountryCA
	default:
		return CountryUnknown
	}
}

// Candidate is one observed channel record from one source, prior to
// dedup. Candidates are immutable once created by a loader.
type Candidate struct {
	DisplayName string
	Site        string
	ExternalID  string
	SiteLocalID string
	Lang        string
	Country     Country
	// SourceTag names the loader/collection that produced this
	// candidate. Diagnostics only; never part of the grouping key.
	SourceTag string
}

// FinalChannel is the winning candidate per grouping key, projected
// into the output shape. DisplayName is always non-empty.
type FinalChannel struct {
	Site        string
	ExternalID  string
	SiteLocalID string
	Lang        string
	DisplayName string
}

// DecisionRule identifies which precedence rule picked the winner of a
// key collision.
type DecisionRule string

const (
	RuleExternalID   DecisionRule = "external_id"
	RuleSitePriority DecisionRule = "site_priority"
	RuleFirstSeen    DecisionRule = "first_seen"
)

// MergeDecision is one audit row, produced once per losing candidate.
type MergeDecision struct {
	Key     string
	Kept    Candidate
	Dropped Candidate
	Rule    DecisionRule
}

// Problem reasons. MissingName and BadNormalization exclude the
// candidate from the merge; the others are recorded for the operator
// but the candidate stays in the run.
const (
	ProblemMissingName      = "missing_name"
	ProblemMissingSite      = "missing_site"
	ProblemBadNormalization = "bad_normalization"
	ProblemExcludedCategory = "excluded_category"
)

// Problem is one row of the problem artifact.
type Problem struct {
	Name       string
	Site       string
	ExternalID string
	SourceTag  string
	Reason     string
}

// FromCandidate builds a Problem row for c with the given reason.
func FromCandidate(c Candidate, reason string) Problem {
	return Problem{
		Name:       c.DisplayName,
		Site:       c.Site,
		ExternalID: c.ExternalID,
		SourceTag:  c.SourceTag,
		Reason:     reason,
	}
}
