package transform

import "github.com/ajpearen/lineup-etl/channel"

// DefaultPriority is assigned to sites missing from the priority table.
// Lower numbers are more authoritative, so unmapped sites lose to every
// configured one.
const DefaultPriority = 99

// Resolver picks the winner between two candidates that share a
// grouping key. The precedence is fixed and evaluated in order:
//
//  1. external-id presence: an incoming candidate that carries an id
//     beats an existing one that does not
//  2. source priority: strictly lower number wins
//  3. first-seen: the existing candidate is retained
//
// Rule 3 makes the outcome deterministic for any tie, provided the
// caller feeds candidates in a fixed source order.
type Resolver struct {
	priorities      map[string]int
	defaultPriority int
}

func NewResolver(priorities map[string]int, defaultPriority int) *Resolver {
	if defaultPriority <= 0 {
		defaultPriority = DefaultPriority
	}
	return &Resolver{priorities: priorities, defaultPriority: defaultPriority}
}

// SitePriority returns the configured trust ranking for a site.
func (r *Resolver) SitePriority(site string) int {
	if p, ok := r.priorities[site]; ok {
		return p
	}
	return r.defaultPriority
}

// Resolve returns the winner, the loser, and the rule that decided.
func (r *Resolver) Resolve(existing, incoming channel.Candidate) (winner, loser channel.Candidate, rule channel.DecisionRule) {
	if existing.ExternalID == "" && incoming.ExternalID != "" {
		return incoming, existing, channel.RuleExternalID
	}

	pe, pi := r.SitePriority(existing.Site), r.SitePriority(incoming.Site)
	switch {
	case pi < pe:
		return incoming, existing, channel.RuleSitePriority
	case pe < pi:
		return existing, incoming, channel.RuleSitePriority
	}

	return existing, incoming, channel.RuleFirstSeen
}
