package transform

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/ajpearen/lineup-etl/channel"
)

// Engine runs the validate -> key -> resolve loop over a pooled
// candidate list. It owns the key->winner map for the duration of one
// Merge call; nothing is shared across calls.
type Engine struct {
	keys     *KeyBuilder
	resolver *Resolver
	logger   *slog.Logger
	// preserveOriginalNaming passes display names through verbatim.
	// When false, names are re-titled word by word on emission.
	preserveOriginalNaming bool
}

func NewEngine(keys *KeyBuilder, resolver *Resolver, preserveOriginalNaming bool, logger *slog.Logger) *Engine {
	return &Engine{
		keys:                   keys,
		resolver:               resolver,
		preserveOriginalNaming: preserveOriginalNaming,
		logger:                 logger,
	}
}

// Result carries everything one merge pass produces.
type Result struct {
	Channels  []channel.FinalChannel
	Decisions []channel.MergeDecision
	Problems  []channel.Problem
}

// Merge deduplicates candidates in input order. Invalid candidates are
// routed to the problem side-channel, never silently dropped. The final
// channel list is sorted by (site, lowercased name) so two runs over
// the same candidate set emit byte-identical artifacts.
func (e *Engine) Merge(candidates []channel.Candidate) Result {
	var res Result
	winners := make(map[string]channel.Candidate)
	order := make([]string, 0, len(candidates))

	for _, c := range candidates {
		key, problem := e.validate(c)
		if problem != "" {
			res.Problems = append(res.Problems, channel.FromCandidate(c, problem))
			if problem != channel.ProblemMissingSite {
				continue
			}
			// Site-less candidates are flagged but still merged; they
			// carry the default priority and lose every priority tie.
		}

		existing, seen := winners[key]
		if !seen {
			winners[key] = c
			order = append(order, key)
			continue
		}

		winner, loser, rule := e.resolver.Resolve(existing, c)
		winners[key] = winner
		res.Decisions = append(res.Decisions, channel.MergeDecision{
			Key:     key,
			Kept:    winner,
			Dropped: loser,
			Rule:    rule,
		})
	}

	res.Channels = make([]channel.FinalChannel, 0, len(winners))
	for _, key := range order {
		res.Channels = append(res.Channels, e.project(winners[key]))
	}
	sort.Slice(res.Channels, func(i, j int) bool {
		a, b := res.Channels[i], res.Channels[j]
		if a.Site != b.Site {
			return a.Site < b.Site
		}
		return strings.ToLower(a.DisplayName) < strings.ToLower(b.DisplayName)
	})

	e.logger.Info(fmt.Sprintf("Merged %d candidates into %d unique channels", len(candidates), len(res.Channels)))
	e.logger.Info(fmt.Sprintf("Duplicates collapsed: %d, problem rows: %d", len(res.Decisions), len(res.Problems)))

	return res
}

// validate returns the candidate's grouping key, or a problem reason.
// A missing_site reason comes with a usable key; the caller decides
// whether to proceed.
func (e *Engine) validate(c channel.Candidate) (key, problem string) {
	if strings.TrimSpace(c.DisplayName) == "" {
		return "", channel.ProblemMissingName
	}
	key, ok := e.keys.Build(c)
	if !ok {
		return "", channel.ProblemBadNormalization
	}
	if strings.TrimSpace(c.Site) == "" {
		return key, channel.ProblemMissingSite
	}
	return key, ""
}

func (e *Engine) project(c channel.Candidate) channel.FinalChannel {
	name := c.DisplayName
	if !e.preserveOriginalNaming {
		name = titleCase(name)
	}
	return channel.FinalChannel{
		Site:        c.Site,
		ExternalID:  c.ExternalID,
		SiteLocalID: c.SiteLocalID,
		Lang:        c.Lang,
		DisplayName: name,
	}
}

// titleCase uppercases the first letter of each space-separated word.
// ASCII only; lineup names are ASCII by contract.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
