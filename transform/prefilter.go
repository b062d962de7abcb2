package transform

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ajpearen/lineup-etl/channel"
)

// PreferredRule is one row of the hand-maintained preferred-channels
// list: identity, naming aliases and category metadata for a channel
// the operator cares about.
type PreferredRule struct {
	ID         string
	Name       string
	AltNames   []string
	Network    string
	Country    string
	Categories []string
	Preferred  bool
}

type nameCountryKey struct {
	name    string
	country string
}

// PreFilter annotates candidates against the preferred-channels list
// and drops those whose categories are excluded. It runs strictly
// before the merge engine; the merge core never consults categories.
type PreFilter struct {
	byID          map[string]PreferredRule
	byNameCountry map[nameCountryKey]PreferredRule
	exclude       map[string]bool
	norm          *Normalizer
	logger        *slog.Logger
}

// NewPreFilter indexes rules by id and by (normalized name, country),
// alt names included. First occurrence wins on key collisions, same as
// everywhere else in the pipeline.
func NewPreFilter(rules []PreferredRule, excludeCategories []string, norm *Normalizer, logger *slog.Logger) *PreFilter {
	f := &PreFilter{
		byID:          make(map[string]PreferredRule),
		byNameCountry: make(map[nameCountryKey]PreferredRule),
		exclude:       make(map[string]bool),
		norm:          norm,
		logger:        logger,
	}
	for _, cat := range excludeCategories {
		cat = strings.ToLower(strings.TrimSpace(cat))
		if cat != "" {
			f.exclude[cat] = true
		}
	}
	for _, r := range rules {
		if r.ID != "" {
			if _, dup := f.byID[r.ID]; !dup {
				f.byID[r.ID] = r
			}
		}
		country := strings.ToUpper(strings.TrimSpace(r.Country))
		for _, name := range append([]string{r.Name}, r.AltNames...) {
			n := norm.Normalize(name)
			if n == "" {
				continue
			}
			key := nameCountryKey{name: n, country: country}
			if _, dup := f.byNameCountry[key]; !dup {
				f.byNameCountry[key] = r
			}
		}
	}
	return f
}

// Match finds the preferred rule for a candidate: by external id first,
// then by (normalized name, country), then by name alone.
func (f *PreFilter) Match(c channel.Candidate) (PreferredRule, bool) {
	if c.ExternalID != "" {
		if r, ok := f.byID[c.ExternalID]; ok {
			return r, true
		}
	}
	n := f.norm.Normalize(c.DisplayName)
	if n == "" {
		return PreferredRule{}, false
	}
	if r, ok := f.byNameCountry[nameCountryKey{name: n, country: string(c.Country)}]; ok {
		return r, true
	}
	if r, ok := f.byNameCountry[nameCountryKey{name: n}]; ok {
		return r, true
	}
	return PreferredRule{}, false
}

// Apply returns the candidates that survive category exclusion plus a
// problem row for each one dropped. Channels explicitly marked
// preferred are never dropped, whatever their categories say.
func (f *PreFilter) Apply(candidates []channel.Candidate) ([]channel.Candidate, []channel.Problem) {
	if len(f.exclude) == 0 && len(f.byID) == 0 && len(f.byNameCountry) == 0 {
		return candidates, nil
	}

	kept := make([]channel.Candidate, 0, len(candidates))
	var dropped []channel.Problem
	matched := 0

	for _, c := range candidates {
		rule, ok := f.Match(c)
		if !ok {
			kept = append(kept, c)
			continue
		}
		matched++
		if !rule.Preferred && f.excluded(rule.Categories) {
			dropped = append(dropped, channel.FromCandidate(c, channel.ProblemExcludedCategory))
			continue
		}
		kept = append(kept, c)
	}

	f.logger.Info(fmt.Sprintf("Preferred matches: %d, excluded by category: %d", matched, len(dropped)))
	return kept, dropped
}

func (f *PreFilter) excluded(categories []string) bool {
	for _, cat := range categories {
		if f.exclude[strings.ToLower(strings.TrimSpace(cat))] {
			return true
		}
	}
	return false
}
