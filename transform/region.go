package transform

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/ajpearen/lineup-etl/channel"
)

// RegionRules implements the per-country collapse policies plus the
// local-keep override. UK and AU names have their region/city qualifier
// tokens stripped so "BBC One London" and "BBC One Yorkshire" group
// together; CA/US locals stay individually addressable, so everything
// that is not UK or AU passes through untouched.
type RegionRules struct {
	uk        *regexp.Regexp
	au        *regexp.Regexp
	localKeep []*regexp.Regexp
}

// NewRegionRules compiles the configured token lists and local-keep
// patterns. A malformed local-keep pattern is logged and skipped; one
// bad pattern must never take down the whole pass.
func NewRegionRules(ukTokens, auTokens, localKeepPatterns []string, logger *slog.Logger) *RegionRules {
	r := &RegionRules{
		uk: tokenPattern(ukTokens),
		au: tokenPattern(auTokens),
	}
	for _, p := range localKeepPatterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		re, err := regexp.Compile(p)
		if err != nil {
			logger.Warn(fmt.Sprintf("Skipping malformed local-keep pattern %q: %v", p, err))
			continue
		}
		r.localKeep = append(r.localKeep, re)
	}
	return r
}

// tokenPattern builds a whole-word alternation for a token list.
// Returns nil when the list is empty.
func tokenPattern(tokens []string) *regexp.Regexp {
	var quoted []string
	for _, t := range tokens {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			quoted = append(quoted, regexp.QuoteMeta(t))
		}
	}
	if len(quoted) == 0 {
		return nil
	}
	return regexp.MustCompile(`\b(` + strings.Join(quoted, "|") + `)\b`)
}

// LocalKeep reports whether the normalized name matches one of the
// configured regional-affiliate patterns that must never be collapsed.
func (r *RegionRules) LocalKeep(normalized string) bool {
	for _, re := range r.localKeep {
		if re.MatchString(normalized) {
			return true
		}
	}
	return false
}

// Collapse strips the region tokens for the candidate's country.
// Identity for every country without a configured token list.
func (r *RegionRules) Collapse(normalized string, country channel.Country) string {
	var re *regexp.Regexp
	switch country {
	case channel.CountryUK:
		re = r.uk
	case channel.CountryAU:
		re = r.au
	default:
		return normalized
	}
	if re == nil {
		return normalized
	}
	return CollapseSpaces(re.ReplaceAllString(normalized, " "))
}
