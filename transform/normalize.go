// Package transform holds the merge core: name normalization, regional
// collapsing, grouping-key construction, conflict resolution and the
// merge engine that ties them together. Everything here is pure and
// deterministic; file IO lives in extract and load.
package transform

import (
	"regexp"
	"strings"
)

var (
	parenthesized = regexp.MustCompile(`\([^)]*\)`)
	qualityTokens = regexp.MustCompile(`\b(hd|uhd|4k|fhd|sd)\b`)
	// +1/+2 need explicit handling: \b never fires between a space and
	// a '+', so a plain word-boundary pattern would miss them.
	timeshiftTokens = regexp.MustCompile(`\b(east|west|timeshift)\b|\+[12]\b`)
	nonKeyChars     = regexp.MustCompile(`[^a-z0-9+ ]`)
	whitespace      = regexp.MustCompile(`\s+`)
)

// Normalizer canonicalizes raw display names into comparable form.
// The zero value works; extra tokens (provider tags such as "pluto" or
// "freeview") come from configuration via NewNormalizer.
type Normalizer struct {
	extraTokens *regexp.Regexp
}

// NewNormalizer returns a Normalizer that additionally strips the given
// tokens as whole words. Tokens are matched literally, case folded.
func NewNormalizer(extraTokens []string) *Normalizer {
	n := &Normalizer{}
	var quoted []string
	for _, t := range extraTokens {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			quoted = append(quoted, regexp.QuoteMeta(t))
		}
	}
	if len(quoted) > 0 {
		n.extraTokens = regexp.MustCompile(`\b(` + strings.Join(quoted, "|") + `)\b`)
	}
	return n
}

// Normalize canonicalizes a raw display name. Empty or whitespace-only
// input yields the empty string, which callers must treat as invalid.
// The result is idempotent: Normalize(Normalize(x)) == Normalize(x).
func (n *Normalizer) Normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	s = parenthesized.ReplaceAllString(s, " ")
	if n.extraTokens != nil {
		s = n.extraTokens.ReplaceAllString(s, " ")
	}
	s = qualityTokens.ReplaceAllString(s, " ")
	s = timeshiftTokens.ReplaceAllString(s, " ")
	s = nonKeyChars.ReplaceAllString(s, " ")
	return CollapseSpaces(s)
}

// StripTimeshift removes timeshift tokens exposed after regional
// collapsing and re-collapses whitespace. Used by the key builder for
// its second pass.
func StripTimeshift(s string) string {
	return CollapseSpaces(timeshiftTokens.ReplaceAllString(s, " "))
}

// CollapseSpaces squeezes runs of whitespace to one space and trims.
func CollapseSpaces(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}
