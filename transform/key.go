package transform

import "github.com/ajpearen/lineup-etl/channel"

// KeyBuilder combines normalization, regional collapsing and the
// external-id suffix into the grouping key used for dedupe. Two
// candidates with equal keys are considered the same channel.
type KeyBuilder struct {
	norm  *Normalizer
	rules *RegionRules
}

func NewKeyBuilder(norm *Normalizer, rules *RegionRules) *KeyBuilder {
	return &KeyBuilder{norm: norm, rules: rules}
}

// Build returns the grouping key for c, or ok=false when the display
// name normalizes to nothing and the candidate cannot be keyed.
//
// Local-keep candidates bypass collapsing entirely: their full
// normalized name, city token included, is the grouping input. For
// everything else a second timeshift pass runs after the region tokens
// are gone, catching feed markers that only become word-adjacent once
// the city token is removed. A non-empty external id is appended as a
// disambiguating suffix so two genuinely distinct channels that happen
// to normalize identically stay apart.
func (k *KeyBuilder) Build(c channel.Candidate) (key string, ok bool) {
	n := k.norm.Normalize(c.DisplayName)
	if n == "" {
		return "", false
	}

	collapsed := n
	if !k.rules.LocalKeep(n) {
		collapsed = k.rules.Collapse(n, c.Country)
		collapsed = StripTimeshift(collapsed)
		if collapsed == "" {
			// All tokens were regional qualifiers; fall back to the
			// normalized name rather than grouping unrelated channels
			// under an empty key.
			collapsed = n
		}
	}

	if c.ExternalID != "" {
		return collapsed + "|" + c.ExternalID, true
	}
	return collapsed, true
}
