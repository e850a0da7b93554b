// Package brand reduces messy multi-brand strings from the upstream catalog
// to a single canonical display brand.
package brand

import (
	"regexp"
	"strings"
	"unicode"
)

// Trace records which cleaning steps changed the value, for stats and
// debugging of the cleaning rules.
type Trace struct {
	Cleaned        bool `json:"cleaned,omitempty"`
	PrimaryPicked  bool `json:"primary_picked,omitempty"`
	CaseNormalized bool `json:"case_normalized,omitempty"`
	Mapped         bool `json:"mapped,omitempty"`
	Truncated      bool `json:"truncated,omitempty"`
}

// Operations lists the names of the steps that fired, in order.
func (t Trace) Operations() []string {
	var ops []string
	if t.Cleaned {
		ops = append(ops, "basic_clean")
	}
	if t.PrimaryPicked {
		ops = append(ops, "primary_extraction")
	}
	if t.CaseNormalized {
		ops = append(ops, "case_normalization")
	}
	if t.Mapped {
		ops = append(ops, "canonical_mapping")
	}
	if t.Truncated {
		ops = append(ops, "final_validation")
	}
	return ops
}

// Canonicalizer applies the five-step brand cleaning sequence using a loaded
// set of reference tables.
type Canonicalizer struct {
	tables *Tables
}

func NewCanonicalizer(tables *Tables) *Canonicalizer {
	return &Canonicalizer{tables: tables}
}

const maxBrandLength = 50

var (
	whitespaceRe  = regexp.MustCompile(`\s+`)
	commaSpacesRe = regexp.MustCompile(`\s*,\s*`)
	quotesRe      = regexp.MustCompile(`["']`)
	// \p{L}/\p{N} rather than \w: accented letters must survive cleaning.
	nonLatinRe    = regexp.MustCompile(`[^\p{L}\p{N}\s',&!.-]`)
	digitRe       = regexp.MustCompile(`\d`)
	corpTokenRe   = regexp.MustCompile(`\b(ab|ltd|inc|corp)\b`)
)

// Canonicalize runs the full cleaning sequence. It is idempotent: feeding a
// canonical brand back in returns it unchanged.
func (c *Canonicalizer) Canonicalize(raw string) (string, Trace) {
	var trace Trace

	cleaned := c.basicClean(raw)
	if cleaned != raw {
		trace.Cleaned = true
	}
	if cleaned == "" {
		return "", trace
	}

	primary, picked := c.extractPrimary(cleaned)
	trace.PrimaryPicked = picked

	cased := c.normalizeCase(primary)
	if cased != primary {
		trace.CaseNormalized = true
	}

	mapped := c.applyCanonicalMapping(cased)
	if mapped != cased {
		trace.Mapped = true
	}

	final := c.finalValidation(mapped)
	if final != mapped {
		trace.Truncated = true
	}

	return final, trace
}

// basicClean normalizes whitespace, escapes and stray punctuation while
// preserving commas, which still separate brand candidates at this point.
func (c *Canonicalizer) basicClean(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, `\'`, "'")
	s = whitespaceRe.ReplaceAllString(s, " ")
	s = commaSpacesRe.ReplaceAllString(s, ",")
	// Quote characters get removed before the character filter so quoted
	// brands keep their inner text.
	s = quotesRe.ReplaceAllString(s, "")
	s = nonLatinRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// extractPrimary picks the most brand-like candidate from a comma-separated
// list. Parent companies and generic nouns never win while a real brand is
// present.
func (c *Canonicalizer) extractPrimary(cleaned string) (string, bool) {
	parts := splitCandidates(cleaned)
	if len(parts) == 0 {
		return cleaned, false
	}
	if len(parts) == 1 {
		return parts[0], false
	}

	best := ""
	bestScore := 0
	for i, part := range parts {
		lower := strings.ToLower(part)
		if c.tables.isParentCompany(lower) {
			continue
		}
		if len([]rune(part)) < 2 || c.tables.isGenericTerm(lower) {
			continue
		}

		score := c.tables.priorityFor(lower)
		if i == 0 {
			score += 10
		}
		if len([]rune(part)) > 30 {
			score -= 20
		}
		if digitRe.MatchString(part) || corpTokenRe.MatchString(lower) {
			score -= 15
		}

		if best == "" || score > bestScore {
			best = part
			bestScore = score
		}
	}

	if best != "" {
		return best, true
	}

	// Everything was filtered: fall back to the first non-parent part,
	// and failing that the first part as-is.
	for _, part := range parts {
		if !c.tables.isParentCompany(strings.ToLower(part)) {
			return part, true
		}
	}
	return parts[0], true
}

func splitCandidates(s string) []string {
	var parts []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// normalizeCase restores the known display form of a brand, or falls back to
// a brand-aware title case.
func (c *Canonicalizer) normalizeCase(s string) string {
	lower := strings.ToLower(s)

	if display, ok := c.tables.DisplayForms[lower]; ok {
		return display
	}

	// Partial containment only counts when the known spelling covers most
	// of the candidate, so "Kinder" does not swallow "Kinder Milk Slice".
	candidateLen := len([]rune(lower))
	for pattern, display := range c.tables.DisplayForms {
		if strings.Contains(lower, pattern) && len([]rune(pattern))*10 >= candidateLen*7 {
			return display
		}
	}

	return titleCaseBrand(s)
}

// titleCaseBrand capitalizes each word, keeping apostrophe tails lowercase
// ("d'or" -> "D'or") and short &-tokens fully uppercase ("m&ms" -> "M&MS").
func titleCaseBrand(s string) string {
	words := strings.Split(strings.ToLower(s), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		if strings.Contains(w, "&") && len([]rune(w)) <= 4 {
			words[i] = strings.ToUpper(w)
			continue
		}
		if idx := strings.Index(w, "'"); idx > 0 {
			words[i] = capitalize(w[:idx]) + w[idx:]
			continue
		}
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

func capitalize(w string) string {
	runes := []rune(w)
	if len(runes) == 0 {
		return w
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// applyCanonicalMapping collapses known aliases onto the canonical brand.
// Exact lookup first, then a fuzzy pass tolerating spacing differences or a
// single differing character.
func (c *Canonicalizer) applyCanonicalMapping(s string) string {
	lower := strings.ToLower(s)

	if canonical, ok := c.tables.CanonicalMap[lower]; ok {
		return canonical
	}

	stripped := strings.ReplaceAll(lower, " ", "")
	for alias, canonical := range c.tables.CanonicalMap {
		if strings.ReplaceAll(alias, " ", "") == stripped {
			return canonical
		}
		if oneCharApart(lower, alias) {
			return canonical
		}
	}

	return s
}

// oneCharApart reports whether two equal-length strings differ in exactly
// one character.
func oneCharApart(a, b string) bool {
	ra, rb := []rune(a), []rune(b)
	if len(ra) != len(rb) {
		return false
	}
	diff := 0
	for i := range ra {
		if ra[i] != rb[i] {
			diff++
			if diff > 1 {
				return false
			}
		}
	}
	return diff == 1
}

// finalValidation strips trailing punctuation and bounds the result length.
func (c *Canonicalizer) finalValidation(s string) string {
	s = strings.TrimSpace(strings.TrimRight(s, ".,;:"))
	runes := []rune(s)
	if len(runes) > maxBrandLength {
		words := strings.Fields(s)
		if len(words) > 1 {
			if len(words) > 3 {
				words = words[:3]
			}
			s = strings.Join(words, " ")
		} else {
			s = string(runes[:maxBrandLength-3]) + "..."
		}
	}
	return strings.TrimSpace(s)
}
