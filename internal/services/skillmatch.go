package services

import (
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// DefaultFuzzyThreshold is the partial-ratio cutoff (0-100 scale) above which
// a skill label counts as present in a document.
const DefaultFuzzyThreshold = 85

// SkillMatcher decides whether individual skill labels appear in a normalized
// document, using an exact substring check first and a fuzzy partial ratio as
// fallback for spelling variants.
type SkillMatcher struct {
	threshold int
}

func NewSkillMatcher(threshold int) *SkillMatcher {
	if threshold <= 0 || threshold > 100 {
		threshold = DefaultFuzzyThreshold
	}
	return &SkillMatcher{threshold: threshold}
}

// Matches reports whether skill appears in the normalized haystack text.
// An empty skill label never matches.
func (m *SkillMatcher) Matches(haystack, skill string) bool {
	skill = strings.ToLower(strings.TrimSpace(skill))
	if skill == "" {
		return false
	}
	haystack = strings.ToLower(haystack)
	if strings.Contains(haystack, skill) {
		return true
	}
	if haystack == "" {
		return false
	}
	return fuzzy.PartialRatio(skill, haystack) >= m.threshold
}

// MatchSkillSet partitions skills into matched and missing, preserving input
// order. Every label lands in exactly one of the two slices.
func (m *SkillMatcher) MatchSkillSet(haystack string, skills []string) (matched, missing []string) {
	matched = make([]string, 0, len(skills))
	missing = make([]string, 0, len(skills))
	for _, skill := range skills {
		if m.Matches(haystack, skill) {
			matched = append(matched, skill)
		} else {
			missing = append(missing, skill)
		}
	}
	return matched, missing
}

// DedupeSkills drops case-insensitive duplicates, keeping the first occurrence
// and its casing.
func DedupeSkills(skills []string) []string {
	seen := make(map[string]bool, len(skills))
	out := make([]string, 0, len(skills))
	for _, skill := range skills {
		low := strings.ToLower(skill)
		if low == "" || seen[low] {
			continue
		}
		seen[low] = true
		out = append(out, skill)
	}
	return out
}
