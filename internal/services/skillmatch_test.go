package services

import (
	"reflect"
	"testing"
)

func TestSkillMatcherMatches(t *testing.T) {
	m := NewSkillMatcher(DefaultFuzzyThreshold)
	haystack := NormalizeText("Experienced Python developer, PostgreSQL and Kubernetes. Built CI/CD pipelines.")

	tests := []struct {
		name  string
		skill string
		want  bool
	}{
		{"exact substring", "Python", true},
		{"case insensitive", "KUBERNETES", true},
		{"symbolic skill", "CI/CD", true},
		{"fuzzy variant", "Postgres", true},
		{"absent skill", "Haskell", false},
		{"empty skill", "", false},
		{"whitespace only skill", "   ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Matches(haystack, tt.skill); got != tt.want {
				t.Fatalf("Matches(%q) = %v, want %v", tt.skill, got, tt.want)
			}
		})
	}
}

func TestSkillMatcherEmptyHaystack(t *testing.T) {
	m := NewSkillMatcher(DefaultFuzzyThreshold)
	if m.Matches("", "python") {
		t.Fatal("empty haystack must not match")
	}
}

func TestMatchSkillSetPartition(t *testing.T) {
	m := NewSkillMatcher(DefaultFuzzyThreshold)
	haystack := NormalizeText("python and sql background")

	matched, missing := m.MatchSkillSet(haystack, []string{"Python", "Docker", "SQL", "Go"})

	if want := []string{"Python", "SQL"}; !reflect.DeepEqual(matched, want) {
		t.Errorf("matched = %v, want %v", matched, want)
	}
	if want := []string{"Docker", "Go"}; !reflect.DeepEqual(missing, want) {
		t.Errorf("missing = %v, want %v", missing, want)
	}
	if len(matched)+len(missing) != 4 {
		t.Errorf("every skill must land in exactly one slice")
	}
}

func TestNewSkillMatcherInvalidThreshold(t *testing.T) {
	for _, threshold := range []int{0, -5, 101} {
		m := NewSkillMatcher(threshold)
		if m.threshold != DefaultFuzzyThreshold {
			t.Errorf("threshold %d should fall back to default, got %d", threshold, m.threshold)
		}
	}
}

func TestDedupeSkills(t *testing.T) {
	got := DedupeSkills([]string{"Python", "python", "", "SQL", "PYTHON", "sql", "Go"})
	want := []string{"Python", "SQL", "Go"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("DedupeSkills = %v, want %v", got, want)
	}
}
