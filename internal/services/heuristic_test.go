package services

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"resumatch/resume-matcher/internal/models"
)

func testScorer() *HeuristicScorer {
	return NewHeuristicScorer(NewSkillMatcher(DefaultFuzzyThreshold))
}

func TestHeuristicScorerPartialCoverage(t *testing.T) {
	jd := &models.JobDescription{
		Title:            "Backend Engineer",
		Text:             "We need a backend engineer with Python, SQL and Docker.",
		RequiredSkills:   []string{"Python", "SQL", "Docker"},
		NiceToHaveSkills: []string{"Kubernetes"},
	}
	resume := &models.Resume{
		CandidateName: "Dana",
		Text:          "Backend engineer with 5 years of experience in Python and SQL.",
	}

	got := testScorer().Score(jd, resume)

	if want := []string{"Python", "SQL"}; !reflect.DeepEqual(got.MatchedRequired, want) {
		t.Errorf("MatchedRequired = %v, want %v", got.MatchedRequired, want)
	}
	if want := []string{"Docker"}; !reflect.DeepEqual(got.MissingRequired, want) {
		t.Errorf("MissingRequired = %v, want %v", got.MissingRequired, want)
	}
	if len(got.MatchedNice) != 0 {
		t.Errorf("MatchedNice = %v, want empty", got.MatchedNice)
	}

	// Required coverage 2/3 and experience 5/10 alone contribute 39.17; the
	// lexical term can add up to 20 more.
	floor := 100 * (weightRequired*2.0/3.0 + weightExperience*0.5)
	if got.Score < math.Floor(floor) || got.Score > floor+100*weightLexical {
		t.Errorf("Score = %v, want within [%v, %v]", got.Score, math.Floor(floor), floor+100*weightLexical)
	}

	if got.Similarity <= 0 {
		t.Errorf("Similarity = %v, want > 0 for overlapping texts", got.Similarity)
	}
	if !strings.HasPrefix(got.ResumeExcerpt, "Backend engineer") {
		t.Errorf("ResumeExcerpt = %q", got.ResumeExcerpt)
	}
}

func TestHeuristicScorerDeterministic(t *testing.T) {
	jd := &models.JobDescription{
		Text:           "Python and Docker role",
		RequiredSkills: []string{"Python", "Docker"},
	}
	resume := &models.Resume{Text: "Python developer, 3 years"}

	first := testScorer().Score(jd, resume)
	for i := 0; i < 5; i++ {
		if got := testScorer().Score(jd, resume); got.Score != first.Score {
			t.Fatalf("run %d: Score = %v, want %v", i, got.Score, first.Score)
		}
	}
}

func TestHeuristicScorerNoRequiredSkills(t *testing.T) {
	jd := &models.JobDescription{Text: "vague posting"}
	resume := &models.Resume{Text: "some resume text"}

	got := testScorer().Score(jd, resume)

	if len(got.MatchedRequired) != 0 || len(got.MissingRequired) != 0 {
		t.Errorf("no required skills must yield empty partitions, got %v / %v",
			got.MatchedRequired, got.MissingRequired)
	}
	if got.Score < 0 || got.Score > 100 {
		t.Errorf("Score = %v out of [0,100]", got.Score)
	}
}

func TestHeuristicScorerDuplicateSkillsCountedOnce(t *testing.T) {
	jd := &models.JobDescription{
		Text:           "Python role",
		RequiredSkills: []string{"Python", "python", "PYTHON"},
	}
	resume := &models.Resume{Text: "I write Python."}

	got := testScorer().Score(jd, resume)
	if len(got.MatchedRequired) != 1 {
		t.Fatalf("duplicates must collapse, got %v", got.MatchedRequired)
	}
}

func TestExperienceFactor(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"no mention", "python developer", 0},
		{"five years", "5 years of Go", 0.5},
		{"yrs abbreviation", "7 yrs backend", 0.7},
		{"plus sign", "10+ years of experience", 1},
		{"capped", "30 years of COBOL", 1},
		{"decimal", "2.5 years", 0.25},
		{"takes max", "2 years of SQL, 8 years of Python", 0.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := experienceFactor(tt.text)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("experienceFactor(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
