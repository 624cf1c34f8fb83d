package services

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"resumatch/resume-matcher/internal/models"
)

type stubEvaluator struct {
	mu     sync.Mutex
	calls  int
	result *EvaluationResult
	err    error
	delay  time.Duration
}

func (s *stubEvaluator) Evaluate(ctx context.Context, jdText string, skills JobSkills, resumeText string) (*EvaluationResult, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubEvaluator) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func newTestOrchestrator(eval Evaluator) (*AnalysisOrchestrator, *stubPersister) {
	persister := &stubPersister{}
	cache := NewAnalysisCache(persister, zap.NewNop())
	return NewAnalysisOrchestrator(eval, cache, zap.NewNop()), persister
}

func testJD(required, nice []string) *models.JobDescription {
	return &models.JobDescription{
		ID:               uuid.New(),
		Title:            "Backend Engineer",
		Text:             "Backend role",
		RequiredSkills:   required,
		NiceToHaveSkills: nice,
		Embedding:        pgvector.NewVector([]float32{1, 0, 0}),
	}
}

func testResume() *models.Resume {
	return &models.Resume{
		ID:            uuid.New(),
		CandidateName: "Dana",
		Text:          "Python and Docker experience",
		Embedding:     pgvector.NewVector([]float32{1, 0, 0}),
	}
}

func TestEnsureAnalysisNoRequiredSkills(t *testing.T) {
	eval := &stubEvaluator{result: &EvaluationResult{}}
	o, persister := newTestOrchestrator(eval)

	rec := o.EnsureAnalysis(context.Background(), testResume(), testJD(nil, []string{"Go"}), AnalyzeOptions{})

	if rec.Score != 0 || rec.MatchRating != models.RatingWeak {
		t.Fatalf("rec = %+v, want score 0 / Weak", rec)
	}
	if rec.Rationale == nil || *rec.Rationale != noRequiredSkillsRationale {
		t.Fatalf("rationale = %v", rec.Rationale)
	}
	if rec.Similarity != nil || rec.AnalyzedAt != nil {
		t.Fatalf("short-circuit must not set similarity or timestamp: %+v", rec)
	}
	if eval.callCount() != 0 {
		t.Fatal("evaluator must not run without required skills")
	}
	if persister.calls != 0 {
		t.Fatal("short-circuit must not persist")
	}
}

func TestEnsureAnalysisComputesAndCaches(t *testing.T) {
	eval := &stubEvaluator{result: &EvaluationResult{
		MatchedSkills: []string{"python", "docker"},
		Rationale:     "good overlap",
	}}
	o, persister := newTestOrchestrator(eval)

	jd := testJD([]string{"Python", "SQL"}, []string{"Docker"})
	resume := testResume()

	first := o.EnsureAnalysis(context.Background(), resume, jd, AnalyzeOptions{})

	// 1/2 required * 90 + 1/1 nice * 10 = 55.
	if first.Score != 55 {
		t.Fatalf("Score = %v, want 55", first.Score)
	}
	if first.MatchRating != models.RatingGood {
		t.Fatalf("Rating = %v, want Good", first.MatchRating)
	}
	if want := []string{"Python", "Docker"}; !reflect.DeepEqual(first.MatchedSkills, want) {
		t.Fatalf("MatchedSkills = %v, want %v (job-list casing)", first.MatchedSkills, want)
	}
	if want := []string{"SQL"}; !reflect.DeepEqual(first.MissingSkills, want) {
		t.Fatalf("MissingSkills = %v, want %v", first.MissingSkills, want)
	}
	if first.Similarity == nil || *first.Similarity != 1 {
		t.Fatalf("Similarity = %v, want 1", first.Similarity)
	}
	if first.AnalyzedAt == nil {
		t.Fatal("AnalyzedAt must be set on the AI path")
	}
	if persister.calls != 1 {
		t.Fatalf("persister calls = %d, want 1", persister.calls)
	}

	second := o.EnsureAnalysis(context.Background(), resume, jd, AnalyzeOptions{})
	if eval.callCount() != 1 {
		t.Fatalf("evaluator calls = %d, want 1 (second call must reuse)", eval.callCount())
	}
	if second.Score != first.Score {
		t.Fatalf("reused record differs: %v vs %v", second.Score, first.Score)
	}
}

func TestEnsureAnalysisForceRecomputes(t *testing.T) {
	eval := &stubEvaluator{result: &EvaluationResult{MatchedSkills: []string{"Python"}}}
	o, _ := newTestOrchestrator(eval)

	jd := testJD([]string{"Python"}, nil)
	otherJD := testJD([]string{"Go"}, nil)
	resume := testResume()

	o.EnsureAnalysis(context.Background(), resume, jd, AnalyzeOptions{})
	o.EnsureAnalysis(context.Background(), resume, otherJD, AnalyzeOptions{})
	o.EnsureAnalysis(context.Background(), resume, jd, AnalyzeOptions{Force: true})

	if eval.callCount() != 3 {
		t.Fatalf("evaluator calls = %d, want 3", eval.callCount())
	}
	if len(resume.AnalysisResults) != 2 {
		t.Fatalf("force must only overwrite its own key, map: %v", resume.AnalysisResults)
	}
	if _, ok := resume.AnalysisResults[models.JobKey(otherJD.ID)]; !ok {
		t.Fatal("other job's record lost after force")
	}
}

func TestEnsureAnalysisEvaluatorFailureFallsBack(t *testing.T) {
	eval := &stubEvaluator{err: errors.New("quota exhausted")}
	o, _ := newTestOrchestrator(eval)

	jd := testJD([]string{"Python", "SQL"}, []string{"Docker"})
	resume := testResume()
	resume.Parsed = &models.ParsedResume{Skills: []string{"Python", "Docker", "Rust"}}

	rec := o.EnsureAnalysis(context.Background(), resume, jd, AnalyzeOptions{})

	if want := []string{"Python", "Docker"}; !reflect.DeepEqual(rec.MatchedSkills, want) {
		t.Fatalf("MatchedSkills = %v, want %v", rec.MatchedSkills, want)
	}
	if rec.Score != 55 {
		t.Fatalf("Score = %v, want 55", rec.Score)
	}
	if rec.Rationale == nil || *rec.Rationale != fallbackRationale {
		t.Fatalf("rationale = %v", rec.Rationale)
	}
	if rec.AnalyzedAt == nil {
		t.Fatal("fallback records still carry a timestamp")
	}
}

func TestEnsureAnalysisFallbackWithoutParsedSkills(t *testing.T) {
	eval := &stubEvaluator{err: errors.New("down")}
	o, _ := newTestOrchestrator(eval)

	rec := o.EnsureAnalysis(context.Background(), testResume(), testJD([]string{"Python"}, nil), AnalyzeOptions{})

	if rec.Score != 0 || rec.MatchRating != models.RatingWeak {
		t.Fatalf("rec = %+v, want 0 / Weak", rec)
	}
	if want := []string{"Python"}; !reflect.DeepEqual(rec.MissingSkills, want) {
		t.Fatalf("MissingSkills = %v, want %v", rec.MissingSkills, want)
	}
}

func TestEnsureAnalysisSkipAI(t *testing.T) {
	eval := &stubEvaluator{result: &EvaluationResult{MatchedSkills: []string{"Python"}}}
	o, _ := newTestOrchestrator(eval)

	rec := o.EnsureAnalysis(context.Background(), testResume(), testJD([]string{"Python"}, nil), AnalyzeOptions{SkipAI: true})

	if eval.callCount() != 0 {
		t.Fatal("SkipAI must not call the evaluator")
	}
	if rec.Rationale == nil || *rec.Rationale != skipAIRationale {
		t.Fatalf("rationale = %v", rec.Rationale)
	}
	if rec.Score != 0 {
		t.Fatalf("Score = %v, want 0 with an empty stand-in result", rec.Score)
	}
}

func TestEnsureAnalysisUnknownSkillPassesThrough(t *testing.T) {
	eval := &stubEvaluator{result: &EvaluationResult{
		MatchedSkills: []string{"python", "Terraform", "terraform"},
	}}
	o, _ := newTestOrchestrator(eval)

	rec := o.EnsureAnalysis(context.Background(), testResume(), testJD([]string{"Python"}, nil), AnalyzeOptions{})

	if want := []string{"Python", "Terraform"}; !reflect.DeepEqual(rec.MatchedSkills, want) {
		t.Fatalf("MatchedSkills = %v, want %v", rec.MatchedSkills, want)
	}
}

func TestEnsureAnalysisBoundaryScores(t *testing.T) {
	// 7 of 10 required * 90 = 63, 7 of 10 nice * 10 = 7, total exactly 70.
	required := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
	nice := []string{"k", "l", "m", "n", "o", "p", "q", "r", "s", "t"}
	eval := &stubEvaluator{result: &EvaluationResult{
		MatchedSkills: []string{"a", "b", "c", "d", "e", "f", "g", "k", "l", "m", "n", "o", "p", "q"},
	}}
	o, _ := newTestOrchestrator(eval)

	rec := o.EnsureAnalysis(context.Background(), testResume(), testJD(required, nice), AnalyzeOptions{})

	if rec.Score != 70 {
		t.Fatalf("Score = %v, want 70", rec.Score)
	}
	if rec.MatchRating != models.RatingGood {
		t.Fatalf("Rating = %v, want Good (70 is not Strong)", rec.MatchRating)
	}
}

func TestEnsureAnalysisConcurrentSingleCall(t *testing.T) {
	eval := &stubEvaluator{
		result: &EvaluationResult{MatchedSkills: []string{"Python"}},
		delay:  30 * time.Millisecond,
	}
	o, _ := newTestOrchestrator(eval)

	jd := testJD([]string{"Python"}, nil)
	resume := testResume()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o.EnsureAnalysis(context.Background(), resume, jd, AnalyzeOptions{})
		}()
	}
	wg.Wait()

	if eval.callCount() != 1 {
		t.Fatalf("evaluator calls = %d, want 1 for concurrent same-pair requests", eval.callCount())
	}
}
