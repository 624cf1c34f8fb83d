package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"resumatch/resume-matcher/internal/models"
)

type stubResumeRepo struct {
	mu      sync.Mutex
	created []models.Resume
	err     error
}

func (s *stubResumeRepo) Create(resume *models.Resume) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if resume.ID == uuid.Nil {
		resume.ID = uuid.New()
	}
	s.created = append(s.created, *resume)
	return nil
}

func (s *stubResumeRepo) FindByID(id uuid.UUID) (*models.Resume, error) { return nil, nil }
func (s *stubResumeRepo) FindAll() ([]models.Resume, error)             { return nil, nil }
func (s *stubResumeRepo) Count() (int64, error)                        { return 0, nil }
func (s *stubResumeRepo) ExistingContentHashes() (map[string]bool, error) {
	return map[string]bool{}, nil
}
func (s *stubResumeRepo) UpdateAnalysisResults(id uuid.UUID, results models.AnalysisMap) error {
	return nil
}
func (s *stubResumeRepo) DeleteAll() error { return nil }

func (s *stubResumeRepo) createdCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.created)
}

type stubExtractorSvc struct {
	text string
	err  error
}

func (s *stubExtractorSvc) ExtractText(filePath string) (string, error) {
	return s.text, s.err
}

type stubParser struct {
	parsed *models.ParsedResume
	err    error
}

func (s *stubParser) ParseResume(ctx context.Context, resumeText string) (*models.ParsedResume, error) {
	return s.parsed, s.err
}

type stubEmbedder struct{}

func (stubEmbedder) Embed(ctx context.Context, text string) []float32 {
	return []float32{1, 0, 0}
}

type stubIndex struct {
	mu      sync.Mutex
	upserts int
}

func (s *stubIndex) InitCollection(ctx context.Context) error { return nil }
func (s *stubIndex) UpsertDocument(ctx context.Context, docID, docType, text string, embedding []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts++
	return nil
}
func (s *stubIndex) SearchSimilar(ctx context.Context, queryEmbedding []float32, docType string, limit int) ([]SearchResult, error) {
	return nil, nil
}
func (s *stubIndex) DeleteDocument(ctx context.Context, docID string) error { return nil }

func waitForJob(t *testing.T, w IngestWorker, jobID string) models.IngestStatus {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		status, ok := w.JobStatus(jobID)
		if ok && status.Status == models.IngestCompleted {
			return status
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("ingest job did not complete in time")
	return models.IngestStatus{}
}

func TestIngestWorkerProcessesBatch(t *testing.T) {
	repo := &stubResumeRepo{}
	index := &stubIndex{}
	w := NewIngestWorker(
		repo,
		&stubExtractorSvc{text: "Python developer, 5 years"},
		&stubParser{parsed: &models.ParsedResume{Name: "Dana Miller", Skills: []string{"Python"}}},
		stubEmbedder{},
		index,
		2,
		zap.NewNop(),
	)
	w.Start()
	defer w.Stop()

	jobID := w.EnqueueBatch([]IngestFile{
		{OriginalFilename: "dana.pdf", ContentHash: "h1"},
		{OriginalFilename: "other.pdf", ContentHash: "h2"},
	})

	status := waitForJob(t, w, jobID)
	if status.Progress != 2 || status.Total != 2 {
		t.Fatalf("status = %+v", status)
	}
	if repo.createdCount() != 2 {
		t.Fatalf("created %d resumes, want 2", repo.createdCount())
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, r := range repo.created {
		if r.CandidateName != "Dana Miller" {
			t.Errorf("CandidateName = %q, want parsed name", r.CandidateName)
		}
		if r.Text == "" || r.ContentHash == "" {
			t.Errorf("stored resume incomplete: %+v", r)
		}
	}

	index.mu.Lock()
	if index.upserts != 2 {
		t.Errorf("index upserts = %d, want 2", index.upserts)
	}
	index.mu.Unlock()
}

func TestIngestWorkerParseFailureStoresUnparsed(t *testing.T) {
	repo := &stubResumeRepo{}
	w := NewIngestWorker(
		repo,
		&stubExtractorSvc{text: "resume body"},
		&stubParser{err: errors.New("model down")},
		stubEmbedder{},
		&stubIndex{},
		1,
		zap.NewNop(),
	)
	w.Start()
	defer w.Stop()

	jobID := w.EnqueueBatch([]IngestFile{{OriginalFilename: "jane_doe-resume.pdf", ContentHash: "h"}})
	waitForJob(t, w, jobID)

	if repo.createdCount() != 1 {
		t.Fatalf("created %d resumes, want 1", repo.createdCount())
	}
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if got := repo.created[0].CandidateName; got != "jane doe resume" {
		t.Fatalf("CandidateName = %q, want filename-derived fallback", got)
	}
}

func TestIngestWorkerExtractFailureStillCompletes(t *testing.T) {
	repo := &stubResumeRepo{}
	w := NewIngestWorker(
		repo,
		&stubExtractorSvc{err: errors.New("corrupt file")},
		&stubParser{},
		stubEmbedder{},
		&stubIndex{},
		1,
		zap.NewNop(),
	)
	w.Start()
	defer w.Stop()

	jobID := w.EnqueueBatch([]IngestFile{{OriginalFilename: "broken.pdf"}})
	status := waitForJob(t, w, jobID)

	if status.Progress != 1 {
		t.Fatalf("failed file must still count toward progress: %+v", status)
	}
	if repo.createdCount() != 0 {
		t.Fatalf("created %d resumes, want 0", repo.createdCount())
	}
}

func TestIngestWorkerUnknownJob(t *testing.T) {
	w := NewIngestWorker(&stubResumeRepo{}, &stubExtractorSvc{}, &stubParser{}, stubEmbedder{}, &stubIndex{}, 1, zap.NewNop())
	if _, ok := w.JobStatus("nope"); ok {
		t.Fatal("unknown job must miss")
	}
}

func TestCandidateNameFromFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"jane_doe.pdf", "jane doe"},
		{"John-Smith-CV.pdf", "John Smith CV"},
		{"resume.txt", "resume"},
		{".pdf", "Unknown Candidate"},
		{"", "Unknown Candidate"},
	}
	for _, tt := range tests {
		if got := candidateNameFromFilename(tt.in); got != tt.want {
			t.Errorf("candidateNameFromFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
