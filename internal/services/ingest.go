package services

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"resumatch/resume-matcher/internal/models"
	"resumatch/resume-matcher/internal/repositories"
)

// IngestFile describes one stored upload queued for background processing.
type IngestFile struct {
	StoredFilename   string
	FilePath         string
	OriginalFilename string
	MimeType         string
	ContentHash      string
}

type ingestTask struct {
	jobID string
	file  IngestFile
}

// IngestWorker processes uploaded resumes in the background: text extraction,
// AI parsing, embedding, persistence and vector indexing. Upload handlers
// enqueue batches and poll job status.
type IngestWorker interface {
	Start()
	Stop()
	EnqueueBatch(files []IngestFile) string
	JobStatus(jobID string) (models.IngestStatus, bool)
}

type jobProgress struct {
	total int
	done  int
}

type ingestWorker struct {
	resumeRepo repositories.ResumeRepository
	extractor  TextExtractor
	parser     ResumeParser
	embedder   Embedder
	index      VectorIndex
	logger     *zap.Logger

	taskQueue   chan ingestTask
	concurrency int
	wg          sync.WaitGroup
	stopChan    chan struct{}

	mu   sync.Mutex
	jobs map[string]*jobProgress
}

func NewIngestWorker(
	resumeRepo repositories.ResumeRepository,
	extractor TextExtractor,
	parser ResumeParser,
	embedder Embedder,
	index VectorIndex,
	concurrency int,
	logger *zap.Logger,
) IngestWorker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &ingestWorker{
		resumeRepo:  resumeRepo,
		extractor:   extractor,
		parser:      parser,
		embedder:    embedder,
		index:       index,
		logger:      logger,
		taskQueue:   make(chan ingestTask, 100),
		concurrency: concurrency,
		stopChan:    make(chan struct{}),
		jobs:        make(map[string]*jobProgress),
	}
}

// Start implements IngestWorker.
func (w *ingestWorker) Start() {
	w.logger.Info("starting ingest worker", zap.Int("concurrency", w.concurrency))

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processTasks(i + 1)
	}
}

// Stop implements IngestWorker.
func (w *ingestWorker) Stop() {
	w.logger.Info("stopping ingest worker")
	close(w.stopChan)
	w.wg.Wait()
	w.logger.Info("ingest worker stopped")
}

// EnqueueBatch implements IngestWorker. It registers a job covering all the
// files and queues them for processing.
func (w *ingestWorker) EnqueueBatch(files []IngestFile) string {
	jobID := uuid.New().String()

	w.mu.Lock()
	w.jobs[jobID] = &jobProgress{total: len(files)}
	w.mu.Unlock()

	for _, file := range files {
		select {
		case w.taskQueue <- ingestTask{jobID: jobID, file: file}:
		case <-w.stopChan:
			w.logger.Warn("worker stopped, dropping ingest task",
				zap.String("job_id", jobID),
				zap.String("filename", file.OriginalFilename),
			)
			w.markDone(jobID)
		}
	}

	return jobID
}

// JobStatus implements IngestWorker.
func (w *ingestWorker) JobStatus(jobID string) (models.IngestStatus, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	progress, ok := w.jobs[jobID]
	if !ok {
		return models.IngestStatus{}, false
	}

	status := models.IngestProcessing
	if progress.done >= progress.total {
		status = models.IngestCompleted
	}

	return models.IngestStatus{
		JobID:    jobID,
		Status:   status,
		Progress: progress.done,
		Total:    progress.total,
	}, true
}

func (w *ingestWorker) processTasks(workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			return
		case task := <-w.taskQueue:
			if err := w.ingestResume(context.Background(), task.file); err != nil {
				w.logger.Error("failed to ingest resume",
					zap.Int("worker", workerID),
					zap.String("filename", task.file.OriginalFilename),
					zap.Error(err),
				)
			}
			w.markDone(task.jobID)
		}
	}
}

func (w *ingestWorker) markDone(jobID string) {
	w.mu.Lock()
	if progress, ok := w.jobs[jobID]; ok {
		progress.done++
	}
	w.mu.Unlock()
}

func (w *ingestWorker) ingestResume(ctx context.Context, file IngestFile) error {
	text, err := w.extractor.ExtractText(file.FilePath)
	if err != nil {
		return err
	}

	parsed, err := w.parser.ParseResume(ctx, text)
	if err != nil {
		w.logger.Warn("resume parse failed, storing unparsed",
			zap.String("filename", file.OriginalFilename),
			zap.Error(err),
		)
		parsed = &models.ParsedResume{}
	}

	name := strings.TrimSpace(parsed.Name)
	if name == "" {
		name = candidateNameFromFilename(file.OriginalFilename)
	}

	embedding := w.embedder.Embed(ctx, text)

	resume := &models.Resume{
		CandidateName:    name,
		Text:             text,
		Parsed:           parsed,
		Embedding:        pgvector.NewVector(embedding),
		ContentHash:      file.ContentHash,
		FilePath:         file.StoredFilename,
		OriginalFilename: file.OriginalFilename,
		MimeType:         file.MimeType,
	}
	if err := w.resumeRepo.Create(resume); err != nil {
		return err
	}

	if err := w.index.UpsertDocument(ctx, resume.ID.String(), DocTypeResume, text, embedding); err != nil {
		w.logger.Warn("failed to index resume",
			zap.String("resume_id", resume.ID.String()),
			zap.Error(err),
		)
	}

	return nil
}

// candidateNameFromFilename derives a display name when parsing yields none.
func candidateNameFromFilename(filename string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	base = strings.Join(strings.Fields(base), " ")
	if base == "" {
		return "Unknown Candidate"
	}
	return base
}
