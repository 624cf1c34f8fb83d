package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"resumatch/resume-matcher/internal/models"
	"resumatch/resume-matcher/internal/repositories"
	"resumatch/resume-matcher/internal/services"
)

type ResumeHandler struct {
	resumeRepo  repositories.ResumeRepository
	storage     services.StorageService
	worker      services.IngestWorker
	maxResumes  int
	maxFileSize int64
	logger      *zap.Logger
}

func NewResumeHandler(
	resumeRepo repositories.ResumeRepository,
	storage services.StorageService,
	worker services.IngestWorker,
	maxResumes int,
	maxFileSize int64,
	logger *zap.Logger,
) *ResumeHandler {
	return &ResumeHandler{
		resumeRepo:  resumeRepo,
		storage:     storage,
		worker:      worker,
		maxResumes:  maxResumes,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

// HandleBulkUpload accepts multiple resume files under "resumes", dedupes by
// content hash against stored resumes and within the batch, then queues the
// remainder for background ingestion.
func (h *ResumeHandler) HandleBulkUpload(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to parse multipart form",
		})
	}

	files := form.File["resumes"]
	if len(files) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "no resume files provided",
		})
	}

	count, err := h.resumeRepo.Count()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to count resumes",
		})
	}
	if count+int64(len(files)) > int64(h.maxResumes) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": fmt.Sprintf("resume limit exceeded: %d stored, %d uploaded, max %d", count, len(files), h.maxResumes),
		})
	}

	existing, err := h.resumeRepo.ExistingContentHashes()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to check for duplicates",
		})
	}

	var (
		queued     []services.IngestFile
		duplicates []string
	)

	for _, file := range files {
		if file.Size > h.maxFileSize {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("file %s too large. Max size: %d bytes", file.Filename, h.maxFileSize),
			})
		}

		hash, err := hashFileContent(file)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("failed to read file %s: %v", file.Filename, err),
			})
		}
		if existing[hash] {
			duplicates = append(duplicates, file.Filename)
			continue
		}
		existing[hash] = true

		storedName, filePath, err := h.storage.SaveFile(file, "resume")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("failed to save file %s: %v", file.Filename, err),
			})
		}

		queued = append(queued, services.IngestFile{
			StoredFilename:   storedName,
			FilePath:         filePath,
			OriginalFilename: file.Filename,
			MimeType:         file.Header.Get("Content-Type"),
			ContentHash:      hash,
		})
	}

	if len(queued) == 0 {
		return c.JSON(models.BulkUploadResponse{
			Message:    "all files were duplicates, nothing queued",
			Duplicates: duplicates,
		})
	}

	jobID := h.worker.EnqueueBatch(queued)

	return c.Status(fiber.StatusAccepted).JSON(models.BulkUploadResponse{
		JobID:      jobID,
		Message:    fmt.Sprintf("%d resumes queued for processing", len(queued)),
		Duplicates: duplicates,
	})
}

// HandleIngestStatus reports progress of one bulk-upload job.
func (h *ResumeHandler) HandleIngestStatus(c *fiber.Ctx) error {
	status, ok := h.worker.JobStatus(c.Params("jobID"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "unknown ingest job",
		})
	}
	return c.JSON(status)
}

// HandleList returns stored resumes without their full text.
func (h *ResumeHandler) HandleList(c *fiber.Ctx) error {
	resumes, err := h.resumeRepo.FindAll()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to list resumes",
		})
	}

	type resumeSummary struct {
		ID               uuid.UUID `json:"id"`
		CandidateName    string    `json:"candidate_name"`
		OriginalFilename string    `json:"original_filename"`
		Excerpt          string    `json:"excerpt"`
	}

	summaries := make([]resumeSummary, 0, len(resumes))
	for i := range resumes {
		summaries = append(summaries, resumeSummary{
			ID:               resumes[i].ID,
			CandidateName:    resumes[i].CandidateName,
			OriginalFilename: resumes[i].OriginalFilename,
			Excerpt:          services.Excerpt(resumes[i].Text, 300),
		})
	}

	return c.JSON(fiber.Map{"resumes": summaries, "count": len(summaries)})
}

// HandleDownload streams the originally uploaded file of one resume.
func (h *ResumeHandler) HandleDownload(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid resume id",
		})
	}

	resume, err := h.resumeRepo.FindByID(id)
	if err != nil {
		if err == repositories.ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "resume not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load resume",
		})
	}

	if resume.FilePath == "" {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no stored file for this resume",
		})
	}

	return c.Download(h.storage.GetFilePath(resume.FilePath), resume.OriginalFilename)
}

// HandleDeleteAll wipes the resume pool and stored files.
func (h *ResumeHandler) HandleDeleteAll(c *fiber.Ctx) error {
	resumes, err := h.resumeRepo.FindAll()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to list resumes",
		})
	}

	if err := h.resumeRepo.DeleteAll(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to delete resumes",
		})
	}

	for i := range resumes {
		if resumes[i].FilePath == "" {
			continue
		}
		if err := h.storage.DeleteFile(resumes[i].FilePath); err != nil {
			h.logger.Warn("failed to delete stored file",
				zap.String("filename", resumes[i].FilePath),
				zap.Error(err),
			)
		}
	}

	return c.JSON(fiber.Map{"message": fmt.Sprintf("%d resumes deleted", len(resumes))})
}

func hashFileContent(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, src); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
