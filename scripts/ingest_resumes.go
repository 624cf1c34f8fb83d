package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"resumatch/resume-matcher/internal/config"
	"resumatch/resume-matcher/internal/models"
	"resumatch/resume-matcher/internal/repositories"
	"resumatch/resume-matcher/internal/services"
)

// Seeds the resume pool from a local directory of .pdf/.txt/.md files,
// skipping anything already ingested by content hash.
func main() {
	dir := "./reference_resumes"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg := config.Load()

	db, err := config.InitDatabase(cfg)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	resumeRepo := repositories.NewResumeRepository(db)

	geminiService, err := services.NewGeminiService(
		cfg.Gemini.APIKey,
		cfg.Matching.EmbeddingDim,
		cfg.Worker.RetryMaxAttempts,
		logger,
	)
	if err != nil {
		logger.Fatal("failed to initialize gemini", zap.Error(err))
	}

	index, err := services.NewQdrantIndex(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
		cfg.Matching.EmbeddingDim,
		logger,
	)
	if err != nil {
		logger.Fatal("failed to initialize qdrant", zap.Error(err))
	}

	ctx := context.Background()
	if err := index.InitCollection(ctx); err != nil {
		logger.Fatal("failed to initialize qdrant collection", zap.Error(err))
	}

	existing, err := resumeRepo.ExistingContentHashes()
	if err != nil {
		logger.Fatal("failed to load existing hashes", zap.Error(err))
	}

	extractor := services.NewTextExtractor()

	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Fatal("failed to read directory", zap.String("dir", dir), zap.Error(err))
	}

	ingested, skipped := 0, 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".pdf" && ext != ".txt" && ext != ".md" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("failed to read file", zap.String("file", entry.Name()), zap.Error(err))
			continue
		}

		sum := sha256.Sum256(raw)
		hash := hex.EncodeToString(sum[:])
		if existing[hash] {
			skipped++
			continue
		}

		text, err := extractor.ExtractText(path)
		if err != nil {
			logger.Warn("failed to extract text", zap.String("file", entry.Name()), zap.Error(err))
			continue
		}

		parsed, err := geminiService.ParseResume(ctx, text)
		if err != nil {
			logger.Warn("resume parse failed, storing unparsed", zap.String("file", entry.Name()), zap.Error(err))
			parsed = &models.ParsedResume{}
		}

		name := strings.TrimSpace(parsed.Name)
		if name == "" {
			name = strings.TrimSuffix(entry.Name(), ext)
		}

		embedding := geminiService.Embed(ctx, text)

		resume := &models.Resume{
			CandidateName:    name,
			Text:             text,
			Parsed:           parsed,
			Embedding:        pgvector.NewVector(embedding),
			ContentHash:      hash,
			OriginalFilename: entry.Name(),
		}
		if err := resumeRepo.Create(resume); err != nil {
			logger.Error("failed to store resume", zap.String("file", entry.Name()), zap.Error(err))
			continue
		}

		if err := index.UpsertDocument(ctx, resume.ID.String(), services.DocTypeResume, text, embedding); err != nil {
			logger.Warn("failed to index resume", zap.String("resume_id", resume.ID.String()), zap.Error(err))
		}

		existing[hash] = true
		ingested++
		logger.Info("ingested resume", zap.String("file", entry.Name()), zap.String("candidate", name))
	}

	logger.Info("seeding finished", zap.Int("ingested", ingested), zap.Int("skipped", skipped))
}
