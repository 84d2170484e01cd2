package main

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/muhammadolammi/facultyhire/internal/candidates"
	"github.com/muhammadolammi/facultyhire/internal/logger"
	"github.com/muhammadolammi/facultyhire/internal/queue"
)

// CandidateUpdater is the part of the candidate store the worker writes to.
type CandidateUpdater interface {
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status candidates.Status) error
	UpdateScreening(ctx context.Context, id primitive.ObjectID, analysis *candidates.Analysis, status candidates.Status) error
}

type ObjectFetcher interface {
	Download(ctx context.Context, key string) ([]byte, error)
}

type StatusPublisher interface {
	PublishStatus(ctx context.Context, update queue.StatusUpdate) error
}

// ResumeAnalyzer returns the raw analysis text for one resume.
type ResumeAnalyzer interface {
	Analyze(ctx context.Context, job queue.ScreeningJob, resumeText string) (string, error)
}

type WorkerConfig struct {
	Candidates CandidateUpdater
	Objects    ObjectFetcher
	Updates    StatusPublisher
	Analyzer   ResumeAnalyzer
	Log        logger.Logger

	RabbitURL string
	Queue     string
	// RetryDelay is the base backoff between attempts; zero means 500ms.
	RetryDelay time.Duration
}
