package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/streadway/amqp"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/muhammadolammi/facultyhire/internal/candidates"
	"github.com/muhammadolammi/facultyhire/internal/llm"
	"github.com/muhammadolammi/facultyhire/internal/metrics"
	"github.com/muhammadolammi/facultyhire/internal/queue"
	"github.com/muhammadolammi/facultyhire/internal/resume"
)

// errInterrupted marks a job abandoned because the worker is shutting down.
// The message goes back on the queue untouched.
var errInterrupted = errors.New("screening interrupted")

// retry retries fn up to attempts times, waiting base*(i+1) between tries.
func retry[T any](ctx context.Context, attempts int, base time.Duration, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error
	if base <= 0 {
		base = 500 * time.Millisecond
	}

	for i := 0; i < attempts; i++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(base * time.Duration(i+1)):
		}
	}
	return zero, fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}

// analysisFromOutput turns agent output into a stored analysis. Anything that
// is not a usable JSON object becomes an error result.
func analysisFromOutput(output string, hasError bool, errorMsg string) *candidates.Analysis {
	result := &candidates.Analysis{}
	switch {
	case hasError:
		result.IsErrorResult = true
		result.Error = errorMsg

	case strings.TrimSpace(output) == "":
		result.IsErrorResult = true
		result.Error = "empty response from agent"

	default:
		if err := json.Unmarshal([]byte(llm.CleanResponse(output)), result); err != nil {
			result = &candidates.Analysis{
				IsErrorResult: true,
				Error:         "json unmarshal error: " + err.Error(),
			}
		}
	}
	if result.MatchScore < 0 {
		result.MatchScore = 0
	} else if result.MatchScore > 100 {
		result.MatchScore = 100
	}
	return result
}

// screen downloads, extracts and analyzes one resume. Failures at any step are
// reported through the returned analysis rather than an error.
func screen(ctx context.Context, job queue.ScreeningJob, wc *WorkerConfig) *candidates.Analysis {
	fileBytes, err := retry(ctx, 3, wc.RetryDelay, func() ([]byte, error) {
		return wc.Objects.Download(ctx, job.ObjectKey)
	})
	if err != nil {
		wc.Log.WithError(err).Warn("resume download failed", map[string]interface{}{"object_key": job.ObjectKey})
		return analysisFromOutput("", true, fmt.Sprintf("file download error: %v", err))
	}

	resumeText, err := resume.ExtractText(job.Mime, fileBytes)
	if err != nil {
		wc.Log.WithError(err).Warn("text extraction failed", map[string]interface{}{"object_key": job.ObjectKey})
		return analysisFromOutput("", true, fmt.Sprintf("text extraction error: %v", err))
	}

	output, err := retry(ctx, 2, wc.RetryDelay, func() (string, error) {
		return wc.Analyzer.Analyze(ctx, job, resumeText)
	})
	if err != nil {
		wc.Log.WithError(err).Warn("agent failed", map[string]interface{}{"candidate_id": job.CandidateID})
		return analysisFromOutput("", true, fmt.Sprintf("agent stream error: %v", err))
	}
	return analysisFromOutput(output, false, "")
}

func (wc *WorkerConfig) publish(ctx context.Context, candidateID string, status candidates.Status, message string) {
	err := wc.Updates.PublishStatus(ctx, queue.StatusUpdate{
		CandidateID: candidateID,
		Status:      string(status),
		Message:     message,
	})
	if err != nil {
		wc.Log.WithError(err).Warn("failed to publish update", map[string]interface{}{"candidate_id": candidateID})
	}
}

// handleDelivery processes one queue message. errInterrupted means the
// message should be requeued; any other error means it can never succeed
// and should be dropped.
func (wc *WorkerConfig) handleDelivery(ctx context.Context, body []byte) error {
	job, err := queue.DecodeJob(body)
	if err != nil {
		return err
	}
	id, err := primitive.ObjectIDFromHex(job.CandidateID)
	if err != nil {
		return fmt.Errorf("invalid candidate id %q: %w", job.CandidateID, err)
	}
	log := wc.Log.With(map[string]interface{}{"candidate_id": job.CandidateID})

	metrics.WorkersActive.Inc()
	defer metrics.WorkersActive.Dec()

	if err := wc.Candidates.UpdateStatus(ctx, id, candidates.StatusScreening); err != nil {
		log.WithError(err).Warn("could not mark candidate as screening", nil)
	}
	wc.publish(ctx, job.CandidateID, candidates.StatusScreening, "analysis started")

	analysis := screen(ctx, job, wc)
	if ctx.Err() != nil {
		resetCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := wc.Candidates.UpdateStatus(resetCtx, id, candidates.StatusUploaded); err != nil {
			log.WithError(err).Warn("could not reset candidate status", nil)
		}
		log.Warn("screening interrupted, requeueing", nil)
		return fmt.Errorf("candidate %s: %w", job.CandidateID, errInterrupted)
	}
	status, message := candidates.StatusScreened, "analysis completed"
	if analysis.IsErrorResult {
		status, message = candidates.StatusFailed, "analysis failed"
	}

	_, err = retry(ctx, 3, wc.RetryDelay, func() (any, error) {
		return nil, wc.Candidates.UpdateScreening(ctx, id, analysis, status)
	})
	if err != nil {
		log.WithError(err).Error("failed to save analysis after retries", nil)
		status, message = candidates.StatusFailed, "analysis could not be saved"
	}

	metrics.Screenings.WithLabelValues(string(status)).Inc()
	wc.publish(ctx, job.CandidateID, status, message)
	log.Info("candidate screened", map[string]interface{}{"status": status, "match_score": analysis.MatchScore})
	return nil
}

func worker(ctx context.Context, id int, wc *WorkerConfig, wg *sync.WaitGroup) {
	defer wg.Done()
	log := wc.Log.With(map[string]interface{}{"worker": id + 1})

	conn, err := amqp.Dial(wc.RabbitURL)
	if err != nil {
		log.WithError(err).Error("error dialling rabbitmq", nil)
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.WithError(err).Error("error opening rabbitmq channel", nil)
		return
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		wc.Queue, // queue name
		true,     // durable (survives broker restarts)
		false,    // auto-delete when unused
		false,    // exclusive
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		log.WithError(err).Error("failed to declare queue", map[string]interface{}{"queue": wc.Queue})
		return
	}
	if err := ch.Qos(1, 0, false); err != nil {
		log.WithError(err).Error("failed to set prefetch", nil)
		return
	}

	msgs, err := ch.Consume(
		wc.Queue, // queue name
		"",       // consumer tag
		false,    // auto-ack
		false,    // exclusive
		false,    // no-local
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		log.WithError(err).Error("error consuming rabbitmq messages", nil)
		return
	}
	log.Info("worker started", nil)

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				log.Warn("delivery channel closed", nil)
				return
			}
			err := wc.handleDelivery(ctx, msg.Body)
			if errors.Is(err, errInterrupted) {
				_ = msg.Nack(false, true)
				return
			}
			if err != nil {
				log.WithError(err).Error("dropping screening message", nil)
				_ = msg.Nack(false, false)
				continue
			}
			_ = msg.Ack(false)
		}
	}
}

// StartConsumerWorkerPool runs numWorkers consumers and blocks until all of
// them stop.
func (wc *WorkerConfig) StartConsumerWorkerPool(ctx context.Context, numWorkers int) {
	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for i := range numWorkers {
		go worker(ctx, i, wc, &wg)
	}
	wg.Wait()
}
