package screening

import (
	"context"
	"fmt"
	"math"

	"github.com/muhammadolammi/facultyhire/internal/llm"
	"github.com/muhammadolammi/facultyhire/internal/resume"
)

// CosineSimilarity returns a value in [-1, 1]. Zero-magnitude vectors score 0.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vectors must have the same length: %d != %d", len(a), len(b))
	}

	var dot, aMag, bMag float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		aMag += float64(a[i]) * float64(a[i])
		bMag += float64(b[i]) * float64(b[i])
	}
	if aMag == 0 || bMag == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(aMag) * math.Sqrt(bMag)), nil
}

// Matcher scores how close a resume is to a job description in embedding space.
type Matcher struct {
	embedder llm.Embedder
}

func NewMatcher(embedder llm.Embedder) *Matcher {
	return &Matcher{embedder: embedder}
}

// Match embeds both texts and returns their cosine similarity clamped to
// [0, 1]. Negative similarity is reported as 0 so stored scores and the
// thresholds compared against them share one range. The resume is
// preprocessed first; the job description is used as written.
func (m *Matcher) Match(ctx context.Context, resumeText, jobDescription string) (float64, error) {
	if resumeText == "" || jobDescription == "" {
		return 0, fmt.Errorf("resume text and job description are required")
	}

	resumeVec, err := m.embedder.Embed(ctx, resume.Preprocess(resumeText))
	if err != nil {
		return 0, fmt.Errorf("embed resume: %w", err)
	}
	jobVec, err := m.embedder.Embed(ctx, jobDescription)
	if err != nil {
		return 0, fmt.Errorf("embed job description: %w", err)
	}

	score, err := CosineSimilarity(resumeVec, jobVec)
	if err != nil {
		return 0, err
	}
	return clamp01(score), nil
}

// clamp01 keeps scores displayable as a percentage.
func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// IsShortlisted reports whether a score clears the shortlist bar (strictly above).
func IsShortlisted(score, threshold float64) bool {
	return score > threshold
}

// InterviewEligible reports whether a candidate may be offered an interview.
func InterviewEligible(score, threshold float64) bool {
	return score >= threshold
}
