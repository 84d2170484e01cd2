package screening

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/muhammadolammi/facultyhire/internal/llm"
)

// BiasFinding is one flagged phrase in a job description.
type BiasFinding struct {
	Phrase     string `json:"phrase"`
	Category   string `json:"category"`
	Suggestion string `json:"suggestion"`
}

// BiasReport is the model's assessment of a text.
type BiasReport struct {
	Biased   bool          `json:"biased"`
	Score    float64       `json:"score"`
	Findings []BiasFinding `json:"findings"`
	Summary  string        `json:"summary"`
}

const biasPrompt = `You review academic job descriptions for biased or exclusionary language
(gender-coded words, age, nationality, disability, family status, unnecessary
credential gatekeeping).

Return only a JSON object in this format:
{
  "biased": boolean,
  "score": number between 0 and 1 (0 = neutral, 1 = heavily biased),
  "findings": [{"phrase": string, "category": string, "suggestion": string}],
  "summary": string
}

Do not include markdown or text outside the JSON.

Text:
%s`

// Analyst runs the text-generation tasks of the screening workflow.
type Analyst struct {
	gen llm.Generator
}

func NewAnalyst(gen llm.Generator) *Analyst {
	return &Analyst{gen: gen}
}

// AnalyzeBias asks the model for a structured bias report on text.
func (a *Analyst) AnalyzeBias(ctx context.Context, text string) (*BiasReport, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text is required")
	}
	raw, err := a.gen.Generate(ctx, fmt.Sprintf(biasPrompt, text))
	if err != nil {
		return nil, fmt.Errorf("bias analysis: %w", err)
	}
	return ParseBiasReport(raw)
}

// ParseBiasReport decodes model output into a BiasReport.
func ParseBiasReport(raw string) (*BiasReport, error) {
	var report BiasReport
	if err := json.Unmarshal([]byte(llm.CleanResponse(raw)), &report); err != nil {
		return nil, fmt.Errorf("decode bias report %q: %w", raw, err)
	}
	if report.Score < 0 {
		report.Score = 0
	} else if report.Score > 1 {
		report.Score = 1
	}
	if report.Findings == nil {
		report.Findings = []BiasFinding{}
	}
	if len(report.Findings) > 0 {
		report.Biased = true
	}
	return &report, nil
}

// RewriteJobDescription returns an inclusive version of text.
func (a *Analyst) RewriteJobDescription(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("text is required")
	}
	prompt := fmt.Sprintf("Rewrite the following job description in an inclusive way: %s", text)
	out, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("rewrite job description: %w", err)
	}
	return llm.CleanResponse(out), nil
}

// GenerateHiringReport summarizes hiring insights from free-form data.
func (a *Analyst) GenerateHiringReport(ctx context.Context, data string) (string, error) {
	if strings.TrimSpace(data) == "" {
		return "", fmt.Errorf("report data is required")
	}
	prompt := fmt.Sprintf("Generate a hiring report based on the following data: %s", data)
	out, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generate hiring report: %w", err)
	}
	return llm.CleanResponse(out), nil
}

// CandidateSummary is the slice of a candidate record a report needs.
type CandidateSummary struct {
	Email      string
	Name       string
	MatchScore float64
	Status     string
	Summary    string
}

// ReportData renders candidates, best match first, into the data block handed
// to GenerateHiringReport.
func ReportData(jobTitle string, candidates []CandidateSummary) string {
	sorted := make([]CandidateSummary, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MatchScore > sorted[j].MatchScore
	})

	var b strings.Builder
	if jobTitle != "" {
		fmt.Fprintf(&b, "Position: %s\n", jobTitle)
	}
	fmt.Fprintf(&b, "Candidates: %d\n", len(sorted))
	for i, c := range sorted {
		name := c.Name
		if name == "" {
			name = "N/A"
		}
		fmt.Fprintf(&b, "%d. %s <%s> match=%.2f%% status=%s", i+1, name, c.Email, c.MatchScore*100, c.Status)
		if c.Summary != "" {
			fmt.Fprintf(&b, " summary=%q", c.Summary)
		}
		b.WriteString("\n")
	}
	return b.String()
}
