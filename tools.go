package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/muhammadolammi/facultyhire/internal/mcq"
	"github.com/muhammadolammi/facultyhire/internal/resume"
	"github.com/muhammadolammi/facultyhire/internal/screening"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a resume file against a job description",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("resume")
		job, _ := cmd.Flags().GetString("job")
		if path == "" {
			return fmt.Errorf("--resume is required")
		}
		if job == "" {
			job = cfg.Screening.JobDescription
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		text, err := resume.ExtractText(resume.DetectMime(path, ""), data)
		if err != nil {
			return err
		}

		ctx, cancel := modelContext(cmd)
		defer cancel()
		gemini, err := newGemini(ctx, cfg)
		if err != nil {
			return err
		}
		score, err := screening.NewMatcher(gemini).Match(ctx, text, job)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Resume Match Score: %.2f\n", score)
		return nil
	},
}

var biasCmd = &cobra.Command{
	Use:   "bias",
	Short: "Analyze text for biased or exclusionary language",
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := textFlag(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := modelContext(cmd)
		defer cancel()
		analyst, err := newAnalyst(ctx)
		if err != nil {
			return err
		}
		report, err := analyst.AnalyzeBias(ctx, text)
		if err != nil {
			return err
		}
		return printJSON(cmd, report)
	},
}

var rewriteCmd = &cobra.Command{
	Use:   "rewrite",
	Short: "Rewrite a job description in inclusive language",
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := textFlag(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := modelContext(cmd)
		defer cancel()
		analyst, err := newAnalyst(ctx)
		if err != nil {
			return err
		}
		out, err := analyst.RewriteJobDescription(ctx, text)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a hiring report from data or from stored candidates",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, _ := cmd.Flags().GetString("data")
		ctx, cancel := modelContext(cmd)
		defer cancel()

		if strings.TrimSpace(data) == "" {
			store, err := openCandidates(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer store.Close(context.Background())
			list, err := store.List(ctx, "")
			if err != nil {
				return err
			}
			summaries := make([]screening.CandidateSummary, 0, len(list))
			for _, c := range list {
				s := screening.CandidateSummary{Email: c.Email, Name: c.Name, MatchScore: c.MatchScore, Status: string(c.Status)}
				if c.Analysis != nil {
					s.Summary = c.Analysis.Summary
				}
				summaries = append(summaries, s)
			}
			data = screening.ReportData(cfg.Screening.JobTitle, summaries)
		}

		analyst, err := newAnalyst(ctx)
		if err != nil {
			return err
		}
		out, err := analyst.GenerateHiringReport(ctx, data)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

var mcqsCmd = &cobra.Command{
	Use:   "mcqs",
	Short: "Generate multiple-choice questions for a topic",
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, _ := cmd.Flags().GetString("topic")
		count, _ := cmd.Flags().GetInt("count")
		if count <= 0 {
			count = cfg.MCQ.Count
		}
		ctx, cancel := modelContext(cmd)
		defer cancel()
		gemini, err := newGemini(ctx, cfg)
		if err != nil {
			return err
		}
		svc := mcq.NewService(gemini, nil, log, mcq.ServiceConfig{DefaultTopic: cfg.MCQ.DefaultTopic, Count: count})
		res, err := svc.Generate(ctx, topic)
		if err != nil {
			return err
		}
		return printJSON(cmd, res.Payload())
	},
}

func init() {
	scoreCmd.Flags().String("resume", "", "path to a .pdf, .docx or .txt resume")
	scoreCmd.Flags().String("job", "", "job description (default screening.job_description)")
	biasCmd.Flags().String("text", "", "text to analyze")
	rewriteCmd.Flags().String("text", "", "job description to rewrite")
	reportCmd.Flags().String("data", "", "report data; stored candidates are used when empty")
	mcqsCmd.Flags().String("topic", "", "question topic (default mcq.default_topic)")
	mcqsCmd.Flags().Int("count", 0, "number of questions (default mcq.count)")

	rootCmd.AddCommand(scoreCmd, biasCmd, rewriteCmd, reportCmd, mcqsCmd)
}

func modelContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), cfg.Gemini.Timeout)
}

func newAnalyst(ctx context.Context) (*screening.Analyst, error) {
	gemini, err := newGemini(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return screening.NewAnalyst(gemini), nil
}

func textFlag(cmd *cobra.Command) (string, error) {
	text, _ := cmd.Flags().GetString("text")
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("--text is required")
	}
	return text, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
