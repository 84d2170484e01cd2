package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"

	"github.com/muhammadolammi/facultyhire/internal/queue"
)

const analyzerAgentName = "faculty resume analyzer"

func GetAgent(ctx context.Context, apiKey, modelName, agentName string) (agent.Agent, error) {
	model, err := gemini.NewModel(ctx, modelName, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create model: %w", err)
	}

	customAgent, err := llmagent.New(llmagent.Config{
		Name:        agentName,
		Model:       model,
		Description: "Analyze faculty resumes against academic job descriptions",
		Instruction: prompt(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}
	return customAgent, nil
}

// agentAnalyzer runs every resume in its own short-lived agent session.
type agentAnalyzer struct {
	appName  string
	runner   *runner.Runner
	sessions session.Service
}

func newAgentAnalyzer(ctx context.Context, apiKey, modelName string) (*agentAnalyzer, error) {
	analyzer, err := GetAgent(ctx, apiKey, modelName, analyzerAgentName)
	if err != nil {
		return nil, err
	}
	sessions := session.InMemoryService()
	r, err := runner.New(runner.Config{
		AppName:        analyzer.Name(),
		Agent:          analyzer,
		SessionService: sessions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create runner: %w", err)
	}
	return &agentAnalyzer{appName: analyzer.Name(), runner: r, sessions: sessions}, nil
}

func analyzerMessage(job queue.ScreeningJob, resumeText string) string {
	return fmt.Sprintf(
		"Candidate Email:\n%s\n\nJob Title:\n%s\n\nJob Description:\n%s\n\nResume:\n%s",
		job.Email,
		job.JobTitle,
		job.JobDescription,
		resumeText,
	)
}

func (a *agentAnalyzer) Analyze(ctx context.Context, job queue.ScreeningJob, resumeText string) (string, error) {
	userID := job.Email
	if userID == "" {
		userID = "anonymous"
	}
	created, err := a.sessions.Create(ctx, &session.CreateRequest{
		AppName:   a.appName,
		UserID:    userID,
		SessionID: job.CandidateID + "-" + uuid.NewString(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	sess := created.Session
	defer func() {
		_ = a.sessions.Delete(context.Background(), &session.DeleteRequest{
			AppName:   sess.AppName(),
			UserID:    sess.UserID(),
			SessionID: sess.ID(),
		})
	}()

	stream := a.runner.Run(ctx, sess.UserID(), sess.ID(), &genai.Content{
		Role: "user",
		Parts: []*genai.Part{
			{Text: analyzerMessage(job, resumeText)},
		},
	}, agent.RunConfig{})

	var output string
	for event, err := range stream {
		if err != nil {
			return "", err
		}
		if event != nil && event.IsFinalResponse() && event.Content != nil && len(event.Content.Parts) > 0 {
			output = event.Content.Parts[0].Text
		}
	}
	if output == "" {
		return "", fmt.Errorf("empty agent response")
	}
	return output, nil
}
