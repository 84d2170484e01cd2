package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo"

	"github.com/muhammadolammi/facultyhire/internal/apperrors"
	"github.com/muhammadolammi/facultyhire/internal/candidates"
	"github.com/muhammadolammi/facultyhire/internal/database"
	"github.com/muhammadolammi/facultyhire/internal/metrics"
	"github.com/muhammadolammi/facultyhire/internal/notify"
	"github.com/muhammadolammi/facultyhire/internal/queue"
	"github.com/muhammadolammi/facultyhire/internal/resume"
	"github.com/muhammadolammi/facultyhire/internal/screening"
	"github.com/muhammadolammi/facultyhire/internal/storage"
)

func (s *Server) healthz(c echo.Context) error {
	if s.deps.Health != nil {
		if err := s.deps.Health(c.Request().Context()); err != nil {
			s.log.WithError(err).Warn("health check failed", nil)
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// generateMCQs returns the question list, or the parse failure object when the
// model output could not be used.
func (s *Server) generateMCQs(c echo.Context) error {
	res, err := s.deps.MCQ.Generate(c.Request().Context(), c.QueryParam("topic"))
	if err != nil {
		return apperrors.Wrap(apperrors.CodeModelFailed, "question generation failed", err)
	}
	return c.JSON(http.StatusOK, res.Payload())
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.New(apperrors.CodeInvalidInput, "invalid request body")
	}
	if _, err := s.deps.Auth.Signup(c.Request().Context(), req.Name, req.Email, req.Password, req.Role); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"success": true,
		"message": "User registered successfully",
	})
}

func (s *Server) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.New(apperrors.CodeInvalidInput, "invalid request body")
	}
	token, err := s.deps.Auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Login successful",
		"token":   token,
	})
}

func (s *Server) logout(c echo.Context) error {
	if err := s.deps.Auth.Logout(c.Request().Context(), bearerToken(c)); err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, "logout failed", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "message": "Logged out"})
}

type uploadResponse struct {
	Filename    string  `json:"filename"`
	Email       string  `json:"email"`
	MatchScore  float64 `json:"match_score"`
	CandidateID string  `json:"candidate_id"`
	Shortlisted bool    `json:"shortlisted"`
}

func (s *Server) upload(c echo.Context) error {
	ctx := c.Request().Context()

	fh, err := c.FormFile("file")
	if err != nil {
		return apperrors.New(apperrors.CodeInvalidInput, "a resume file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "could not read upload", err)
	}
	defer f.Close()
	data, err := resume.ReadAll(f, s.opts.MaxUploadBytes)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "could not read upload", err)
	}

	mime := resume.DetectMime(fh.Filename, fh.Header.Get(echo.HeaderContentType))
	text, err := resume.ExtractText(mime, data)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeUnprocessable, "could not extract text from resume", err)
	}
	if strings.TrimSpace(text) == "" {
		return apperrors.New(apperrors.CodeUnprocessable, "resume contains no extractable text")
	}

	email := strings.TrimSpace(c.FormValue("email"))
	if p := principal(c); p != nil {
		email = p.Email
	}
	name := strings.TrimSpace(c.FormValue("name"))

	jobID := strings.TrimSpace(c.FormValue("job_id"))
	jobTitle, jobDescription, err := s.jobContext(c, jobID)
	if err != nil {
		return err
	}

	score, err := s.deps.Scorer.Match(ctx, text, jobDescription)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeModelFailed, "could not score resume", err)
	}
	metrics.MatchScores.Observe(score)

	cand := &candidates.Candidate{
		Email:        email,
		Name:         name,
		Filename:     fh.Filename,
		Mime:         mime,
		ResumeText:   text,
		MatchScore:   score,
		JobPostingID: jobID,
		Status:       candidates.StatusUploaded,
	}
	if s.deps.Objects != nil {
		cand.ObjectKey = storage.ObjectKey(fh.Filename)
		if err := s.deps.Objects.Upload(ctx, cand.ObjectKey, mime, data); err != nil {
			return apperrors.Wrap(apperrors.CodeStorageFailed, "could not store resume", err)
		}
	}
	if err := s.deps.Candidates.Insert(ctx, cand); err != nil {
		return apperrors.Wrap(apperrors.CodeDatabaseFailed, "could not save candidate", err)
	}

	if s.deps.Queue != nil && cand.ObjectKey != "" {
		err := s.deps.Queue.Enqueue(ctx, queue.ScreeningJob{
			CandidateID:    cand.ID.Hex(),
			Email:          cand.Email,
			ObjectKey:      cand.ObjectKey,
			Mime:           mime,
			JobTitle:       jobTitle,
			JobDescription: jobDescription,
		})
		if err != nil {
			s.log.WithError(err).Warn("could not enqueue screening", map[string]interface{}{"candidate_id": cand.ID.Hex()})
		}
	}

	shortlisted := screening.IsShortlisted(score, s.opts.ShortlistThreshold)
	if shortlisted && email != "" {
		if err := s.deps.Mailer.Send(ctx, notify.ShortlistEmail(email, name, score)); err != nil {
			s.log.WithError(err).Warn("shortlist email failed", map[string]interface{}{"email": email})
		}
	}

	s.log.Info("resume processed", map[string]interface{}{
		"candidate_id": cand.ID.Hex(),
		"match_score":  score,
		"shortlisted":  shortlisted,
	})
	return c.JSON(http.StatusOK, uploadResponse{
		Filename:    fh.Filename,
		Email:       email,
		MatchScore:  score,
		CandidateID: cand.ID.Hex(),
		Shortlisted: shortlisted,
	})
}

// jobContext resolves the title and description a resume is scored against.
func (s *Server) jobContext(c echo.Context, jobID string) (string, string, error) {
	if jobID == "" {
		return s.opts.JobTitle, s.opts.JobDescription, nil
	}
	posting, err := s.loadPosting(c, jobID)
	if err != nil {
		return "", "", err
	}
	desc := posting.Description
	if posting.InclusiveDescription.Valid && posting.InclusiveDescription.String != "" {
		desc = posting.InclusiveDescription.String
	}
	return posting.Title, desc, nil
}

func (s *Server) listResumes(c echo.Context) error {
	list, err := s.deps.Candidates.List(c.Request().Context(), c.QueryParam("job_id"))
	if err != nil {
		return apperrors.Wrap(apperrors.CodeDatabaseFailed, "could not list resumes", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"resumes": list})
}

func (s *Server) getResume(c echo.Context) error {
	cand, err := s.deps.Candidates.Get(c.Request().Context(), c.Param("id"))
	if errors.Is(err, candidates.ErrNotFound) {
		return apperrors.New(apperrors.CodeNotFound, "candidate not found")
	}
	if err != nil {
		return apperrors.Wrap(apperrors.CodeDatabaseFailed, "could not load candidate", err)
	}
	return c.JSON(http.StatusOK, cand)
}

type scheduleRequest struct {
	CandidateEmail    string `json:"candidate_email"`
	InterviewDatetime string `json:"interview_datetime"`
}

var interviewLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// parseInterviewTime reads v in loc unless v carries its own offset.
func parseInterviewTime(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	for _, layout := range interviewLayouts {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized datetime %q", v)
}

func (s *Server) scheduleInterview(c echo.Context) error {
	ctx := c.Request().Context()
	var req scheduleRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.New(apperrors.CodeInvalidInput, "invalid request body")
	}
	if strings.TrimSpace(req.CandidateEmail) == "" {
		return apperrors.New(apperrors.CodeInvalidInput, "candidate_email is required")
	}
	at, err := parseInterviewTime(req.InterviewDatetime, s.opts.InterviewLocation)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "interview_datetime must be a date and time", err)
	}

	cand, err := s.deps.Candidates.FindByEmail(ctx, req.CandidateEmail)
	if errors.Is(err, candidates.ErrNotFound) {
		return apperrors.New(apperrors.CodeNotFound, "candidate not found")
	}
	if err != nil {
		return apperrors.Wrap(apperrors.CodeDatabaseFailed, "could not load candidate", err)
	}
	if !screening.InterviewEligible(cand.MatchScore, s.opts.InterviewThreshold) {
		return apperrors.New(apperrors.CodeUnprocessable,
			fmt.Sprintf("match score %.2f is below the interview threshold %.2f", cand.MatchScore, s.opts.InterviewThreshold))
	}
	if err := s.deps.Candidates.ScheduleInterview(ctx, cand.ID, at); err != nil {
		return apperrors.Wrap(apperrors.CodeDatabaseFailed, "could not schedule interview", err)
	}
	if err := s.deps.Mailer.Send(ctx, notify.InterviewEmail(cand.Email, cand.Name, at)); err != nil {
		s.log.WithError(err).Warn("interview email failed", map[string]interface{}{"email": cand.Email})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Interview scheduled for %s at %s", cand.Email, at.UTC().Format(time.RFC3339)),
	})
}

type jobRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type jobResponse struct {
	ID                   uuid.UUID       `json:"id"`
	Title                string          `json:"title"`
	Description          string          `json:"description"`
	InclusiveDescription string          `json:"inclusive_description,omitempty"`
	BiasReport           json.RawMessage `json:"bias_report"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

func toJobResponse(p database.JobPosting) jobResponse {
	report := p.BiasReport
	if len(report) == 0 {
		report = json.RawMessage(`{}`)
	}
	return jobResponse{
		ID:                   p.ID,
		Title:                p.Title,
		Description:          p.Description,
		InclusiveDescription: p.InclusiveDescription.String,
		BiasReport:           report,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}

func (s *Server) createJob(c echo.Context) error {
	ctx := c.Request().Context()
	var req jobRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.New(apperrors.CodeInvalidInput, "invalid request body")
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if req.Title == "" || req.Description == "" {
		return apperrors.New(apperrors.CodeInvalidInput, "title and description are required")
	}

	report, err := s.deps.Analyst.AnalyzeBias(ctx, req.Description)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeModelFailed, "bias analysis failed", err)
	}
	raw, err := json.Marshal(report)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, "could not encode bias report", err)
	}

	posting, err := s.deps.Jobs.CreateJobPosting(ctx, database.CreateJobPostingParams{
		Title:       req.Title,
		Description: req.Description,
		BiasReport:  raw,
	})
	if err != nil {
		return apperrors.Wrap(apperrors.CodeDatabaseFailed, "could not save job posting", err)
	}
	return c.JSON(http.StatusCreated, toJobResponse(posting))
}

func (s *Server) listJobs(c echo.Context) error {
	postings, err := s.deps.Jobs.ListJobPostings(c.Request().Context())
	if err != nil {
		return apperrors.Wrap(apperrors.CodeDatabaseFailed, "could not list job postings", err)
	}
	out := make([]jobResponse, 0, len(postings))
	for _, p := range postings {
		out = append(out, toJobResponse(p))
	}
	return c.JSON(http.StatusOK, map[string]any{"jobs": out})
}

func (s *Server) getJob(c echo.Context) error {
	posting, err := s.loadPosting(c, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toJobResponse(posting))
}

func (s *Server) loadPosting(c echo.Context, rawID string) (database.JobPosting, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return database.JobPosting{}, apperrors.New(apperrors.CodeInvalidInput, "invalid job id")
	}
	posting, err := s.deps.Jobs.GetJobPosting(c.Request().Context(), id)
	if database.IsNotFound(err) {
		return database.JobPosting{}, apperrors.New(apperrors.CodeNotFound, "job posting not found")
	}
	if err != nil {
		return database.JobPosting{}, apperrors.Wrap(apperrors.CodeDatabaseFailed, "could not load job posting", err)
	}
	return posting, nil
}

func (s *Server) rewriteJob(c echo.Context) error {
	ctx := c.Request().Context()
	posting, err := s.loadPosting(c, c.Param("id"))
	if err != nil {
		return err
	}
	rewritten, err := s.deps.Analyst.RewriteJobDescription(ctx, posting.Description)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeModelFailed, "rewrite failed", err)
	}
	err = s.deps.Jobs.UpdateJobPostingInclusive(ctx, database.UpdateJobPostingInclusiveParams{
		InclusiveDescription: sql.NullString{String: rewritten, Valid: true},
		ID:                   posting.ID,
	})
	if err != nil {
		return apperrors.Wrap(apperrors.CodeDatabaseFailed, "could not save rewrite", err)
	}
	posting.InclusiveDescription = sql.NullString{String: rewritten, Valid: true}

	// The stored bias report follows the text candidates are scored against.
	report, err := s.deps.Analyst.AnalyzeBias(ctx, rewritten)
	if err != nil {
		s.log.WithError(err).Warn("bias analysis of rewrite failed", map[string]interface{}{"job_id": posting.ID})
		return c.JSON(http.StatusOK, toJobResponse(posting))
	}
	raw, err := json.Marshal(report)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, "could not encode bias report", err)
	}
	err = s.deps.Jobs.UpdateJobPostingBias(ctx, database.UpdateJobPostingBiasParams{
		BiasReport: raw,
		ID:         posting.ID,
	})
	if err != nil {
		return apperrors.Wrap(apperrors.CodeDatabaseFailed, "could not save bias report", err)
	}
	posting.BiasReport = raw
	return c.JSON(http.StatusOK, toJobResponse(posting))
}

type reportRequest struct {
	JobID string `json:"job_id"`
}

func (s *Server) hiringReport(c echo.Context) error {
	ctx := c.Request().Context()
	var req reportRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return apperrors.New(apperrors.CodeInvalidInput, "invalid request body")
		}
	}

	title := s.opts.JobTitle
	postingID := uuid.NullUUID{}
	if req.JobID != "" {
		posting, err := s.loadPosting(c, req.JobID)
		if err != nil {
			return err
		}
		title = posting.Title
		postingID = uuid.NullUUID{UUID: posting.ID, Valid: true}
	}

	list, err := s.deps.Candidates.List(ctx, req.JobID)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeDatabaseFailed, "could not list candidates", err)
	}
	if len(list) == 0 {
		return apperrors.New(apperrors.CodeUnprocessable, "no candidates to report on")
	}
	summaries := make([]screening.CandidateSummary, 0, len(list))
	for _, cand := range list {
		sum := screening.CandidateSummary{
			Email:      cand.Email,
			Name:       cand.Name,
			MatchScore: cand.MatchScore,
			Status:     string(cand.Status),
		}
		if cand.Analysis != nil && !cand.Analysis.IsErrorResult {
			sum.Summary = cand.Analysis.Summary
		}
		summaries = append(summaries, sum)
	}

	body, err := s.deps.Analyst.GenerateHiringReport(ctx, screening.ReportData(title, summaries))
	if err != nil {
		return apperrors.Wrap(apperrors.CodeModelFailed, "report generation failed", err)
	}
	saved, err := s.deps.Jobs.CreateOrUpdateHiringReport(ctx, database.CreateOrUpdateHiringReportParams{
		JobPostingID: postingID,
		Body:         body,
	})
	if err != nil {
		return apperrors.Wrap(apperrors.CodeDatabaseFailed, "could not save report", err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"id":         saved.ID,
		"report":     body,
		"candidates": len(list),
	})
}

type reportResponse struct {
	ID           uuid.UUID     `json:"id"`
	JobPostingID uuid.NullUUID `json:"job_posting_id"`
	Report       string        `json:"report"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func (s *Server) listReports(c echo.Context) error {
	reports, err := s.deps.Jobs.ListHiringReports(c.Request().Context())
	if err != nil {
		return apperrors.Wrap(apperrors.CodeDatabaseFailed, "could not list reports", err)
	}
	out := make([]reportResponse, 0, len(reports))
	for _, r := range reports {
		out = append(out, reportResponse{
			ID:           r.ID,
			JobPostingID: r.JobPostingID,
			Report:       r.Body,
			CreatedAt:    r.CreatedAt,
			UpdatedAt:    r.UpdatedAt,
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"reports": out})
}
