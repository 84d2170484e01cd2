// Package api is the HTTP surface of the recruitment assistant.
package api

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/muhammadolammi/facultyhire/internal/auth"
	"github.com/muhammadolammi/facultyhire/internal/candidates"
	"github.com/muhammadolammi/facultyhire/internal/database"
	"github.com/muhammadolammi/facultyhire/internal/logger"
	"github.com/muhammadolammi/facultyhire/internal/mcq"
	"github.com/muhammadolammi/facultyhire/internal/notify"
	"github.com/muhammadolammi/facultyhire/internal/queue"
	"github.com/muhammadolammi/facultyhire/internal/screening"
)

type QuestionGenerator interface {
	Generate(ctx context.Context, topic string) (*mcq.Result, error)
}

type Authenticator interface {
	Signup(ctx context.Context, name, email, password, role string) (database.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	Authenticate(ctx context.Context, token string) (*auth.Principal, error)
	Logout(ctx context.Context, token string) error
}

type CandidateStore interface {
	Insert(ctx context.Context, c *candidates.Candidate) error
	FindByEmail(ctx context.Context, email string) (*candidates.Candidate, error)
	Get(ctx context.Context, id string) (*candidates.Candidate, error)
	List(ctx context.Context, jobPostingID string) ([]candidates.Candidate, error)
	ScheduleInterview(ctx context.Context, id primitive.ObjectID, at time.Time) error
}

type JobStore interface {
	CreateJobPosting(ctx context.Context, arg database.CreateJobPostingParams) (database.JobPosting, error)
	GetJobPosting(ctx context.Context, id uuid.UUID) (database.JobPosting, error)
	ListJobPostings(ctx context.Context) ([]database.JobPosting, error)
	UpdateJobPostingInclusive(ctx context.Context, arg database.UpdateJobPostingInclusiveParams) error
	UpdateJobPostingBias(ctx context.Context, arg database.UpdateJobPostingBiasParams) error
	CreateOrUpdateHiringReport(ctx context.Context, arg database.CreateOrUpdateHiringReportParams) (database.HiringReport, error)
	ListHiringReports(ctx context.Context) ([]database.HiringReport, error)
}

type Scorer interface {
	Match(ctx context.Context, resumeText, jobDescription string) (float64, error)
}

type TextAnalyst interface {
	AnalyzeBias(ctx context.Context, text string) (*screening.BiasReport, error)
	RewriteJobDescription(ctx context.Context, text string) (string, error)
	GenerateHiringReport(ctx context.Context, data string) (string, error)
}

type ObjectStore interface {
	Upload(ctx context.Context, key, mime string, data []byte) error
}

type Enqueuer interface {
	Enqueue(ctx context.Context, job queue.ScreeningJob) error
}

// Deps are the collaborators behind the handlers. Objects and Queue may be nil,
// in which case uploads are scored but not stored or queued for screening.
type Deps struct {
	MCQ        QuestionGenerator
	Auth       Authenticator
	Candidates CandidateStore
	Jobs       JobStore
	Scorer     Scorer
	Analyst    TextAnalyst
	Objects    ObjectStore
	Queue      Enqueuer
	Mailer     notify.Mailer
	Health     func(ctx context.Context) error
}

type Options struct {
	CORSOrigins        []string
	JobTitle           string
	JobDescription     string
	ShortlistThreshold float64
	InterviewThreshold float64
	MaxUploadBytes     int64
	// InterviewLocation interprets interview times that carry no zone.
	// Defaults to UTC.
	InterviewLocation *time.Location
}

type Server struct {
	echo *echo.Echo
	deps Deps
	opts Options
	log  logger.Logger
}

func New(deps Deps, opts Options, log logger.Logger) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	if opts.InterviewLocation == nil {
		opts.InterviewLocation = time.UTC
	}
	if deps.Mailer == nil {
		deps.Mailer = notify.NewLogMailer(log)
	}

	e := echo.New()
	e.HideBanner = true
	s := &Server{echo: e, deps: deps, opts: opts, log: log.With(map[string]interface{}{"component": "api"})}
	e.HTTPErrorHandler = s.errorHandler

	e.Use(middleware.Recover())
	e.Use(s.requestMetrics)
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: origins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	s.routes()
	return s
}

func (s *Server) routes() {
	e := s.echo
	e.GET("/healthz", s.healthz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.GET("/generate-mcqs", s.generateMCQs)

	e.POST("/signup", s.signup)
	e.POST("/login", s.login)
	e.POST("/logout", s.logout, s.requireAuth)

	e.POST("/upload", s.upload, s.optionalAuth)

	e.GET("/jobs", s.listJobs)
	e.GET("/jobs/:id", s.getJob)
	e.POST("/jobs", s.createJob, s.requireAuth, s.requireAdmin)
	e.POST("/jobs/:id/rewrite", s.rewriteJob, s.requireAuth, s.requireAdmin)

	admin := e.Group("/admin", s.requireAuth, s.requireAdmin)
	admin.GET("/resumes", s.listResumes)
	admin.GET("/resumes/:id", s.getResume)
	admin.POST("/schedule", s.scheduleInterview)
	admin.POST("/report", s.hiringReport)
	admin.GET("/reports", s.listReports)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() *echo.Echo {
	return s.echo
}

func (s *Server) Start(addr string) error {
	s.log.Info("server online", map[string]interface{}{"address": addr})
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
