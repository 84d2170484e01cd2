package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/muhammadolammi/facultyhire/internal/api"
	"github.com/muhammadolammi/facultyhire/internal/auth"
	"github.com/muhammadolammi/facultyhire/internal/mcq"
	"github.com/muhammadolammi/facultyhire/internal/screening"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runServer(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServer(ctx context.Context) error {
	gemini, err := newGemini(ctx, cfg)
	if err != nil {
		return err
	}

	store, err := openCandidates(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close(context.Background())

	db, queries, err := openPostgres(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	rdb := newRedis(cfg)
	defer rdb.Close()

	deps := api.Deps{
		MCQ: mcq.NewService(gemini, mcq.NewRedisCache(rdb, cfg.MCQ.CacheTTL), log, mcq.ServiceConfig{
			DefaultTopic: cfg.MCQ.DefaultTopic,
			Count:        cfg.MCQ.Count,
		}),
		Auth:       auth.NewService(queries, rdb, cfg.Auth.TokenTTL, cfg.Auth.AdminEmails, log),
		Candidates: store,
		Jobs:       queries,
		Scorer:     screening.NewMatcher(gemini),
		Analyst:    screening.NewAnalyst(gemini),
		Mailer:     newMailer(ctx, cfg, log),
		Health: func(ctx context.Context) error {
			if err := db.PingContext(ctx); err != nil {
				return err
			}
			if err := rdb.Ping(ctx).Err(); err != nil {
				return err
			}
			return store.Ping(ctx)
		},
	}

	objects, err := newObjectStore(ctx, cfg)
	if err != nil {
		return err
	}
	if objects != nil {
		deps.Objects = objects
		if cfg.RabbitMQ.URL != "" {
			conn, publisher, err := dialQueue(cfg)
			if err != nil {
				return err
			}
			defer conn.Close()
			deps.Queue = publisher
		}
	} else {
		log.Warn("R2 not configured, resumes are scored but not stored or screened", nil)
	}

	interviewLoc, err := cfg.Screening.InterviewLocation()
	if err != nil {
		return err
	}
	srv := api.New(deps, api.Options{
		CORSOrigins:        cfg.Server.CORSOrigins,
		JobTitle:           cfg.Screening.JobTitle,
		JobDescription:     cfg.Screening.JobDescription,
		ShortlistThreshold: cfg.Screening.ShortlistThreshold,
		InterviewThreshold: cfg.Screening.InterviewThreshold,
		InterviewLocation:  interviewLoc,
	}, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(cfg.Server.Address())
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
