package main

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/streadway/amqp"

	"github.com/muhammadolammi/facultyhire/internal/candidates"
	"github.com/muhammadolammi/facultyhire/internal/config"
	"github.com/muhammadolammi/facultyhire/internal/database"
	"github.com/muhammadolammi/facultyhire/internal/llm"
	"github.com/muhammadolammi/facultyhire/internal/logger"
	"github.com/muhammadolammi/facultyhire/internal/notify"
	"github.com/muhammadolammi/facultyhire/internal/queue"
	"github.com/muhammadolammi/facultyhire/internal/storage"
)

func newGemini(ctx context.Context, cfg *config.Config) (*llm.GeminiClient, error) {
	return llm.NewGeminiClient(ctx, llm.Options{
		APIKey:         cfg.Gemini.APIKey,
		TextModel:      cfg.Gemini.TextModel,
		EmbeddingModel: cfg.Gemini.EmbeddingModel,
	})
}

func openCandidates(ctx context.Context, cfg *config.Config, log logger.Logger) (*candidates.Store, error) {
	store, err := candidates.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection)
	if err != nil {
		return nil, err
	}
	if err := store.EnsureIndexes(ctx); err != nil {
		log.WithError(err).Warn("could not create candidate indexes", nil)
	}
	log.Info("connected to MongoDB", map[string]interface{}{
		"database":   cfg.Mongo.Database,
		"collection": cfg.Mongo.Collection,
	})
	return store, nil
}

func openPostgres(ctx context.Context, cfg *config.Config) (*sql.DB, *database.Queries, error) {
	if cfg.Postgres.URL == "" {
		return nil, nil, fmt.Errorf("postgres.url is required")
	}
	db, err := database.Open(ctx, cfg.Postgres.URL, cfg.Postgres.MaxConnections, cfg.Postgres.MaxIdle)
	if err != nil {
		return nil, nil, err
	}
	return db, database.New(db), nil
}

func newRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// newObjectStore returns nil when R2 credentials are not configured.
func newObjectStore(ctx context.Context, cfg *config.Config) (*storage.R2, error) {
	if !cfg.R2.Enabled() {
		return nil, nil
	}
	return storage.NewFromConfig(ctx, storage.Config{
		AccountID: cfg.R2.AccountID,
		Bucket:    cfg.R2.Bucket,
		AccessKey: cfg.R2.AccessKey,
		SecretKey: cfg.R2.SecretKey,
	})
}

func newMailer(ctx context.Context, cfg *config.Config, log logger.Logger) notify.Mailer {
	if cfg.SES.Sender == "" {
		return notify.NewLogMailer(log)
	}
	mailer, err := notify.NewSESMailerFromRegion(ctx, cfg.SES.Region, cfg.SES.Sender)
	if err != nil {
		log.WithError(err).Warn("SES unavailable, emails will only be logged", nil)
		return notify.NewLogMailer(log)
	}
	return mailer
}

// dialQueue connects to RabbitMQ and declares the screening topology.
func dialQueue(cfg *config.Config) (*amqp.Connection, *queue.Publisher, error) {
	if cfg.RabbitMQ.URL == "" {
		return nil, nil, fmt.Errorf("rabbitmq.url is required")
	}
	conn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("error connecting to RabbitMQ: %w", err)
	}
	if err := queue.DeclareTopology(conn, cfg.RabbitMQ.Queue, cfg.RabbitMQ.Exchange); err != nil {
		conn.Close()
		return nil, nil, err
	}
	return conn, queue.NewPublisher(conn, cfg.RabbitMQ.Queue, cfg.RabbitMQ.Exchange), nil
}
