package mcq

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/muhammadolammi/facultyhire/internal/llm"
	"github.com/muhammadolammi/facultyhire/internal/logger"
)

// Cache stores generated question sets by topic.
type Cache interface {
	Get(ctx context.Context, topic string) ([]MCQ, bool, error)
	Set(ctx context.Context, topic string, questions []MCQ) error
}

// RedisCache keeps question sets in Redis under mcq:<sha256(topic)>.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// CacheKey normalizes topic so "Python" and " python " share an entry.
func CacheKey(topic string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(topic))))
	return "mcq:" + hex.EncodeToString(sum[:])
}

func (c *RedisCache) Get(ctx context.Context, topic string) ([]MCQ, bool, error) {
	raw, err := c.client.Get(ctx, CacheKey(topic)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	var questions []MCQ
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, false, fmt.Errorf("decode cached questions: %w", err)
	}
	return questions, true, nil
}

func (c *RedisCache) Set(ctx context.Context, topic string, questions []MCQ) error {
	raw, err := json.Marshal(questions)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, CacheKey(topic), raw, c.ttl).Err()
}

// Service generates question sets for a topic.
type Service struct {
	gen          llm.Generator
	cache        Cache
	log          logger.Logger
	defaultTopic string
	count        int
}

type ServiceConfig struct {
	DefaultTopic string
	Count        int
}

// NewService wires a generator with an optional cache (nil disables caching).
func NewService(gen llm.Generator, cache Cache, log logger.Logger, cfg ServiceConfig) *Service {
	if cfg.Count <= 0 {
		cfg.Count = 51
	}
	if strings.TrimSpace(cfg.DefaultTopic) == "" {
		cfg.DefaultTopic = "Artificial Intelligence"
	}
	return &Service{
		gen:          gen,
		cache:        cache,
		log:          log.With(map[string]interface{}{"component": "mcq"}),
		defaultTopic: cfg.DefaultTopic,
		count:        cfg.Count,
	}
}

// Generate returns a question set for topic. Model transport failures are
// errors; unparseable model output is a Result with a Failure.
func (s *Service) Generate(ctx context.Context, topic string) (*Result, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = s.defaultTopic
	}

	if s.cache != nil {
		questions, ok, err := s.cache.Get(ctx, topic)
		if err != nil {
			s.log.Warn("mcq cache lookup failed", map[string]interface{}{"topic": topic, "error": err.Error()})
		} else if ok {
			return &Result{Questions: questions, Cached: true}, nil
		}
	}

	raw, err := s.gen.Generate(ctx, BuildPrompt(topic, s.count))
	if err != nil {
		return nil, fmt.Errorf("generate mcqs for %q: %w", topic, err)
	}

	result := Parse(raw)
	if result.Failure != nil {
		s.log.Warn("model output rejected", map[string]interface{}{
			"topic":     topic,
			"exception": result.Failure.Exception,
		})
		return result, nil
	}

	s.log.Info("mcqs generated", map[string]interface{}{"topic": topic, "count": len(result.Questions)})
	if s.cache != nil {
		if err := s.cache.Set(ctx, topic, result.Questions); err != nil {
			s.log.Warn("mcq cache store failed", map[string]interface{}{"topic": topic, "error": err.Error()})
		}
	}
	return result, nil
}
