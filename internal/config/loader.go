package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envAliases binds config keys to the plain environment variable names the
// deployment already uses.
var envAliases = map[string][]string{
	"gemini.api_key":    {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
	"mongo.uri":         {"MONGO_URI"},
	"postgres.url":      {"POSTGRES_URL", "DB_URL"},
	"redis.address":     {"REDIS_ADDRESS", "REDIS_ADDR"},
	"rabbitmq.url":      {"RABBITMQ_URL"},
	"r2.account_id":     {"R2_ACCOUNT_ID", "R2_ACCCOUNT_ID"},
	"r2.bucket":         {"R2_BUCKET"},
	"r2.access_key":     {"R2_ACCESS_KEY"},
	"r2.secret_key":     {"R2_SECRET_KEY"},
	"ses.region":        {"SES_REGION", "AWS_REGION"},
	"ses.sender":        {"SES_SENDER"},
	"server.port":       {"SERVER_PORT", "PORT"},
	"logging.level":     {"LOG_LEVEL"},
	"logging.format":    {"LOG_FORMAT"},
	"app.environment":   {"APP_ENVIRONMENT"},
	"mcq.default_topic": {"MCQ_DEFAULT_TOPIC"},
}

// Load reads config.yaml (and config.<APP_ENVIRONMENT>.yaml when present) from
// the usual locations, then applies environment overrides and defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig()

	return build(v)
}

// LoadFromFile loads configuration from an explicit path.
func LoadFromFile(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return build(v)
}

func build(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for key, names := range envAliases {
		args := append([]string{key}, names...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "facultyhire")
	v.SetDefault("app.environment", "development")
	v.SetDefault("server.port", 5001)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.text_model", "gemini-2.0-flash-001")
	v.SetDefault("gemini.embedding_model", "gemini-embedding-001")
	v.SetDefault("gemini.analyzer_model", "gemini-2.5-pro")
	v.SetDefault("gemini.timeout", 2*time.Minute)
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "faculty_recruitment")
	v.SetDefault("mongo.collection", "candidates")
	v.SetDefault("postgres.url", "")
	v.SetDefault("postgres.max_connections", 25)
	v.SetDefault("postgres.max_idle", 5)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("rabbitmq.url", "")
	v.SetDefault("rabbitmq.queue", "resume_screenings")
	v.SetDefault("rabbitmq.exchange", "screening_updates")
	v.SetDefault("rabbitmq.workers", 3)
	v.SetDefault("r2.account_id", "")
	v.SetDefault("r2.bucket", "")
	v.SetDefault("r2.access_key", "")
	v.SetDefault("r2.secret_key", "")
	v.SetDefault("ses.region", "us-east-1")
	v.SetDefault("ses.sender", "")
	v.SetDefault("mcq.default_topic", "Artificial Intelligence")
	v.SetDefault("mcq.count", 51)
	v.SetDefault("mcq.cache_ttl", 6*time.Hour)
	v.SetDefault("screening.job_title", "Assistant Professor, AI/ML")
	v.SetDefault("screening.job_description", "Looking for an AI/ML professor with research experience.")
	v.SetDefault("screening.shortlist_threshold", 0.6)
	v.SetDefault("screening.interview_threshold", 0.7)
	v.SetDefault("screening.interview_timezone", "UTC")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.admin_emails", []string{})
}

// applyDefaults repairs zero values a config file may have set explicitly.
func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5001
	}
	if cfg.RabbitMQ.Workers <= 0 {
		cfg.RabbitMQ.Workers = 3
	}
	if cfg.MCQ.Count <= 0 {
		cfg.MCQ.Count = 51
	}
	if strings.TrimSpace(cfg.MCQ.DefaultTopic) == "" {
		cfg.MCQ.DefaultTopic = "Artificial Intelligence"
	}
	if cfg.Gemini.Timeout <= 0 {
		cfg.Gemini.Timeout = 2 * time.Minute
	}
	if cfg.Auth.TokenTTL <= 0 {
		cfg.Auth.TokenTTL = 24 * time.Hour
	}
	for i, email := range cfg.Auth.AdminEmails {
		cfg.Auth.AdminEmails[i] = strings.ToLower(strings.TrimSpace(email))
	}
}

// Validate checks the keys every entry point needs. Individual commands check
// their own optional dependencies.
func (c *Config) Validate() error {
	if c.Gemini.APIKey == "" {
		return fmt.Errorf("gemini.api_key is required")
	}
	if c.Mongo.URI == "" {
		return fmt.Errorf("mongo.uri is required")
	}
	if c.Mongo.Database == "" || c.Mongo.Collection == "" {
		return fmt.Errorf("mongo.database and mongo.collection are required")
	}
	if c.Screening.ShortlistThreshold < 0 || c.Screening.ShortlistThreshold > 1 {
		return fmt.Errorf("screening.shortlist_threshold must be within [0, 1]")
	}
	if c.Screening.InterviewThreshold < 0 || c.Screening.InterviewThreshold > 1 {
		return fmt.Errorf("screening.interview_threshold must be within [0, 1]")
	}
	if _, err := c.Screening.InterviewLocation(); err != nil {
		return fmt.Errorf("screening.interview_timezone: %w", err)
	}
	return nil
}
