package config

import (
	"fmt"
	"time"
)

// Config is the root application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Mongo     MongoConfig     `mapstructure:"mongo"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RabbitMQ  RabbitMQConfig  `mapstructure:"rabbitmq"`
	R2        R2Config        `mapstructure:"r2"`
	SES       SESConfig       `mapstructure:"ses"`
	MCQ       MCQConfig       `mapstructure:"mcq"`
	Screening ScreeningConfig `mapstructure:"screening"`
	Auth      AuthConfig      `mapstructure:"auth"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port        int      `mapstructure:"port"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// Address returns the listen address for the HTTP server.
func (s ServerConfig) Address() string {
	return fmt.Sprintf(":%d", s.Port)
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type GeminiConfig struct {
	APIKey         string        `mapstructure:"api_key"`
	TextModel      string        `mapstructure:"text_model"`
	EmbeddingModel string        `mapstructure:"embedding_model"`
	AnalyzerModel  string        `mapstructure:"analyzer_model"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// MongoConfig names the candidate document store. Database and collection are
// fixed for the lifetime of the process.
type MongoConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

type PostgresConfig struct {
	URL            string `mapstructure:"url"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type RabbitMQConfig struct {
	URL      string `mapstructure:"url"`
	Queue    string `mapstructure:"queue"`
	Exchange string `mapstructure:"exchange"`
	Workers  int    `mapstructure:"workers"`
}

type R2Config struct {
	AccountID string `mapstructure:"account_id"`
	Bucket    string `mapstructure:"bucket"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// Enabled reports whether enough credentials are present to talk to R2.
func (r R2Config) Enabled() bool {
	return r.AccountID != "" && r.Bucket != "" && r.AccessKey != "" && r.SecretKey != ""
}

type SESConfig struct {
	Region string `mapstructure:"region"`
	Sender string `mapstructure:"sender"`
}

type MCQConfig struct {
	DefaultTopic string        `mapstructure:"default_topic"`
	Count        int           `mapstructure:"count"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
}

type ScreeningConfig struct {
	JobTitle           string  `mapstructure:"job_title"`
	JobDescription     string  `mapstructure:"job_description"`
	ShortlistThreshold float64 `mapstructure:"shortlist_threshold"`
	InterviewThreshold float64 `mapstructure:"interview_threshold"`
	// InterviewTimezone is the IANA zone admins enter interview times in.
	InterviewTimezone string `mapstructure:"interview_timezone"`
}

// InterviewLocation resolves InterviewTimezone.
func (s ScreeningConfig) InterviewLocation() (*time.Location, error) {
	return time.LoadLocation(s.InterviewTimezone)
}

type AuthConfig struct {
	TokenTTL    time.Duration `mapstructure:"token_ttl"`
	AdminEmails []string      `mapstructure:"admin_emails"`
}
