package config

import (
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    Server    `yaml:"server"`
	Apify     Apify     `yaml:"apify"`
	RateLimit RateLimit `yaml:"rate_limit"`
	Cache     Cache     `yaml:"cache"`
	Database  Database  `yaml:"database"`
	Retention Retention `yaml:"retention"`
	S3        S3        `yaml:"s3"`
}

// Server holds HTTP server configuration
type Server struct {
	Host         string        `yaml:"host" env:"SERVER_HOST" env-default:"0.0.0.0"`
	Port         string        `yaml:"port" env:"SERVER_PORT" env-default:"8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" env-default:"15s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" env-default:"60s"`
}

// Address returns the full server address
func (s Server) Address() string {
	return s.Host + ":" + s.Port
}

// Apify holds vendor API configuration. An empty token disables vendor
// scraping; every request is then served from synthetic data.
type Apify struct {
	BaseURL string `yaml:"base_url" env:"APIFY_BASE_URL" env-default:"https://api.apify.com"`
	Token   string `yaml:"token" env:"APIFY_TOKEN"`

	// Per-platform actor IDs
	InstagramActor string `yaml:"instagram_actor" env:"APIFY_INSTAGRAM_ACTOR" env-default:"apify~instagram-profile-scraper"`
	TwitterActor   string `yaml:"twitter_actor" env:"APIFY_TWITTER_ACTOR" env-default:"quacker~twitter-scraper"`
	FacebookActor  string `yaml:"facebook_actor" env:"APIFY_FACEBOOK_ACTOR" env-default:"apify~facebook-pages-scraper"`
	TikTokActor    string `yaml:"tiktok_actor" env:"APIFY_TIKTOK_ACTOR" env-default:"clockworks~tiktok-profile-scraper"`
	YouTubeActor   string `yaml:"youtube_actor" env:"APIFY_YOUTUBE_ACTOR" env-default:"streamers~youtube-scraper"`
	LinkedInActor  string `yaml:"linkedin_actor" env:"APIFY_LINKEDIN_ACTOR"`

	PollInterval time.Duration `yaml:"poll_interval" env:"APIFY_POLL_INTERVAL" env-default:"5s"`
	MaxPolls     int           `yaml:"max_polls" env:"APIFY_MAX_POLLS" env-default:"15"`
	RunBudget    time.Duration `yaml:"run_budget" env:"APIFY_RUN_BUDGET" env-default:"300s"`

	// fallback or fail_closed
	FailurePolicy string `yaml:"failure_policy" env:"APIFY_FAILURE_POLICY" env-default:"fallback"`
}

// RateLimit holds scrape pacing configuration
type RateLimit struct {
	Spacing         time.Duration `yaml:"spacing" env:"RATELIMIT_SPACING" env-default:"30s"`
	HardWindow      time.Duration `yaml:"hard_window" env:"RATELIMIT_HARD_WINDOW" env-default:"10s"`
	MaxWait         time.Duration `yaml:"max_wait" env:"RATELIMIT_MAX_WAIT" env-default:"5s"`
	ProfileInterval time.Duration `yaml:"profile_interval" env:"RATELIMIT_PROFILE_INTERVAL" env-default:"10m"`
}

// Cache holds Redis cache configuration
type Cache struct {
	Enabled  bool          `yaml:"enabled" env:"CACHE_ENABLED" env-default:"false"`
	Addr     string        `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	TTL      time.Duration `yaml:"ttl" env:"CACHE_TTL" env-default:"10m"`
}

// Database holds database configuration. An empty DSN runs the service
// without history persistence.
type Database struct {
	PostgresDSN string `yaml:"postgres_dsn" env:"DATABASE_URL"`
}

// Retention holds scrape history retention configuration
type Retention struct {
	Enabled  bool          `yaml:"enabled" env:"RETENTION_ENABLED" env-default:"false"`
	Interval time.Duration `yaml:"interval" env:"RETENTION_INTERVAL" env-default:"1h"`
	MaxAge   time.Duration `yaml:"max_age" env:"RETENTION_MAX_AGE" env-default:"720h"`
}

// S3 holds S3/MinIO payload archive configuration
type S3 struct {
	Enabled         bool   `yaml:"enabled" env:"S3_ENABLED" env-default:"false"`
	Endpoint        string `yaml:"endpoint" env:"S3_ENDPOINT" env-default:"http://localhost:9000"`
	AccessKeyID     string `yaml:"access_key_id" env:"S3_ACCESS_KEY_ID" env-default:"minioadmin"`
	SecretAccessKey string `yaml:"secret_access_key" env:"S3_SECRET_ACCESS_KEY" env-default:"minioadmin"`
	Bucket          string `yaml:"bucket" env:"S3_BUCKET" env-default:"payloads"`
	Region          string `yaml:"region" env:"S3_REGION" env-default:"us-east-1"`
}

// MustLoad loads configuration from environment and panics on error
func MustLoad() Config {
	// Load .env file if exists (for development)
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	return cfg
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
