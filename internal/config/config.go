package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so yaml values like "30s" parse directly.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Database struct {
		Driver   string `yaml:"driver"` // mysql | postgres
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"database"`

	AI struct {
		APIKey         string   `yaml:"apiKey"`
		BaseURL        string   `yaml:"baseURL"` // any OpenAI-compatible endpoint
		Model          string   `yaml:"model"`
		EmbeddingModel string   `yaml:"embeddingModel"`
		ChatTimeout    Duration `yaml:"chatTimeout"`
		EmbedTimeout   Duration `yaml:"embedTimeout"`
	} `yaml:"ai"`

	Minio struct {
		Enabled    bool   `yaml:"enabled"`
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	Scraper struct {
		FeedTimeout  Duration `yaml:"feedTimeout"`
		FetchTimeout Duration `yaml:"fetchTimeout"`
		UserAgent    string   `yaml:"userAgent"`
	} `yaml:"scraper"`

	Classification struct {
		SimilarityThreshold float64 `yaml:"similarityThreshold"`
		RequireThemeMatch   bool    `yaml:"requireThemeMatch"`
		BodyPreviewChars    int     `yaml:"bodyPreviewChars"`
		MinBodyChars        int     `yaml:"minBodyChars"`
	} `yaml:"classification"`

	Insights struct {
		ArticleExcerptChars int `yaml:"articleExcerptChars"`
	} `yaml:"insights"`

	Batch struct {
		Workers int `yaml:"workers"`
	} `yaml:"batch"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// Load reads the yaml config file and applies env overrides plus defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

// applyEnv lets secrets come from the environment instead of the file.
func (c *Config) applyEnv() {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.AI.APIKey = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("MINIO_ACCESS_KEY"); v != "" {
		c.Minio.AccessKey = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		c.Minio.SecretKey = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "mysql"
	}
	if c.AI.Model == "" {
		c.AI.Model = "gpt-4o-mini"
	}
	if c.AI.EmbeddingModel == "" {
		c.AI.EmbeddingModel = "text-embedding-3-small"
	}
	if c.AI.ChatTimeout == 0 {
		c.AI.ChatTimeout = Duration(60 * time.Second)
	}
	if c.AI.EmbedTimeout == 0 {
		c.AI.EmbedTimeout = Duration(15 * time.Second)
	}
	if c.Scraper.FeedTimeout == 0 {
		c.Scraper.FeedTimeout = Duration(30 * time.Second)
	}
	if c.Scraper.FetchTimeout == 0 {
		c.Scraper.FetchTimeout = Duration(10 * time.Second)
	}
	if c.Scraper.UserAgent == "" {
		c.Scraper.UserAgent = "mediamon-scraper/1.0"
	}
	if c.Classification.SimilarityThreshold == 0 {
		// Balanced recall/precision cutoff for the embedding stage
		c.Classification.SimilarityThreshold = 0.38
	}
	if c.Classification.BodyPreviewChars == 0 {
		c.Classification.BodyPreviewChars = 1200
	}
	if c.Classification.MinBodyChars == 0 {
		c.Classification.MinBodyChars = 50
	}
	if c.Insights.ArticleExcerptChars == 0 {
		c.Insights.ArticleExcerptChars = 2000
	}
	if c.Batch.Workers <= 0 {
		c.Batch.Workers = 1
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// MySQLDSN builds the DSN for the mysql driver.
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// PostgresDSN builds the DSN for the pq driver.
func (c *Config) PostgresDSN() string {
	sslmode := c.Database.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		sslmode,
	)
}
