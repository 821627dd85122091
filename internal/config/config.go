// Package config loads the runtime configuration: repositories to index,
// storage settings, summarization bounds and the model-tier table.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/michael-madume-trilogy/ai-repo-summarization/internal/llm"
)

type RepositoryConfig struct {
	// Path is the repository root on disk.
	Path string `yaml:"path"`
	// Name keys the persisted index artifact; defaults to the path base name.
	Name string `yaml:"name"`
}

type ArtifactConfig struct {
	// Backend is "file" (default) or "s3".
	Backend   string `yaml:"backend"`
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	UseSSL    bool   `yaml:"useSSL"`
}

type Config struct {
	Repositories     []RepositoryConfig `yaml:"repositories"`
	ExcludedProjects []string           `yaml:"excludedProjects"`
	StorageDir       string             `yaml:"storageDir"`
	BatchSize        int                `yaml:"batchSize"`
	Rounds           int                `yaml:"rounds"`
	SourceExt        string             `yaml:"sourceExt"`
	SummarizableExts []string           `yaml:"summarizableExts"`
	TruncateChars    int                `yaml:"truncateChars"`
	Tiers            []llm.Tier         `yaml:"tiers"`
	Artifact         ArtifactConfig     `yaml:"artifact"`
	GeminiAPIKey     string             `yaml:"-"`
}

// Load reads .env, then the YAML config file, then environment overrides.
// Configuration problems abort the load: no partial run is attempted on a
// broken setup.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("AST_STORAGE_DIR")); v != "" {
		c.StorageDir = v
	}
	if v := strings.TrimSpace(os.Getenv("AST_BATCH_SIZE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.BatchSize = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("AST_ROUNDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Rounds = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("AST_EXCLUDED_PROJECTS")); v != "" {
		c.ExcludedProjects = splitList(v)
	}
	c.GeminiAPIKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
}

func (c *Config) applyDefaults() {
	if c.StorageDir == "" {
		c.StorageDir = "ast-indexes"
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 50
	}
	if c.Rounds <= 0 {
		c.Rounds = 3
	}
	if c.SourceExt == "" {
		c.SourceExt = ".ts"
	}
	if len(c.SummarizableExts) == 0 {
		c.SummarizableExts = []string{".ts", ".tsx", ".html", ".json", ".yml", ".yaml"}
	}
	if c.TruncateChars <= 0 {
		c.TruncateChars = 400_000
	}
	if len(c.Tiers) == 0 {
		c.Tiers = llm.DefaultTiers()
	}
	if c.Artifact.Backend == "" {
		c.Artifact.Backend = "file"
	}
	for i := range c.Repositories {
		if c.Repositories[i].Name == "" {
			c.Repositories[i].Name = filepath.Base(strings.TrimRight(c.Repositories[i].Path, "/"))
		}
	}
}

func (c *Config) validate() error {
	if len(c.Repositories) == 0 {
		return fmt.Errorf("config: at least one repository is required")
	}
	for _, r := range c.Repositories {
		info, err := os.Stat(r.Path)
		if err != nil {
			return fmt.Errorf("config: repository %s: %w", r.Path, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("config: repository %s is not a directory", r.Path)
		}
	}
	tiers, err := llm.NormalizeTiers(c.Tiers)
	if err != nil {
		return err
	}
	c.Tiers = tiers
	switch c.Artifact.Backend {
	case "file", "s3":
	default:
		return fmt.Errorf("config: unknown artifact backend %q", c.Artifact.Backend)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
