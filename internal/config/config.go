package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"dinotidus/internal/logging"
	"dinotidus/pkg/neural"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DINO_"

type Config struct {
	Model   ModelConfig           `yaml:"model" toml:"model"`
	Agent   AgentConfig           `yaml:"agent" toml:"agent"`
	Server  ServerConfig          `yaml:"server" toml:"server"`
	Logging logging.LoggingConfig `yaml:"logging" toml:"logging"`
}

type ModelConfig struct {
	VocabSize    int     `yaml:"vocab_size" toml:"vocab_size"`
	InputSize    int     `yaml:"input_size" toml:"input_size"`
	HiddenSize   int     `yaml:"hidden_size" toml:"hidden_size"`
	OutputSize   int     `yaml:"output_size" toml:"output_size"`
	LearningRate float64 `yaml:"learning_rate" toml:"learning_rate"`
	Epochs       int     `yaml:"epochs" toml:"epochs"`
}

type AgentConfig struct {
	UseClassifier bool          `yaml:"use_classifier" toml:"use_classifier"`
	ThinkDelay    time.Duration `yaml:"think_delay" toml:"think_delay"`
	HistoryLimit  int           `yaml:"history_limit" toml:"history_limit"`
	// Seed pins weight initialization and template choice. Zero means random.
	Seed int64 `yaml:"seed" toml:"seed"`
}

type ServerConfig struct {
	HTTPAddr        string        `yaml:"http_addr" toml:"http_addr"`
	GRPCAddr        string        `yaml:"grpc_addr" toml:"grpc_addr"`
	GinMode         string        `yaml:"gin_mode" toml:"gin_mode"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
}

// Network converts the model section into network dimensions.
func (m ModelConfig) Network() neural.Config {
	return neural.Config{
		VocabSize:    m.VocabSize,
		InputSize:    m.InputSize,
		HiddenSize:   m.HiddenSize,
		OutputSize:   m.OutputSize,
		LearningRate: m.LearningRate,
		Epochs:       m.Epochs,
	}
}

func Default() *Config {
	n := neural.DefaultConfig()
	return &Config{
		Model: ModelConfig{
			VocabSize:    n.VocabSize,
			InputSize:    n.InputSize,
			HiddenSize:   n.HiddenSize,
			OutputSize:   n.OutputSize,
			LearningRate: n.LearningRate,
			Epochs:       n.Epochs,
		},
		Agent: AgentConfig{
			UseClassifier: true,
			ThinkDelay:    1500 * time.Millisecond,
			HistoryLimit:  100,
		},
		Server: ServerConfig{
			HTTPAddr:        ":8080",
			GRPCAddr:        ":9090",
			GinMode:         "release",
			ShutdownTimeout: 5 * time.Second,
		},
		Logging: logging.LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// Load builds the configuration from defaults, the project .env file, an
// optional YAML or TOML file and DINO_* environment variables, in that order.
func Load(path string) (*Config, error) {
	cfg := Default()

	envPath := filepath.Join(findProjectRoot(), ".env")
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envPath, err)
		}
	}

	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to decode config file: %w", err)
		}
	case ".toml":
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return fmt.Errorf("failed to decode config file: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config format %q", ext)
	}
	return nil
}

// SaveFile writes cfg as YAML or TOML depending on the extension of path.
func SaveFile(path string, cfg *Config) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" && ext != ".toml" {
		return fmt.Errorf("unsupported config format %q", ext)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if ext == ".toml" {
		if err := toml.NewEncoder(f).Encode(cfg); err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		return nil
	}

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}

func (c *Config) Validate() error {
	var errs []error
	if err := c.Model.Network().Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Agent.ThinkDelay < 0 {
		errs = append(errs, fmt.Errorf("agent.think_delay must not be negative"))
	}
	if c.Agent.HistoryLimit < 0 {
		errs = append(errs, fmt.Errorf("agent.history_limit must not be negative"))
	}
	if c.Server.HTTPAddr == "" {
		errs = append(errs, fmt.Errorf("server.http_addr is required"))
	}
	if c.Server.GRPCAddr == "" {
		errs = append(errs, fmt.Errorf("server.grpc_addr is required"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	var errs []error
	setInt := func(key string, dst *int) {
		if v, ok := lookupEnv(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = n
		}
	}
	setString := func(key string, dst *string) {
		if v, ok := lookupEnv(key); ok {
			*dst = v
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if v, ok := lookupEnv(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = d
		}
	}

	setInt("VOCAB_SIZE", &cfg.Model.VocabSize)
	setInt("INPUT_SIZE", &cfg.Model.InputSize)
	setInt("HIDDEN_SIZE", &cfg.Model.HiddenSize)
	setInt("OUTPUT_SIZE", &cfg.Model.OutputSize)
	setInt("EPOCHS", &cfg.Model.Epochs)
	if v, ok := lookupEnv("LEARNING_RATE"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sLEARNING_RATE: %w", EnvPrefix, err))
		} else {
			cfg.Model.LearningRate = f
		}
	}

	if v, ok := lookupEnv("USE_CLASSIFIER"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sUSE_CLASSIFIER: %w", EnvPrefix, err))
		} else {
			cfg.Agent.UseClassifier = b
		}
	}
	setDuration("THINK_DELAY", &cfg.Agent.ThinkDelay)
	setInt("HISTORY_LIMIT", &cfg.Agent.HistoryLimit)
	if v, ok := lookupEnv("SEED"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sSEED: %w", EnvPrefix, err))
		} else {
			cfg.Agent.Seed = n
		}
	}

	setString("HTTP_ADDR", &cfg.Server.HTTPAddr)
	setString("GRPC_ADDR", &cfg.Server.GRPCAddr)
	setString("GIN_MODE", &cfg.Server.GinMode)
	setDuration("SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)

	setString("LOG_LEVEL", &cfg.Logging.Level)
	setString("LOG_FORMAT", &cfg.Logging.Format)
	setString("LOG_OUTPUT", &cfg.Logging.Output)

	return errors.Join(errs...)
}

func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func findProjectRoot() string {
	cwd, _ := os.Getwd()
	// First check CWD for .env file
	if _, err := os.Stat(filepath.Join(cwd, ".env")); err == nil {
		return cwd
	}
	// Then walk up looking for go.mod
	for {
		if _, err := os.Stat(filepath.Join(cwd, "go.mod")); err == nil {
			return cwd
		}
		parent := filepath.Dir(cwd)
		if parent == cwd {
			return cwd
		}
		cwd = parent
	}
}
