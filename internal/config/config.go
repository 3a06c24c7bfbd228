package config

import (
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port         int           `yaml:"port" default:"8080"`
		Host         string        `yaml:"host" default:"0.0.0.0"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"30s"`
	} `yaml:"server"`

	Target struct {
		BaseURL      string        `yaml:"base_url"`
		Username     string        `yaml:"username"`
		Password     string        `yaml:"password"`
		LoginPath    string        `yaml:"login_path" default:"/login"`
		SearchPath   string        `yaml:"search_path" default:"/jobs/search"`
		ProfilePath  string        `yaml:"profile_path" default:"/in/me"`
		PageSize     int           `yaml:"page_size" default:"25"`
		NavTimeout   time.Duration `yaml:"nav_timeout" default:"30s"`
		PollInterval time.Duration `yaml:"poll_interval" default:"500ms"`
		PollTimeout  time.Duration `yaml:"poll_timeout" default:"10s"`
	} `yaml:"target"`

	Driver struct {
		HeadlessMode bool   `yaml:"headless_mode" default:"true"`
		UserAgent    string `yaml:"user_agent"`
	} `yaml:"driver"`

	Engine struct {
		MaxPagesPerTask      int           `yaml:"max_pages_per_task" default:"10"`
		WizardMaxRetries     int           `yaml:"wizard_max_retries" default:"3"`
		SubmitConfirmTimeout time.Duration `yaml:"submit_confirm_timeout" default:"8s"`
	} `yaml:"engine"`

	Pacing struct {
		MinDelay            time.Duration `yaml:"min_delay" default:"2s"`
		MaxDelay            time.Duration `yaml:"max_delay" default:"6s"`
		PageCooldownEvery   int           `yaml:"page_cooldown_every" default:"5"`
		PageCooldownMin     time.Duration `yaml:"page_cooldown_min" default:"45s"`
		PageCooldownMax     time.Duration `yaml:"page_cooldown_max" default:"90s"`
		ActionCooldownEvery int           `yaml:"action_cooldown_every" default:"200"`
		ActionCooldownMin   time.Duration `yaml:"action_cooldown_min" default:"5m"`
		ActionCooldownMax   time.Duration `yaml:"action_cooldown_max" default:"10m"`
		KeepAliveInterval   time.Duration `yaml:"keep_alive_interval" default:"60s"`
	} `yaml:"pacing"`

	Ledger struct {
		Dir string `yaml:"dir" default:"ledger"`
	} `yaml:"ledger"`

	ProfileUpdate struct {
		HeadlineVariants []string      `yaml:"headline_variants"`
		SummaryVariants  []string      `yaml:"summary_variants"`
		SaveTimeout      time.Duration `yaml:"save_timeout" default:"15s"`
	} `yaml:"profile_update"`

	Logging struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"json"`
		Output string `yaml:"output" default:"stdout"`

		Adapters []struct {
			Name    string                 `yaml:"name"`
			Type    string                 `yaml:"type"`
			Enabled bool                   `yaml:"enabled"`
			Options map[string]interface{} `yaml:"options"`
		} `yaml:"adapters"`
	} `yaml:"logging"`

	Redis struct {
		URL     string `yaml:"url" default:"redis://localhost:6379"`
		Enabled bool   `yaml:"enabled" default:"false"`
	} `yaml:"redis"`
}

// expandEnvVars expands environment variables in a string using ${VAR} or $VAR syntax
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	s = re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	re2 := regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
	s = re2.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[1:]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	return s
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	_ = godotenv.Load()

	config := &Config{}

	// Set defaults
	config.Server.Port = 8080
	config.Server.Host = "0.0.0.0"
	config.Server.ReadTimeout = 30 * time.Second
	config.Server.WriteTimeout = 30 * time.Second

	config.Target.LoginPath = "/login"
	config.Target.SearchPath = "/jobs/search"
	config.Target.ProfilePath = "/in/me"
	config.Target.PageSize = 25
	config.Target.NavTimeout = 30 * time.Second
	config.Target.PollInterval = 500 * time.Millisecond
	config.Target.PollTimeout = 10 * time.Second

	config.Driver.HeadlessMode = true
	config.Driver.UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	config.Engine.MaxPagesPerTask = 10
	config.Engine.WizardMaxRetries = 3
	config.Engine.SubmitConfirmTimeout = 8 * time.Second

	config.Pacing.MinDelay = 2 * time.Second
	config.Pacing.MaxDelay = 6 * time.Second
	config.Pacing.PageCooldownEvery = 5
	config.Pacing.PageCooldownMin = 45 * time.Second
	config.Pacing.PageCooldownMax = 90 * time.Second
	config.Pacing.ActionCooldownEvery = 200
	config.Pacing.ActionCooldownMin = 5 * time.Minute
	config.Pacing.ActionCooldownMax = 10 * time.Minute
	config.Pacing.KeepAliveInterval = 60 * time.Second

	config.Ledger.Dir = "ledger"

	config.ProfileUpdate.SaveTimeout = 15 * time.Second

	config.Logging.Level = "info"
	config.Logging.Format = "json"
	config.Logging.Output = "stdout"

	config.Redis.URL = "redis://localhost:6379"
	config.Redis.Enabled = false

	// Load from YAML file if it exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			yamlContent := expandEnvVars(string(data))

			if err := yaml.Unmarshal([]byte(yamlContent), config); err != nil {
				return nil, err
			}
		}
	}

	// Override with environment variables
	config.loadFromEnv()

	return config, nil
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if host := os.Getenv("HOST"); host != "" {
		c.Server.Host = host
	}

	if baseURL := os.Getenv("TARGET_BASE_URL"); baseURL != "" {
		c.Target.BaseURL = baseURL
	}

	if username := os.Getenv("TARGET_USERNAME"); username != "" {
		c.Target.Username = username
	}

	if password := os.Getenv("TARGET_PASSWORD"); password != "" {
		c.Target.Password = password
	}

	if navTimeout := os.Getenv("TARGET_NAV_TIMEOUT"); navTimeout != "" {
		if d, err := time.ParseDuration(navTimeout); err == nil {
			c.Target.NavTimeout = d
		}
	}

	if headless := os.Getenv("DRIVER_HEADLESS"); headless != "" {
		c.Driver.HeadlessMode = headless == "true" || headless == "1"
	}

	if userAgent := os.Getenv("DRIVER_USER_AGENT"); userAgent != "" {
		c.Driver.UserAgent = userAgent
	}

	if maxRetries := os.Getenv("ENGINE_WIZARD_MAX_RETRIES"); maxRetries != "" {
		if n, err := strconv.Atoi(maxRetries); err == nil {
			c.Engine.WizardMaxRetries = n
		}
	}

	if maxPages := os.Getenv("ENGINE_MAX_PAGES_PER_TASK"); maxPages != "" {
		if n, err := strconv.Atoi(maxPages); err == nil {
			c.Engine.MaxPagesPerTask = n
		}
	}

	if minDelay := os.Getenv("PACING_MIN_DELAY"); minDelay != "" {
		if d, err := time.ParseDuration(minDelay); err == nil {
			c.Pacing.MinDelay = d
		}
	}

	if maxDelay := os.Getenv("PACING_MAX_DELAY"); maxDelay != "" {
		if d, err := time.ParseDuration(maxDelay); err == nil {
			c.Pacing.MaxDelay = d
		}
	}

	if ledgerDir := os.Getenv("LEDGER_DIR"); ledgerDir != "" {
		c.Ledger.Dir = ledgerDir
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.URL = redisURL
		c.Redis.Enabled = true
	}

	if redisEnabled := os.Getenv("REDIS_ENABLED"); redisEnabled != "" {
		c.Redis.Enabled = redisEnabled == "true" || redisEnabled == "1"
	}
}
