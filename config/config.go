package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"certview/internal/validation"
)

// Environment represents the application environment.
type Environment string

const (
	EnvDev  Environment = "dev"
	EnvProd Environment = "prod"
)

const (
	defaultPort           = "52100"
	defaultBackendTimeout = 10 * time.Second
	defaultRetryMax       = 2
	defaultStatusCacheTTL = 30 * time.Second
)

// Config holds application configuration.
type Config struct {
	Env            Environment
	Port           string
	LogLevel       string
	LogFormat      string
	LogOutput      string
	LogFilePath    string
	Backend        BackendConfig
	StatusCacheTTL time.Duration
}

// BackendConfig describes the certificate authority the console reads from.
type BackendConfig struct {
	Addr        string
	Timeout     time.Duration
	RetryMax    int
	TLSInsecure bool
	// RevokeURL overrides the action of the revocation form; defaults to
	// {Addr}/admin/revoke.
	RevokeURL string
}

// SettingsFile is the on-disk form of the configuration (JSON or YAML).
type SettingsFile struct {
	App     AppSettings     `json:"app" yaml:"app"`
	Backend BackendSettings `json:"backend" yaml:"backend"`
}

type AppSettings struct {
	Env            string          `json:"env" yaml:"env"`
	Logging        LoggingSettings `json:"logging" yaml:"logging"`
	Port           int             `json:"port" yaml:"port"`
	StatusCacheTTL string          `json:"status_cache_ttl" yaml:"status_cache_ttl"`
}

type LoggingSettings struct {
	Level    string `json:"level" yaml:"level"`
	Format   string `json:"format" yaml:"format"`
	Output   string `json:"output" yaml:"output"`
	FilePath string `json:"file_path" yaml:"file_path"`
}

type BackendSettings struct {
	Address     string `json:"address" yaml:"address"`
	Timeout     string `json:"timeout" yaml:"timeout"`
	RetryMax    *int   `json:"retry_max" yaml:"retry_max"`
	TLSInsecure bool   `json:"tls_insecure" yaml:"tls_insecure"`
	RevokeURL   string `json:"revoke_url" yaml:"revoke_url"`
}

// Load reads configuration from a settings file when one is found, otherwise
// from environment variables (after loading .env).
func Load() (Config, error) {
	_ = godotenv.Load()
	settings, settingsPath, settingsErr := loadSettingsFile()
	var cfg Config
	switch {
	case settingsErr == nil && settings != nil:
		built, err := buildConfigFromSettings(*settings)
		if err != nil {
			return Config{}, fmt.Errorf("invalid settings file %s: %w", settingsPath, err)
		}
		cfg = built
	case settingsPath != "":
		return Config{}, fmt.Errorf("read settings file %s: %w", settingsPath, settingsErr)
	default:
		built, err := buildConfigFromEnv()
		if err != nil {
			return Config{}, err
		}
		cfg = built
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values Load produced.
func (c Config) Validate() error {
	if err := validation.ValidatePort(c.Port); err != nil {
		return fmt.Errorf("port %q: %w", c.Port, err)
	}
	if err := validation.ValidateBackendAddress(c.Backend.Addr); err != nil {
		return fmt.Errorf("backend address %q: %w", c.Backend.Addr, err)
	}
	if err := validation.ValidateTimeout(c.Backend.Timeout); err != nil {
		return fmt.Errorf("backend timeout %s: %w", c.Backend.Timeout, err)
	}
	if err := validation.ValidateRetryMax(c.Backend.RetryMax); err != nil {
		return fmt.Errorf("backend retry max %d: %w", c.Backend.RetryMax, err)
	}
	return nil
}

func loadSettingsFile() (*SettingsFile, string, error) {
	settingsPath := strings.TrimSpace(getEnv("SETTINGS_PATH", ""))
	if settingsPath != "" {
		settings, err := readSettings(settingsPath)
		return settings, settingsPath, err
	}

	envName := strings.ToLower(strings.TrimSpace(getEnv("APP_ENV", "dev")))
	candidates := []string{
		fmt.Sprintf("settings.%s.json", envName),
		fmt.Sprintf("settings.%s.yaml", envName),
		"settings.json",
		"settings.yaml",
		"/etc/certview/settings.json",
		"/etc/certview/settings.yaml",
	}
	for _, candidate := range candidates {
		absPath, absErr := filepath.Abs(candidate)
		if absErr != nil {
			continue
		}
		if _, statErr := os.Stat(absPath); statErr != nil {
			continue
		}
		settings, err := readSettings(absPath)
		return settings, absPath, err
	}
	return nil, "", os.ErrNotExist
}

func readSettings(path string) (*SettingsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var settings SettingsFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &settings)
	default:
		err = json.Unmarshal(data, &settings)
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func buildConfigFromSettings(settings SettingsFile) (Config, error) {
	envValue := strings.TrimSpace(settings.App.Env)
	if envValue == "" {
		envValue = "dev"
	}
	env := parseEnv(envValue)
	port := defaultPort
	if settings.App.Port > 0 {
		port = strconv.Itoa(settings.App.Port)
	}
	logging := settings.App.Logging
	cfg := Config{
		Env:         env,
		Port:        port,
		LogLevel:    firstNonEmpty(logging.Level, defaultLogLevel(env)),
		LogFormat:   firstNonEmpty(logging.Format, defaultLogFormat(env)),
		LogOutput:   firstNonEmpty(logging.Output, "stdout"),
		LogFilePath: strings.TrimSpace(logging.FilePath),
		Backend: BackendConfig{
			Addr:        strings.TrimSpace(settings.Backend.Address),
			Timeout:     defaultBackendTimeout,
			RetryMax:    defaultRetryMax,
			TLSInsecure: settings.Backend.TLSInsecure,
			RevokeURL:   strings.TrimSpace(settings.Backend.RevokeURL),
		},
		StatusCacheTTL: defaultStatusCacheTTL,
	}
	if settings.Backend.RetryMax != nil {
		cfg.Backend.RetryMax = *settings.Backend.RetryMax
	}
	if value := strings.TrimSpace(settings.Backend.Timeout); value != "" {
		timeout, err := time.ParseDuration(value)
		if err != nil {
			return Config{}, fmt.Errorf("backend timeout: %w", err)
		}
		cfg.Backend.Timeout = timeout
	}
	if value := strings.TrimSpace(settings.App.StatusCacheTTL); value != "" {
		ttl, err := time.ParseDuration(value)
		if err != nil {
			return Config{}, fmt.Errorf("status cache ttl: %w", err)
		}
		cfg.StatusCacheTTL = ttl
	}
	return cfg, nil
}

func buildConfigFromEnv() (Config, error) {
	env := parseEnv(getEnv("APP_ENV", "dev"))
	timeout, err := getEnvDuration("CERTVIEW_BACKEND_TIMEOUT", defaultBackendTimeout)
	if err != nil {
		return Config{}, err
	}
	statusTTL, err := getEnvDuration("CERTVIEW_STATUS_CACHE_TTL", defaultStatusCacheTTL)
	if err != nil {
		return Config{}, err
	}
	return Config{
		Env:         env,
		Port:        getEnv("PORT", defaultPort),
		LogLevel:    getEnv("LOG_LEVEL", defaultLogLevel(env)),
		LogFormat:   getEnv("LOG_FORMAT", defaultLogFormat(env)),
		LogOutput:   getEnv("LOG_OUTPUT", "stdout"),
		LogFilePath: getEnv("LOG_FILE_PATH", ""),
		Backend: BackendConfig{
			Addr:        strings.TrimSpace(getEnv("CERTVIEW_BACKEND_ADDR", "")),
			Timeout:     timeout,
			RetryMax:    getEnvInt("CERTVIEW_BACKEND_RETRY_MAX", defaultRetryMax),
			TLSInsecure: strings.ToLower(getEnv("CERTVIEW_BACKEND_TLS_INSECURE", "false")) == "true",
			RevokeURL:   strings.TrimSpace(getEnv("CERTVIEW_REVOKE_URL", "")),
		},
		StatusCacheTTL: statusTTL,
	}, nil
}

// IsDev returns true if the environment is development.
func (c Config) IsDev() bool {
	return c.Env == EnvDev
}

// IsProd returns true if the environment is production.
func (c Config) IsProd() bool {
	return c.Env == EnvProd
}

func parseEnv(s string) Environment {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "prod", "production":
		return EnvProd
	default:
		return EnvDev
	}
}

func defaultLogLevel(env Environment) string {
	if env == EnvProd {
		return "info"
	}
	return "debug"
}

func defaultLogFormat(env Environment) string {
	if env == EnvProd {
		return "json"
	}
	return "console"
}

func firstNonEmpty(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, nil
}
