// Package config assembles the settings shared by the linkshrink binaries.
// Values are layered in increasing priority: defaults, JSON file, environment
// (optionally loaded from .env), command line flags.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	GatewayURL     string        `env:"GATEWAY_URL" validate:"required,url"`
	RunAddr        string        `env:"SERVER_ADDRESS" validate:"hostname_port"`
	StaticDir      string        `env:"STATIC_DIR" validate:"filepath"`
	LogLevel       string        `env:"LOG_LEVEL" validate:"loglevel"`
	LogFile        string        `env:"LOG_FILE" validate:"omitempty,filepath"`
	SessionFile    string        `env:"SESSION_FILE" validate:"omitempty,filepath"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
	TrustedSubnet  string        `env:"TRUSTED_SUBNET" validate:"omitempty,cidr"`
	ConfigFile     string        `env:"CONFIG"`

	// Args holds the command line arguments left after flag parsing.
	Args []string
}

type jsonConfig struct {
	GatewayURL     string `json:"gateway_url"`
	RunAddr        string `json:"server_address"`
	StaticDir      string `json:"static_dir"`
	LogLevel       string `json:"log_level"`
	LogFile        string `json:"log_file"`
	SessionFile    string `json:"session_file"`
	RequestTimeout string `json:"request_timeout"`
	TrustedSubnet  string `json:"trusted_subnet"`
}

var defaultConfig = Config{
	GatewayURL:     "http://gateway:80",
	RunAddr:        ":5173",
	StaticDir:      "web",
	LogLevel:       "info",
	RequestTimeout: 10 * time.Second,
}

// InMemorySession as the session file keeps the token in memory only, so
// it is gone when the process exits.
const InMemorySession = ":memory:"

// DefaultSessionFile returns ~/.linkshrink/session.json, or an empty string
// when the home directory is unknown.
func DefaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".linkshrink", "session.json")
}

func validateFilePath(fieldLevel validator.FieldLevel) bool {
	path := fieldLevel.Field().String()
	_, err := os.Stat(path)

	return err == nil || os.IsNotExist(err)
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	value := fieldLevel.Field().String()

	allowedLogLevels := map[string]bool{
		"debug":   true,
		"info":    true,
		"warning": true,
		"error":   true,
		"fatal":   true,
	}

	return allowedLogLevels[value]
}

func (c *Config) validate() error {
	validate := validator.New()

	err := validate.RegisterValidation("loglevel", validateLogLevel)
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("filepath", validateFilePath)
	if err != nil {
		return err
	}

	return validate.Struct(c)
}

type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
	args                []string
}

func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

// WithArgs parses the given arguments instead of os.Args[1:].
func WithArgs(args []string) InitOption {
	return func(options *initOptions) {
		options.args = args
	}
}

// applyDefaults copies every non-zero field of src over dst.
func applyDefaults(dst *Config, src Config) {
	if src.GatewayURL != "" {
		dst.GatewayURL = src.GatewayURL
	}
	if src.RunAddr != "" {
		dst.RunAddr = src.RunAddr
	}
	if src.StaticDir != "" {
		dst.StaticDir = src.StaticDir
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.LogFile != "" {
		dst.LogFile = src.LogFile
	}
	if src.SessionFile != "" {
		dst.SessionFile = src.SessionFile
	}
	if src.RequestTimeout != 0 {
		dst.RequestTimeout = src.RequestTimeout
	}
	if src.TrustedSubnet != "" {
		dst.TrustedSubnet = src.TrustedSubnet
	}
	if src.ConfigFile != "" {
		dst.ConfigFile = src.ConfigFile
	}
}

func loadJSONFile(fileName string) (Config, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return Config{}, fmt.Errorf("error reading config file: %w", err)
	}

	var raw jsonConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("error parsing config file: %w", err)
	}

	result := Config{
		GatewayURL:    raw.GatewayURL,
		RunAddr:       raw.RunAddr,
		StaticDir:     raw.StaticDir,
		LogLevel:      raw.LogLevel,
		LogFile:       raw.LogFile,
		SessionFile:   raw.SessionFile,
		TrustedSubnet: raw.TrustedSubnet,
	}
	if raw.RequestTimeout != "" {
		result.RequestTimeout, err = time.ParseDuration(raw.RequestTimeout)
		if err != nil {
			return Config{}, fmt.Errorf("error parsing request_timeout: %w", err)
		}
	}

	return result, nil
}

func parseFlags(args []string) (Config, []string, error) {
	var values Config
	flagSet := flag.NewFlagSet(filepath.Base(os.Args[0]), flag.ContinueOnError)
	flagSet.StringVar(&values.GatewayURL, "g", "", "gateway base URL")
	flagSet.StringVar(&values.RunAddr, "a", "", "address and port to run the dev server")
	flagSet.StringVar(&values.StaticDir, "s", "", "directory with static frontend files")
	flagSet.StringVar(&values.LogLevel, "l", "", "logger level")
	flagSet.StringVar(&values.LogFile, "o", "", "file to write logs to")
	flagSet.StringVar(&values.SessionFile, "f", "", "JSON file holding the session token, or "+InMemorySession+" to keep it in memory")
	flagSet.DurationVar(&values.RequestTimeout, "t", 0, "gateway request timeout")
	flagSet.StringVar(&values.TrustedSubnet, "n", "", "CIDR allowed to reach the dev server")
	flagSet.StringVar(&values.ConfigFile, "c", "", "JSON config file")

	if err := flagSet.Parse(args); err != nil {
		return Config{}, nil, err
	}

	return values, flagSet.Args(), nil
}

// New builds the configuration from all sources and validates it.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{
		disableFlagsParsing: false,
		args:                nil,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Unable to load .env file: %v", err)
	}

	values := &Config{}
	applyDefaults(values, defaultConfig)
	values.SessionFile = DefaultSessionFile()

	var valuesFromFlags Config
	if !options.disableFlagsParsing {
		args := options.args
		if args == nil {
			args = os.Args[1:]
		}
		valuesFromFlags, values.Args, err = parseFlags(args)
		if err != nil {
			return nil, err
		}
	}

	var valuesFromEnv Config
	err = env.Parse(&valuesFromEnv)
	if err != nil {
		return nil, err
	}

	configFile := valuesFromFlags.ConfigFile
	if configFile == "" {
		configFile = valuesFromEnv.ConfigFile
	}
	if configFile != "" {
		valuesFromJSON, err := loadJSONFile(configFile)
		if err != nil {
			return nil, err
		}
		applyDefaults(values, valuesFromJSON)
	}

	applyDefaults(values, valuesFromEnv)
	applyDefaults(values, valuesFromFlags)

	if err := values.validate(); err != nil {
		return nil, err
	}

	return values, nil
}
