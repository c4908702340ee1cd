package main

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LLMProvider     string `yaml:"llm_provider"`
	LLMModel        string `yaml:"llm_model"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	OpenAIAPIKey    string `yaml:"openai_api_key"`

	InputFile      string `yaml:"input_file"`
	OutputFile     string `yaml:"output_file"`
	EvaluationFile string `yaml:"evaluation_file"`

	BatchSize         int `yaml:"batch_size"`
	BatchPauseSeconds int `yaml:"batch_pause_seconds"`

	JudgeEnabled      bool   `yaml:"judge_enabled"`
	JudgeModel        string `yaml:"judge_model"`
	JudgePauseSeconds int    `yaml:"judge_pause_seconds"`

	SlackBotToken   string `yaml:"slack_bot_token"`
	ReportChannelID string `yaml:"report_channel_id"`

	RunSchedule string `yaml:"run_schedule"`
}

func LoadConfig() Config {
	var cfg Config

	// Load from config.yaml if it exists
	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	// Env vars override YAML values
	envOverride(&cfg.LLMProvider, "LLM_PROVIDER")
	envOverride(&cfg.LLMModel, "LLM_MODEL")
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.OpenAIAPIKey, "OPENAI_API_KEY")
	envOverride(&cfg.InputFile, "INPUT_FILE")
	envOverride(&cfg.OutputFile, "OUTPUT_FILE")
	envOverride(&cfg.EvaluationFile, "EVALUATION_FILE")
	envOverrideInt(&cfg.BatchSize, "BATCH_SIZE")
	envOverrideInt(&cfg.BatchPauseSeconds, "BATCH_PAUSE_SECONDS")
	envOverrideBool(&cfg.JudgeEnabled, "JUDGE_ENABLED")
	envOverride(&cfg.JudgeModel, "JUDGE_MODEL")
	envOverrideInt(&cfg.JudgePauseSeconds, "JUDGE_PAUSE_SECONDS")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.ReportChannelID, "REPORT_CHANNEL_ID")
	envOverride(&cfg.RunSchedule, "RUN_SCHEDULE")

	// Defaults
	if cfg.LLMProvider == "" {
		cfg.LLMProvider = "anthropic"
	}
	if cfg.InputFile == "" {
		cfg.InputFile = "./tickets.json"
	}
	if cfg.OutputFile == "" {
		cfg.OutputFile = "./results.json"
	}
	if cfg.EvaluationFile == "" {
		cfg.EvaluationFile = "./evaluation_results.json"
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 3
	}
	if cfg.BatchPauseSeconds == 0 {
		cfg.BatchPauseSeconds = 30
	}
	if cfg.JudgePauseSeconds == 0 {
		cfg.JudgePauseSeconds = 10
	}

	// Validate required fields
	switch cfg.LLMProvider {
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			log.Fatalf("anthropic_api_key is required when llm_provider=anthropic")
		}
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			log.Fatalf("openai_api_key is required when llm_provider=openai")
		}
	default:
		log.Fatalf("llm_provider must be 'anthropic' or 'openai', got '%s'", cfg.LLMProvider)
	}

	if cfg.BatchSize < 1 {
		log.Fatalf("invalid batch_size '%d': must be >= 1", cfg.BatchSize)
	}
	if cfg.BatchPauseSeconds < 0 {
		log.Fatalf("invalid batch_pause_seconds '%d': must be >= 0", cfg.BatchPauseSeconds)
	}
	if cfg.JudgePauseSeconds < 0 {
		log.Fatalf("invalid judge_pause_seconds '%d': must be >= 0", cfg.JudgePauseSeconds)
	}
	if cfg.SlackBotToken != "" && cfg.ReportChannelID == "" {
		log.Fatalf("report_channel_id is required when slack_bot_token is set")
	}

	return cfg
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}

func envOverrideBool(field *bool, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseBool(val)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}
