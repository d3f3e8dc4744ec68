package main

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/lumenworks/reelgraph/internal/xjson"
)

// Config holds all reelgraph server configuration.
// Priority: env vars > settings.json > defaults.
type Config struct {
	DBPath           string `json:"db_path"`
	LogLevel         string `json:"log_level"`
	WorkflowID       string `json:"workflow_id"`
	AutosaveSchedule string `json:"autosave_schedule"`
	MaxChainNodes    int    `json:"max_chain_nodes"`
	StepDelayMS      int    `json:"step_delay_ms"`

	// Demo swaps real providers for the deterministic static generator.
	Demo bool `json:"demo"`

	MediaBaseURL string `json:"media_base_url"`
	MediaAPIKey  string `json:"media_api_key"`
	LLMAPIKey    string `json:"llm_api_key"`
	LLMBaseURL   string `json:"llm_base_url"`
	LLMModel     string `json:"llm_model"`
}

func defaultConfig() Config {
	return Config{
		DBPath:           filepath.Join(reelgraphDir(), "reelgraph.db"),
		LogLevel:         "info",
		WorkflowID:       "default",
		AutosaveSchedule: "@every 30s",
		MaxChainNodes:    10,
		StepDelayMS:      250,
	}
}

func reelgraphDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".reelgraph"
	}
	return filepath.Join(home, ".reelgraph")
}

func settingsPath() string {
	return filepath.Join(reelgraphDir(), "settings.json")
}

func loadConfig() Config {
	cfg := defaultConfig()

	// Layer 2: settings.json (ignore if missing).
	if data, err := os.ReadFile(settingsPath()); err == nil {
		_ = xjson.Unmarshal(data, &cfg)
	}

	// Layer 3: env vars override.
	if v := os.Getenv("REELGRAPH_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("REELGRAPH_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("REELGRAPH_WORKFLOW_ID"); v != "" {
		cfg.WorkflowID = v
	}
	if v := os.Getenv("REELGRAPH_AUTOSAVE_SCHEDULE"); v != "" {
		cfg.AutosaveSchedule = v
	}
	if v := os.Getenv("REELGRAPH_MAX_CHAIN_NODES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxChainNodes = n
		}
	}
	if v := os.Getenv("REELGRAPH_STEP_DELAY_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.StepDelayMS = n
		}
	}
	if v := os.Getenv("REELGRAPH_DEMO"); v != "" {
		cfg.Demo = v == "true" || v == "1"
	}
	if v := os.Getenv("REELGRAPH_MEDIA_BASE_URL"); v != "" {
		cfg.MediaBaseURL = v
	}
	if v := os.Getenv("REELGRAPH_MEDIA_API_KEY"); v != "" {
		cfg.MediaAPIKey = v
	}
	if v := os.Getenv("REELGRAPH_LLM_API_KEY"); v != "" {
		cfg.LLMAPIKey = v
	}
	if v := os.Getenv("REELGRAPH_LLM_BASE_URL"); v != "" {
		cfg.LLMBaseURL = v
	}
	if v := os.Getenv("REELGRAPH_LLM_MODEL"); v != "" {
		cfg.LLMModel = v
	}

	return cfg
}
