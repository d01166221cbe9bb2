package config

import (
	"fmt"
	"os"
	"strconv"
)

// Settings holds all engine tunables. Configuration errors are fatal at
// startup; everything downstream assumes a validated Settings value.
type Settings struct {
	LogFile       string // path to the CSV log file
	PayloadColumn string // payload column name; "" = header convention
	EntityConfig  string // path to the entity catalog YAML; "" = empty catalog

	MaxIterations    int     // planner loop budget per query
	SummaryThreshold int     // working sets above this row count get summarized
	SampleBudget     int     // summarizer sample rows
	ImportanceWeight float64 // summarizer importance/diversity blend (alpha)

	WalkerGrepBudget int // total grep calls per relationship-walker run
	WalkerMaxDepth   int // default walker depth
	AnalyzeSampleCap int // max rows handed to the analyzer LLM

	PlannerModel       string
	AnalyzerModel      string // defaults to PlannerModel when empty
	PlannerTemperature float32
	PlannerMaxTokens   int
}

// NewSettingsFromEnv builds Settings from environment variables with
// documented defaults.
func NewSettingsFromEnv() (*Settings, error) {
	s := &Settings{
		LogFile:       os.Getenv("LOG_FILE"),
		PayloadColumn: os.Getenv("LOG_PAYLOAD_COLUMN"),
		EntityConfig:  os.Getenv("ENTITY_CONFIG"),

		MaxIterations:    envInt("MAX_ITERATIONS", 10),
		SummaryThreshold: envInt("SUMMARY_THRESHOLD", 50),
		SampleBudget:     envInt("SUMMARY_SAMPLE_BUDGET", 10),
		ImportanceWeight: envFloat("SUMMARY_IMPORTANCE_WEIGHT", 0.6),

		WalkerGrepBudget: envInt("WALKER_GREP_BUDGET", 24),
		WalkerMaxDepth:   envInt("WALKER_MAX_DEPTH", 4),
		AnalyzeSampleCap: envInt("ANALYZE_SAMPLE_CAP", 50),

		PlannerModel:       envStr("LLM_PLANNER_MODEL", "qwen2.5-14b-instruct"),
		AnalyzerModel:      os.Getenv("LLM_ANALYZER_MODEL"),
		PlannerTemperature: float32(envFloat("LLM_PLANNER_TEMPERATURE", 0.1)),
		PlannerMaxTokens:   envInt("LLM_PLANNER_MAX_TOKENS", 2048),
	}
	if s.AnalyzerModel == "" {
		s.AnalyzerModel = s.PlannerModel
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks ranges. LogFile existence is verified by the log store.
func (s *Settings) Validate() error {
	if s.MaxIterations < 1 || s.MaxIterations > 100 {
		return fmt.Errorf("MAX_ITERATIONS must be 1-100, got %d", s.MaxIterations)
	}
	if s.SummaryThreshold < 1 {
		return fmt.Errorf("SUMMARY_THRESHOLD must be positive, got %d", s.SummaryThreshold)
	}
	if s.SampleBudget < 1 {
		return fmt.Errorf("SUMMARY_SAMPLE_BUDGET must be positive, got %d", s.SampleBudget)
	}
	if s.ImportanceWeight < 0 || s.ImportanceWeight > 1 {
		return fmt.Errorf("SUMMARY_IMPORTANCE_WEIGHT must be in [0,1], got %v", s.ImportanceWeight)
	}
	if s.WalkerGrepBudget < 1 {
		return fmt.Errorf("WALKER_GREP_BUDGET must be positive, got %d", s.WalkerGrepBudget)
	}
	if s.WalkerMaxDepth < 1 || s.WalkerMaxDepth > 5 {
		return fmt.Errorf("WALKER_MAX_DEPTH must be 1-5, got %d", s.WalkerMaxDepth)
	}
	if s.AnalyzeSampleCap < 1 {
		return fmt.Errorf("ANALYZE_SAMPLE_CAP must be positive, got %d", s.AnalyzeSampleCap)
	}
	if s.PlannerModel == "" {
		return fmt.Errorf("LLM_PLANNER_MODEL cannot be empty")
	}
	if s.PlannerTemperature < 0 || s.PlannerTemperature > 2 {
		return fmt.Errorf("LLM_PLANNER_TEMPERATURE must be 0-2, got %v", s.PlannerTemperature)
	}
	return nil
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
