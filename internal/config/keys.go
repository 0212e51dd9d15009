package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
	kFloat
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "server.port", typ: kInt, env: "QAMINE_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "ollama.base_url", typ: kString, env: "QAMINE_OLLAMA_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.Ollama.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Ollama.BaseURL },
	},
	{
		key: "ollama.qa_model", typ: kString, env: "QAMINE_OLLAMA_QA_MODEL",
		apply:   func(cfg *Config, v any) { cfg.Ollama.QAModel = v.(string) },
		extract: func(cfg Config) any { return cfg.Ollama.QAModel },
	},
	{
		key: "qa.min_question_length", typ: kInt, env: "QAMINE_QA_MIN_QUESTION_LENGTH",
		apply:   func(cfg *Config, v any) { cfg.QA.MinQuestionLength = v.(int) },
		extract: func(cfg Config) any { return cfg.QA.MinQuestionLength },
	},
	{
		key: "qa.min_answer_length", typ: kInt, env: "QAMINE_QA_MIN_ANSWER_LENGTH",
		apply:   func(cfg *Config, v any) { cfg.QA.MinAnswerLength = v.(int) },
		extract: func(cfg Config) any { return cfg.QA.MinAnswerLength },
	},
	{
		key: "qa.mode", typ: kString, env: "QAMINE_QA_MODE",
		apply:   func(cfg *Config, v any) { cfg.QA.Mode = v.(string) },
		extract: func(cfg Config) any { return cfg.QA.Mode },
	},
	{
		key: "qa.confidence_threshold", typ: kFloat, env: "QAMINE_QA_CONFIDENCE_THRESHOLD",
		apply:   func(cfg *Config, v any) { cfg.QA.ConfidenceThreshold = v.(float64) },
		extract: func(cfg Config) any { return cfg.QA.ConfidenceThreshold },
	},
	{
		key: "input.document_dir", typ: kString, env: "QAMINE_INPUT_DOCUMENT_DIR",
		apply:   func(cfg *Config, v any) { cfg.Input.DocumentDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Input.DocumentDir },
	},
	{
		key: "input.sources_file", typ: kString, env: "QAMINE_INPUT_SOURCES_FILE",
		apply:   func(cfg *Config, v any) { cfg.Input.SourcesFile = v.(string) },
		extract: func(cfg Config) any { return cfg.Input.SourcesFile },
	},
	{
		key: "output.json_dir", typ: kString, env: "QAMINE_OUTPUT_JSON_DIR",
		apply:   func(cfg *Config, v any) { cfg.Output.JSONDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Output.JSONDir },
	},
	{
		key: "storage.data_dir", typ: kString, env: "QAMINE_STORAGE_DATA_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "log.level", typ: kString, env: "QAMINE_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kFloat:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok && v != "" {
				if f, err := strconv.ParseFloat(v, 64); err == nil {
					s.apply(cfg, f)
				} else {
					fmt.Fprintf(os.Stderr, "[WARN] could not parse float from config key %s=%q: %v. Using default value.\n", s.key, v, err)
				}
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		case kFloat:
			if f, err := strconv.ParseFloat(raw, 64); err == nil {
				s.apply(cfg, f)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse float from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
