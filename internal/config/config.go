package config

type Config struct {
	Server  ServerConfig
	Ollama  OllamaConfig
	QA      QAConfig
	Input   InputConfig
	Output  OutputConfig
	Storage StorageConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port int
}

type OllamaConfig struct {
	BaseURL string
	QAModel string
}

type QAConfig struct {
	MinQuestionLength   int
	MinAnswerLength     int
	Mode                string
	ConfidenceThreshold float64
}

type InputConfig struct {
	DocumentDir string
	SourcesFile string
}

type OutputConfig struct {
	JSONDir string
}

type StorageConfig struct {
	DataDir string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 4500,
		},
		Ollama: OllamaConfig{
			BaseURL: "http://localhost:11434",
			QAModel: "phi3.5",
		},
		QA: QAConfig{
			MinQuestionLength:   10,
			MinAnswerLength:     15,
			Mode:                "auto",
			ConfidenceThreshold: 0.65,
		},
		Input: InputConfig{
			DocumentDir: "documents",
			SourcesFile: "sources.yaml",
		},
		Output: OutputConfig{
			JSONDir: "output",
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the JSON file backend at
// $XDG_CONFIG_HOME/qamine/config.json, then applies QAMINE_* environment
// variable overrides on top.
func Load() (Config, error) {
	return loadWith(newFileBackend())
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()
	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}
