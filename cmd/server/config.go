package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/liveui/live-ui/internal/handlers"
	"github.com/liveui/live-ui/internal/services"
	"github.com/liveui/live-ui/internal/ui"
	"gopkg.in/yaml.v3"
)

type llmConfig interface {
	llm(systemPrompt string, logger *slog.Logger) (handlers.LLM, error)
	grounding() bool
}

// BaseLLMConfig contains the common fields for all LLM configurations.
type BaseLLMConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`

	services.Parameters `yaml:",inline"`
}

type config struct {
	Port            string    `yaml:"port"`
	SystemPrompt    string    `yaml:"systemPrompt"`
	LLM             llmConfig `yaml:"llm"`
	Store           storeConfig
	ChunkSize       int      `yaml:"chunkSize"`
	StreamDelay     duration `yaml:"streamDelay"`
	GenerateTimeout duration `yaml:"generateTimeout"`
	AllowedOrigins  []string `yaml:"allowedOrigins"`
}

type geminiConfig struct {
	BaseLLMConfig `yaml:",inline"`
	APIKey        string `yaml:"apiKey"`
	Grounding     bool   `yaml:"grounding"`
}

type openAIConfig struct {
	BaseLLMConfig `yaml:",inline"`
	APIKey        string `yaml:"apiKey"`
}

type ollamaConfig struct {
	BaseLLMConfig `yaml:",inline"`
	Host          string `yaml:"host"`
}

type storeConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

// duration wraps time.Duration so values like "10ms" can be written in the config file.
type duration time.Duration

func (d *duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = duration(parsed)
	return nil
}

const defaultGeminiModel = "gemini-2.5-flash-lite-preview-06-17"

func defaultConfig() config {
	return config{
		Port:         "8000",
		SystemPrompt: ui.SystemInstruction,
		LLM: &geminiConfig{
			BaseLLMConfig: BaseLLMConfig{Provider: "gemini", Model: defaultGeminiModel},
			Grounding:     true,
		},
		Store: storeConfig{Backend: "memory"},
		AllowedOrigins: []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
		},
	}
}

func (c *config) UnmarshalYAML(value *yaml.Node) error {
	var rawConfig struct {
		Port            string         `yaml:"port"`
		SystemPrompt    string         `yaml:"systemPrompt"`
		LLM             map[string]any `yaml:"llm"`
		Store           storeConfig    `yaml:"store"`
		ChunkSize       int            `yaml:"chunkSize"`
		StreamDelay     duration       `yaml:"streamDelay"`
		GenerateTimeout duration       `yaml:"generateTimeout"`
		AllowedOrigins  []string       `yaml:"allowedOrigins"`
	}

	if err := value.Decode(&rawConfig); err != nil {
		return err
	}

	defaults := defaultConfig()

	c.Port = rawConfig.Port
	if c.Port == "" {
		c.Port = defaults.Port
	}
	c.SystemPrompt = rawConfig.SystemPrompt
	if c.SystemPrompt == "" {
		c.SystemPrompt = defaults.SystemPrompt
	}
	c.Store = rawConfig.Store
	if c.Store.Backend == "" {
		c.Store.Backend = defaults.Store.Backend
	}
	c.ChunkSize = rawConfig.ChunkSize
	c.StreamDelay = rawConfig.StreamDelay
	c.GenerateTimeout = rawConfig.GenerateTimeout
	c.AllowedOrigins = rawConfig.AllowedOrigins
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = defaults.AllowedOrigins
	}

	if rawConfig.LLM == nil {
		c.LLM = defaults.LLM
		return nil
	}

	llmProvider, ok := rawConfig.LLM["provider"].(string)
	if !ok {
		return fmt.Errorf("llm provider is required")
	}

	llmRawYAML, err := yaml.Marshal(rawConfig.LLM)
	if err != nil {
		return err
	}

	var llm llmConfig
	switch llmProvider {
	case "gemini":
		llm = &geminiConfig{}
	case "openai":
		llm = &openAIConfig{}
	case "ollama":
		llm = &ollamaConfig{}
	default:
		return fmt.Errorf("unknown llm provider: %s", llmProvider)
	}

	if err := yaml.Unmarshal(llmRawYAML, llm); err != nil {
		return err
	}

	c.LLM = llm
	return nil
}

func (g geminiConfig) llm(systemPrompt string, logger *slog.Logger) (handlers.LLM, error) {
	model := g.Model
	if model == "" {
		model = defaultGeminiModel
	}

	apiKey := g.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required (set llm.apiKey or GEMINI_API_KEY)")
	}

	params := g.Parameters
	if params.Temperature == nil {
		params.Temperature = ptr(float32(0.7))
	}
	if params.TopP == nil {
		params.TopP = ptr(float32(0.95))
	}
	if params.TopK == nil {
		params.TopK = ptr(20)
	}

	return services.NewGemini(apiKey, model, systemPrompt, g.Grounding, params, logger), nil
}

func ptr[T any](v T) *T {
	return &v
}

func (g geminiConfig) grounding() bool {
	return g.Grounding
}

func (o openAIConfig) llm(systemPrompt string, logger *slog.Logger) (handlers.LLM, error) {
	if o.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	apiKey := o.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	return services.NewOpenAI(apiKey, o.Model, systemPrompt, o.Parameters, logger), nil
}

func (o openAIConfig) grounding() bool {
	return false
}

func (o ollamaConfig) llm(systemPrompt string, _ *slog.Logger) (handlers.LLM, error) {
	if o.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	host := o.Host
	if host == "" {
		host = os.Getenv("OLLAMA_HOST")
	}

	return services.NewOllama(host, o.Model, systemPrompt, o.Parameters), nil
}

func (o ollamaConfig) grounding() bool {
	return false
}
