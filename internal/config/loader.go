package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is Pixen's app-level configuration.
type Config struct {
	// ImageModel is the image generate/edit model identifier.
	ImageModel string `yaml:"imageModel"`

	// EnhanceModel is the text model used for prompt enhancement.
	// Empty selects the enhancer provider's default.
	EnhanceModel string `yaml:"enhanceModel"`

	// Enhancer selects the prompt-enhancement provider:
	// "google" (default), "openai", or "anthropic".
	Enhancer string `yaml:"enhancer"`

	// DataDir overrides the session storage directory (default ~/.pixen).
	DataDir string `yaml:"dataDir"`
}

// NewConfig returns the built-in defaults.
func NewConfig() *Config {
	return &Config{
		ImageModel: "gemini-2.5-flash-image-preview",
		Enhancer:   "google",
	}
}

// Loader loads and merges configuration from multiple sources.
type Loader struct {
	// userDir is the user-level config directory (e.g. ~/.pixen)
	userDir string

	// projectDir is the project-level config directory (e.g. .pixen)
	projectDir string
}

// NewLoader creates a loader with the default directories.
func NewLoader() *Loader {
	homeDir, _ := os.UserHomeDir()
	return &Loader{
		userDir:    filepath.Join(homeDir, ".pixen"),
		projectDir: ".pixen",
	}
}

// NewLoaderWithOptions creates a loader with custom directories.
func NewLoaderWithOptions(userDir, projectDir string) *Loader {
	return &Loader{userDir: userDir, projectDir: projectDir}
}

// Load merges config from all sources, lowest to highest priority:
//  1. built-in defaults
//  2. <userDir>/config.yaml
//  3. <projectDir>/config.yaml
//
// Unmarshalling into the same struct per source only touches keys present
// in that file, so later sources override field-by-field.
func (l *Loader) Load() (*Config, error) {
	cfg := NewConfig()

	sources := []string{
		filepath.Join(l.userDir, "config.yaml"),
		filepath.Join(l.projectDir, "config.yaml"),
	}

	for _, path := range sources {
		data, err := os.ReadFile(path)
		if err != nil {
			continue // missing files are fine
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}
