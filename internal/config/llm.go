package config

import (
	"fmt"
	"time"
)

// Reply source providers.
const (
	ProviderMock   = "mock"
	ProviderGemini = "gemini"
)

// ValidProviders lists all supported reply providers.
var ValidProviders = []string{ProviderMock, ProviderGemini}

// AssistantConfig configures the reply source.
type AssistantConfig struct {
	Provider string `yaml:"provider"` // mock, gemini
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	Timeout  string `yaml:"timeout"`

	// FailureText replaces the default apology when a reply fails
	FailureText string `yaml:"failure_text,omitempty"`

	// MockLatency is the simulated round trip of the mock provider
	MockLatency string `yaml:"mock_latency"`
}

// GetTimeout returns the reply timeout as a duration.
func (a AssistantConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(a.Timeout)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

// GetMockLatency returns the mock latency as a duration.
func (a AssistantConfig) GetMockLatency() time.Duration {
	d, err := time.ParseDuration(a.MockLatency)
	if err != nil || d < 0 {
		return 800 * time.Millisecond
	}
	return d
}

func (a AssistantConfig) validate() error {
	validProvider := false
	for _, p := range ValidProviders {
		if a.Provider == p {
			validProvider = true
			break
		}
	}
	if !validProvider {
		return fmt.Errorf("invalid assistant provider: %s (valid: %v)", a.Provider, ValidProviders)
	}
	if a.Provider == ProviderGemini && a.APIKey == "" {
		return fmt.Errorf("gemini API key not configured (set GEMINI_API_KEY or assistant.api_key)")
	}
	return nil
}
