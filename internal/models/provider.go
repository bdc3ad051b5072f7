package models

import "strings"

type Provider string

const (
	ProviderOpenAI   Provider = "OPENAI"
	ProviderGemini   Provider = "GEMINI"
	ProviderDeepSeek Provider = "DEEPSEEK"
)

// BackendID is the lowercase identifier the stream backend expects.
// Unknown providers fall back to openai.
func (p Provider) BackendID() string {
	switch p {
	case ProviderGemini:
		return "gemini"
	case ProviderDeepSeek:
		return "deepseek"
	default:
		return "openai"
	}
}

// ParseProvider accepts "OPENAI", "openai", "Gemini", ... and reports whether v was recognized.
func ParseProvider(v string) (Provider, bool) {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case string(ProviderOpenAI):
		return ProviderOpenAI, true
	case string(ProviderGemini):
		return ProviderGemini, true
	case string(ProviderDeepSeek):
		return ProviderDeepSeek, true
	default:
		return ProviderOpenAI, false
	}
}
