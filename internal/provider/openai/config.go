package openai

import "strings"

const (
	// DefaultOpenAIBaseURL is the public OpenAI endpoint.
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"

	// DefaultGeminiBaseURL is Gemini's OpenAI-compatible endpoint.
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

	// placeholderKey is the sample value shipped in example env files.
	placeholderKey = "your-google-api-key-here"
)

// Config contains OpenAI provider configuration. Keys feed the credential
// ring; the SDK client for each key is built on first use.
type Config struct {
	APIKeys []string `env:"OPENAI_API_KEYS" envSeparator:","`
	BaseURL string   `env:"OPENAI_BASE_URL"                  envDefault:"https://api.openai.com/v1"`
}

// GeminiConfig contains Gemini configuration. GOOGLE_API_KEY and
// GOOGLE_API_KEY_2..4 are accepted alongside GEMINI_API_KEYS.
type GeminiConfig struct {
	APIKeys []string `env:"GEMINI_API_KEYS"  envSeparator:","`
	Key1    string   `env:"GOOGLE_API_KEY"`
	Key2    string   `env:"GOOGLE_API_KEY_2"`
	Key3    string   `env:"GOOGLE_API_KEY_3"`
	Key4    string   `env:"GOOGLE_API_KEY_4"`
	BaseURL string   `env:"GEMINI_BASE_URL"                   envDefault:"https://generativelanguage.googleapis.com/v1beta/openai/"`
	Model   string   `env:"GEMINI_MODEL"                      envDefault:"gemini-2.5-flash"`
}

// Keys returns the configured keys in order with blanks, placeholders and
// duplicates removed.
func (c GeminiConfig) Keys() []string {
	all := append(append([]string(nil), c.APIKeys...), c.Key1, c.Key2, c.Key3, c.Key4)
	return cleanKeys(all)
}

// Keys returns the configured keys with blanks and duplicates removed.
func (c Config) Keys() []string {
	return cleanKeys(c.APIKeys)
}

func cleanKeys(keys []string) []string {
	seen := make(map[string]bool, len(keys))
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		key = strings.TrimSpace(key)
		if key == "" || key == placeholderKey || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, key)
	}
	return out
}
