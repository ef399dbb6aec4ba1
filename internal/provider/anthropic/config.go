package anthropic

// Config contains Anthropic provider configuration.
type Config struct {
	APIKeys []string `env:"ANTHROPIC_API_KEYS" envSeparator:","`
	APIKey  string   `env:"ANTHROPIC_API_KEY"`
	BaseURL string   `env:"ANTHROPIC_BASE_URL"`
	Model   string   `env:"ANTHROPIC_MODEL"                     envDefault:"claude-haiku-4-5"`
}

// Keys returns ANTHROPIC_API_KEYS followed by ANTHROPIC_API_KEY, without
// blanks or duplicates.
func (c Config) Keys() []string {
	all := append(append([]string(nil), c.APIKeys...), c.APIKey)

	seen := make(map[string]bool, len(all))
	out := make([]string, 0, len(all))
	for _, key := range all {
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, key)
	}
	return out
}
