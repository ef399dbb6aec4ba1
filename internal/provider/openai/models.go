package openai

// GeminiModels returns the Gemini models in priority order, fastest first,
// with the configured model slotted in before the pro tier.
func GeminiModels(configured string) []string {
	ordered := []string{
		"gemini-2.5-flash",
		"gemini-flash-latest",
		"gemini-2.0-flash",
		configured,
		"gemini-2.5-pro",
		"gemini-pro-latest",
	}

	seen := buildModelSet(nil)
	out := make([]string, 0, len(ordered))
	for _, model := range ordered {
		if model == "" || seen[model] {
			continue
		}
		seen[model] = true
		out = append(out, model)
	}
	return out
}

// OpenAIModels returns the default OpenAI models in priority order.
func OpenAIModels() []string {
	return []string{
		"gpt-4o-mini",
		"gpt-4o",
	}
}

// buildModelSet creates a map for O(1) lookup.
func buildModelSet(models []string) map[string]bool {
	set := make(map[string]bool, len(models))
	for _, model := range models {
		set[model] = true
	}
	return set
}
