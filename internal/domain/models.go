package domain

import (
	"fmt"
	"time"
)

// GenerateRequest is a single prompt to be answered by whichever candidate
// the orchestrator picks.
type GenerateRequest struct {
	Prompt      string            `json:"prompt"`
	MaxTokens   int               `json:"max_tokens,omitempty"`
	Temperature float64           `json:"temperature,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// GenerateResult is a successful completion and where it came from.
type GenerateResult struct {
	Text       string    `json:"text"`
	Provider   string    `json:"provider"`
	Model      string    `json:"model"`
	Credential int       `json:"credential"`
	Attempts   int       `json:"attempts"`
	Usage      Usage     `json:"usage"`
	Cached     bool      `json:"cached"`
	FinishTime time.Time `json:"finish_time"`
}

// Usage tracks token consumption.
type Usage struct {
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	Cost             float64 `json:"cost,omitempty"`
}

// Route is a configured (provider, model) pair. The static priority list of
// routes is the input to candidate selection.
type Route struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// String renders the route as provider/model.
func (r Route) String() string {
	return r.Provider + "/" + r.Model
}

// Credential is one API key of a provider's pool. Index is stable for the
// lifetime of the process.
type Credential struct {
	Provider string
	Index    int
	Secret   string
}

// String identifies the credential without exposing the secret.
func (c Credential) String() string {
	return fmt.Sprintf("%s#%d(...%s)", c.Provider, c.Index, secretTail(c.Secret))
}

func secretTail(secret string) string {
	const visible = 4
	if len(secret) <= visible {
		return "****"
	}
	return secret[len(secret)-visible:]
}

// Candidate is one attemptable (provider, model, credential) combination.
type Candidate struct {
	Route
	Credential Credential
	Rank       int
}

// CallRequest is what the orchestrator hands a provider adapter.
type CallRequest struct {
	Model       string
	Credential  Credential
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// CallResponse is a provider adapter's successful answer.
type CallResponse struct {
	Text  string
	Model string
	Usage Usage
}
