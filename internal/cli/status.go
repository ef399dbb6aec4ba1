package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/davidbz/llmrelay/internal/cooldown"
	"github.com/davidbz/llmrelay/internal/domain"
)

const (
	defaultServerURL = "http://localhost:8080"

	// longCooldownThreshold marks a provider cooldown that is not a
	// transient rate limit.
	longCooldownThreshold = 3000 * time.Second
)

func newStatusCmd() *cobra.Command {
	var (
		serverURL string
		asJSON    bool
		timeout   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show cooldowns, credential pools and throttle state of a running relay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			status, err := fetchStatus(ctx, serverURL)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(status)
			}

			RenderStatus(out, status)
			return nil
		},
	}

	cmd.Flags().StringVar(&serverURL, "url", defaultServerURL, "base URL of the relay server")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw status JSON")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "request timeout")

	return cmd
}

func fetchStatus(ctx context.Context, serverURL string) (domain.Status, error) {
	var status domain.Status

	endpoint := strings.TrimRight(serverURL, "/") + "/v1/status"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return status, fmt.Errorf("failed to build status request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return status, fmt.Errorf("failed to reach relay at %s: %w", serverURL, err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort cleanup

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return status, fmt.Errorf("relay returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return status, fmt.Errorf("failed to decode status: %w", err)
	}

	return status, nil
}

// RenderStatus writes the status report as tables followed by
// recommendations.
func RenderStatus(w io.Writer, status domain.Status) {
	mode := "normal"
	if status.FastMode {
		mode = "fast"
	}
	fmt.Fprintf(w, "llmrelay status at %s (%s mode)\n\n", status.TakenAt.Format(time.RFC3339), mode)

	fmt.Fprintln(w, "Cooldowns")
	fmt.Fprintln(w, renderScopes(status.Scopes))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Credential pools")
	fmt.Fprintln(w, renderPools(status))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Settings")
	fmt.Fprintln(w, renderSettings(status.Settings))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Recommendations")
	for _, rec := range Recommendations(status) {
		fmt.Fprintf(w, "  - %s\n", rec)
	}
}

func renderScopes(scopes []domain.ScopeStatus) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Scope", "State", "Reason"})

	blocked := 0
	for _, s := range scopes {
		state := "available"
		if s.Blocked {
			blocked++
			state = "cooldown " + formatSeconds(s.RemainingSeconds)
		}
		t.AppendRow(table.Row{s.Scope, state, s.Reason})
	}

	t.AppendFooter(table.Row{"", fmt.Sprintf("%d/%d blocked", blocked, len(scopes)), ""})
	return t.Render()
}

func renderPools(status domain.Status) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Provider", "Keys", "Current", "Disabled", "Last request"})

	providers := make([]string, 0, len(status.Pools))
	for name := range status.Pools {
		providers = append(providers, name)
	}
	sort.Strings(providers)

	for _, name := range providers {
		pool := status.Pools[name]

		disabled := "-"
		if len(pool.Unusable) > 0 {
			ids := make([]string, 0, len(pool.Unusable))
			for _, i := range pool.Unusable {
				ids = append(ids, fmt.Sprintf("#%d", i))
			}
			disabled = strings.Join(ids, ", ")
		}

		last := "-"
		if at, ok := status.LastIssued[name]; ok && !at.IsZero() {
			last = at.Format(time.RFC3339)
		}

		t.AppendRow(table.Row{name, pool.Size, fmt.Sprintf("#%d", pool.Cursor), disabled, last})
	}

	return t.Render()
}

func renderSettings(s domain.StatusSettings) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendRows([]table.Row{
		{"Min request interval", formatSeconds(s.MinRequestInterval)},
		{"Default retry delay", formatSeconds(s.DefaultRetryDelay)},
		{"Quota exhausted cooldown", formatSeconds(s.QuotaExhaustedCooldown)},
		{"Billing error cooldown", formatSeconds(s.BillingErrorCooldown)},
		{"Max attempts", s.MaxAttempts},
	})
	return t.Render()
}

// Recommendations suggests operator actions for the given status.
func Recommendations(status domain.Status) []string {
	var recs []string

	if len(status.Pools) == 0 {
		return []string{"No providers configured: every request will be exhausted"}
	}

	for _, s := range status.Scopes {
		if s.Kind != string(cooldown.KindProvider) || !s.Blocked {
			continue
		}
		if time.Duration(s.RemainingSeconds*float64(time.Second)) <= longCooldownThreshold {
			continue
		}
		switch cooldown.Reason(s.Reason) {
		case cooldown.ReasonBilling:
			recs = append(recs, fmt.Sprintf(
				"%s has a long cooldown, likely a billing issue: check account billing and credits", s.Provider))
		default:
			recs = append(recs, fmt.Sprintf(
				"%s has a long cooldown, daily quota likely exhausted: add API keys or upgrade the plan", s.Provider))
		}
	}

	providers := make([]string, 0, len(status.Pools))
	for name := range status.Pools {
		providers = append(providers, name)
	}
	sort.Strings(providers)

	for _, name := range providers {
		pool := status.Pools[name]
		for _, i := range pool.Unusable {
			recs = append(recs, fmt.Sprintf("%s#%d was rejected as invalid: replace the key", name, i))
		}
		if name == "gemini" && pool.Size < 2 {
			recs = append(recs,
				"Add more Gemini API keys for better availability (GOOGLE_API_KEY_2..4 or GEMINI_API_KEYS)")
		}
	}

	if len(recs) == 0 && len(status.BlockedScopes()) == 0 {
		recs = append(recs, "All systems operational")
	}

	return recs
}

func formatSeconds(seconds float64) string {
	return time.Duration(seconds * float64(time.Second)).Round(time.Second).String()
}
