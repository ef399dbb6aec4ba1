package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/davidbz/llmrelay/internal/classify"
)

// ClassifyReport is the JSON form of the classify command output.
type ClassifyReport struct {
	Class        string  `json:"class"`
	Reason       string  `json:"reason"`
	DelaySeconds float64 `json:"delay_seconds,omitempty"`
	Action       string  `json:"action"`
}

func newClassifyCmd() *cobra.Command {
	var (
		statusCode int
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "classify [body]",
		Short: "Classify a provider error body the way the relay would",
		Long: `Classify a provider error body the way the relay would.

The body is taken from the argument, or read from stdin when omitted or "-".`,
		Example: `  llmrelay classify --status 429 "Please retry in 18.36s"
  curl -s ... | llmrelay classify --status 400`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readBody(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			report := NewClassifyReport(classify.Classify(statusCode, body))

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}

			t := table.NewWriter()
			t.SetStyle(table.StyleRounded)
			t.AppendRow(table.Row{"Class", report.Class})
			t.AppendRow(table.Row{"Cooldown reason", report.Reason})
			if report.DelaySeconds > 0 {
				t.AppendRow(table.Row{"Retry delay", formatSeconds(report.DelaySeconds)})
			}
			t.AppendRow(table.Row{"Action", report.Action})
			fmt.Fprintln(out, t.Render())
			return nil
		},
	}

	cmd.Flags().IntVar(&statusCode, "status", 0, "HTTP status code of the failed call (0 for network errors)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the classification as JSON")

	return cmd
}

// NewClassifyReport describes an outcome together with the state change the
// relay applies for it.
func NewClassifyReport(outcome classify.Outcome) ClassifyReport {
	report := ClassifyReport{
		Class:  outcome.Class.String(),
		Reason: string(outcome.Class.Reason()),
		Action: describeAction(outcome.Class),
	}
	if outcome.HasDelay {
		report.DelaySeconds = outcome.Delay.Seconds()
	}
	return report
}

func describeAction(class classify.Class) string {
	switch class {
	case classify.RateLimited:
		return "cool down model and credential for the retry delay, rotate to the next key"
	case classify.QuotaExhausted:
		return "cool down the whole provider for QUOTA_EXHAUSTED_COOLDOWN"
	case classify.Billing:
		return "cool down the whole provider for BILLING_ERROR_COOLDOWN"
	case classify.InvalidCredential:
		return "disable the key for the rest of the process, rotate to the next key"
	default:
		return "cool down the model for the retry delay"
	}
}

func readBody(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}

	raw, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read body from stdin: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}
