package cli_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/llmrelay/internal/classify"
	"github.com/davidbz/llmrelay/internal/cli"
)

func TestNewClassifyReport(t *testing.T) {
	t.Run("should carry the retry delay of rate limits", func(t *testing.T) {
		report := cli.NewClassifyReport(classify.Outcome{
			Class:    classify.RateLimited,
			Delay:    18 * time.Second,
			HasDelay: true,
		})

		require.Equal(t, "rate_limited", report.Class)
		require.Equal(t, "rate_limited", report.Reason)
		require.InDelta(t, 18.0, report.DelaySeconds, 0.001)
		require.Contains(t, report.Action, "rotate")
	})

	t.Run("should describe invalid credentials", func(t *testing.T) {
		report := cli.NewClassifyReport(classify.Outcome{Class: classify.InvalidCredential})

		require.Equal(t, "invalid_credential", report.Class)
		require.Zero(t, report.DelaySeconds)
		require.Contains(t, report.Action, "disable the key")
	})
}

func TestClassifyCommand(t *testing.T) {
	t.Run("should classify a body given as argument", func(t *testing.T) {
		var out bytes.Buffer
		cmd := cli.NewRootCmd()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"classify", "--status", "429", "--json", "Please retry in 18.360292146s."})

		require.NoError(t, cmd.Execute())

		var report cli.ClassifyReport
		require.NoError(t, json.Unmarshal(out.Bytes(), &report))
		require.Equal(t, "rate_limited", report.Class)
		require.InDelta(t, 18.360292146, report.DelaySeconds, 0.000001)
	})

	t.Run("should read the body from stdin", func(t *testing.T) {
		var out bytes.Buffer
		cmd := cli.NewRootCmd()
		cmd.SetOut(&out)
		cmd.SetIn(strings.NewReader("Your credit balance is too low to access the Anthropic API.\n"))
		cmd.SetArgs([]string{"classify", "--status", "400"})

		require.NoError(t, cmd.Execute())
		require.Contains(t, out.String(), "billing")
		require.Contains(t, out.String(), "BILLING_ERROR_COOLDOWN")
	})

	t.Run("should reject extra arguments", func(t *testing.T) {
		cmd := cli.NewRootCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"classify", "a", "b"})

		require.Error(t, cmd.Execute())
	})
}
