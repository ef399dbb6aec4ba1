// Package cli implements the llmrelay command line: the relay server and
// the operator tools around it.
package cli

import (
	"github.com/spf13/cobra"
)

// Version information set by the main package.
//
//nolint:gochecknoglobals // set once from ldflags
var versionInfo struct {
	Version string
	Commit  string
}

// SetVersionInfo is called by the main package to set version information.
func SetVersionInfo(version, commit string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "llmrelay",
		Short: "Multi-provider LLM relay with cooldowns and key rotation",
		Long: `llmrelay answers prompts through a prioritized list of LLM providers,
rotating API keys and backing off from rate-limited, exhausted or unpaid
providers so that callers see either an answer or a clean "exhausted".`,
		Version:       versionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(),
		newStatusCmd(),
		newClassifyCmd(),
	)

	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func versionString() string {
	if versionInfo.Version == "" {
		return "dev"
	}
	if versionInfo.Commit == "" {
		return versionInfo.Version
	}
	return versionInfo.Version + " (" + versionInfo.Commit + ")"
}
