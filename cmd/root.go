package cmd

import (
	clog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var Version = "n/a"

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "autopr",
	Short: "Open (and optionally merge) an automated pull request",
	Long: `autopr creates a timestamped branch, commits generated placeholder content,
pushes it and opens a pull request against the base branch.

The pull request is created with the gh CLI when it is installed and through
the GitHub REST API otherwise. With --merge it is merged after a short delay;
with --pr-number an existing pull request is merged without creating anything.

Progress is logged to stderr. The pull request URL is printed to stdout.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runAutoPR,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verboseFlag {
			clog.SetLevel(clog.DebugLevel)
		}
	},
}

func init() {
	rootCmd.Version = Version
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Log every external command")
	addRunFlags(rootCmd.Flags())
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
