package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"igunfollow/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile    string
	logLevel      string
	notifications bool
	quiet         bool
	verbose       bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "igunfollow [username]",
	Short: "Unfollow Instagram accounts that don't follow you back",
	Long: `igunfollow compares the accounts you follow with the accounts that follow
you, then unfollows everyone who doesn't follow back.

It acts through your own logged-in browser session. Unfollows are sent one at
a time with a random pause between them, and nothing is unfollowed before you
confirm (or pass --yes).

Run 'igunfollow auth login' first to store your session cookies.`,
	Example: `  # Unfollow non-followers of the stored account
  igunfollow run

  # Preview without changing anything
  igunfollow run --dry-run

  # Same as 'igunfollow run myhandle'
  igunfollow myhandle`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if quiet {
			ui.SetQuiet(true)
		}

		if cmd.Name() != "version" && cmd.Name() != "help" {
			ui.PrintLogo()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runUnfollow(cmd, args)
	},
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.PrintError("Error", err.Error())
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./.igunfollow.yaml or ~/.config/igunfollow/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&notifications, "notifications", false, "send a desktop notification when a run finishes")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show full names and debug logs")

	// The bare form shares the run flags
	addRunFlags(rootCmd)

	rootCmd.SetVersionTemplate(`igunfollow {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
