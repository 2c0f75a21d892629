package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"igunfollow/pkg/config"
	"igunfollow/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage igunfollow configuration files.

Configuration is loaded from, highest priority first:
  - Command line flags
  - Environment variables (IGUNFOLLOW_*)
  - .env files
  - Configuration file
  - Default values`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with every option at its default.

The file is written to ./.igunfollow.yaml unless --config names another path.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long:  `Show the configuration after merging every source. Cookie values are masked.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long: `Load the configuration from every source and report problems.

Pacing that is likely to trip Instagram's limits is reported as a warning.`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

const configHeader = `# igunfollow configuration
#
# Every value can also be set with an IGUNFOLLOW_ environment variable,
# for example IGUNFOLLOW_SESSION_ID, IGUNFOLLOW_MIN_DELAY=5s.
#
# Prefer 'igunfollow auth login' over putting cookies in this file.

`

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configFile
	if path == "" {
		path = ".igunfollow.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("configuration file already exists: %s", path)
	}

	if err := writeExampleConfig(path); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	ui.PrintSuccess("Configuration file created: " + path)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Run 'igunfollow auth login' to store your session cookies")
	fmt.Println("2. Run 'igunfollow config validate' to check the configuration")
	fmt.Println("3. Preview with 'igunfollow run --dry-run'")
	return nil
}

func writeExampleConfig(path string) error {
	data, err := yaml.Marshal(config.DefaultConfig())
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, append([]byte(configHeader), data...), 0600)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, flagOverrides(cmd))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	if err := writeMaskedConfig(os.Stdout, cfg); err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}
	return nil
}

func writeMaskedConfig(w io.Writer, cfg *config.Config) error {
	display := *cfg
	display.Instagram.SessionID = mask(display.Instagram.SessionID)
	display.Instagram.CSRFToken = mask(display.Instagram.CSRFToken)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(&display)
}

func mask(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) > 8:
		return s[:4] + "..." + s[len(s)-4:]
	default:
		return "***"
	}
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	if configFile != "" {
		ui.PrintInfo("Validating configuration", configFile)
	}

	cfg, err := config.Load(configFile, flagOverrides(cmd))
	if err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	warnings := configWarnings(cfg)
	if len(warnings) > 0 {
		ui.PrintWarning("Configuration warnings:")
		for _, w := range warnings {
			fmt.Printf("  - %s\n", w)
		}
		fmt.Println()
	}

	ui.PrintSuccess("Configuration is valid")
	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Unfollow delay: %s to %s\n", cfg.Unfollow.MinDelay, cfg.Unfollow.MaxDelay)
	fmt.Printf("  Page delay: %s\n", cfg.Fetch.PageDelay)
	fmt.Printf("  Max pages per list: %d\n", cfg.Fetch.MaxPages)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
	return nil
}

// configWarnings reports settings that load fine but are risky to run with
func configWarnings(cfg *config.Config) []string {
	var warnings []string
	if !cfg.HasSession() {
		warnings = append(warnings, "no session cookies configured, a stored account will be needed")
	}
	if cfg.Unfollow.MinDelay < time.Second && cfg.Unfollow.RequestsPerMinute == 0 {
		warnings = append(warnings, "min_delay under 1s is likely to be rate limited")
	}
	if cfg.Unfollow.RequestsPerMinute > 30 {
		warnings = append(warnings, "requests_per_minute above 30 is likely to be rate limited")
	}
	if cfg.Fetch.PageDelay == 0 {
		warnings = append(warnings, "page_delay of 0 fetches pages back to back")
	}
	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			warnings = append(warnings, fmt.Sprintf("cannot create log directory: %v", err))
		}
	}
	return warnings
}
