package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"igunfollow/pkg/auth"
	"igunfollow/pkg/config"
	"igunfollow/pkg/instagram"
	"igunfollow/pkg/logger"
	"igunfollow/pkg/ui"
	"igunfollow/pkg/unfollow"
)

var (
	// Run command flags
	accountName  string
	dryRun       bool
	assumeYes    bool
	maxPages     int
	maxUnfollows int
	minDelay     time.Duration
	maxDelay     time.Duration
	pageDelay    time.Duration
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [username]",
	Short: "Unfollow every account that doesn't follow you back",
	Long: `Fetch your followers and following lists, work out who doesn't follow you
back, and unfollow them one by one.

When no username is given the stored account's ds_user_id is used, falling
back to the configured or stored username. A failed list fetch aborts the run
before anything is unfollowed. Failed unfollows are reported and skipped.

Press Ctrl+C to stop. Accounts not yet processed are left alone.`,
	Example: `  # Interactive run with the default account
  igunfollow run

  # Preview only
  igunfollow run --dry-run

  # Unattended, at most 50 unfollows, slower pacing
  igunfollow run --yes --max-unfollows 50 --min-delay 10s --max-delay 20s`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUnfollow,
}

func init() {
	rootCmd.AddCommand(runCmd)
	addRunFlags(runCmd)
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&accountName, "account", "a", "", "use a specific stored account")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "list non-followers without unfollowing")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "don't ask for confirmation")
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "stop listing after this many pages per list")
	cmd.Flags().IntVar(&maxUnfollows, "max-unfollows", 0, "unfollow at most this many accounts (0 means all)")
	cmd.Flags().DurationVar(&minDelay, "min-delay", 0, "minimum pause between unfollows")
	cmd.Flags().DurationVar(&maxDelay, "max-delay", 0, "maximum pause between unfollows")
	cmd.Flags().DurationVar(&pageDelay, "page-delay", 0, "pause between list pages")
}

// flagOverrides collects the flags the user actually set
func flagOverrides(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}

	if changed("max-pages") {
		flags["max-pages"] = maxPages
	}
	if changed("max-unfollows") {
		flags["max-unfollows"] = maxUnfollows
	}
	if changed("min-delay") {
		flags["min-delay"] = minDelay
	}
	if changed("max-delay") {
		flags["max-delay"] = maxDelay
	}
	if changed("page-delay") {
		flags["page-delay"] = pageDelay
	}
	if changed("dry-run") {
		flags["dry-run"] = dryRun
	}
	if changed("notifications") {
		flags["notifications"] = notifications
	}
	switch {
	case logLevel != "":
		flags["log-level"] = logLevel
	case quiet:
		flags["log-level"] = "error"
	case verbose:
		flags["log-level"] = "debug"
	}
	return flags
}

func runUnfollow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, flagOverrides(cmd))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()
	log.WithField("version", version).Debug("igunfollow starting")

	manager, err := auth.NewManager()
	if err != nil {
		log.WithError(err).Warn("credential store unavailable, using configuration only")
		manager = auth.NewManagerWithStores(auth.NewEnvironmentStore())
	}

	session, err := resolveSession(cfg, manager, accountName)
	if err != nil {
		if errors.Is(err, auth.ErrCredentialsNotFound) {
			ui.PrintError("No Instagram session found")
			ui.PrintInfo("Store one with", "igunfollow auth login")
		}
		return err
	}
	if session.Username != "" {
		ui.PrintInfo("Using account", session.Username)
	}

	var target string
	if len(args) > 0 {
		target = args[0]
		if !instagram.IsValidUsername(instagram.SanitizeUsername(target)) {
			return fmt.Errorf("invalid username %q", target)
		}
	}
	target = targetUsername(target, cfg, session)
	if target != "" {
		ui.PrintInfo("Target profile", target)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	confirm := !assumeYes && !cfg.Unfollow.DryRun
	if confirm && !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("stdin is not a terminal, pass --yes to unfollow without confirmation")
	}

	result, runErr := execute(ctx, cfg, session, target, runSettings{
		confirm: confirm,
		quiet:   quiet,
		verbose: verbose,
		in:      os.Stdin,
		out:     os.Stdout,
	}, log)
	if result != nil {
		if !quiet && !result.NothingToDo {
			fmt.Println()
			ui.RenderSummary(os.Stdout, result)
		}
		ui.NewNotifier(cfg.Notifications.Enabled).RunFinished(result)
	}
	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			ui.PrintWarning("Interrupted")
		}
		return runErr
	}
	return nil
}

type runSettings struct {
	confirm bool
	quiet   bool
	verbose bool
	in      io.Reader
	out     io.Writer
}

// execute wires the API client and the unfollow workflow for one run
func execute(ctx context.Context, cfg *config.Config, session *auth.Session, target string, s runSettings, log logger.Logger) (*unfollow.Result, error) {
	client, err := instagram.NewClient(session, instagram.ClientOptions{
		BaseURL:   cfg.Instagram.BaseURL,
		Timeout:   cfg.Fetch.RequestTimeout,
		AppID:     cfg.Instagram.AppID,
		UserAgent: cfg.Instagram.UserAgent,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	opts := unfollow.OptionsFromConfig(cfg)
	if opts.SelfID == "" {
		opts.SelfID = session.DSUserID
	}
	opts.Observer = ui.NewProgress(s.out, s.quiet, s.verbose)
	if s.confirm {
		opts.Confirm = ui.ConfirmPrompt(s.in, s.out)
	}

	return unfollow.New(client, opts, log).Run(ctx, target)
}

// resolveSession picks credentials in order: the named stored account,
// session cookies from configuration, then the default stored account
func resolveSession(cfg *config.Config, manager *auth.Manager, account string) (*auth.Session, error) {
	var stored *auth.Account
	var err error

	switch {
	case account != "":
		stored, err = manager.Retrieve(account)
		if err != nil {
			return nil, err
		}
	case cfg.HasSession():
		stored = &auth.Account{
			Username:  cfg.Instagram.Username,
			SessionID: cfg.Instagram.SessionID,
			CSRFToken: cfg.Instagram.CSRFToken,
			DSUserID:  cfg.Instagram.DSUserID,
		}
	default:
		stored, err = manager.RetrieveDefault()
		if err != nil {
			return nil, err
		}
	}

	if stored.UserAgent == "" {
		stored.UserAgent = cfg.Instagram.UserAgent
	}
	return auth.NewSession(stored)
}

// targetUsername decides whose lists to compare. An empty result means the
// session's ds_user_id is used directly.
func targetUsername(arg string, cfg *config.Config, session *auth.Session) string {
	if u := instagram.SanitizeUsername(arg); u != "" {
		return u
	}
	if u := strings.TrimSpace(cfg.Instagram.Username); u != "" {
		return u
	}
	if cfg.Instagram.DSUserID != "" || session.DSUserID != "" {
		return ""
	}
	return session.Username
}
