package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"igunfollow/pkg/auth"
	"igunfollow/pkg/instagram"
	"igunfollow/pkg/ui"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Instagram session cookies",
	Long: `Manage stored Instagram session cookies.

Sessions are stored in:
  - the system keychain (when available)
  - an AES-GCM encrypted file under ~/.config/igunfollow
  - environment variables (IGUNFOLLOW_SESSION_ID, IGUNFOLLOW_CSRF_TOKEN)

Never share your cookies or config files!`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [username]",
	Short: "Store session cookies for an account",
	Long: `Store the session cookies of a logged-in browser.

You can paste the whole 'Cookie:' request header, or enter sessionid,
csrftoken and ds_user_id one at a time. Input is hidden as you type.`,
	Example: `  # Interactive login
  igunfollow auth login

  # Login for a given handle
  igunfollow auth login myhandle`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout [username]",
	Short: "Remove stored session cookies",
	Long: `Remove stored session cookies.

Without a username, the only stored account is removed. Use --all to remove
every stored account.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogout,
}

// listCmd represents the auth list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored accounts",
	Long:  `List stored accounts with masked cookie values, newest first.`,
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var logoutAll bool

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(listCmd)

	logoutCmd.Flags().BoolVar(&logoutAll, "all", false, "remove every stored account")
}

func runLogin(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	reader := bufio.NewReader(os.Stdin)
	auth.WriteCookieGuide(os.Stdout)

	var username string
	if len(args) > 0 {
		username = args[0]
	} else {
		fmt.Print("Instagram username: ")
		username, err = readLine(reader)
		if err != nil {
			return fmt.Errorf("failed to read username: %w", err)
		}
	}
	username = instagram.SanitizeUsername(username)
	if !instagram.IsValidUsername(username) {
		return fmt.Errorf("invalid username %q", username)
	}

	if existing, _ := manager.Retrieve(username); existing != nil {
		fmt.Printf("Account '%s' already exists. Update it? (y/N): ", username)
		answer, _ := readLine(reader)
		if !strings.HasPrefix(strings.ToLower(answer), "y") {
			return nil
		}
	}

	fmt.Println()
	fmt.Print("Cookie header, or press Enter to type cookies one by one: ")
	header, err := readSecret(reader)
	if err != nil {
		return fmt.Errorf("failed to read cookies: %w", err)
	}

	account, err := promptAccount(reader, header)
	if err != nil {
		return err
	}
	account.Username = username
	account.LastModified = time.Now()

	fmt.Print("User agent (Enter for default): ")
	account.UserAgent, _ = readLine(reader)

	if err := manager.Store(account); err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}

	sanitized := auth.SanitizeAccount(account)
	ui.PrintSuccess("Account saved: " + username)
	ui.PrintInfo("sessionid", sanitized.SessionID)
	ui.PrintInfo("csrftoken", sanitized.CSRFToken)
	if account.DSUserID != "" {
		ui.PrintInfo("ds_user_id", account.DSUserID)
	}
	fmt.Println()
	fmt.Println("Preview who doesn't follow you back:")
	fmt.Println("  $ igunfollow run --dry-run")
	return nil
}

// promptAccount turns a pasted Cookie header into an account, asking for
// whatever the header did not contain
func promptAccount(reader *bufio.Reader, header string) (*auth.Account, error) {
	account := auth.ParseCookieHeader(header)

	if account.SessionID == "" {
		fmt.Print("sessionid: ")
		v, err := readSecret(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to read sessionid: %w", err)
		}
		account.SessionID = v
	}
	if account.CSRFToken == "" {
		fmt.Print("csrftoken: ")
		v, err := readSecret(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to read csrftoken: %w", err)
		}
		account.CSRFToken = v
	}
	if account.DSUserID == "" {
		fmt.Print("ds_user_id (optional): ")
		account.DSUserID, _ = readLine(reader)
	}

	if err := checkAccount(account); err != nil {
		return nil, err
	}
	return account, nil
}

// checkAccount rejects values that cannot be real session cookies
func checkAccount(account *auth.Account) error {
	var errs []error
	validSession := strings.Contains(account.SessionID, "%3A") || strings.Contains(account.SessionID, ":")
	if len(account.SessionID) < 20 || !validSession {
		errs = append(errs, errors.New("sessionid looks wrong, it is a long value like 12345678%3Aabcdef%3A26"))
	}
	if len(account.CSRFToken) < 20 || len(account.CSRFToken) > 64 {
		errs = append(errs, errors.New("csrftoken looks wrong, it is about 32 characters long"))
	}
	for _, r := range account.DSUserID {
		if r < '0' || r > '9' {
			errs = append(errs, errors.New("ds_user_id must be numeric"))
			break
		}
	}
	return errors.Join(errs...)
}

func runLogout(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	if logoutAll {
		if err := manager.DeleteAll(); err != nil {
			return fmt.Errorf("failed to remove accounts: %w", err)
		}
		ui.PrintSuccess("All accounts removed")
		return nil
	}

	var username string
	if len(args) > 0 {
		username = args[0]
	} else {
		accounts, err := manager.List()
		if err != nil || len(accounts) == 0 {
			return auth.ErrCredentialsNotFound
		}
		if len(accounts) > 1 {
			return errors.New("several accounts are stored, name one or pass --all")
		}
		username = accounts[0].Username
	}

	if err := manager.Delete(username); err != nil {
		return fmt.Errorf("failed to remove account: %w", err)
	}
	ui.PrintSuccess("Account removed: " + username)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	accounts, err := manager.List()
	if err != nil {
		return fmt.Errorf("failed to list accounts: %w", err)
	}
	if len(accounts) == 0 {
		ui.PrintInfo("No stored accounts", "Use 'igunfollow auth login' to add one")
		return nil
	}

	renderAccounts(os.Stdout, accounts)
	return nil
}

func renderAccounts(w io.Writer, accounts []*auth.Account) {
	t := ui.NewTable(w)
	t.AppendHeader(table.Row{"Username", "Session ID", "CSRF Token", "User ID", "Modified"})
	for _, account := range accounts {
		s := auth.SanitizeAccount(account)
		t.AppendRow(table.Row{s.Username, s.SessionID, s.CSRFToken, s.DSUserID, s.LastModified.Format("2006-01-02 15:04")})
	}
	t.Render()
}

func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readSecret reads without echo when stdin is a terminal
func readSecret(reader *bufio.Reader) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		secret, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(secret)), nil
	}
	return readLine(reader)
}
