package ui

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"igunfollow/pkg/unfollow"
)

// NotificationSender delivers a desktop notification
type NotificationSender interface {
	Send(title, message string) error
}

// LinuxNotificationSender uses notify-send
type LinuxNotificationSender struct{}

func (l *LinuxNotificationSender) Send(title, message string) error {
	return exec.Command("notify-send", title, message).Run()
}

// MacOSNotificationSender uses osascript
type MacOSNotificationSender struct{}

func (m *MacOSNotificationSender) Send(title, message string) error {
	script := fmt.Sprintf(`display notification %q with title %q`, message, title)
	return exec.Command("osascript", "-e", script).Run()
}

// WindowsNotificationSender uses a PowerShell toast
type WindowsNotificationSender struct{}

func (w *WindowsNotificationSender) Send(title, message string) error {
	script := fmt.Sprintf(`
		[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType = WindowsRuntime] | Out-Null
		$template = [Windows.UI.Notifications.ToastNotificationManager]::GetTemplateContent([Windows.UI.Notifications.ToastTemplateType]::ToastText02)
		$text = $template.GetElementsByTagName("text")
		$text.Item(0).AppendChild($template.CreateTextNode('%s')) | Out-Null
		$text.Item(1).AppendChild($template.CreateTextNode('%s')) | Out-Null
		$toast = [Windows.UI.Notifications.ToastNotification]::new($template)
		[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier("igunfollow").Show($toast)
	`, psQuote(title), psQuote(message))
	return exec.Command("powershell", "-NoProfile", "-NonInteractive", "-Command", script).Run()
}

func psQuote(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// Notifier echoes a message to the console and, when enabled, to the desktop
type Notifier struct {
	sender  NotificationSender
	w       io.Writer
	enabled bool
}

// NewNotifier picks the sender for the current platform. A disabled
// notifier only prints.
func NewNotifier(enabled bool) *Notifier {
	var sender NotificationSender
	switch runtime.GOOS {
	case "linux":
		sender = &LinuxNotificationSender{}
	case "darwin":
		sender = &MacOSNotificationSender{}
	case "windows":
		sender = &WindowsNotificationSender{}
	}
	return NewNotifierWithSender(sender, os.Stdout, enabled)
}

// NewNotifierWithSender builds a notifier around a specific sender
func NewNotifierWithSender(sender NotificationSender, w io.Writer, enabled bool) *Notifier {
	if w == nil {
		w = io.Discard
	}
	return &Notifier{sender: sender, w: w, enabled: enabled}
}

func (n *Notifier) send(title, message string) {
	if !n.enabled || n.sender == nil {
		return
	}
	// delivery failures are not worth interrupting a run for
	_ = n.sender.Send(title, message)
}

// SendSuccess reports a successful outcome
func (n *Notifier) SendSuccess(title, message string) {
	fmt.Fprintf(n.w, "\n%s: %s\n", successStyle.Render(title), successStyle.Render(message))
	n.send(title, message)
}

// SendError reports a failure
func (n *Notifier) SendError(title, message string) {
	fmt.Fprintf(n.w, "\n%s: %s\n", errorStyle.Render(title), errorStyle.Render(message))
	n.send(title, message)
}

// RunFinished summarizes a run in one notification
func (n *Notifier) RunFinished(result *unfollow.Result) {
	const title = "igunfollow"
	switch {
	case result.NothingToDo:
		n.SendSuccess(title, unfollow.NothingToDo)
	case result.DryRun || result.Aborted:
		// nothing changed on the account
	case result.Report.Failed() > 0 || result.Report.NotAttempted > 0:
		n.SendError(title, fmt.Sprintf("Unfollowed %d of %d accounts, %d failed",
			result.Report.Succeeded, result.Report.Planned, result.Report.Failed()))
	default:
		n.SendSuccess(title, fmt.Sprintf("Unfollowed %d accounts", result.Report.Succeeded))
	}
}
