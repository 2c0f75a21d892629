package auth

import (
	"fmt"
	"io"
	"strings"
)

// WriteCookieGuide writes step-by-step instructions for copying the session
// cookies out of a logged-in browser
func WriteCookieGuide(w io.Writer) {
	rule := strings.Repeat("=", 72)
	lines := []string{
		rule,
		"INSTAGRAM SESSION COOKIES",
		rule,
		"",
		"igunfollow acts with your browser session. It needs three cookies:",
		"",
		"  sessionid    logs the requests in as you",
		"  csrftoken    required on every unfollow request",
		"  ds_user_id   your numeric account id (optional, skips a profile lookup)",
		"",
		"1. Log in at https://www.instagram.com",
		"2. Open Developer Tools (F12, or Cmd+Option+I on macOS)",
		"3. Network tab: reload, click any request to instagram.com",
		"4. Under Request Headers copy the whole 'Cookie:' line",
		"",
		"Paste that line when asked, or enter the cookies one by one.",
		"Application/Storage tab > Cookies > https://www.instagram.com lists them too.",
		"",
		"These cookies give full access to your account. Never share them.",
		"They are stored in the system keychain or an encrypted file.",
		rule,
		"",
	}
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
}

// WriteQuickGuide writes the one-line version of WriteCookieGuide
func WriteQuickGuide(w io.Writer) {
	fmt.Fprintln(w, "F12 > Network > reload > any instagram.com request > Headers > Cookie")
	fmt.Fprintln(w, "Need sessionid and csrftoken (ds_user_id optional). Type 'help' for details.")
}
