package auth

import (
	"net/http"
	"net/url"
	"strings"
)

// Cookie names carried by an authenticated Instagram browser session
const (
	CookieSessionID = "sessionid"
	CookieCSRFToken = "csrftoken"
	CookieDSUserID  = "ds_user_id"
)

// Session is the credential context handed to the API client. It replaces
// the ambient cookie store of a logged-in browser tab.
type Session struct {
	Username  string
	SessionID string
	CSRFToken string
	DSUserID  string
	UserAgent string
}

// NewSession builds a Session from stored credentials
func NewSession(account *Account) (*Session, error) {
	if account == nil || account.SessionID == "" || account.CSRFToken == "" {
		return nil, ErrInvalidCredentials
	}
	return &Session{
		Username:  account.Username,
		SessionID: account.SessionID,
		CSRFToken: account.CSRFToken,
		DSUserID:  account.DSUserID,
		UserAgent: account.UserAgent,
	}, nil
}

// Cookies returns the session cookies, ready to seed a cookie jar
func (s *Session) Cookies() []*http.Cookie {
	cookies := []*http.Cookie{
		{Name: CookieSessionID, Value: s.SessionID, Path: "/"},
		{Name: CookieCSRFToken, Value: s.CSRFToken, Path: "/"},
	}
	if s.DSUserID != "" {
		cookies = append(cookies, &http.Cookie{Name: CookieDSUserID, Value: s.DSUserID, Path: "/"})
	}
	return cookies
}

// Token returns the anti-forgery token for u, preferring a csrftoken cookie
// that the server rotated into jar over the one the session started with
func (s *Session) Token(jar http.CookieJar, u *url.URL) string {
	if jar != nil && u != nil {
		for _, c := range jar.Cookies(u) {
			if c.Name == CookieCSRFToken && c.Value != "" {
				return c.Value
			}
		}
	}
	return s.CSRFToken
}

// ParseCookieHeader extracts session values from a raw "Cookie:" header
// copied out of the browser's developer tools
func ParseCookieHeader(header string) *Account {
	header = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(header), "Cookie:"))
	account := &Account{}
	for _, part := range strings.Split(header, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		value = strings.Trim(value, `"`)
		switch name {
		case CookieSessionID:
			account.SessionID = value
		case CookieCSRFToken:
			account.CSRFToken = value
		case CookieDSUserID:
			account.DSUserID = value
		}
	}
	return account
}
